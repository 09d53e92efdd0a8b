// Package bus carries request/reply conversations between pipeline stages and
// an external agent inside one process.
//
// A Link is a point-to-point endpoint. Links come in pairs from Split, or are
// handed out by a Switch, which multiplexes any number of downstream Links
// onto one upstream pair:
//
//	sw, remote := bus.SplitSwitch("main")
//	_ = sw.Run(ctx)
//	link, _ := sw.Link(ctx)          // "main:Switch:0:Link"
//	reply, err := bus.Ask[Reply](ctx, link, query)
//
// Upstream Req, Inf and Act envelopes are broadcast to every subscriber;
// ReqCon and ReqErr envelopes are routed to the subscriber whose routing key
// matches, or dropped with a warning. Every wait selects on data, a timer, the
// endpoint's exit signal and ctx, so Exit and cancellation take effect at once.
package bus
