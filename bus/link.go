package bus

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/kbukum/liftkit/errors"
	"github.com/kbukum/liftkit/eval"
	"github.com/kbukum/liftkit/logger"
	"github.com/kbukum/liftkit/observability"
)

// Link is one end of a bidirectional, unbounded envelope channel.
//
// A Link is used by one goroutine at a time: either a caller issuing Req and
// RecvQuery, or the background loop started by Listen. Request enforces the
// former structurally.
type Link struct {
	name   Name
	key    string
	txID   uint64
	in     *pipe
	out    *pipe
	exit   *Signal
	opts   options
	log    *logger.Logger
	listen atomic.Bool
}

// Handler answers one received envelope. Returning false sends nothing.
type Handler func(ctx context.Context, req Envelope) (Envelope, bool)

func newLink(name Name, in, out *pipe, exit *Signal, o options) *Link {
	key := name.Join()
	return &Link{
		name: name,
		key:  key,
		txID: name.TxID(),
		in:   in,
		out:  out,
		exit: exit,
		opts: o,
		log: o.log.WithComponent("bus.link").WithFields(logger.Fields(
			logger.FieldEndpoint, key,
		)),
	}
}

// Split creates a connected pair of Links named "<parent>:Link". Both ends
// share one exit signal.
func Split(parent string, opts ...Option) (local, remote *Link) {
	o := buildOptions(opts)
	name := NewName(parent, "Link")
	up, down := newPipe(nil), newPipe(nil)
	exit := NewSignal()
	local = newLink(name, down, up, exit, o)
	remote = newLink(name.Child("Remote"), up, down, exit, o)
	return local, remote
}

func (l *Link) Name() Name { return l.name }

// Key is the routing key carried by this Link's requests.
func (l *Link) Key() string { return l.key }

// TxID is the correlation id stamped on every envelope this Link sends.
func (l *Link) TxID() uint64 { return l.txID }

// Timeout is the poll timeout used by RecvQuery.
func (l *Link) Timeout() time.Duration { return l.opts.pollTimeout }

func (l *Link) RequestTimeout() time.Duration { return l.opts.requestTimeout }

// ExitSignal exposes the signal observed by every wait on this Link.
func (l *Link) ExitSignal() *Signal { return l.exit }

// Exit stops the Link's waits and its listen loop. It is idempotent.
func (l *Link) Exit() { l.exit.Fire() }

// Close drops the Link: the peer reads what was already sent, then sees a
// closed channel, and the peer's sends fail.
func (l *Link) Close() {
	l.out.close()
	l.in.close()
}

// Pending is the number of envelopes waiting to be received.
func (l *Link) Pending() int { return l.in.len() }

func (l *Link) listening() bool { return l.listen.Load() }

func (l *Link) envelope(cot Cot, routingKey, payload string) Envelope {
	return NewEnvelope(l.txID, routingKey, cot, payload)
}

// Send pushes a pre-built envelope to the peer.
func (l *Link) Send(e Envelope) error {
	if err := l.out.push(e); err != nil {
		return errors.ChannelClosed(l.key)
	}
	return nil
}

// Notify sends an unsolicited message (Inf, Act or Diag) under this Link's key.
func (l *Link) Notify(cot Cot, msg any) error {
	payload, err := encode("encode "+cot.String(), msg)
	if err != nil {
		return err
	}
	return l.Send(l.envelope(cot, l.key, payload))
}

// Req sends query as a Req envelope and waits up to the request timeout for
// the reply, which is decoded into reply. Unsolicited envelopes that arrive
// during the wait are kept for the next receive.
func (l *Link) Req(ctx context.Context, query, reply any) error {
	if l.listening() {
		return errors.Listening(l.key)
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanLinkRequest)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrEndpoint, l.key)
	observability.SetSpanAttribute(ctx, observability.AttrCorrelationID, l.txID)

	start := time.Now()
	err := l.req(ctx, query, reply)
	status := observability.RequestOK
	switch {
	case errors.IsTimeout(err):
		status = observability.RequestTimeout
	case err != nil:
		status = observability.RequestFailed
	}
	l.opts.metrics.RecordRequest(ctx, status, time.Since(start))
	if err != nil {
		observability.SetSpanError(ctx, err)
		l.log.Debug("[BUS_LINK] request failed", logger.ErrorFields("req", err))
	}
	return err
}

func (l *Link) req(ctx context.Context, query, reply any) error {
	payload, err := encode("encode query", query)
	if err != nil {
		return err
	}
	env := l.envelope(CotReq, l.key, payload)
	if err := l.Send(env); err != nil {
		return err
	}
	l.log.Debug("[BUS_LINK] request sent", logger.Fields(
		logger.FieldEnvelopeID, env.ID,
		logger.FieldCorrelationID, env.CorrelationID,
	))

	var held []Envelope
	defer func() { l.in.requeue(held) }()

	deadline := time.Now().Add(l.opts.requestTimeout)
	for {
		in, st := l.in.recv(ctx, l.exit.Done(), max(time.Until(deadline), 0))
		switch st {
		case recvTimeout:
			return errors.Timeout("req " + l.key)
		case recvClosed:
			return errors.ChannelClosed(l.key)
		case recvCancelled:
			return errors.Cancelled("req "+l.key, ctx.Err())
		}

		switch in.Cot {
		case CotReqCon:
			return decode("decode reply", in.Payload, reply)
		case CotReqErr:
			return errors.RemoteFailed(in.RoutingKey, in.Payload)
		default:
			held = append(held, in)
		}
	}
}

// Ask issues a Req and decodes the reply as T.
func Ask[T any](ctx context.Context, l *Link, query any) (T, error) {
	var reply T
	err := l.Req(ctx, query, &reply)
	return reply, err
}

// SendReply sends a ReqCon addressed with this Link's own key. It fits a
// plain Split pair, where the peer is the only possible requester.
func (l *Link) SendReply(ctx context.Context, reply any) error {
	if err := ctx.Err(); err != nil {
		return errors.Cancelled("reply "+l.key, err)
	}
	payload, err := encode("encode reply", reply)
	if err != nil {
		return err
	}
	return l.Send(l.envelope(CotReqCon, l.key, payload))
}

// ReplyTo builds a ReqCon carrying the routing key of req, so a switch can
// deliver it to the subscriber that asked.
func (l *Link) ReplyTo(req Envelope, reply any) (Envelope, error) {
	payload, err := encode("encode reply", reply)
	if err != nil {
		return Envelope{}, err
	}
	return l.envelope(CotReqCon, req.RoutingKey, payload), nil
}

// FailTo builds a ReqErr for req whose payload is the error text.
func (l *Link) FailTo(req Envelope, cause error) Envelope {
	e := l.envelope(CotReqErr, req.RoutingKey, cause.Error())
	e.Status = StatusInvalid
	return e
}

// Listen starts a loop that hands each received envelope to handler and sends
// back whatever it returns. The loop ends on Exit or ctx cancellation; the
// returned channel is closed when it has. A Link can be listened once.
func (l *Link) Listen(ctx context.Context, handler Handler) (<-chan struct{}, error) {
	if !l.listen.CompareAndSwap(false, true) {
		return nil, errors.Listening(l.key)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		l.log.Debug("[BUS_LINK] listening")
		for {
			req, st := l.in.recv(ctx, l.exit.Done(), waitForever)
			switch st {
			case recvCancelled:
				l.log.Debug("[BUS_LINK] listen loop stopped")
				return
			case recvClosed:
				l.log.Warn("[BUS_LINK] peer closed, waiting for exit")
				select {
				case <-l.exit.Done():
				case <-ctx.Done():
				}
				return
			}

			reply, ok := handler(ctx, req)
			if !ok {
				continue
			}
			if err := l.Send(reply); err != nil {
				l.log.Warn("[BUS_LINK] reply not delivered", logger.Fields(
					logger.FieldRoutingKey, reply.RoutingKey,
					logger.FieldError, err.Error(),
				))
			}
		}
	}()
	return done, nil
}

// Recv waits up to the poll timeout for the next envelope.
func (l *Link) Recv(ctx context.Context) eval.Result[Envelope] {
	if l.listening() {
		return eval.Err[Envelope](errors.Listening(l.key))
	}
	e, st := l.in.recv(ctx, l.exit.Done(), l.opts.pollTimeout)
	switch st {
	case recvOK:
		return eval.Ok(e)
	case recvTimeout:
		return eval.None[Envelope]()
	case recvClosed:
		return eval.Err[Envelope](errors.ChannelClosed(l.key))
	default:
		return eval.Err[Envelope](errors.Cancelled("recv "+l.key, ctx.Err()))
	}
}

// Received is a decoded query together with its sender.
type Received[T any] struct {
	From     string
	Envelope Envelope
	Value    T
}

// RecvQueryFrom waits up to the poll timeout for one envelope and decodes
// its payload as T. An empty open channel yields None.
func RecvQueryFrom[T any](ctx context.Context, l *Link) eval.Result[Received[T]] {
	return eval.AndThen(l.Recv(ctx), func(e Envelope) eval.Result[Received[T]] {
		v, err := Decode[T](e)
		if err != nil {
			return eval.Err[Received[T]](err)
		}
		return eval.Ok(Received[T]{From: e.RoutingKey, Envelope: e, Value: v})
	})
}

// RecvQuery is RecvQueryFrom without the sender.
func RecvQuery[T any](ctx context.Context, l *Link) eval.Result[T] {
	return eval.Map(RecvQueryFrom[T](ctx, l), func(r Received[T]) T { return r.Value })
}
