package bus

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/kbukum/liftkit/errors"
	"github.com/kbukum/liftkit/logger"
	"github.com/kbukum/liftkit/observability"
)

// registrationBacklog bounds registrations queued before Run starts.
const registrationBacklog = 64

type subscriber struct {
	key      string
	toLink   *pipe // switch -> subscriber
	fromLink *pipe // subscriber -> switch
}

type registration struct {
	sub *subscriber
	ack chan struct{}
}

// Switch multiplexes many downstream Links over one upstream pair.
//
// The remote loop receives from upstream and delivers to subscribers; the
// locals loop forwards subscriber traffic upstream, one envelope per
// subscriber per cycle. Subscribers are never removed.
//
// When either loop stops, through Exit or the end of Run's ctx, the exit
// signal fires. Every subscriber Link exits with it, so their pending Req and
// RecvQuery calls return CANCELLED and later ones fail at once.
type Switch struct {
	name     Name
	upIn     *pipe
	upOut    *pipe
	opts     options
	log      *logger.Logger
	exit     *Signal
	wake     chan struct{}
	register chan registration

	subscribers sync.Map // routing key -> *subscriber
	seq         atomic.Uint64
	generation  atomic.Uint64
	count       atomic.Int64

	running atomic.Bool
	wg      sync.WaitGroup
}

// NewSwitch creates a switch named "<parent>:Switch" that takes over the
// channels of upstream. upstream must not be used afterwards.
func NewSwitch(parent string, upstream *Link, opts ...Option) *Switch {
	o := buildOptions(opts)
	name := NewName(parent, "Switch")
	return &Switch{
		name:     name,
		upIn:     upstream.in,
		upOut:    upstream.out,
		opts:     o,
		log:      o.log.WithComponent("bus.switch").WithFields(logger.Fields(logger.FieldEndpoint, name.Join())),
		exit:     NewSignal(),
		wake:     make(chan struct{}, 1),
		register: make(chan registration, registrationBacklog),
	}
}

// SplitSwitch creates a Link pair, builds a switch on the local end and
// returns it together with the remote end.
func SplitSwitch(parent string, opts ...Option) (*Switch, *Link) {
	local, remote := Split(parent, opts...)
	return NewSwitch(parent, local, opts...), remote
}

func (s *Switch) Name() Name { return s.name }

// Generation counts the registrations observed by the locals loop.
func (s *Switch) Generation() uint64 { return s.generation.Load() }

// Subscribers is the number of Links handed out.
func (s *Switch) Subscribers() int { return int(s.count.Load()) }

// ExitSignal is fired by Exit.
func (s *Switch) ExitSignal() *Signal { return s.exit }

// Exit stops both loops. It is idempotent.
func (s *Switch) Exit() { s.exit.Fire() }

// Wait blocks until both loops have returned.
func (s *Switch) Wait() { s.wg.Wait() }

// Run starts the remote and locals loops. They stop on Exit or when ctx is
// cancelled, and either way the switch is finished.
func (s *Switch) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return errors.New(errors.ErrCodeInternal, fmt.Sprintf("switch %s already running", s.name))
	}
	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		defer s.exit.Fire()
		s.remoteLoop(ctx)
	}()
	go func() {
		defer s.wg.Done()
		defer s.exit.Fire()
		s.localsLoop(ctx)
	}()
	s.log.Info("[BUS_SWITCH] started")
	return nil
}

// Link attaches a new subscriber and returns its endpoint. It blocks until
// the locals loop has observed the registration, so the switch must be
// running for Link to return successfully.
func (s *Switch) Link(ctx context.Context) (*Link, error) {
	if s.exit.Fired() {
		return nil, errors.Cancelled("link "+s.name.Join(), nil)
	}

	n := s.seq.Add(1) - 1
	name := NewName(fmt.Sprintf("%s%s%d", s.name.Join(), Separator, n), "Link")
	sub := &subscriber{
		key:      name.Join(),
		toLink:   newPipe(nil),
		fromLink: newPipe(s.wake),
	}
	linkExit := NewSignal()
	go func() {
		select {
		case <-s.exit.Done():
			linkExit.Fire()
		case <-linkExit.Done():
		}
	}()
	link := newLink(name, sub.toLink, sub.fromLink, linkExit, s.opts)

	s.subscribers.Store(sub.key, sub)
	reg := registration{sub: sub, ack: make(chan struct{})}

	select {
	case s.register <- reg:
	case <-ctx.Done():
		s.subscribers.Delete(sub.key)
		linkExit.Fire()
		return nil, errors.Cancelled("link "+sub.key, ctx.Err())
	case <-s.exit.Done():
		s.subscribers.Delete(sub.key)
		return nil, errors.Cancelled("link "+sub.key, nil)
	}

	select {
	case <-reg.ack:
	case <-ctx.Done():
		linkExit.Fire()
		return nil, errors.Cancelled("link "+sub.key, ctx.Err())
	case <-s.exit.Done():
		return nil, errors.Cancelled("link "+sub.key, nil)
	}

	s.count.Add(1)
	s.opts.metrics.RecordSubscriber(ctx, 1)
	return link, nil
}

func (s *Switch) remoteLoop(ctx context.Context) {
	for {
		env, st := s.upIn.recv(ctx, s.exit.Done(), waitForever)
		switch st {
		case recvCancelled:
			s.log.Debug("[BUS_SWITCH] remote loop stopped")
			return
		case recvClosed:
			s.log.Warn("[BUS_SWITCH] upstream closed, waiting for exit")
			select {
			case <-s.exit.Done():
			case <-ctx.Done():
			}
			return
		}
		s.dispatch(ctx, env)
	}
}

func (s *Switch) dispatch(ctx context.Context, env Envelope) {
	fields := logger.Fields(
		logger.FieldCot, env.Cot.String(),
		logger.FieldRoutingKey, env.RoutingKey,
		logger.FieldEnvelopeID, env.ID,
	)

	switch {
	case env.Cot.IsBroadcast():
		delivered := 0
		s.subscribers.Range(func(_, v any) bool {
			if err := v.(*subscriber).toLink.push(env); err == nil {
				delivered++
			}
			return true
		})
		fields[logger.FieldSubscribers] = delivered
		s.log.Debug("[BUS_SWITCH] broadcast", fields)
		s.opts.metrics.RecordEnvelope(ctx, env.Cot.String(), observability.DispositionBroadcast)

	case env.Cot.IsReply():
		v, ok := s.subscribers.Load(env.RoutingKey)
		if !ok {
			s.log.Warn("[BUS_SWITCH] no subscriber for routing key", logger.MergeWithError(fields, errors.RoutingMiss(env.RoutingKey)))
			s.opts.metrics.RecordEnvelope(ctx, env.Cot.String(), observability.DispositionDropped)
			return
		}
		if err := v.(*subscriber).toLink.push(env); err != nil {
			s.log.Warn("[BUS_SWITCH] subscriber closed, reply dropped", fields)
			s.opts.metrics.RecordEnvelope(ctx, env.Cot.String(), observability.DispositionDropped)
			return
		}
		s.log.Debug("[BUS_SWITCH] routed", fields)
		s.opts.metrics.RecordEnvelope(ctx, env.Cot.String(), observability.DispositionRouted)

	default:
		s.log.Debug("[BUS_SWITCH] diagnostic", fields)
	}
}

func (s *Switch) localsLoop(ctx context.Context) {
	var locals []*subscriber
	accept := func(reg registration) {
		locals = append(locals, reg.sub)
		gen := s.generation.Add(1)
		close(reg.ack)
		s.log.Debug("[BUS_SWITCH] subscriber registered", logger.Fields(
			logger.FieldRoutingKey, reg.sub.key,
			logger.FieldGeneration, gen,
		))
	}

	for {
		select {
		case <-s.exit.Done():
			s.log.Debug("[BUS_SWITCH] locals loop stopped")
			return
		case <-ctx.Done():
			s.log.Debug("[BUS_SWITCH] locals loop stopped")
			return
		default:
		}

	drain:
		for {
			select {
			case reg := <-s.register:
				accept(reg)
			default:
				break drain
			}
		}

		forwarded := 0
		for _, sub := range locals {
			env, st := sub.fromLink.tryPop()
			if st != recvOK {
				continue
			}
			forwarded++
			if err := s.upOut.push(env); err != nil {
				s.log.Warn("[BUS_SWITCH] upstream closed, envelope dropped", logger.Fields(
					logger.FieldRoutingKey, env.RoutingKey,
					logger.FieldCot, env.Cot.String(),
				))
				s.opts.metrics.RecordEnvelope(ctx, env.Cot.String(), observability.DispositionDropped)
				continue
			}
			s.opts.metrics.RecordEnvelope(ctx, env.Cot.String(), observability.DispositionForwarded)
		}
		if forwarded > 0 {
			continue
		}

		select {
		case <-s.wake:
		case reg := <-s.register:
			accept(reg)
		case <-s.exit.Done():
		case <-ctx.Done():
		}
	}
}
