package operator

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/kbukum/liftkit/bus"
	"github.com/kbukum/liftkit/component"
	"github.com/kbukum/liftkit/crane"
	"github.com/kbukum/liftkit/logger"
)

// Service answers choose queries arriving on a Link.
type Service struct {
	link    *bus.Link
	chooser Chooser
	log     *logger.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    <-chan struct{}
	answers atomic.Int64
	failed  atomic.Int64
}

var _ component.Component = (*Service)(nil)
var _ component.Describable = (*Service)(nil)

// NewService answers queries received on link using chooser.
func NewService(link *bus.Link, chooser Chooser) *Service {
	return &Service{
		link:    link,
		chooser: chooser,
		log:     logger.Get("operator"),
	}
}

// SetLogger replaces the service logger.
func (s *Service) SetLogger(l *logger.Logger) { s.log = l.WithComponent("operator") }

// Answers returns how many queries were answered and how many failed.
func (s *Service) Answers() (ok, failed int64) { return s.answers.Load(), s.failed.Load() }

func (s *Service) Name() string { return "operator" }

// Start begins listening. The listen loop outlives ctx; Stop ends it.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done, err := s.link.Listen(runCtx, s.handle)
	if err != nil {
		cancel()
		return err
	}
	s.cancel, s.done = cancel, done
	s.log.Info("operator listening", logger.Fields(logger.FieldEndpoint, s.link.Key()))
	return nil
}

func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel == nil {
		return nil
	}
	s.cancel()
	select {
	case <-s.done:
		s.cancel = nil
		return nil
	case <-ctx.Done():
		return fmt.Errorf("stopping operator: %w", ctx.Err())
	}
}

func (s *Service) Health(_ context.Context) component.Health {
	s.mu.Lock()
	running := s.cancel != nil
	s.mu.Unlock()

	h := component.Health{Name: s.Name(), Status: component.StatusHealthy}
	if !running {
		h.Status, h.Message = component.StatusUnhealthy, "not listening"
		return h
	}
	if lc, ok := s.chooser.(*LuaChooser); ok {
		if sh := lc.Health(); sh.Status != component.StatusHealthy {
			h.Status, h.Message = sh.Status, sh.Message
		}
	}
	return h
}

func (s *Service) Describe() component.Description {
	mode := "canned"
	if _, ok := s.chooser.(*LuaChooser); ok {
		mode = "script"
	}
	ok, failed := s.Answers()
	return component.Description{
		Name:    "Operator",
		Type:    "operator",
		Details: fmt.Sprintf("%s mode=%s answered=%d failed=%d", s.link.Key(), mode, ok, failed),
	}
}

// Restart asks the chain to evaluate again. Every subscriber behind the
// switch receives it; only the chain's restart link acts on it.
func (s *Service) Restart() error {
	return s.link.Notify(bus.CotAct, crane.Query{RestartEval: &crane.RestartEvalQuery{}})
}

func (s *Service) handle(ctx context.Context, req bus.Envelope) (bus.Envelope, bool) {
	if req.Cot != bus.CotReq {
		return bus.Envelope{}, false
	}
	log := s.log.WithFields(logger.Fields(
		logger.FieldRoutingKey, req.RoutingKey,
		logger.FieldCorrelationID, req.CorrelationID,
	))

	q, err := bus.Decode[crane.Query](req)
	if err != nil {
		return s.fail(log, req, err), true
	}

	var reply any
	switch {
	case q.ChooseUserHook != nil:
		variants := q.ChooseUserHook.Variants
		i, err := s.chooser.ChooseHook(ctx, variants)
		if err == nil {
			i, err = checkIndex("hook", i, len(variants))
		}
		if err != nil {
			return s.fail(log, req, err), true
		}
		reply = crane.ChooseUserHookReply{Choosen: variants[i]}
		log.Info("hook chosen", logger.Fields("gost", variants[i].Gost, "variants", len(variants)))
	case q.ChooseUserBearing != nil:
		variants := q.ChooseUserBearing.Variants
		i, err := s.chooser.ChooseBearing(ctx, variants)
		if err == nil {
			i, err = checkIndex("bearing", i, len(variants))
		}
		if err != nil {
			return s.fail(log, req, err), true
		}
		reply = crane.ChooseUserBearingReply{Choosen: variants[i]}
		log.Info("bearing chosen", logger.Fields("bearing", variants[i].Name, "variants", len(variants)))
	default:
		log.Debug("query ignored", logger.Fields("query", q.Kind()))
		return bus.Envelope{}, false
	}

	out, err := s.link.ReplyTo(req, reply)
	if err != nil {
		return s.fail(log, req, err), true
	}
	s.answers.Add(1)
	return out, true
}

func (s *Service) fail(log *logger.Logger, req bus.Envelope, err error) bus.Envelope {
	s.failed.Add(1)
	log.Warn("query failed", logger.Fields(logger.FieldError, err.Error()))
	return s.link.FailTo(req, err)
}
