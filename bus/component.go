package bus

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/liftkit/component"
)

// SwitchComponent runs a Switch under a component registry. The switch loops
// outlive the Start context; Stop ends them.
type SwitchComponent struct {
	sw *Switch

	mu      sync.Mutex
	cancel  context.CancelFunc
	started bool
}

var _ component.Component = (*SwitchComponent)(nil)
var _ component.Describable = (*SwitchComponent)(nil)

// NewSwitchComponent wraps sw.
func NewSwitchComponent(sw *Switch) *SwitchComponent {
	return &SwitchComponent{sw: sw}
}

// Switch returns the wrapped switch.
func (c *SwitchComponent) Switch() *Switch { return c.sw }

func (c *SwitchComponent) Name() string { return c.sw.Name().Join() }

func (c *SwitchComponent) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	if err := c.sw.Run(runCtx); err != nil {
		cancel()
		return err
	}
	c.cancel = cancel
	c.started = true
	return nil
}

func (c *SwitchComponent) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sw.Exit()
	if c.cancel != nil {
		c.cancel()
	}
	if !c.started {
		return nil
	}

	done := make(chan struct{})
	go func() {
		c.sw.Wait()
		close(done)
	}()
	select {
	case <-done:
		c.started = false
		return nil
	case <-ctx.Done():
		return fmt.Errorf("stopping %s: %w", c.Name(), ctx.Err())
	}
}

func (c *SwitchComponent) Health(_ context.Context) component.Health {
	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	c.mu.Lock()
	started := c.started
	c.mu.Unlock()
	switch {
	case c.sw.ExitSignal().Fired():
		h.Status = component.StatusUnhealthy
		h.Message = "exited"
	case !started:
		h.Status = component.StatusUnhealthy
		h.Message = "not started"
	}
	return h
}

func (c *SwitchComponent) Describe() component.Description {
	return component.Description{
		Name:    "Bus switch",
		Type:    "bus",
		Details: fmt.Sprintf("%s subscribers=%d generation=%d", c.sw.Name(), c.sw.Subscribers(), c.sw.Generation()),
	}
}
