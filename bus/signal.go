package bus

import "sync"

// Signal is a one-shot cancellation token. Fire is idempotent; Done is closed
// once it has fired.
type Signal struct {
	once sync.Once
	done chan struct{}
}

// NewSignal returns an unfired signal.
func NewSignal() *Signal {
	return &Signal{done: make(chan struct{})}
}

// Fire closes Done. Calling it again has no effect.
func (s *Signal) Fire() {
	s.once.Do(func() { close(s.done) })
}

// Done is closed after Fire.
func (s *Signal) Done() <-chan struct{} { return s.done }

// Fired reports whether Fire has been called.
func (s *Signal) Fired() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}
