package bus

import (
	"context"
	"errors"
	"sync"
	"time"
)

var errPipeClosed = errors.New("bus: pipe closed")

// waitForever disables the receive timer.
const waitForever time.Duration = -1

type recvStatus uint8

const (
	recvOK recvStatus = iota
	recvEmpty
	recvTimeout
	recvClosed
	recvCancelled
)

// pipe is an unbounded FIFO of envelopes with a single reader. Writers never
// block. ready holds at most one pending wake-up for the reader; notify, when
// set, is an extra wake-up channel shared by several pipes (a switch's
// subscribers).
type pipe struct {
	mu     sync.Mutex
	queue  []Envelope
	closed bool
	ready  chan struct{}
	notify chan struct{}
}

func newPipe(notify chan struct{}) *pipe {
	return &pipe{ready: make(chan struct{}, 1), notify: notify}
}

func wake(ch chan struct{}) {
	if ch == nil {
		return
	}
	select {
	case ch <- struct{}{}:
	default:
	}
}

func (p *pipe) push(e Envelope) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return errPipeClosed
	}
	p.queue = append(p.queue, e)
	p.mu.Unlock()

	wake(p.ready)
	wake(p.notify)
	return nil
}

// requeue puts envelopes back at the head of the queue in their original
// order. It works on a closed pipe so nothing read ahead is lost.
func (p *pipe) requeue(envs []Envelope) {
	if len(envs) == 0 {
		return
	}
	p.mu.Lock()
	p.queue = append(append(make([]Envelope, 0, len(envs)+len(p.queue)), envs...), p.queue...)
	p.mu.Unlock()
	wake(p.ready)
}

func (p *pipe) close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	wake(p.ready)
	wake(p.notify)
}

func (p *pipe) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *pipe) len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// tryPop returns the head of the queue. A closed pipe still yields what was
// queued before it was closed.
func (p *pipe) tryPop() (Envelope, recvStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.queue) > 0 {
		e := p.queue[0]
		p.queue[0] = Envelope{}
		p.queue = p.queue[1:]
		return e, recvOK
	}
	if p.closed {
		return Envelope{}, recvClosed
	}
	return Envelope{}, recvEmpty
}

// recv waits up to timeout for an envelope. A zero timeout checks once;
// waitForever blocks until data, close, exit or ctx.
func (p *pipe) recv(ctx context.Context, exit <-chan struct{}, timeout time.Duration) (Envelope, recvStatus) {
	if e, st := p.tryPop(); st != recvEmpty {
		return e, st
	}
	if timeout == 0 {
		return Envelope{}, recvTimeout
	}

	var expired <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		expired = t.C
	}

	for {
		select {
		case <-p.ready:
		case <-expired:
			if e, st := p.tryPop(); st != recvEmpty {
				return e, st
			}
			return Envelope{}, recvTimeout
		case <-exit:
			return Envelope{}, recvCancelled
		case <-ctx.Done():
			return Envelope{}, recvCancelled
		}
		if e, st := p.tryPop(); st != recvEmpty {
			return e, st
		}
	}
}
