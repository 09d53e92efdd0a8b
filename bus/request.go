package bus

import (
	"context"

	"github.com/kbukum/liftkit/errors"
)

// RequestFunc performs one exchange over link.
type RequestFunc[In, Out any] func(ctx context.Context, in In, link *Link) (Out, error)

// Request owns a Link and runs op over it one call at a time. The Link lives
// in a one-slot channel, so a Fetch holds the only reference to it for the
// duration of op and concurrent Fetches queue behind it.
type Request[In, Out any] struct {
	slot chan *Link
	op   RequestFunc[In, Out]
	key  string
}

// NewRequest takes ownership of link. The caller must not use it directly
// afterwards.
func NewRequest[In, Out any](link *Link, op RequestFunc[In, Out]) *Request[In, Out] {
	slot := make(chan *Link, 1)
	slot <- link
	return &Request[In, Out]{slot: slot, op: op, key: link.Key()}
}

// Key is the routing key of the owned Link.
func (r *Request[In, Out]) Key() string { return r.key }

// Fetch runs op with in. It waits while another Fetch is in flight, or until
// ctx is done.
func (r *Request[In, Out]) Fetch(ctx context.Context, in In) (Out, error) {
	var link *Link
	select {
	case link = <-r.slot:
	case <-ctx.Done():
		var zero Out
		return zero, errors.Cancelled("fetch "+r.key, ctx.Err())
	}
	defer func() { r.slot <- link }()

	return r.op(ctx, in, link)
}

// AskFunc is a RequestFunc that sends in as the query and decodes the reply.
func AskFunc[In, Out any]() RequestFunc[In, Out] {
	return func(ctx context.Context, in In, link *Link) (Out, error) {
		return Ask[Out](ctx, link, in)
	}
}
