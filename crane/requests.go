package crane

import (
	"context"
	"slices"

	"github.com/kbukum/liftkit/bus"
	"github.com/kbukum/liftkit/errors"
)

// HookRequest asks the operator to choose a hook.
type HookRequest = bus.Request[ChooseUserHookQuery, Hook]

// BearingRequest asks the operator to choose a bearing.
type BearingRequest = bus.Request[ChooseUserBearingQuery, Bearing]

// NewHookRequest takes ownership of link, normally a switch subscriber.
func NewHookRequest(link *bus.Link) *HookRequest {
	return bus.NewRequest(link, func(ctx context.Context, q ChooseUserHookQuery, l *bus.Link) (Hook, error) {
		reply, err := bus.Ask[ChooseUserHookReply](ctx, l, Query{ChooseUserHook: &q})
		if err != nil {
			return Hook{}, err
		}
		if !slices.Contains(q.Variants, reply.Choosen) {
			return Hook{}, errors.InvalidInput("choosen", "hook "+reply.Choosen.Gost+" is not one of the offered variants")
		}
		return reply.Choosen, nil
	})
}

// NewBearingRequest takes ownership of link, normally a switch subscriber.
func NewBearingRequest(link *bus.Link) *BearingRequest {
	return bus.NewRequest(link, func(ctx context.Context, q ChooseUserBearingQuery, l *bus.Link) (Bearing, error) {
		reply, err := bus.Ask[ChooseUserBearingReply](ctx, l, Query{ChooseUserBearing: &q})
		if err != nil {
			return Bearing{}, err
		}
		if !slices.Contains(q.Variants, reply.Choosen) {
			return Bearing{}, errors.InvalidInput("choosen", "bearing "+reply.Choosen.Name+" is not one of the offered variants")
		}
		return reply.Choosen, nil
	})
}
