package crane

import (
	"github.com/kbukum/liftkit/eval"
	"github.com/kbukum/liftkit/slot"
)

// InitialCtx holds validated initial data.
type InitialCtx struct{ InitialData }

// HookFilterCtx holds the hooks rated for the requested load.
type HookFilterCtx struct{ Result []Hook }

// UserHookCtx holds the hook the operator chose.
type UserHookCtx struct{ Result Hook }

// LiftingSpeedCtx holds the steady-state lifting speed, m/s.
type LiftingSpeedCtx struct{ Result float64 }

// BetPhiCtx holds the β2/ϕ2min pair of the lift class.
type BetPhiCtx struct{ Result BetPhi }

// DynamicCoefficientCtx holds ϕ2, rounded to three decimals.
type DynamicCoefficientCtx struct{ Result float64 }

// BearingFilterCtx holds the bearings that carry the dynamic load and fit
// the chosen hook's shank.
type BearingFilterCtx struct{ Result []Bearing }

// UserBearingCtx holds the bearing the operator chose.
type UserBearingCtx struct{ Result Bearing }

// LoadHandDeviceMassCtx holds the mass of the load handling device and the
// payload left for the load itself.
type LoadHandDeviceMassCtx struct {
	TotalMass float64
	NetWeight float64
}

// Slot is the closed set of types a Context can hold.
type Slot interface {
	InitialCtx | HookFilterCtx | UserHookCtx | LiftingSpeedCtx | BetPhiCtx |
		DynamicCoefficientCtx | BearingFilterCtx | UserBearingCtx | LoadHandDeviceMassCtx
}

// Context is the value threaded through the chain. It is never modified in
// place; Write returns a new Context.
type Context struct {
	rec slot.Record
}

// NewContext returns an empty context.
func NewContext() Context { return Context{} }

// Write returns a copy of c with the slot for T replaced by v.
func Write[T Slot](c Context, v T) eval.Result[Context] {
	return eval.Ok(Context{rec: slot.Write(c.rec, v)})
}

// Read returns the slot for T. It panics if no stage has written it.
func Read[T Slot](c Context) T {
	return slot.Read[T](c.rec)
}

// Lookup returns the slot for T and whether it has been written.
func Lookup[T Slot](c Context) (T, bool) {
	return slot.Lookup[T](c.rec)
}

// Has reports whether the slot for T has been written.
func Has[T Slot](c Context) bool {
	return slot.Has[T](c.rec)
}

// Slots lists the written slot types, for diagnostics.
func (c Context) Slots() []string {
	return c.rec.Types()
}
