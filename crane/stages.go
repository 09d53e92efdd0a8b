package crane

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/kbukum/liftkit/bus"
	"github.com/kbukum/liftkit/errors"
	"github.com/kbukum/liftkit/eval"
	"github.com/kbukum/liftkit/logger"
	"github.com/kbukum/liftkit/resilience"
)

// Stage names, in chain order.
const (
	StageInitial            = "Initial"
	StageHookFilter         = "HookFilter"
	StageUserHook           = "UserHook"
	StageLiftingSpeed       = "LiftingSpeed"
	StageSelectBetPhi       = "SelectBetPhi"
	StageDynamicCoefficient = "DynamicCoefficient"
	StageBearingFilter      = "BearingFilter"
	StageUserBearing        = "UserBearing"
	StageLoadHandDeviceMass = "LoadHandDeviceMass"
)

// G is the gravitational acceleration used to turn tonnes into kN, m/s².
const G = 9.81

// step runs fn on the Ok context of prev.
type step struct {
	name string
	prev eval.Stage[Context]
	fn   func(ctx context.Context, c Context) eval.Result[Context]
}

func (s *step) Name() string { return s.name }

func (s *step) Eval(ctx context.Context) eval.Result[Context] {
	return eval.Then(ctx, s.name, s.prev, func(c Context) eval.Result[Context] {
		return s.fn(ctx, c)
	})
}

// Initial yields a context holding validated initial data. With a restart
// link it yields None until a RestartEval query arrives on it.
func Initial(source Source, restart *bus.Link) eval.Stage[Context] {
	return eval.StageFunc[Context](func(ctx context.Context) eval.Result[Context] {
		if restart != nil {
			q := bus.RecvQuery[Query](ctx, restart)
			switch {
			case q.IsNone():
				return eval.None[Context]()
			case q.IsErr():
				return eval.Fail[Context](StageInitial, q.Error())
			case q.Value().RestartEval == nil:
				return eval.None[Context]()
			}
		}

		data, err := source(ctx)
		if err != nil {
			return eval.Fail[Context](StageInitial, err)
		}
		if err := data.Validate(); err != nil {
			return eval.Fail[Context](StageInitial, err)
		}
		return Write(NewContext(), InitialCtx{data})
	})
}

// HookFilter keeps the hooks rated for the load capacity in the mechanism's
// work-type group.
func HookFilter(prev eval.Stage[Context]) eval.Stage[Context] {
	return &step{name: StageHookFilter, prev: prev, fn: func(_ context.Context, c Context) eval.Result[Context] {
		in := Read[InitialCtx](c)
		var hooks []Hook
		for _, h := range in.Hooks {
			if h.Capacity(in.MechanismWorkType) >= in.LoadCapacity {
				hooks = append(hooks, h)
			}
		}
		if len(hooks) == 0 {
			return eval.Fail[Context](StageHookFilter, errors.NoCandidates(StageHookFilter, "hooks"))
		}
		return Write(c, HookFilterCtx{Result: hooks})
	}}
}

// UserHook asks the operator to pick one of the filtered hooks. Timeouts are
// retried per retry.
func UserHook(prev eval.Stage[Context], req *HookRequest, retry resilience.RetryConfig, log *logger.Logger) eval.Stage[Context] {
	retry.OnRetry = retryLogger(log, StageUserHook)
	return &step{name: StageUserHook, prev: prev, fn: func(ctx context.Context, c Context) eval.Result[Context] {
		q := ChooseUserHookQuery{Variants: Read[HookFilterCtx](c).Result}
		hook, err := resilience.Retry(ctx, retry, func() (Hook, error) {
			return req.Fetch(ctx, q)
		})
		if err != nil {
			return eval.Fail[Context](StageUserHook, err)
		}
		return Write(c, UserHookCtx{Result: hook})
	}}
}

// LiftingSpeed picks the steady-state hoisting speed from the load
// combination and the driver type.
func LiftingSpeed(prev eval.Stage[Context]) eval.Stage[Context] {
	return &step{name: StageLiftingSpeed, prev: prev, fn: func(_ context.Context, c Context) eval.Result[Context] {
		in := Read[InitialCtx](c)
		v, err := liftingSpeed(in.LoadCombination, in.DriverType, in.Vhmax, in.Vhcs)
		if err != nil {
			return eval.Fail[Context](StageLiftingSpeed, err)
		}
		return Write(c, LiftingSpeedCtx{Result: v})
	}}
}

func liftingSpeed(lc LoadCombination, d DriverType, vhmax, vhcs float64) (float64, error) {
	switch lc {
	case A1, B1:
		switch d {
		case Hd1:
			return vhmax, nil
		case Hd2, Hd3:
			return vhcs, nil
		case Hd4:
			return vhmax * 0.5, nil
		case Hd5:
			return 0, nil
		}
	case C1:
		switch d {
		case Hd1, Hd2, Hd4:
			return vhmax, nil
		case Hd3, Hd5:
			return vhmax * 0.5, nil
		}
	}
	return 0, errors.InvalidInput("driver_type", fmt.Sprintf("no lifting speed for %s with %s", d, lc))
}

// SelectBetPhi looks up β2 and ϕ2min for the lift class.
func SelectBetPhi(prev eval.Stage[Context]) eval.Stage[Context] {
	return &step{name: StageSelectBetPhi, prev: prev, fn: func(_ context.Context, c Context) eval.Result[Context] {
		bp, err := betPhi(Read[InitialCtx](c).LiftClass)
		if err != nil {
			return eval.Fail[Context](StageSelectBetPhi, err)
		}
		return Write(c, BetPhiCtx{Result: bp})
	}}
}

func betPhi(lc LiftClass) (BetPhi, error) {
	switch lc {
	case Hc1:
		return BetPhi{Bet: 0.17, Phi: 1.05}, nil
	case Hc2:
		return BetPhi{Bet: 0.34, Phi: 1.10}, nil
	case Hc3:
		return BetPhi{Bet: 0.51, Phi: 1.15}, nil
	case Hc4:
		return BetPhi{Bet: 0.68, Phi: 1.20}, nil
	}
	return BetPhi{}, errors.InvalidInput("lift_class", fmt.Sprintf("unknown lift class %d", lc))
}

// DynamicCoefficient computes ϕ2 = ϕ2min + β2·vh, rounded to three decimals.
func DynamicCoefficient(prev eval.Stage[Context]) eval.Stage[Context] {
	return &step{name: StageDynamicCoefficient, prev: prev, fn: func(_ context.Context, c Context) eval.Result[Context] {
		bp := Read[BetPhiCtx](c).Result
		vh := Read[LiftingSpeedCtx](c).Result
		return Write(c, DynamicCoefficientCtx{Result: round3(bp.Phi + bp.Bet*vh)})
	}}
}

func round3(x float64) float64 { return math.Round(x*1000) / 1000 }

// BearingFilter keeps the bearings that carry the dynamic load and fit over
// the chosen hook's shank.
func BearingFilter(prev eval.Stage[Context]) eval.Stage[Context] {
	return &step{name: StageBearingFilter, prev: prev, fn: func(_ context.Context, c Context) eval.Result[Context] {
		in := Read[InitialCtx](c)
		hook := Read[UserHookCtx](c).Result
		load := Read[DynamicCoefficientCtx](c).Result * in.LoadCapacity * G

		var bearings []Bearing
		for _, b := range in.Bearings {
			if b.StaticLoadCapacity >= load && b.OuterDiameter >= hook.ShankDiameter {
				bearings = append(bearings, b)
			}
		}
		if len(bearings) == 0 {
			return eval.Fail[Context](StageBearingFilter, errors.NoCandidates(StageBearingFilter, "bearings"))
		}
		return Write(c, BearingFilterCtx{Result: bearings})
	}}
}

// UserBearing asks the operator to pick one of the filtered bearings.
func UserBearing(prev eval.Stage[Context], req *BearingRequest, retry resilience.RetryConfig, log *logger.Logger) eval.Stage[Context] {
	retry.OnRetry = retryLogger(log, StageUserBearing)
	return &step{name: StageUserBearing, prev: prev, fn: func(ctx context.Context, c Context) eval.Result[Context] {
		q := ChooseUserBearingQuery{Variants: Read[BearingFilterCtx](c).Result}
		bearing, err := resilience.Retry(ctx, retry, func() (Bearing, error) {
			return req.Fetch(ctx, q)
		})
		if err != nil {
			return eval.Fail[Context](StageUserBearing, err)
		}
		return Write(c, UserBearingCtx{Result: bearing})
	}}
}

// LoadHandDeviceMass adds an alternative lifting device, if any, to the hook
// mass and subtracts it from the payload.
func LoadHandDeviceMass(prev eval.Stage[Context]) eval.Stage[Context] {
	return &step{name: StageLoadHandDeviceMass, prev: prev, fn: func(_ context.Context, c Context) eval.Result[Context] {
		in := Read[InitialCtx](c)
		hook := Read[UserHookCtx](c).Result

		m := LoadHandDeviceMassCtx{TotalMass: hook.Weight, NetWeight: in.LoadCapacity}
		if dev := in.AltLiftDevice; dev != nil {
			m.TotalMass += dev.Weight
			m.NetWeight -= dev.Weight
		}
		return Write(c, m)
	}}
}

func retryLogger(log *logger.Logger, stage string) func(int, error, time.Duration) {
	return func(attempt int, err error, backoff time.Duration) {
		log.Warn("operator did not answer, asking again", logger.MergeWithError(logger.Fields(
			logger.FieldStage, stage,
			"attempt", attempt,
			"backoff_ms", backoff.Milliseconds(),
		), err))
	}
}
