// Package crane implements the hook and bearing selection chain for a crane
// hoisting mechanism.
//
// Each step is an eval.Stage[Context] wrapping its predecessor. A stage
// evaluates the predecessor, reads the slots it needs, computes, and writes
// its own slot into a new Context:
//
//	Initial -> HookFilter -> UserHook -> LiftingSpeed -> SelectBetPhi ->
//	DynamicCoefficient -> BearingFilter -> UserBearing -> LoadHandDeviceMass
//
// UserHook and UserBearing pause the chain and ask an operator to choose
// among the filtered candidates over a bus.Request.
package crane
