// Package eval defines the tri-state Result and the stage contract of the
// evaluation pipeline.
//
// A Result is Ok, Err or None. None means "no data yet" (a bounded receive
// came back empty) and is never turned into an error by a stage.
//
// Stages compose by wrapping their predecessor:
//
//	func (s *HookFilter) Eval(ctx context.Context) eval.Result[Context] {
//	    return eval.Then(ctx, "HookFilter", s.prev, func(c Context) eval.Result[Context] {
//	        ...
//	    })
//	}
package eval
