// Package observability wires OpenTelemetry tracing and metrics for the bus
// and the evaluation pipeline.
//
// Library code records through the global providers, which are no-ops until a
// binary calls Setup:
//
//	shutdown, err := observability.Setup(ctx, cfg.Observability, cfg.Name, cfg.Version, cfg.Environment)
//	defer shutdown(context.Background())
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanStageEval)
//	defer span.End()
//	observability.Default().RecordStage(ctx, "HookFilter", observability.OutcomeOK, d)
package observability
