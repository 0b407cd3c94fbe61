// Package observability sets up OpenTelemetry tracing for docket.
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("docket"), log)
//	defer tp.Shutdown(ctx)
//
// TracingComponent wraps the same setup in the component lifecycle, and
// Tracer hands the connector its tracer.
package observability
