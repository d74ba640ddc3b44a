package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "translator"

var globalTracer trace.Tracer

// InitGlobalTracer initializes the global tracer for the application.
func InitGlobalTracer() {
	globalTracer = otel.Tracer(tracerName)
}

// GetGlobalTracer returns the global tracer instance for the application.
func GetGlobalTracer() trace.Tracer {
	if globalTracer == nil {
		// Fallback to default tracer if not initialized
		globalTracer = otel.Tracer(tracerName)
	}
	return globalTracer
}

// TraceFunction starts a new span with a descriptive name for the given service and function.
func TraceFunction(ctx context.Context, serviceName, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := GetGlobalTracer()
	spanName := fmt.Sprintf("%s.%s", serviceName, functionName)
	return tracer.Start(ctx, spanName, trace.WithAttributes(attributes...))
}

// TraceFunctionWithErrorHandling starts a new span and automatically adds error attributes if the function panics or returns an error.
func TraceFunctionWithErrorHandling(ctx context.Context, serviceName, functionName string, fn func() error, attributes ...attribute.KeyValue) error {
	_, span := TraceFunction(ctx, serviceName, functionName, attributes...)
	defer func() {
		if err := recover(); err != nil {
			span.SetAttributes(
				attribute.Bool("error", true),
				attribute.String("error.type", "panic"),
				attribute.String("error.message", fmt.Sprintf("%v", err)),
			)
			span.End()
			panic(err) // re-panic
		}
	}()

	err := fn()
	if err != nil {
		span.SetAttributes(
			attribute.Bool("error", true),
			attribute.String("error.message", err.Error()),
		)
	}
	span.End()
	return err
}

// TraceTranslationFunction starts a new span for a translation service function.
func TraceTranslationFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "translation", functionName, attributes...)
}

// TraceSessionFunction starts a new span for a session controller function.
func TraceSessionFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "session", functionName, attributes...)
}

// TraceSpeechFunction starts a new span for a speech engine function.
func TraceSpeechFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "speech", functionName, attributes...)
}

// TraceHandlerFunction starts a new span for a handler function.
func TraceHandlerFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "handler", functionName, attributes...)
}

// AttributeSessionID returns a tracing attribute for a session ID.
func AttributeSessionID(id string) attribute.KeyValue {
	return attribute.String("session.id", id)
}

// AttributeSourceLanguage returns a tracing attribute for the source language.
func AttributeSourceLanguage(lang string) attribute.KeyValue {
	return attribute.String("language.source", lang)
}

// AttributeTargetLanguage returns a tracing attribute for the target language.
func AttributeTargetLanguage(lang string) attribute.KeyValue {
	return attribute.String("language.target", lang)
}

// AttributeLanguage returns a tracing attribute for a language.
func AttributeLanguage(lang string) attribute.KeyValue {
	return attribute.String("language", lang)
}

// AttributeProvider returns a tracing attribute for a translation provider.
func AttributeProvider(provider string) attribute.KeyValue {
	return attribute.String("translation.provider", provider)
}

// AttributeTextLength returns a tracing attribute for the length of a text in runes.
func AttributeTextLength(n int) attribute.KeyValue {
	return attribute.Int("text.length", n)
}

// AttributeNumResults returns a tracing attribute for the number of requested alternatives.
func AttributeNumResults(n int) attribute.KeyValue {
	return attribute.Int("translation.num_results", n)
}

// AttributeGeneration returns a tracing attribute for a request generation.
func AttributeGeneration(gen uint64) attribute.KeyValue {
	return attribute.Int64("session.generation", int64(gen))
}

// AttributePlaybackRate returns a tracing attribute for the speaking rate.
func AttributePlaybackRate(rate float64) attribute.KeyValue {
	return attribute.Float64("playback.rate", rate)
}
