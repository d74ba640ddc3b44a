package observability

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
)

const meterName = "translator"

type instrumentSet struct {
	translations       otelmetric.Int64Counter
	translationLatency otelmetric.Float64Histogram
	recognitions       otelmetric.Int64Counter
	playbacks          otelmetric.Int64Counter
	activeSessions     otelmetric.Int64UpDownCounter
}

var (
	instrumentsOnce sync.Once
	instruments     *instrumentSet
	instrumentsErr  error
)

// InitInstruments creates the application metric instruments on the global meter provider.
// Instruments created before InitMetrics installs a provider forward to it once it does.
func InitInstruments() error {
	instrumentsOnce.Do(func() {
		meter := otel.Meter(meterName)
		set := &instrumentSet{}
		var err error

		if set.translations, err = meter.Int64Counter("translator.translations",
			otelmetric.WithDescription("Translation requests by provider and outcome")); err != nil {
			instrumentsErr = err
			return
		}
		if set.translationLatency, err = meter.Float64Histogram("translator.translation.duration",
			otelmetric.WithDescription("Translation round trip time"),
			otelmetric.WithUnit("s")); err != nil {
			instrumentsErr = err
			return
		}
		if set.recognitions, err = meter.Int64Counter("translator.recognitions",
			otelmetric.WithDescription("Voice recognition attempts by outcome")); err != nil {
			instrumentsErr = err
			return
		}
		if set.playbacks, err = meter.Int64Counter("translator.playback.transitions",
			otelmetric.WithDescription("Playback state transitions")); err != nil {
			instrumentsErr = err
			return
		}
		if set.activeSessions, err = meter.Int64UpDownCounter("translator.sessions.active",
			otelmetric.WithDescription("Live translation sessions")); err != nil {
			instrumentsErr = err
			return
		}
		instruments = set
	})
	return instrumentsErr
}

func getInstruments() *instrumentSet {
	if err := InitInstruments(); err != nil {
		return nil
	}
	return instruments
}

// RecordTranslation counts one translation request and its latency
func RecordTranslation(ctx context.Context, provider, outcome string, elapsed time.Duration) {
	set := getInstruments()
	if set == nil {
		return
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("outcome", outcome),
	)
	set.translations.Add(ctx, 1, attrs)
	set.translationLatency.Record(ctx, elapsed.Seconds(), attrs)
}

// RecordRecognition counts one voice recognition attempt
func RecordRecognition(ctx context.Context, outcome string) {
	if set := getInstruments(); set != nil {
		set.recognitions.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("outcome", outcome)))
	}
}

// RecordPlaybackTransition counts a playback state change
func RecordPlaybackTransition(ctx context.Context, from, to string) {
	if set := getInstruments(); set != nil {
		set.playbacks.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("from", from),
			attribute.String("to", to),
		))
	}
}

// AddActiveSessions adjusts the live session gauge
func AddActiveSessions(ctx context.Context, delta int64) {
	if set := getInstruments(); set != nil {
		set.activeSessions.Add(ctx, delta)
	}
}
