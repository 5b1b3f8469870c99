package mpi

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// OTelMetricsOptions configures NewOTelMetrics.
type OTelMetricsOptions struct {
	MeterProvider metric.MeterProvider
	Meter         metric.Meter
}

var _ MetricHook = (*OTelMetrics)(nil)

// OTelMetrics implements MetricHook using OpenTelemetry counters.
type OTelMetrics struct {
	framesSent      metric.Int64Counter
	framesReceived  metric.Int64Counter
	matches         metric.Int64Counter
	truncations     metric.Int64Counter
	collectiveCalls metric.Int64Counter
	collectiveErrs  metric.Int64Counter
}

// NewOTelMetrics constructs a MetricHook that emits OpenTelemetry counter
// measurements under the "mpi.*" instrument namespace.
func NewOTelMetrics(opts OTelMetricsOptions) (*OTelMetrics, error) {
	meter := opts.Meter
	if meter == nil {
		provider := opts.MeterProvider
		if provider == nil {
			provider = otel.GetMeterProvider()
		}
		meter = provider.Meter("github.com/tcpmpi/gompi")
	}

	framesSent, err := meter.Int64Counter("mpi.frames.sent")
	if err != nil {
		return nil, err
	}
	framesReceived, err := meter.Int64Counter("mpi.frames.received")
	if err != nil {
		return nil, err
	}
	matches, err := meter.Int64Counter("mpi.matches")
	if err != nil {
		return nil, err
	}
	truncations, err := meter.Int64Counter("mpi.truncations")
	if err != nil {
		return nil, err
	}
	collectiveCalls, err := meter.Int64Counter("mpi.collective.calls")
	if err != nil {
		return nil, err
	}
	collectiveErrs, err := meter.Int64Counter("mpi.collective.errors")
	if err != nil {
		return nil, err
	}

	return &OTelMetrics{
		framesSent:      framesSent,
		framesReceived:  framesReceived,
		matches:         matches,
		truncations:     truncations,
		collectiveCalls: collectiveCalls,
		collectiveErrs:  collectiveErrs,
	}, nil
}

func (o *OTelMetrics) FrameSent(bytes int) {
	o.framesSent.Add(context.Background(), 1, metric.WithAttributes(attribute.Int("bytes", bytes)))
}

func (o *OTelMetrics) FrameReceived(bytes int) {
	o.framesReceived.Add(context.Background(), 1, metric.WithAttributes(attribute.Int("bytes", bytes)))
}

func (o *OTelMetrics) Matched() {
	o.matches.Add(context.Background(), 1)
}

func (o *OTelMetrics) Truncation() {
	o.truncations.Add(context.Background(), 1)
}

func (o *OTelMetrics) CollectiveStarted(name string) {
	o.collectiveCalls.Add(context.Background(), 1, metric.WithAttributes(attribute.String("collective", name)))
}

func (o *OTelMetrics) CollectiveCompleted(name string, err error) {
	if err != nil {
		o.collectiveErrs.Add(context.Background(), 1, metric.WithAttributes(attribute.String("collective", name)))
	}
}

// OTelTracer adapts an OpenTelemetry trace.Tracer to this package's Tracer
// interface, used to wrap collective algorithm steps in spans.
type OTelTracer struct {
	Tracer trace.Tracer
}

var _ Tracer = OTelTracer{}

func (t OTelTracer) StartSpan(name string, attrs ...TraceAttribute) Span {
	_, span := t.Tracer.Start(context.Background(), name, trace.WithAttributes(otelTraceAttrs(attrs)...))
	return otelSpan{span: span}
}

type otelSpan struct {
	span trace.Span
}

func (s otelSpan) End(err error) {
	if err != nil {
		s.span.RecordError(err)
	}
	s.span.End()
}

func (s otelSpan) AddEvent(name string, attrs ...TraceAttribute) {
	s.span.AddEvent(name, trace.WithAttributes(otelTraceAttrs(attrs)...))
}

func otelTraceAttrs(attrs []TraceAttribute) []attribute.KeyValue {
	kvs := make([]attribute.KeyValue, 0, len(attrs))
	for _, a := range attrs {
		switch v := a.Value.(type) {
		case string:
			kvs = append(kvs, attribute.String(a.Key, v))
		case int:
			kvs = append(kvs, attribute.Int(a.Key, v))
		case bool:
			kvs = append(kvs, attribute.Bool(a.Key, v))
		default:
			kvs = append(kvs, attribute.String(a.Key, "unsupported"))
		}
	}
	return kvs
}
