package mpi

// MetricHook captures runtime telemetry events from the peer transport,
// match engine, and collective algorithms.
type MetricHook interface {
	FrameSent(bytes int)
	FrameReceived(bytes int)
	Matched()
	Truncation()
	CollectiveStarted(name string)
	CollectiveCompleted(name string, err error)
}

// noopMetrics discards every event; it is the default when no MetricHook
// is configured.
type noopMetrics struct{}

func (noopMetrics) FrameSent(int)                     {}
func (noopMetrics) FrameReceived(int)                 {}
func (noopMetrics) Matched()                          {}
func (noopMetrics) Truncation()                       {}
func (noopMetrics) CollectiveStarted(string)          {}
func (noopMetrics) CollectiveCompleted(string, error) {}

// TraceAttribute is a key/value pair attached to a traced span.
type TraceAttribute struct {
	Key   string
	Value any
}

// Tracer starts spans wrapping collective algorithm steps.
type Tracer interface {
	StartSpan(name string, attrs ...TraceAttribute) Span
}

// Span records the lifecycle of one traced operation.
type Span interface {
	End(err error)
	AddEvent(name string, attrs ...TraceAttribute)
}

type noopTracer struct{}

func (noopTracer) StartSpan(string, ...TraceAttribute) Span { return noopSpan{} }

type noopSpan struct{}

func (noopSpan) End(error)                       {}
func (noopSpan) AddEvent(string, ...TraceAttribute) {}
