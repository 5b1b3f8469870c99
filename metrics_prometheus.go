package mpi

import "github.com/prometheus/client_golang/prometheus"

// PrometheusMetricsOptions configures NewPrometheusMetrics.
type PrometheusMetricsOptions struct {
	Registerer prometheus.Registerer
	Namespace  string
	Subsystem  string
}

var _ MetricHook = (*PrometheusMetrics)(nil)

// PrometheusMetrics implements MetricHook using Prometheus counters and a
// histogram for frame sizes.
type PrometheusMetrics struct {
	framesSent       prometheus.Counter
	framesReceived   prometheus.Counter
	bytesSent        prometheus.Histogram
	bytesReceived    prometheus.Histogram
	matches          prometheus.Counter
	truncations      prometheus.Counter
	collectiveCalls  *prometheus.CounterVec
	collectiveErrors *prometheus.CounterVec
}

// NewPrometheusMetrics constructs a MetricHook backed by Prometheus
// collectors, registering them with opts.Registerer (or the default
// registerer when unset).
func NewPrometheusMetrics(opts PrometheusMetricsOptions) (*PrometheusMetrics, error) {
	reg := opts.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	p := &PrometheusMetrics{
		framesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: opts.Namespace, Subsystem: opts.Subsystem,
			Name: "mpi_frames_sent_total", Help: "Number of wire frames sent",
		}),
		framesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: opts.Namespace, Subsystem: opts.Subsystem,
			Name: "mpi_frames_received_total", Help: "Number of wire frames received",
		}),
		bytesSent: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: opts.Namespace, Subsystem: opts.Subsystem,
			Name: "mpi_frame_bytes_sent", Help: "Payload size of sent frames",
			Buckets: prometheus.ExponentialBuckets(8, 4, 10),
		}),
		bytesReceived: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: opts.Namespace, Subsystem: opts.Subsystem,
			Name: "mpi_frame_bytes_received", Help: "Payload size of received frames",
			Buckets: prometheus.ExponentialBuckets(8, 4, 10),
		}),
		matches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: opts.Namespace, Subsystem: opts.Subsystem,
			Name: "mpi_matches_total", Help: "Number of receives matched against an arriving or posted frame",
		}),
		truncations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: opts.Namespace, Subsystem: opts.Subsystem,
			Name: "mpi_truncations_total", Help: "Number of receives that failed due to truncation",
		}),
		collectiveCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: opts.Namespace, Subsystem: opts.Subsystem,
			Name: "mpi_collective_calls_total", Help: "Number of collective calls started",
		}, []string{"collective"}),
		collectiveErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: opts.Namespace, Subsystem: opts.Subsystem,
			Name: "mpi_collective_errors_total", Help: "Number of collective calls that returned an error",
		}, []string{"collective"}),
	}

	collectors := []prometheus.Collector{
		p.framesSent, p.framesReceived, p.bytesSent, p.bytesReceived,
		p.matches, p.truncations, p.collectiveCalls, p.collectiveErrors,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return nil, err
			}
		}
	}
	return p, nil
}

func (p *PrometheusMetrics) FrameSent(bytes int) {
	p.framesSent.Inc()
	p.bytesSent.Observe(float64(bytes))
}

func (p *PrometheusMetrics) FrameReceived(bytes int) {
	p.framesReceived.Inc()
	p.bytesReceived.Observe(float64(bytes))
}

func (p *PrometheusMetrics) Matched() { p.matches.Inc() }

func (p *PrometheusMetrics) Truncation() { p.truncations.Inc() }

func (p *PrometheusMetrics) CollectiveStarted(name string) {
	p.collectiveCalls.WithLabelValues(name).Inc()
}

func (p *PrometheusMetrics) CollectiveCompleted(name string, err error) {
	if err != nil {
		p.collectiveErrors.WithLabelValues(name).Inc()
	}
}
