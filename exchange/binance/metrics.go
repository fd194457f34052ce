package binance

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

//
// Outcome labels.
//
const (
	OutcomeOK                 = "ok"
	OutcomeInvalidMethod      = "invalid_method"
	OutcomeInvalidParam       = "invalid_param"
	OutcomeMissingCredentials = "missing_credentials"
	OutcomeTransportError     = "transport_error"
	OutcomeRemoteError        = "remote_error"
)

//
// Metrics collects per-method call counts and latencies.
//
type Metrics struct {
	calls   *prometheus.CounterVec
	latency *prometheus.HistogramVec
}

//
// NewMetrics creates the collectors and registers them with reg. A nil reg leaves them
// unregistered, which is handy in tests.
//
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	o := &Metrics{
		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "binanceapi_calls_total",
				Help: "Total number of API calls by method, kind and outcome",
			},
			[]string{"method", "kind", "outcome"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "binanceapi_call_duration_seconds",
				Help:    "Duration of API calls that reached the transport",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"method"},
		),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{o.calls, o.latency} {
			if err := reg.Register(c); err != nil {
				return nil, errors.Wrap(err, "failed to register metrics")
			}
		}
	}

	return o, nil
}

func (o *Metrics) observe(method string, kind Kind, err error, took time.Duration, dispatched bool) {
	if o == nil {
		return
	}

	o.calls.WithLabelValues(method, kind.String(), Outcome(err)).Inc()

	if dispatched {
		o.latency.WithLabelValues(method).Observe(took.Seconds())
	}
}

//
// Outcome classifies an error returned by the client into one of the outcome labels.
//
func Outcome(err error) string {
	var remoteErr *RemoteAPIError
	var transportErr *TransportError

	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, ErrInvalidMethod):
		return OutcomeInvalidMethod
	case errors.Is(err, ErrInvalidParam):
		return OutcomeInvalidParam
	case errors.Is(err, ErrMissingCredentials):
		return OutcomeMissingCredentials
	case errors.As(err, &remoteErr):
		return OutcomeRemoteError
	case errors.As(err, &transportErr):
		return OutcomeTransportError
	default:
		return OutcomeTransportError
	}
}
