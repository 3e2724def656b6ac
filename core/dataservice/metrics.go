package dataservice

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/relabs-tech/utilities/core"
)

// Metrics contains Prometheus metrics for data service operations.
//
// One Metrics instance can be shared by any number of behaviors.
type Metrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
}

// NewMetrics creates the data service metrics and registers them with reg. A nil
// reg registers with the default registerer.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		operationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "dataservice",
				Name:      "operations_total",
				Help:      "Total number of data service operations",
			},
			[]string{"operation", "mode", "result"},
		),
		operationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "dataservice",
				Name:      "operation_duration_seconds",
				Help:      "Duration of data service operations in seconds",
				Buckets: []float64{
					.0001, .001, .005, .01, .025,
					.05, .1, .25, .5, 1, 2.5, 5, 10,
				},
			},
			[]string{"operation", "mode"},
		),
	}
}

func (m *Metrics) observe(op core.Operation, mode core.Mode, duration time.Duration, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	m.operationsTotal.WithLabelValues(string(op), string(mode), result).Inc()
	m.operationDuration.WithLabelValues(string(op), string(mode)).Observe(duration.Seconds())
}
