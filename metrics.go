package oled96

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	writes  *prometheus.CounterVec
	bytes   prometheus.Counter
	skipped prometheus.Counter
	errors  prometheus.Counter
}

// newMetrics creates the driver metrics and registers them with reg. A nil
// reg leaves them unregistered.
func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	return &metrics{
		writes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "oled96_bus_writes_total",
			Help: "The total number of bus transmissions",
		}, []string{"kind"}),
		bytes: f.NewCounter(prometheus.CounterOpts{
			Name: "oled96_bus_bytes_total",
			Help: "The total number of bytes sent on the bus, introducers included",
		}),
		skipped: f.NewCounter(prometheus.CounterOpts{
			Name: "oled96_pixel_writes_skipped_total",
			Help: "The total number of pixel writes that matched display memory and were not sent",
		}),
		errors: f.NewCounter(prometheus.CounterOpts{
			Name: "oled96_bus_errors_total",
			Help: "The total number of failed bus transmissions",
		}),
	}
}
