package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"net"
	"net/http"
	"sync"
)

var (
	ErrorsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_errors_total",
			Help: "Total number of occurred errors.",
		},
		[]string{"type"},
	)
	PollsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_polls_total",
			Help: "Total number of homework status polls by result.",
		},
		[]string{"result"},
	)
	PollDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bot_poll_duration_seconds",
			Help:    "Duration of each poll cycle in seconds.",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30},
		},
	)
	NotificationsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_notifications_total",
			Help: "Total number of telegram notifications by delivery result.",
		},
		[]string{"result"},
	)
	CursorTimestamp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bot_cursor_timestamp",
			Help: "Unix timestamp used as from_date for the next poll.",
		},
	)
)

var registerOnce sync.Once

func register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(ErrorsCounter)
		prometheus.MustRegister(PollsCounter)
		prometheus.MustRegister(PollDuration)
		prometheus.MustRegister(NotificationsCounter)
		prometheus.MustRegister(CursorTimestamp)
	})
}

// StartMetricsServer serves /metrics in the background. A listen error is
// returned to the caller; the rest of the bot keeps working without metrics.
func StartMetricsServer(address string) (net.Addr, error) {

	if address == "" {
		log.Info("metrics server disabled")
		return nil, nil
	}

	register()

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.Serve(listener, mux); err != nil {
			log.Errorf("metrics server stopped: %v", err)
		}
	}()

	log.Infof("metrics server listening on %s", listener.Addr())
	return listener.Addr(), nil
}
