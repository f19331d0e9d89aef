package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	updatesProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "healthbot",
			Name:      "updates_processed_total",
			Help:      "Count of Telegram updates by kind.",
		},
		[]string{"kind"},
	)

	flowsCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "healthbot",
			Name:      "flows_completed_total",
			Help:      "Count of dialogues committed to the user record.",
		},
		[]string{"flow"},
	)

	flowRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "healthbot",
			Name:      "flow_rejections_total",
			Help:      "Count of rejected dialogue inputs by reason.",
		},
		[]string{"reason"},
	)

	collaboratorFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "healthbot",
			Name:      "collaborator_failures_total",
			Help:      "Count of failed weather/food lookups.",
		},
		[]string{"collaborator"},
	)

	saveFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "healthbot",
			Name:      "save_failures_total",
			Help:      "Count of failed user snapshot saves.",
		},
	)

	rollovers = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "healthbot",
			Name:      "rollovers_total",
			Help:      "Count of days archived into user history.",
		},
	)

	users = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "healthbot",
			Name:      "users",
			Help:      "Number of known users.",
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(updatesProcessed, flowsCompleted, flowRejections, collaboratorFailures, saveFailures, rollovers, users)
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	Register()
	return promhttp.Handler()
}

func IncUpdate(kind string) {
	updatesProcessed.WithLabelValues(kind).Inc()
}

func IncFlowCompleted(flow string) {
	flowsCompleted.WithLabelValues(flow).Inc()
}

func IncRejection(reason string) {
	flowRejections.WithLabelValues(reason).Inc()
}

func IncCollaboratorFailure(name string) {
	collaboratorFailures.WithLabelValues(name).Inc()
}

func IncSaveFailure() {
	saveFailures.Inc()
}

func AddRollovers(n int) {
	rollovers.Add(float64(n))
}

func SetUsers(n int) {
	users.Set(float64(n))
}
