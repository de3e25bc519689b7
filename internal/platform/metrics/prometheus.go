package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MaheshMoholkar/ignite-lms/internal/platform/logger"
)

// Manager holds the custom Prometheus metrics for the LMS API.
type Manager struct {
	Registry           *prometheus.Registry
	RegistrationsTotal prometheus.Counter
	ActivationsTotal   prometheus.Counter
	LoginsTotal        prometheus.Counter
	EnrollmentsTotal   prometheus.Counter
	APIErrorsTotal     *prometheus.CounterVec
	RequestLatency     *prometheus.HistogramVec
}

func NewManager(namespace string) *Manager {
	registry := prometheus.NewRegistry()

	registrationsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of user registrations.",
	})
	activationsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "activations_total",
		Help:      "Total number of successful account activations.",
	})
	loginsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of successful logins.",
	})
	enrollmentsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "enrollments_total",
		Help:      "Total number of course enrollments.",
	})
	apiErrorsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_errors_total",
		Help:      "Total number of API errors by route and status.",
	}, []string{"route", "status"})
	requestLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "request_latency_seconds",
		Help:      "Latency of HTTP requests by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	registry.MustRegister(
		registrationsTotal,
		activationsTotal,
		loginsTotal,
		enrollmentsTotal,
		apiErrorsTotal,
		requestLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Manager{
		Registry:           registry,
		RegistrationsTotal: registrationsTotal,
		ActivationsTotal:   activationsTotal,
		LoginsTotal:        loginsTotal,
		EnrollmentsTotal:   enrollmentsTotal,
		APIErrorsTotal:     apiErrorsTotal,
		RequestLatency:     requestLatency,
	}
}

// StartServer exposes /metrics on its own port. Blocks until the server exits.
func StartServer(port string, log logger.Logger, registry *prometheus.Registry) error {
	if port == "" {
		log.Info("metrics server port not configured, server will not start")
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	log.Infof("metrics server starting on :%s", port)

	server := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}
	return server.ListenAndServe()
}
