package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	enrollmentsCreated  prometheus.Counter
	certificatesIssued  prometheus.Counter
	certificateRetries  prometheus.Counter
	verificationLookups *prometheus.CounterVec
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	enrollmentsCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "enrollments_created_total",
		Help: "Total number of enrollments created",
	})

	certificatesIssued := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "certificates_issued_total",
		Help: "Total number of certificates issued",
	})

	certificateRetries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "certificate_issue_retries_total",
		Help: "Total number of identifier collisions retried during issuance",
	})

	verificationLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "certificate_verifications_total",
		Help: "Total number of certificate verification lookups",
	}, []string{"result"})

	registry.MustRegister(requestDuration, requestTotal, enrollmentsCreated,
		certificatesIssued, certificateRetries, verificationLookups)

	return &MetricsService{
		registry:            registry,
		handler:             promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:     requestDuration,
		requestTotal:        requestTotal,
		enrollmentsCreated:  enrollmentsCreated,
		certificatesIssued:  certificatesIssued,
		certificateRetries:  certificateRetries,
		verificationLookups: verificationLookups,
	}
}

// Handler exposes the Prometheus scrape endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveHTTPRequest records latency and count for one request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := prometheus.Labels{
		"method": method,
		"path":   path,
		"status": strconv.Itoa(status),
	}
	s.requestDuration.With(labels).Observe(duration.Seconds())
	s.requestTotal.With(labels).Inc()
}

// RecordEnrollmentCreated increments the enrollment counter.
func (s *MetricsService) RecordEnrollmentCreated() {
	if s != nil {
		s.enrollmentsCreated.Inc()
	}
}

// RecordCertificateIssued increments the issued-certificate counter.
func (s *MetricsService) RecordCertificateIssued() {
	if s != nil {
		s.certificatesIssued.Inc()
	}
}

// RecordCertificateRetry increments the collision-retry counter.
func (s *MetricsService) RecordCertificateRetry() {
	if s != nil {
		s.certificateRetries.Inc()
	}
}

// RecordVerificationLookup counts a verification lookup by outcome.
func (s *MetricsService) RecordVerificationLookup(found bool) {
	if s == nil {
		return
	}
	result := "found"
	if !found {
		result = "not_found"
	}
	s.verificationLookups.WithLabelValues(result).Inc()
}
