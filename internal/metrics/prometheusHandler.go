package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "http_requests_total",
	Help: "Total number of requests labelled by path and status",
}, []string{"path", "status"})

var containerInvocations = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "container_invocations_total",
	Help: "Public invocations forwarded to a container, labelled by outcome",
}, []string{"status"})

var livenessChecks = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "liveness_checks_total",
	Help: "Liveness checks issued by the pingers",
}, []string{"poller", "endpoint", "result"})

var storedDocuments = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "stored_documents",
	Help: "Number of documents in the knowledge store",
})

var otpIssued = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "otp_codes_total",
	Help: "One time codes issued and verified",
}, []string{"action", "result"})

var countJobsInQueue = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "count_jobs_in_queue",
	Help: "Number of jobs in queue",
})

var dispatcherSignalCount = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "dispatcher_signal_count",
	Help: "How often the dispatcher has signaled to start worker",
})

var activeWorkerCount = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "active_worker_count",
	Help: "Number of active workers",
})

var jobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "process_job_duration_seconds",
	Help:    "Total time spent processing an ingest job.",
	Buckets: []float64{.1, .5, 1, 2, 5, 10, 30},
}, []string{"status"})

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dependency_latency_seconds",
	Help:    "Latency of external service calls.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10},
}, []string{"service"})

type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

func NewHttpStatusRecorder(w http.ResponseWriter) *HttpStatusRecorder {
	return &HttpStatusRecorder{ResponseWriter: w, Status: http.StatusOK}
}

func (r *HttpStatusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

func IncrementJobsInQueue() {
	countJobsInQueue.Inc()
}

func DecrementJobsInQueue() {
	countJobsInQueue.Dec()
}

func StartDispatcherSignalCount() {
	dispatcherSignalCount.Inc()
}

func IncrementActiveWorkerCount() {
	activeWorkerCount.Inc()
}
func DecrementActiveWorkerCount() {
	activeWorkerCount.Dec()
}

func SetStoredDocuments(n int) {
	storedDocuments.Set(float64(n))
}

func CountInvocation(status string) {
	containerInvocations.WithLabelValues(status).Inc()
}

func CountLivenessCheck(poller, endpoint, result string) {
	livenessChecks.WithLabelValues(poller, endpoint, result).Inc()
}

func CountOTP(action, result string) {
	otpIssued.WithLabelValues(action, result).Inc()
}

func CaptureExecutionMetrics(label string, timeElapsed time.Duration) {
	dependencyLatency.WithLabelValues(label).Observe(timeElapsed.Seconds())
}

func CaptureJobMetrics(label string, timeElapsed time.Duration) {
	jobDuration.WithLabelValues(label).Observe(timeElapsed.Seconds())
}
