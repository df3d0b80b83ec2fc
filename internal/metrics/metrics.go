package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	jobRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "challenge_job_runs_total",
			Help: "Total number of scheduled job runs",
		},
		[]string{"job", "result"},
	)
	jobDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "challenge_job_duration_seconds",
			Help:    "Duration of scheduled job runs",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"job"},
	)
	jobItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "challenge_job_items_total",
			Help: "Items handled by scheduled jobs by outcome",
		},
		[]string{"job", "outcome"},
	)
	ruleRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "challenge_rule_rejections_total",
			Help: "Posts rejected by challenge rules",
		},
		[]string{"post_type"},
	)
	pushDeliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "push_deliveries_total",
			Help: "Push notification deliveries by final status",
		},
		[]string{"type", "status"},
	)

	registerOnce sync.Once
)

// Init registers the collectors with the default registry. Safe to call
// more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(jobRunsTotal)
		prometheus.MustRegister(jobDuration)
		prometheus.MustRegister(jobItemsTotal)
		prometheus.MustRegister(ruleRejectionsTotal)
		prometheus.MustRegister(pushDeliveriesTotal)
	})
}

// ObserveJob records one run of job that started at start.
func ObserveJob(job string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	jobRunsTotal.WithLabelValues(job, result).Inc()
	jobDuration.WithLabelValues(job).Observe(time.Since(start).Seconds())
}

func JobItem(job, outcome string) {
	jobItemsTotal.WithLabelValues(job, outcome).Inc()
}

func RuleRejected(postType string) {
	ruleRejectionsTotal.WithLabelValues(postType).Inc()
}

func PushDelivered(notificationType, status string) {
	pushDeliveriesTotal.WithLabelValues(notificationType, status).Inc()
}
