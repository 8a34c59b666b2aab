package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// recommendRequests counts Recommend calls by outcome.
	recommendRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "courserec_recommend_requests_total",
		Help: "Total number of recommendation requests by outcome",
	}, []string{"status"})

	recommendDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "courserec_recommend_duration_seconds",
		Help:    "Recommendation latency in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// catalogCourses is the number of courses in the served index.
	catalogCourses = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "courserec_catalog_courses",
		Help: "Number of courses in the served index",
	})
)
