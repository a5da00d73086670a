package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/oversea-labs/oversea"
)

var (
	jobsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oversea_jobs_created_total",
		Help: "Number of extraction jobs created.",
	})

	jobsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "oversea_jobs_finished_total",
		Help: "Number of jobs finished, by final status.",
	}, []string{"status"})

	leavesTranslated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "oversea_leaves_total",
		Help: "Number of text leaves processed, by outcome.",
	}, []string{"status"})

	jobDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "oversea_job_duration_seconds",
		Help:    "End-to-end job duration.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	})
)

func recordReport(report oversea.TranslationReport) {
	leavesTranslated.WithLabelValues(string(oversea.StatusTranslated)).Add(float64(report.TranslatedCount))
	leavesTranslated.WithLabelValues(string(oversea.StatusNotNeeded)).Add(float64(report.NotNeededCount))
	leavesTranslated.WithLabelValues(string(oversea.StatusMissed)).Add(float64(report.MissedCount))
}
