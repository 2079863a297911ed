package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	EntityStudent = "student"
	EntityClass   = "class"
)

var (
	BotUpdates = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "schoolrating", Name: "updates_total", Help: "Processed telegram updates",
	})
	HandlerErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "schoolrating", Name: "handler_errors_total", Help: "Handler errors",
	})
	ChatQueueWaits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "schoolrating", Name: "chat_queue_waits_total",
		Help: "Commands that waited for a previous command in the same chat",
	})
	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "schoolrating", Name: "db_ping_seconds", Help: "DB ping latency",
		Buckets: prometheus.DefBuckets,
	})
	Recomputes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "schoolrating", Name: "recomputes_total", Help: "Rating recomputations",
	}, []string{"entity"})
	RecomputeDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "schoolrating", Name: "recompute_seconds", Help: "Rating recomputation latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"entity"})
	// RecomputeErrors — операции рейтинга, откатившиеся из-за сбоя хранилища;
	// op — имя операции сервиса, например record_participation.
	RecomputeErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "schoolrating", Name: "recompute_errors_total", Help: "Rating operations rolled back on storage failure",
	}, []string{"op"})
)

func init() {
	prometheus.MustRegister(BotUpdates, HandlerErrors, ChatQueueWaits, DBPing, Recomputes, RecomputeDuration, RecomputeErrors)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }

func ObserveRecompute(entity string, d time.Duration) {
	Recomputes.WithLabelValues(entity).Inc()
	RecomputeDuration.WithLabelValues(entity).Observe(d.Seconds())
}
