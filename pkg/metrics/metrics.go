package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "prontuario", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "prontuario", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	StoreOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "prontuario", Name: "store_operations_total", Help: "Document store loads/saves by backend and result."},
		[]string{"backend", "op", "result"},
	)
	StoreDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: "prontuario", Name: "store_operation_seconds", Help: "Document store load/save latency.", Buckets: prometheus.DefBuckets},
		[]string{"backend", "op"},
	)
	Mutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "prontuario", Name: "mutations_total", Help: "Persisted record mutations by entity and operation."},
		[]string{"entity", "op"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(StoreOperations)
	reg.MustRegister(StoreDuration)
	reg.MustRegister(Mutations)
}
