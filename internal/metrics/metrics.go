// Package metrics объявляет счётчики Prometheus сервиса. Метрики отдаются на /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Exports считает успешные выгрузки слов по формату.
	Exports = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wordbook_exports_total",
		Help: "Number of completed word exports.",
	}, []string{"format"})

	// CapabilityDenials считает отказы по тарифному плану.
	CapabilityDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wordbook_capability_denials_total",
		Help: "Number of actions denied by the user's plan.",
	}, []string{"action"})

	// LLMRequests считает обращения к провайдеру генерации текста.
	LLMRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wordbook_llm_requests_total",
		Help: "Number of LLM completion requests.",
	}, []string{"provider", "status"})

	// MeaningCache считает попадания и промахи кэша значений.
	MeaningCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wordbook_meaning_cache_total",
		Help: "Meaning cache lookups.",
	}, []string{"result"})

	// HTTPRequests считает HTTP-запросы по шаблону маршрута.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wordbook_http_requests_total",
		Help: "Number of HTTP requests.",
	}, []string{"method", "route", "status"})

	// HTTPDuration — длительность обработки HTTP-запросов.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wordbook_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)
