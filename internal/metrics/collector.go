// Package metrics provides the process-wide lock-free cache-accounting
// registry (registry.go) and an ambient Prometheus mirror of it
// (collector.go) for operators who scrape rather than poll /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Collector mirrors the cache pipeline's outcomes onto Prometheus
// collectors. It never replaces Registry as the source of truth for
// /metrics and /admin/stats — it is a secondary sink so the same
// process can be scraped by Prometheus and polled by the dashboard.
type Collector struct {
	cacheOutcomesTotal *prometheus.CounterVec
	llmTokensTotal     *prometheus.CounterVec
	llmCostTotal       *prometheus.CounterVec

	logger *zap.Logger
}

// NewCollector creates and registers the cache proxy's Prometheus
// collectors under namespace.
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.cacheOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_outcomes_total",
			Help:      "Total number of completed requests by outcome",
		},
		[]string{"outcome"}, // exact_hit, semantic_hit, miss
	)

	c.llmTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_tokens_total",
			Help:      "Total number of tokens observed",
		},
		[]string{"model", "accounting"}, // accounting: used, saved
	)

	c.llmCostTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_cost_usd_total",
			Help:      "Total LLM cost in USD",
		},
		[]string{"model", "accounting"}, // accounting: spent, saved
	)

	logger.Info("metrics collector initialized", zap.String("namespace", namespace))

	return c
}

// RecordOutcome mirrors one pipeline outcome (exact_hit, semantic_hit, miss).
func (c *Collector) RecordOutcome(outcome string) {
	c.cacheOutcomesTotal.WithLabelValues(outcome).Inc()
}

// RecordTokensUsed mirrors an upstream MISS's token usage.
func (c *Collector) RecordTokensUsed(model string, tokens int, cost float64) {
	c.llmTokensTotal.WithLabelValues(model, "used").Add(float64(tokens))
	c.llmCostTotal.WithLabelValues(model, "spent").Add(cost)
}

// RecordTokensSaved mirrors a SEMANTIC_HIT's avoided token usage.
func (c *Collector) RecordTokensSaved(model string, tokens int, cost float64) {
	c.llmTokensTotal.WithLabelValues(model, "saved").Add(float64(tokens))
	c.llmCostTotal.WithLabelValues(model, "saved").Add(cost)
}
