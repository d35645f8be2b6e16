package metrics

import (
	"sync/atomic"

	"github.com/quillcache/llmproxy/internal/pricing"
)

// Registry is a process-wide set of lock-free counters for the cache
// pipeline. Every field is mutated only through atomic add; readers take
// a Snapshot, which may tear across counters but never within one.
type Registry struct {
	exactHits    atomic.Uint64
	semanticHits atomic.Uint64
	misses       atomic.Uint64

	tokensUsed                   atomic.Uint64
	tokensSaved                  atomic.Uint64
	totalTokensWithoutCache      atomic.Uint64
	costSpentMicros              atomic.Uint64 // USD * 1e6, to keep the add atomic
	costSavedMicros              atomic.Uint64
	totalCostWithoutCacheMicros  atomic.Uint64

	fallbackPricingUsed atomic.Bool
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// RecordExactHit accounts for an EXACT_HIT. Per the documented token
// accounting limitation, exact hits attribute zero tokens_saved.
func (r *Registry) RecordExactHit() {
	r.exactHits.Add(1)
}

// RecordSemanticHit accounts for a SEMANTIC_HIT, attributing the cached
// response's token usage and cost to the "saved" counters.
func (r *Registry) RecordSemanticHit(totalTokens int, cost float64) {
	r.semanticHits.Add(1)
	r.tokensSaved.Add(uint64(totalTokens))
	r.totalTokensWithoutCache.Add(uint64(totalTokens))
	r.costSavedMicros.Add(toMicros(cost))
	r.totalCostWithoutCacheMicros.Add(toMicros(cost))
}

// RecordMiss accounts for a MISS, attributing the upstream response's
// token usage and cost to the "spent" counters.
func (r *Registry) RecordMiss(totalTokens int, cost float64) {
	r.misses.Add(1)
	r.tokensUsed.Add(uint64(totalTokens))
	r.totalTokensWithoutCache.Add(uint64(totalTokens))
	r.costSpentMicros.Add(toMicros(cost))
	r.totalCostWithoutCacheMicros.Add(toMicros(cost))
}

// RecordFallbackPricing flags that an unknown model's rate was resolved
// via the flagship fallback. The flag is sticky for the process lifetime.
func (r *Registry) RecordFallbackPricing() {
	r.fallbackPricingUsed.Store(true)
}

func toMicros(usd float64) uint64 {
	return uint64(usd * 1_000_000)
}

func fromMicros(micros uint64) float64 {
	return float64(micros) / 1_000_000
}

// Snapshot is the read-time projection of the registry plus derived
// ratios and the pricing table.
type Snapshot struct {
	ExactHits                  uint64             `json:"exact_hits"`
	SemanticHits               uint64             `json:"semantic_hits"`
	Misses                     uint64             `json:"misses"`
	TotalRequests              uint64             `json:"total_requests"`
	HitRatePercent             float64            `json:"hit_rate_percent"`
	TokensUsed                 uint64             `json:"tokens_used"`
	TokensSaved                uint64             `json:"tokens_saved"`
	TotalTokensWithoutCache    uint64             `json:"total_tokens_without_cache"`
	CostSpentUSD               float64            `json:"cost_spent_usd"`
	CostSavedUSD               float64            `json:"cost_saved_usd"`
	TotalCostWithoutCacheUSD   float64            `json:"total_cost_without_cache_usd"`
	SavingsPercent             float64            `json:"savings_percent"`
	Pricing                    map[string]pricing.Rate `json:"pricing"`
	Note                       string             `json:"note,omitempty"`
}

// Snapshot projects the current counters into a MetricsSnapshot. Reads of
// individual atomics are consistent; the composite view may tear under
// concurrent writers, which is acceptable because the derived ratios are
// advisory only.
func (r *Registry) Snapshot() Snapshot {
	exactHits := r.exactHits.Load()
	semanticHits := r.semanticHits.Load()
	misses := r.misses.Load()
	total := exactHits + semanticHits + misses

	costSpent := fromMicros(r.costSpentMicros.Load())
	costSaved := fromMicros(r.costSavedMicros.Load())
	totalCostWithoutCache := fromMicros(r.totalCostWithoutCacheMicros.Load())

	snap := Snapshot{
		ExactHits:                exactHits,
		SemanticHits:             semanticHits,
		Misses:                   misses,
		TotalRequests:            total,
		TokensUsed:               r.tokensUsed.Load(),
		TokensSaved:              r.tokensSaved.Load(),
		TotalTokensWithoutCache:  r.totalTokensWithoutCache.Load(),
		CostSpentUSD:             round5(costSpent),
		CostSavedUSD:             round5(costSaved),
		TotalCostWithoutCacheUSD: round5(totalCostWithoutCache),
		Pricing:                  pricing.Table,
	}

	if total > 0 {
		snap.HitRatePercent = round5(float64(exactHits+semanticHits) / float64(total) * 100)
	}
	if totalCostWithoutCache > 0 {
		snap.SavingsPercent = round5(costSaved / totalCostWithoutCache * 100)
	}
	if r.fallbackPricingUsed.Load() {
		snap.Note = "fallback pricing (flagship rate) was used for at least one observed model"
	}

	return snap
}

func round5(v float64) float64 {
	const factor = 1e5
	return float64(int64(v*factor+0.5)) / factor
}
