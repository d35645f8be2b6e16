// Package pricing holds the static per-model dollar rate table and the
// cost-calculation formula used by the metrics registry.
package pricing

// Rate holds per-million-token prices in USD.
type Rate struct {
	InputPer1M  float64
	OutputPer1M float64
}

// flagshipModel is the fallback rate used for any model absent from the
// table below.
const flagshipModel = "llama-3.3-70b-versatile"

// Table maps model names to their USD-per-million-token rates.
var Table = map[string]Rate{
	flagshipModel: {InputPer1M: 0.59, OutputPer1M: 0.79},
	"llama-3.1-8b-instant":    {InputPer1M: 0.05, OutputPer1M: 0.08},
	"mixtral-8x7b-32768":      {InputPer1M: 0.24, OutputPer1M: 0.24},
	"gemma2-9b-it":            {InputPer1M: 0.20, OutputPer1M: 0.20},
	"deepseek-r1-distill-llama-70b": {InputPer1M: 0.75, OutputPer1M: 0.99},
}

// RateFor returns the rate for model, falling back to the flagship rate
// for unknown models. fellBack reports whether the fallback was used, so
// the metrics snapshot can surface a note.
func RateFor(model string) (rate Rate, fellBack bool) {
	if r, ok := Table[model]; ok {
		return r, false
	}
	return Table[flagshipModel], true
}

// Calculate returns the USD cost of a request given prompt/completion
// token counts and the resolved rate.
func Calculate(rate Rate, promptTokens, completionTokens int) float64 {
	return (float64(promptTokens)*rate.InputPer1M + float64(completionTokens)*rate.OutputPer1M) / 1_000_000
}
