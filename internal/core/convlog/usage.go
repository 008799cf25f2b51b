package convlog

import "strings"

// Usage holds the vendor-reported token counts for one assistant message
// plus the derived USD cost. The counts already cover that message's full
// input context, including the preceding user turn; no aggregation across
// messages happens here.
type Usage struct {
	InputTokens         int
	OutputTokens        int
	CacheCreationTokens int
	CacheReadTokens     int
	CostUSD             float64
}

// ModelPricing holds USD-per-million-token rates for one model. CacheRead
// is charged at 10% of the input rate (a 90% discount versus a fresh input
// token); CacheWrite carries the vendor's 1.25x premium.
type ModelPricing struct {
	InputPerMTok      float64
	OutputPerMTok     float64
	CacheWritePerMTok float64
	CacheReadPerMTok  float64
}

const defaultPricingModel = "claude-sonnet-4-5"

// defaultPricing maps model base names (date suffix stripped) to rates.
var defaultPricing = map[string]ModelPricing{
	"claude-sonnet-4-5": pricing(3.00, 15.00),
	"claude-sonnet-4":   pricing(3.00, 15.00),
	"claude-3-5-sonnet": pricing(3.00, 15.00),
	"claude-3-sonnet":   pricing(3.00, 15.00),
	"claude-opus-4-1":   pricing(15.00, 75.00),
	"claude-opus-4":     pricing(15.00, 75.00),
	"claude-3-opus":     pricing(15.00, 75.00),
	"claude-haiku-4-5":  pricing(1.00, 5.00),
	"claude-3-5-haiku":  pricing(0.80, 4.00),
	"claude-3-haiku":    pricing(0.25, 1.25),
}

func pricing(input, output float64) ModelPricing {
	return ModelPricing{
		InputPerMTok:      input,
		OutputPerMTok:     output,
		CacheWritePerMTok: input * 1.25,
		CacheReadPerMTok:  input * 0.10,
	}
}

// PriceTable resolves model names to pricing, with optional per-model
// overrides layered over the defaults.
type PriceTable struct {
	overrides map[string]ModelPricing
}

// NewPriceTable builds a table with the given overrides (may be nil).
func NewPriceTable(overrides map[string]ModelPricing) *PriceTable {
	return &PriceTable{overrides: overrides}
}

// Lookup returns the pricing for a model, normalizing date-suffixed names
// like claude-sonnet-4-5-20250929. Unknown models fall back to the default
// model's rates so cost stays an estimate rather than silently zero.
func (p *PriceTable) Lookup(model string) ModelPricing {
	name := normalizeModelName(model)
	if p != nil && p.overrides != nil {
		if mp, ok := p.overrides[name]; ok {
			return mp
		}
	}
	if mp, ok := defaultPricing[name]; ok {
		return mp
	}
	return defaultPricing[defaultPricingModel]
}

// Cost computes the USD cost for the given token counts at this model's
// rates. Full precision is retained; rounding is a display concern.
func (p *PriceTable) Cost(model string, u Usage) float64 {
	mp := p.Lookup(model)
	cost := float64(u.InputTokens) * mp.InputPerMTok / 1_000_000
	cost += float64(u.OutputTokens) * mp.OutputPerMTok / 1_000_000
	cost += float64(u.CacheCreationTokens) * mp.CacheWritePerMTok / 1_000_000
	cost += float64(u.CacheReadTokens) * mp.CacheReadPerMTok / 1_000_000
	return cost
}

// normalizeModelName strips a trailing date segment (8+ digits) so that
// versioned model ids match the base-name price table.
func normalizeModelName(model string) string {
	if _, ok := defaultPricing[model]; ok {
		return model
	}
	parts := strings.Split(model, "-")
	if len(parts) >= 2 {
		last := parts[len(parts)-1]
		if len(last) >= 8 && isAllDigits(last) {
			return strings.Join(parts[:len(parts)-1], "-")
		}
	}
	return model
}

func isAllDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}
