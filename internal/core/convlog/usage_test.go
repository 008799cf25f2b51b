package convlog

import (
	"math"
	"testing"
)

func TestCost_KnownModel(t *testing.T) {
	table := NewPriceTable(nil)
	u := Usage{InputTokens: 1000, OutputTokens: 200, CacheReadTokens: 500}

	got := table.Cost("claude-sonnet-4-5-20250929", u)
	want := 1000*3.0/1e6 + 200*15.0/1e6 + 500*0.3/1e6
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("Cost() = %v, want %v", got, want)
	}
}

func TestCost_CacheReadDiscount(t *testing.T) {
	mp := NewPriceTable(nil).Lookup("claude-sonnet-4-5")
	if math.Abs(mp.CacheReadPerMTok-mp.InputPerMTok*0.10) > 1e-12 {
		t.Errorf("cache read rate = %v, want 10%% of input rate %v", mp.CacheReadPerMTok, mp.InputPerMTok)
	}
}

func TestCost_LinearInCacheReads(t *testing.T) {
	table := NewPriceTable(nil)
	base := Usage{InputTokens: 100, OutputTokens: 10, CacheReadTokens: 300}
	doubled := base
	doubled.CacheReadTokens *= 2

	fixed := Usage{InputTokens: 100, OutputTokens: 10}
	baseComponent := table.Cost("claude-sonnet-4-5", base) - table.Cost("claude-sonnet-4-5", fixed)
	doubledComponent := table.Cost("claude-sonnet-4-5", doubled) - table.Cost("claude-sonnet-4-5", fixed)

	if math.Abs(doubledComponent-2*baseComponent) > 1e-12 {
		t.Errorf("cache read cost not linear: %v vs 2x%v", doubledComponent, baseComponent)
	}
}

func TestCost_ZeroUsageIsFree(t *testing.T) {
	if got := NewPriceTable(nil).Cost("claude-sonnet-4-5", Usage{}); got != 0 {
		t.Errorf("Cost() = %v, want 0", got)
	}
}

func TestLookup_UnknownModelFallsBack(t *testing.T) {
	table := NewPriceTable(nil)
	got := table.Lookup("totally-made-up-model")
	want := table.Lookup(defaultPricingModel)
	if got != want {
		t.Errorf("unknown model pricing = %+v, want default %+v", got, want)
	}
}

func TestLookup_Overrides(t *testing.T) {
	table := NewPriceTable(map[string]ModelPricing{
		"claude-sonnet-4-5": {InputPerMTok: 1, OutputPerMTok: 2, CacheWritePerMTok: 1.25, CacheReadPerMTok: 0.1},
	})
	mp := table.Lookup("claude-sonnet-4-5-20250929")
	if mp.InputPerMTok != 1 {
		t.Errorf("override not applied, InputPerMTok = %v", mp.InputPerMTok)
	}
}

func TestNormalizeModelName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"claude-sonnet-4-5-20250929", "claude-sonnet-4-5"},
		{"claude-sonnet-4-5", "claude-sonnet-4-5"},
		{"claude-3-haiku-20240307", "claude-3-haiku"},
		{"gpt-nothing", "gpt-nothing"},
	}
	for _, tt := range tests {
		if got := normalizeModelName(tt.in); got != tt.want {
			t.Errorf("normalizeModelName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
