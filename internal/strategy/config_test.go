package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwt/signals/internal/contracts"
)

func TestDefaults_AllValid(t *testing.T) {
	for _, cfg := range All() {
		assert.NoError(t, cfg.Validate(), "strategy %s", cfg.Name)
	}
}

func TestDefaults_PriorityOrder(t *testing.T) {
	var families []Family
	for _, cfg := range All() {
		families = append(families, cfg.Family)
	}

	// Rotations run before mean reversion, mean reversion before HFT.
	rank := map[Family]int{FamilyRotation: 0, FamilyMeanReversion: 1, FamilyHFT: 2}
	for i := 1; i < len(families); i++ {
		assert.LessOrEqual(t, rank[families[i-1]], rank[families[i]])
	}
}

func TestDefaults_MonthlyAnchors(t *testing.T) {
	// The NASDAQ 100 rotation and the defensive rotation rebalance on
	// month-end data; the growth and bitcoin rotations track the
	// latest close.
	anchored := map[string]bool{
		NameMomentum:  true,
		NameGrowth:    false,
		NameDefensive: true,
		NameBitcoin:   false,
	}
	for _, cfg := range All() {
		if cfg.Family != FamilyRotation {
			continue
		}
		assert.Equal(t, anchored[cfg.Name], cfg.MonthlyAnchor, "strategy %s", cfg.Name)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty name", func(c *Config) { c.Name = "" }},
		{"bad family", func(c *Config) { c.Family = "scalping" }},
		{"zero allocation", func(c *Config) { c.Allocation = 0 }},
		{"allocation above one", func(c *Config) { c.Allocation = 1.5 }},
		{"zero max positions", func(c *Config) { c.MaxPositions = 0 }},
		{"no universe", func(c *Config) { c.Universe = ""; c.Symbols = nil }},
		{"zero min bars", func(c *Config) { c.MinBars = 0 }},
		{"hold rank below max positions", func(c *Config) { c.HoldRank = c.MaxPositions - 1 }},
		{"index symbol without period", func(c *Config) { c.IndexSymbol = "#NYSEHL"; c.IndexPeriod = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultMomentum()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)

			var cfgErr *contracts.ConfigError
			assert.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestValidate_MeanReversion(t *testing.T) {
	cfg := DefaultMeanRevLong()
	cfg.RSIPeriod = 0
	require.Error(t, cfg.Validate())

	cfg = DefaultMeanRevShort()
	cfg.Stretch = 0
	require.Error(t, cfg.Validate())
}

func TestValidate_HFT(t *testing.T) {
	cfg := DefaultHFTLong()
	cfg.IBRThreshold = 1.2
	require.Error(t, cfg.Validate())

	cfg = DefaultHFTShort()
	cfg.MaxPrice = cfg.MinPrice
	require.Error(t, cfg.Validate())
}

func TestExcluded(t *testing.T) {
	cfg := DefaultMomentum()
	assert.True(t, cfg.Excluded("GOOG"))
	assert.False(t, cfg.Excluded("GOOGL"))
}
