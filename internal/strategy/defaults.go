package strategy

import "github.com/mwt/signals/internal/contracts"

// Strategy names as tagged on orders and position attributions. The
// broker report uses these to route fills back to the owning
// strategy, so they are part of the external contract.
const (
	NameMomentum     = "MWT_ROT"
	NameGrowth       = "MWT_GROWTH"
	NameDefensive    = "MWT_DEF"
	NameBitcoin      = "MWT_BTC"
	NameMeanRevLong  = "MWT_MR_L"
	NameMeanRevShort = "MWT_MR_S"
	NameHFTLong      = "MWT_HFT_L"
	NameHFTShort     = "MWT_HFT_S"
)

// DefaultMomentum is the monthly momentum rotation over the
// NASDAQ 100, gated by a new-highs market regime index.
func DefaultMomentum() Config {
	return Config{
		Name:          NameMomentum,
		Family:        FamilyRotation,
		Direction:     contracts.DirectionLong,
		Allocation:    0.05,
		MaxPositions:  3,
		HoldRank:      5,
		Universe:      "NASDAQ 100",
		Exclusions:    []string{"GOOG"},
		MinBars:       250,
		EntryAllowed:  true,
		ROCPeriod1:    120,
		ROCPeriod2:    240,
		ROCWeight1:    0.5,
		ROCWeight2:    0.5,
		TrendPeriod:   100,
		IndexSymbol:   "#NYSEHL",
		IndexPeriod:   13,
		MonthlyAnchor: true,
	}
}

// DefaultGrowth rotates between broad growth ETFs on momentum
// persistence.
func DefaultGrowth() Config {
	return Config{
		Name:         NameGrowth,
		Family:       FamilyRotation,
		Direction:    contracts.DirectionLong,
		Allocation:   0.10,
		MaxPositions: 1,
		HoldRank:     2,
		Symbols:      []string{"QQQ", "SPY", "IOO"},
		MinBars:      250,
		EntryAllowed: true,
		ROCPeriod1:   75,
		ROCPeriod2:   150,
		ROCWeight1:   1,
		ROCWeight2:   1,
		SinceTrue:    5,
	}
}

// DefaultDefensive rotates between defensive ETFs (gold, long
// treasuries).
func DefaultDefensive() Config {
	return Config{
		Name:          NameDefensive,
		Family:        FamilyRotation,
		Direction:     contracts.DirectionLong,
		Allocation:    0.03,
		MaxPositions:  1,
		HoldRank:      1,
		Symbols:       []string{"GLD", "TLT"},
		MinBars:       250,
		EntryAllowed:  true,
		ROCPeriod1:    75,
		ROCPeriod2:    150,
		ROCWeight1:    1,
		ROCWeight2:    1,
		SinceTrue:     5,
		MonthlyAnchor: true,
	}
}

// DefaultBitcoin holds a single bitcoin ETF while its momentum stays
// positive. Degenerate rotation with one slot.
func DefaultBitcoin() Config {
	return Config{
		Name:         NameBitcoin,
		Family:       FamilyRotation,
		Direction:    contracts.DirectionLong,
		Allocation:   0.02,
		MaxPositions: 1,
		HoldRank:     1,
		Symbols:      []string{"IBIT"},
		MinBars:      50,
		EntryAllowed: true,
		ROCPeriod1:   40,
		ROCPeriod2:   40,
		ROCWeight1:   0.5,
		ROCWeight2:   0.5,
		SinceTrue:    4,
	}
}

// DefaultMeanRevLong buys 2-period RSI washouts in S&P 500 names.
func DefaultMeanRevLong() Config {
	return Config{
		Name:         NameMeanRevLong,
		Family:       FamilyMeanReversion,
		Direction:    contracts.DirectionLong,
		Allocation:   0.15,
		MaxPositions: 10,
		Universe:     "S&P 500",
		Exclusions:   []string{"GOOG"},
		MinBars:      200,
		EntryAllowed: true,
		SizeMinOne:   true,
		RSIPeriod:    2,
		RSIThreshold: 30,
		TrendPeriod:  100,
		ADXPeriod:    10,
		ADXThreshold: 30,
		ATRPeriod:    10,
		Stretch:      0.5,
		MinPrice:     5,
		VolumePeriod: 50,
		VolumeFloor:  200000,
	}
}

// DefaultMeanRevShort shorts 3-period RSI spikes in S&P 500 names.
func DefaultMeanRevShort() Config {
	return Config{
		Name:         NameMeanRevShort,
		Family:       FamilyMeanReversion,
		Direction:    contracts.DirectionShort,
		Allocation:   0.15,
		MaxPositions: 10,
		Universe:     "S&P 500",
		Exclusions:   []string{"GOOG"},
		MinBars:      200,
		EntryAllowed: true,
		SizeMinOne:   true,
		RSIPeriod:    3,
		RSIThreshold: 90,
		TrendPeriod:  100,
		ADXPeriod:    10,
		ADXThreshold: 30,
		ATRPeriod:    10,
		Stretch:      0.8,
		MinPrice:     5,
		VolumePeriod: 50,
		VolumeFloor:  200000,
	}
}

// DefaultHFTLong places stretched intraday limit buys under weak
// closes in trending Russell 1000 names.
func DefaultHFTLong() Config {
	return Config{
		Name:         NameHFTLong,
		Family:       FamilyHFT,
		Direction:    contracts.DirectionLong,
		Allocation:   0.25,
		MaxPositions: 15,
		Universe:     "Russell 1000",
		Exclusions:   []string{"GOOG"},
		MinBars:      251,
		EntryAllowed: true,
		SizeMinOne:   true,
		IBRThreshold: 0.3,
		TrendPeriod:  250,
		ADXPeriod:    4,
		ADXThreshold: 35,
		ATRPeriod:    5,
		Stretch:      0.6,
		MinPrice:     10,
		MaxPrice:     5000,
		VolumePeriod: 50,
		VolumeFloor:  2000000,
		VolumeEMA:    true,
	}
}

// DefaultHFTShort places stretched intraday limit shorts over strong
// closes in trending Russell 1000 names.
func DefaultHFTShort() Config {
	return Config{
		Name:         NameHFTShort,
		Family:       FamilyHFT,
		Direction:    contracts.DirectionShort,
		Allocation:   0.25,
		MaxPositions: 15,
		Universe:     "Russell 1000",
		Exclusions:   []string{"GOOG"},
		MinBars:      251,
		EntryAllowed: true,
		SizeMinOne:   true,
		IBRThreshold: 0.7,
		TrendPeriod:  250,
		ADXPeriod:    4,
		ADXThreshold: 35,
		ATRPeriod:    5,
		Stretch:      0.3,
		MinPrice:     20,
		MaxPrice:     5000,
		VolumePeriod: 50,
		VolumeFloor:  2000000,
		VolumeEMA:    true,
	}
}

// All returns every default strategy instance in conflict-resolution
// priority order: rotations first, then mean reversion, then HFT.
func All() []Config {
	return []Config{
		DefaultMomentum(),
		DefaultGrowth(),
		DefaultDefensive(),
		DefaultBitcoin(),
		DefaultMeanRevLong(),
		DefaultMeanRevShort(),
		DefaultHFTLong(),
		DefaultHFTShort(),
	}
}
