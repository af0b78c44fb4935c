package indicators

import "math"

// Funding confluence strength tiers by funding rate magnitude
const (
	FundingStrong   = "strong"
	FundingModerate = "moderate"
	FundingWeak     = "weak"

	fundingModerateAbove = 0.0002
	fundingStrongAbove   = 0.0005
)

// FundingConfluence reports whether the funding rate confirms an RSI extreme
type FundingConfluence struct {
	Aligned  bool   `json:"aligned"`
	Type     string `json:"type,omitempty"`
	Strength string `json:"strength,omitempty"`
}

// DetectFundingConfluence checks the funding rate against the daily RSI.
// Bullish confluence needs oversold RSI with negative funding (shorts paying
// longs); bearish needs overbought RSI with positive funding. Strength
// follows the funding magnitude. A nil funding rate never aligns.
func DetectFundingConfluence(dailyRSI float64, fundingRate *float64) *FundingConfluence {
	if fundingRate == nil {
		return &FundingConfluence{Aligned: false}
	}

	rate := *fundingRate
	conf := &FundingConfluence{}
	switch {
	case dailyRSI < OversoldThreshold && rate < 0:
		conf.Aligned = true
		conf.Type = DivergenceBullish
	case dailyRSI > OverboughtThreshold && rate > 0:
		conf.Aligned = true
		conf.Type = DivergenceBearish
	}

	if conf.Aligned {
		switch abs := math.Abs(rate); {
		case abs > fundingStrongAbove:
			conf.Strength = FundingStrong
		case abs > fundingModerateAbove:
			conf.Strength = FundingModerate
		default:
			conf.Strength = FundingWeak
		}
	}

	return conf
}
