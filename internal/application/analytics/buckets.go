// Package analytics derives position metrics from already fetched position data.
// Everything here is pure: callers pass in the payload and the current time.
package analytics

import (
	"math"

	"github.com/bimakw/position-analytics/internal/domain/entities"
)

const (
	secondsPerDay = 86400

	// Token age thresholds
	matureAgeSeconds     = 30 * secondsPerDay
	developingAgeSeconds = 7 * secondsPerDay

	minVolatilitySamples = 3
)

// ConcentrationRisk buckets a position's share of the portfolio (in percent)
func ConcentrationRisk(positionSizePercent float64) string {
	switch {
	case positionSizePercent > 10:
		return entities.RiskHigh
	case positionSizePercent > 5:
		return entities.RiskMedium
	default:
		return entities.RiskLow
	}
}

// DiversificationNeeded reports whether a single position dominates the portfolio
func DiversificationNeeded(positionSizePercent float64) bool {
	return positionSizePercent > 20
}

// TokenMaturity buckets a token by age
func TokenMaturity(ageSeconds int64) string {
	switch {
	case ageSeconds > matureAgeSeconds:
		return entities.MaturityMature
	case ageSeconds > developingAgeSeconds:
		return entities.MaturityDeveloping
	default:
		return entities.MaturityNew
	}
}

// CoefficientOfVariation returns stdDev/mean*100 using the population
// standard deviation. A non-positive mean yields 0.
func CoefficientOfVariation(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}

	var sum float64
	for _, s := range samples {
		sum += s
	}
	mean := sum / float64(len(samples))
	if mean <= 0 {
		return 0
	}

	var sq float64
	for _, s := range samples {
		sq += (s - mean) * (s - mean)
	}
	stdDev := math.Sqrt(sq / float64(len(samples)))

	return finite(stdDev / mean * 100)
}

// Volatility buckets price samples by coefficient of variation
func Volatility(samples []float64) string {
	if len(samples) < minVolatilitySamples {
		return entities.VolatilityUnknown
	}

	cv := CoefficientOfVariation(samples)
	switch {
	case cv > 50:
		return entities.RiskHigh
	case cv > 25:
		return entities.RiskMedium
	default:
		return entities.RiskLow
	}
}

// VolumeToMcapRatio returns 24h volume as a percentage of market cap
func VolumeToMcapRatio(volume24h, marketCap float64) float64 {
	if marketCap <= 0 {
		return 0
	}
	return finite(volume24h / marketCap * 100)
}

// ExitStrategy suggests an exit based on current value against money invested
func ExitStrategy(currentValue, totalInvested float64) string {
	switch {
	case currentValue > totalInvested*5:
		return entities.ExitPartial
	case currentValue > totalInvested*2:
		return entities.ExitProfitTaking
	default:
		return entities.ExitHodl
	}
}

// RiskReward returns unrealizedPnL/totalInvested.
// ok is false when nothing was invested (airdrops, transfers in).
func RiskReward(unrealizedPnL, totalInvested float64) (ratio float64, ok bool) {
	if totalInvested == 0 {
		return 0, false
	}
	ratio = unrealizedPnL / totalInvested
	if !isFinite(ratio) {
		return 0, false
	}
	return ratio, true
}

// LiquidityRisk buckets 24h volume relative to market cap
func LiquidityRisk(volume24h, marketCap float64) string {
	switch {
	case volume24h < marketCap*0.01:
		return entities.RiskHigh
	case volume24h < marketCap*0.05:
		return entities.RiskMedium
	default:
		return entities.RiskLow
	}
}

// TaxImpact buckets unrealized PnL (USD)
func TaxImpact(unrealizedPnL float64) string {
	switch {
	case unrealizedPnL > 1000:
		return entities.TaxSignificant
	case unrealizedPnL > 100:
		return entities.TaxModerate
	default:
		return entities.TaxLow
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// finite maps NaN and ±Inf to 0 so metrics always encode as JSON numbers
func finite(v float64) float64 {
	if !isFinite(v) {
		return 0
	}
	return v
}
