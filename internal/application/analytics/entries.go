package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/bimakw/position-analytics/internal/domain/entities"
)

// SortSwaps returns a copy of swaps ordered by ascending timestamp.
// Swaps sharing a timestamp keep their upstream order.
func SortSwaps(swaps []entities.Swap) []entities.Swap {
	sorted := make([]entities.Swap, len(swaps))
	copy(sorted, swaps)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})
	return sorted
}

// EntryPrice is |eth| / |tokens| for one swap. ok is false for a zero token
// amount or a price that does not fit in a float64.
func EntryPrice(swap entities.Swap) (price float64, ok bool) {
	tokens := math.Abs(swap.TokenAmountFormatted.Float64())
	if tokens == 0 {
		return 0, false
	}
	price = math.Abs(swap.ETHAmountFormatted.Float64()) / tokens
	if !isFinite(price) {
		return 0, false
	}
	return price, true
}

// EntryPoint is a priced swap and its position in the time-sorted swap list
type EntryPoint struct {
	SwapIndex int
	Price     float64
}

// noEntry is reported as best/worst when no swap could be priced
var noEntry = EntryPoint{SwapIndex: -1}

// EntryPoints prices swaps already sorted by time.
// Swaps without a price are skipped but the others keep their own index.
func EntryPoints(sorted []entities.Swap) []EntryPoint {
	points := make([]EntryPoint, 0, len(sorted))
	for i, swap := range sorted {
		if p, ok := EntryPrice(swap); ok {
			points = append(points, EntryPoint{SwapIndex: i, Price: p})
		}
	}
	return points
}

// BestEntry folds over points keeping the lowest price.
// Ties keep the earliest swap. SwapIndex is -1 for no points.
func BestEntry(points []EntryPoint) EntryPoint {
	best := noEntry
	for i, p := range points {
		if i == 0 || p.Price < best.Price {
			best = p
		}
	}
	return best
}

// WorstEntry folds over points keeping the highest price.
// Ties keep the earliest swap. SwapIndex is -1 for no points.
func WorstEntry(points []EntryPoint) EntryPoint {
	worst := noEntry
	for i, p := range points {
		if i == 0 || p.Price > worst.Price {
			worst = p
		}
	}
	return worst
}

func splitEntryPoints(points []EntryPoint) (prices []float64, indexes []int) {
	prices = make([]float64, len(points))
	indexes = make([]int, len(points))
	for i, p := range points {
		prices[i] = p.Price
		indexes[i] = p.SwapIndex
	}
	return prices, indexes
}

// DCAEffectiveness labels a position bought in one go or over several entries
func DCAEffectiveness(prices []float64) string {
	if len(prices) > 1 {
		return entities.DCAActive
	}
	return entities.DCASingleEntry
}

// TradingDays counts distinct UTC calendar days among sorted swaps and how
// many swaps share the day of the latest one.
func TradingDays(sorted []entities.Swap) (batches, sameDay int) {
	if len(sorted) == 0 {
		return 0, 0
	}

	days := make(map[string]struct{})
	for _, swap := range sorted {
		days[dayKey(swap.Timestamp)] = struct{}{}
	}

	lastDay := dayKey(sorted[len(sorted)-1].Timestamp)
	for _, swap := range sorted {
		if dayKey(swap.Timestamp) == lastDay {
			sameDay++
		}
	}

	return len(days), sameDay
}

func dayKey(ts int64) string {
	return time.Unix(ts, 0).UTC().Format("2006-01-02")
}
