package analytics

import (
	"fmt"
	"time"

	"github.com/bimakw/position-analytics/internal/domain/entities"
)

const (
	// Ages beyond this are treated as bad upstream timestamps
	maxPlausibleHoldingDays = 730

	// positionAgeSeconds is only trusted below one year
	maxTimelineAgeSeconds = 365 * secondsPerDay
)

// HoldingPeriod reports how long a position has been held at now.
// The earliest swap is used when the timeline marks the position as created;
// otherwise timeline.positionAgeSeconds is used when it is plausible.
func HoldingPeriod(detail *entities.PositionDetail, now time.Time) entities.HoldingPeriod {
	if detail.Timeline.PositionCreated != nil && len(detail.PoolSwaps) > 0 {
		return holdingFromSwaps(detail.PoolSwaps, now)
	}

	if age := detail.Timeline.PositionAgeSeconds; age != nil && *age > 0 && *age < maxTimelineAgeSeconds {
		days := *age / secondsPerDay
		return entities.HoldingPeriod{
			Status: entities.HoldingOK,
			Days:   days,
			Hours:  *age / 3600,
			Label:  fmt.Sprintf("%d days", days),
		}
	}

	return unavailableHolding("N/A")
}

func holdingFromSwaps(swaps []entities.Swap, now time.Time) entities.HoldingPeriod {
	earliest := swaps[0].Timestamp
	for _, swap := range swaps[1:] {
		if swap.Timestamp < earliest {
			earliest = swap.Timestamp
		}
	}

	elapsed := now.Sub(time.Unix(earliest, 0))
	if elapsed < 0 {
		return entities.HoldingPeriod{
			Status: entities.HoldingAnomaly,
			Label:  "Recent (timestamp issue)",
		}
	}

	days := int64(elapsed / (24 * time.Hour))
	hours := int64(elapsed / time.Hour)

	switch {
	case days > maxPlausibleHoldingDays:
		return unavailableHolding("N/A (check timestamp)")
	case days == 0 && hours > 0:
		return entities.HoldingPeriod{Status: entities.HoldingOK, Hours: hours, Label: fmt.Sprintf("%d hours", hours)}
	case days == 0:
		return entities.HoldingPeriod{Status: entities.HoldingOK, Label: "Less than 1 hour"}
	default:
		return entities.HoldingPeriod{Status: entities.HoldingOK, Days: days, Hours: hours, Label: fmt.Sprintf("%d days", days)}
	}
}

func unavailableHolding(label string) entities.HoldingPeriod {
	return entities.HoldingPeriod{Status: entities.HoldingUnavailable, Label: label}
}
