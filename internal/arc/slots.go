package arc

import (
	"fmt"
	"strconv"

	apperrors "github.com/ameliebruno/daybound/internal/errors"
)

// DefaultDailySlots is the per-day cap on arc-step advances for one
// player, independent of how many arcs are active.
const DefaultDailySlots = 2

// CanProgressToday enforces the daily progression-slot cap. A non-positive
// totalSlots falls back to the default. Exceeding the cap is rejected with
// a typed error rather than silently dropped, so the caller can surface
// "try again tomorrow" to the player.
func CanProgressToday(usedSlotsToday, totalSlots, extraSlots int) error {
	if totalSlots <= 0 {
		totalSlots = DefaultDailySlots
	}
	limit := totalSlots + extraSlots
	if usedSlotsToday < limit {
		return nil
	}
	return apperrors.WithMetadata(
		apperrors.CodeArcSlotsExhausted,
		fmt.Sprintf("daily arc slots exhausted: %d of %d used", usedSlotsToday, limit),
		map[string]string{
			"Used": strconv.Itoa(usedSlotsToday),
			"Cap":  strconv.Itoa(limit),
		},
	)
}
