package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/slotswap_bot/internal/controller/callbacks/common/formatting"
)

var (
	errBadStartFormat = errors.New("bad start format")
	errStartInPast    = errors.New("start in the past")
	errBadDuration    = errors.New("bad duration")
)

// parseSlotStart разбирает "ДД.ММ.ГГГГ ЧЧ:ММ" в зоне loc; время должно быть не раньше now
func parseSlotStart(text string, loc *time.Location, now time.Time) (time.Time, error) {
	start, err := time.ParseInLocation(formatting.DateTimeLayout, strings.Join(strings.Fields(text), " "), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", errBadStartFormat, text)
	}
	if start.Before(now) {
		return time.Time{}, errStartInPast
	}
	return start, nil
}

// parseDurationMinutes разбирает длительность в минутах в допустимых пределах
func parseDurationMinutes(text string) (time.Duration, error) {
	minutes, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || minutes < SlotMinDuration || minutes > SlotMaxDuration {
		return 0, fmt.Errorf("%w: %q", errBadDuration, text)
	}
	return time.Duration(minutes) * time.Minute, nil
}
