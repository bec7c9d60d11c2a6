package common

import (
	"bytes"
	"image/png"
	"testing"
	"time"

	"github.com/Freeeeeet/slotswap_bot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekStart(t *testing.T) {
	monday := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, monday, WeekStart(monday.Add(13*time.Hour)))
	assert.Equal(t, monday, WeekStart(monday.AddDate(0, 0, 6).Add(23*time.Hour)), "sunday")
	assert.Equal(t, monday.AddDate(0, 0, 7), WeekStart(monday.AddDate(0, 0, 7)))
}

func TestVisibleHours(t *testing.T) {
	day := time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, hourRange{start: 8, end: 20}, visibleHours(nil))

	slots := []*model.Slot{
		{StartTime: day.Add(9 * time.Hour), EndTime: day.Add(10*time.Hour + 30*time.Minute)},
		{StartTime: day.Add(14 * time.Hour), EndTime: day.Add(15 * time.Hour)},
	}
	assert.Equal(t, hourRange{start: 8, end: 15}, visibleHours(slots))

	overnight := []*model.Slot{{StartTime: day.Add(22 * time.Hour), EndTime: day.Add(26 * time.Hour)}}
	assert.Equal(t, hourRange{start: 21, end: 23}, visibleHours(overnight))
}

func TestRenderWeekImage(t *testing.T) {
	monday := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	slots := []*model.Slot{
		{ID: 1, Title: "Стендап", StartTime: monday.Add(9 * time.Hour), EndTime: monday.Add(10 * time.Hour), Status: model.SlotStatusBusy},
		{ID: 2, Title: "Очень длинное название встречи", StartTime: monday.AddDate(0, 0, 2).Add(13 * time.Hour), EndTime: monday.AddDate(0, 0, 2).Add(15 * time.Hour), Status: model.SlotStatusSwappable},
		{ID: 3, Title: "Ревью", StartTime: monday.AddDate(0, 0, 4).Add(11 * time.Hour), EndTime: monday.AddDate(0, 0, 4).Add(12 * time.Hour), Status: model.SlotStatusSwapPending},
		// другая неделя не рисуется
		{ID: 4, Title: "Потом", StartTime: monday.AddDate(0, 0, 9), EndTime: monday.AddDate(0, 0, 9).Add(time.Hour), Status: model.SlotStatusBusy},
	}

	data, err := RenderWeekImage(monday.AddDate(0, 0, 3), slots, monday.AddDate(0, 0, 2).Add(14*time.Hour))
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, imageWidth, img.Bounds().Dx())
	assert.Equal(t, imageHeight, img.Bounds().Dy())
}

func TestRenderWeekImage_Empty(t *testing.T) {
	data, err := RenderWeekImage(time.Date(2026, 12, 30, 0, 0, 0, 0, time.UTC), nil, time.Time{})
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
