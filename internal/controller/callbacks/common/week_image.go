package common

import (
	"bytes"
	"fmt"
	"image/color"
	"sync"
	"time"

	"github.com/Freeeeeet/slotswap_bot/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/slotswap_bot/internal/model"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Размеры и отступы картинки недели
const (
	imageWidth       = 1400
	imageHeight      = 900
	headerHeight     = 100
	leftLabelsWidth  = 80
	legendWidth      = 170
	dayPaddingX      = 8
	minSlotHeight    = 8.0
	slotBorderRadius = 6.0
	shadowOffset     = 3.0
	daysInWeek       = 7
	hourPadding      = 1
	slotTitleMaxLen  = 18
)

// Размеры шрифтов
const (
	titleFontSize  = 25.0
	dayFontSize    = 24.0
	hourFontSize   = 16.0
	slotFontSize   = 15.0
	legendFontSize = 13.0
)

var (
	bgColor          = color.RGBA{245, 246, 248, 255}
	textColor        = color.RGBA{80, 85, 90, 220}
	hourLabelColor   = color.RGBA{110, 115, 120, 200}
	hourLineColor    = color.NRGBA{150, 150, 150, 255}
	todayBgColor     = color.NRGBA{255, 99, 71, 90}
	evenDayColor     = color.NRGBA{240, 240, 240, 255}
	oddDayColor      = color.NRGBA{225, 225, 225, 255}
	currentTimeColor = color.NRGBA{255, 80, 80, 200}
	slotShadowColor  = color.RGBA{0, 0, 0, 20}
	slotTextColor    = color.RGBA{20, 24, 28, 230}

	slotColors = map[model.SlotStatus]color.RGBA{
		model.SlotStatusBusy:        {158, 170, 190, 230},
		model.SlotStatusSwappable:   {133, 193, 85, 220},
		model.SlotStatusSwapPending: {255, 196, 87, 240},
	}
	slotDefaultColor = color.RGBA{220, 220, 220, 200}
)

type fontSet struct {
	regular *opentype.Font
	bold    *opentype.Font
}

// Go-шрифты содержат кириллицу, basicfont остаётся запасным вариантом
var loadFonts = sync.OnceValues(func() (*fontSet, error) {
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse regular font: %w", err)
	}
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse bold font: %w", err)
	}
	return &fontSet{regular: regular, bold: bold}, nil
})

func setFont(dc *gg.Context, size float64, bold bool) {
	fonts, err := loadFonts()
	if err != nil {
		dc.SetFontFace(basicfont.Face7x13)
		return
	}
	f := fonts.regular
	if bold {
		f = fonts.bold
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		dc.SetFontFace(basicfont.Face7x13)
		return
	}
	dc.SetFontFace(face)
}

// hourRange часы, попадающие на картинку
type hourRange struct {
	start int
	end   int
}

func (h hourRange) total() int {
	return h.end - h.start + 1
}

// WeekStart понедельник недели, в которую попадает t
func WeekStart(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// RenderWeekImage рисует PNG с неделей, в которую попадает weekOf.
// Слоты раскрашены по статусу, now отмечается линией, если попадает в неделю
func RenderWeekImage(weekOf time.Time, slots []*model.Slot, now time.Time) ([]byte, error) {
	loc := weekOf.Location()
	start := WeekStart(weekOf)
	end := start.AddDate(0, 0, daysInWeek)
	now = now.In(loc)

	byDay := make(map[int][]*model.Slot)
	var visible []*model.Slot
	for _, s := range slots {
		if s.StartTime.Before(start) || !s.StartTime.Before(end) {
			continue
		}
		// часы на картинке в зоне weekOf
		slot := *s
		slot.StartTime = s.StartTime.In(loc)
		slot.EndTime = s.EndTime.In(loc)
		day := int(slot.StartTime.Sub(start).Hours()) / 24
		byDay[day] = append(byDay[day], &slot)
		visible = append(visible, &slot)
	}

	hours := visibleHours(visible)
	dayWidth := (imageWidth - leftLabelsWidth - legendWidth) / daysInWeek
	dayHeight := imageHeight - headerHeight
	cellHeight := float64(dayHeight) / float64(hours.total())

	dc := gg.NewContext(imageWidth, imageHeight)
	dc.SetColor(bgColor)
	dc.Clear()

	drawTitle(dc, start, end.AddDate(0, 0, -1))

	setFont(dc, hourFontSize, false)
	dc.SetColor(hourLabelColor)
	for i := 0; i < hours.total(); i++ {
		y := float64(headerHeight) + float64(i)*cellHeight
		dc.DrawStringAnchored(fmt.Sprintf("%02d:00", hours.start+i), float64(leftLabelsWidth)-10, y, 1, 0.5)
	}

	todayIndex := -1
	if !now.Before(start) && now.Before(end) {
		todayIndex = int(now.Sub(start).Hours()) / 24
	}

	for day := 0; day < daysInWeek; day++ {
		x := float64(leftLabelsWidth + day*dayWidth)
		y := float64(headerHeight)
		date := start.AddDate(0, 0, day)

		switch {
		case day == todayIndex:
			dc.SetColor(todayBgColor)
		case day%2 == 0:
			dc.SetColor(evenDayColor)
		default:
			dc.SetColor(oddDayColor)
		}
		dc.DrawRectangle(x, y, float64(dayWidth), float64(dayHeight))
		dc.Fill()

		setFont(dc, dayFontSize, true)
		dc.SetColor(textColor)
		dc.DrawStringAnchored(date.Format("02.01"), x+float64(dayWidth)/2, y, 0.5, -1)
		dc.DrawStringAnchored(formatting.GetWeekdayShort(int(date.Weekday())), x+float64(dayWidth)/2, y, 0.5, -0.2)

		dc.SetLineWidth(0.3)
		dc.SetColor(hourLineColor)
		for i := 0; i <= hours.total(); i++ {
			hy := y + float64(i)*cellHeight
			dc.DrawLine(x, hy, x+float64(dayWidth), hy)
			dc.Stroke()
		}

		for _, slot := range byDay[day] {
			drawSlot(dc, slot, date, x, dayWidth, hours, cellHeight)
		}
	}

	if todayIndex >= 0 {
		current := float64(now.Hour()) + float64(now.Minute())/60
		if current >= float64(hours.start) && current <= float64(hours.end+1) {
			y := float64(headerHeight) + (current-float64(hours.start))*cellHeight
			dc.SetColor(currentTimeColor)
			dc.SetLineWidth(2)
			dc.DrawLine(float64(leftLabelsWidth), y, float64(leftLabelsWidth+daysInWeek*dayWidth), y)
			dc.Stroke()
		}
	}

	drawLegend(dc, float64(leftLabelsWidth+daysInWeek*dayWidth+12))

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode week image: %w", err)
	}
	return buf.Bytes(), nil
}

// visibleHours диапазон часов по слотам недели с небольшим запасом
func visibleHours(slots []*model.Slot) hourRange {
	if len(slots) == 0 {
		return hourRange{start: 8, end: 20}
	}

	minHour, maxHour := 23, 0
	for _, slot := range slots {
		minHour = min(minHour, slot.StartTime.Hour())

		endHour := slot.EndTime.Hour()
		if slot.EndTime.Minute() > 0 {
			endHour++
		}
		// слот через полночь рисуется до конца дня
		if !sameDay(slot.StartTime, slot.EndTime) {
			endHour = 24
		}
		maxHour = max(maxHour, endHour-1)
	}

	return hourRange{
		start: max(minHour-hourPadding, 0),
		end:   min(maxHour+hourPadding, 23),
	}
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

func drawTitle(dc *gg.Context, first, last time.Time) {
	title := formatting.GetMonthName(first.Month())
	if first.Month() != last.Month() {
		title += " - " + formatting.GetMonthName(last.Month())
	}
	title += fmt.Sprintf(" %d", last.Year())

	setFont(dc, titleFontSize, true)
	dc.SetColor(textColor)
	_, h := dc.MeasureString(title)
	dc.DrawStringAnchored(title, float64(leftLabelsWidth), float64(headerHeight)/8+h/2, 0, 0)
}

func drawSlot(dc *gg.Context, slot *model.Slot, date time.Time, x float64, dayWidth int, hours hourRange, cellHeight float64) {
	from := slot.StartTime.Sub(date).Hours()
	to := slot.EndTime.Sub(date).Hours()
	to = min(to, float64(hours.end+1))

	y := float64(headerHeight) + (from-float64(hours.start))*cellHeight
	height := max((to-from)*cellHeight, minSlotHeight)
	width := float64(dayWidth) - 2*dayPaddingX

	fill, ok := slotColors[slot.Status]
	if !ok {
		fill = slotDefaultColor
	}

	dc.SetColor(slotShadowColor)
	dc.DrawRoundedRectangle(x+dayPaddingX+shadowOffset, y+2+shadowOffset, width, height-4, slotBorderRadius)
	dc.Fill()

	dc.SetColor(fill)
	dc.DrawRoundedRectangle(x+dayPaddingX, y+2, width, height-4, slotBorderRadius)
	dc.Fill()

	dc.SetColor(darken(fill))
	dc.SetLineWidth(1)
	dc.DrawRoundedRectangle(x+dayPaddingX, y+2, width, height-4, slotBorderRadius)
	dc.Stroke()

	setFont(dc, slotFontSize, true)
	dc.SetColor(slotTextColor)
	textX := x + dayPaddingX + 8
	textY := y + 18
	dc.DrawStringAnchored(slot.StartTime.Format("15:04"), textX, textY, 0, 0)

	if height > 40 {
		title := []rune(slot.Title)
		if len(title) > slotTitleMaxLen {
			title = append(title[:slotTitleMaxLen-1], '…')
		}
		setFont(dc, slotFontSize-2, false)
		dc.DrawStringAnchored(string(title), textX, textY+17, 0, 0)
	}
}

func darken(c color.RGBA) color.RGBA {
	scale := func(v uint8) uint8 { return uint8(int(v) * 4 / 5) }
	return color.RGBA{scale(c.R), scale(c.G), scale(c.B), c.A}
}

func drawLegend(dc *gg.Context, x float64) {
	items := []model.SlotStatus{model.SlotStatusBusy, model.SlotStatusSwappable, model.SlotStatusSwapPending}
	labels := map[model.SlotStatus]string{
		model.SlotStatusBusy:        "Занят",
		model.SlotStatusSwappable:   "Для обмена",
		model.SlotStatusSwapPending: "Ждёт ответа",
	}

	const boxW, boxH = 20.0, 14.0
	y := float64(imageHeight) - 110

	setFont(dc, legendFontSize, false)
	for _, status := range items {
		dc.SetColor(slotColors[status])
		dc.DrawRoundedRectangle(x, y, boxW, boxH, 3)
		dc.Fill()

		dc.SetColor(textColor)
		dc.DrawStringAnchored(labels[status], x+boxW+8, y+boxH/2+1, 0, 0.2)
		y += boxH + 14
	}
}
