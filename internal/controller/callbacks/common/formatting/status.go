package formatting

import "github.com/Freeeeeet/slotswap_bot/internal/model"

// StatusDisplay представляет отображение статуса
type StatusDisplay struct {
	Emoji string
	Text  string
}

func (d StatusDisplay) String() string {
	return d.Emoji + " " + d.Text
}

// GetSlotStatusDisplay возвращает emoji и текст для статуса слота
func GetSlotStatusDisplay(status model.SlotStatus) StatusDisplay {
	displays := map[model.SlotStatus]StatusDisplay{
		model.SlotStatusBusy:        {"🔒", "Занят"},
		model.SlotStatusSwappable:   {"🔄", "Доступен для обмена"},
		model.SlotStatusSwapPending: {"⏳", "Ожидает ответа на обмен"},
	}
	if display, ok := displays[status]; ok {
		return display
	}
	return StatusDisplay{"❔", string(status)}
}

// GetSwapRequestStatusDisplay возвращает emoji и текст для статуса запроса
func GetSwapRequestStatusDisplay(status model.SwapRequestStatus) StatusDisplay {
	displays := map[model.SwapRequestStatus]StatusDisplay{
		model.SwapRequestStatusPending:  {"⏳", "Ожидает ответа"},
		model.SwapRequestStatusAccepted: {"✅", "Принят"},
		model.SwapRequestStatusRejected: {"❌", "Отклонён"},
	}
	if display, ok := displays[status]; ok {
		return display
	}
	return StatusDisplay{"❔", string(status)}
}
