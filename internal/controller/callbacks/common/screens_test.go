package common

import (
	"testing"
	"time"

	"github.com/Freeeeeet/slotswap_bot/internal/model"
	"github.com/Freeeeeet/slotswap_bot/internal/service"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var monday = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

func callbackData(kb *models.InlineKeyboardMarkup) []string {
	var out []string
	for _, row := range kb.InlineKeyboard {
		for _, btn := range row {
			out = append(out, btn.CallbackData)
		}
	}
	return out
}

func TestBuildMySlotsScreen(t *testing.T) {
	slots := []*model.Slot{
		{ID: 1, Title: "Standup <daily>", StartTime: monday, EndTime: monday.Add(30 * time.Minute), Status: model.SlotStatusBusy},
		{ID: 2, Title: "Review", StartTime: monday.Add(time.Hour), EndTime: monday.Add(2 * time.Hour), Status: model.SlotStatusSwappable},
		{ID: 3, Title: "Sync", StartTime: monday.Add(3 * time.Hour), EndTime: monday.Add(4 * time.Hour), Status: model.SlotStatusSwapPending},
	}

	text, kb := BuildMySlotsScreen(slots)

	assert.Contains(t, text, "3 слота")
	assert.Contains(t, text, "Standup &lt;daily&gt;", "titles are escaped")

	data := callbackData(kb)
	assert.Contains(t, data, "toggle_slot:1")
	assert.Contains(t, data, "delete_slot:2")
	assert.NotContains(t, data, "toggle_slot:3", "reserved slot has no controls")
	assert.NotContains(t, data, "delete_slot:3")
	assert.Contains(t, data, NewSlot)
}

func TestBuildOfferScreen_OnlySwappableOffers(t *testing.T) {
	target := &model.Slot{ID: 10, Title: "Gym", StartTime: monday, EndTime: monday.Add(time.Hour), Status: model.SlotStatusSwappable,
		Owner: &model.User{ID: 2, FirstName: "Boris"}}
	mine := []*model.Slot{
		{ID: 1, Title: "Busy", StartTime: monday, EndTime: monday.Add(time.Hour), Status: model.SlotStatusBusy},
		{ID: 2, Title: "Free", StartTime: monday, EndTime: monday.Add(time.Hour), Status: model.SlotStatusSwappable},
	}

	text, kb := BuildOfferScreen(target, mine)
	assert.Contains(t, text, "Boris")

	data := callbackData(kb)
	assert.Contains(t, data, "swap_offer:10:2")
	assert.NotContains(t, data, "swap_offer:10:1")

	text, kb = BuildOfferScreen(target, mine[:1])
	assert.Contains(t, text, "нет слотов")
	assert.NotContains(t, callbackData(kb), "swap_offer:10:1")
}

func TestBuildRequestsScreen(t *testing.T) {
	slotA := &model.Slot{ID: 1, Title: "A", StartTime: monday, EndTime: monday.Add(time.Hour)}
	slotB := &model.Slot{ID: 2, Title: "B", StartTime: monday, EndTime: monday.Add(time.Hour)}
	requests := &service.MyRequests{
		Incoming: []*model.SwapRequest{
			{ID: 5, Status: model.SwapRequestStatusPending, MySlot: slotA, TheirSlot: slotB, Requester: &model.User{FirstName: "Clara"}},
			{ID: 4, Status: model.SwapRequestStatusRejected, MySlot: slotA, TheirSlot: nil},
		},
		Outgoing: []*model.SwapRequest{},
	}

	text, kb := BuildRequestsScreen(requests)

	assert.Contains(t, text, "Clara")
	assert.Contains(t, text, "слот удалён")
	data := callbackData(kb)
	assert.Contains(t, data, "swap_accept:5")
	assert.Contains(t, data, "swap_reject:5")
	assert.NotContains(t, data, "swap_accept:4", "answered requests have no buttons")
}

func TestBuildResponseNotification(t *testing.T) {
	req := &model.SwapRequest{
		ID:        9,
		Status:    model.SwapRequestStatusAccepted,
		MySlot:    &model.Slot{Title: "Mine", StartTime: monday, EndTime: monday.Add(time.Hour)},
		TheirSlot: &model.Slot{Title: "Theirs", StartTime: monday, EndTime: monday.Add(time.Hour)},
	}
	responder := &model.User{FirstName: "Boris"}

	require.Contains(t, BuildResponseNotification(req, responder), "принял")

	req.Status = model.SwapRequestStatusRejected
	assert.Contains(t, BuildResponseNotification(req, responder), "отклонил")
}
