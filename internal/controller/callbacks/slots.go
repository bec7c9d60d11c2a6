package callbacks

import (
	"github.com/Freeeeeet/slotswap_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/slotswap_bot/internal/controller/state"
	"github.com/Freeeeeet/slotswap_bot/internal/model"
	"go.uber.org/zap"
)

func (h *Handler) handleViewMySlots(hc *HandlerContext) {
	slots, err := h.SlotService.ListMySlots(hc.Ctx, hc.User.ID)
	if err != nil {
		hc.Fail(err, "list my slots")
		return
	}
	hc.Answer("")
	hc.Show(common.BuildMySlotsScreen(slots))
}

func (h *Handler) handleViewWeek(hc *HandlerContext) {
	slots, err := h.SlotService.ListMySlots(hc.Ctx, hc.User.ID)
	if err != nil {
		hc.Fail(err, "list my slots")
		return
	}
	hc.Answer("")
	if err := common.SendWeekImage(hc.Ctx, hc.Bot, hc.ChatID, slots, h.now()); err != nil {
		h.Logger.Error("Failed to send week image",
			zap.Int64("user_id", hc.User.ID),
			zap.Error(err))
	}
}

func (h *Handler) handleNewSlot(hc *HandlerContext) {
	h.StateManager.ClearState(hc.TelegramID)
	h.StateManager.SetState(hc.TelegramID, state.StateNewSlotTitle)

	hc.Answer("")
	if err := common.SendHTML(hc.Ctx, hc.Bot, hc.ChatID, common.PromptSlotTitle, nil); err != nil {
		h.Logger.Error("Failed to send prompt", zap.Error(err))
	}
}

func (h *Handler) handleToggleSlot(hc *HandlerContext) {
	slotID, err := common.ParseIDFromCallback(hc.Callback.Data)
	if err != nil {
		hc.Fail(err, "parse slot id")
		return
	}

	slot, err := h.SlotService.GetSlot(hc.Ctx, slotID)
	if err != nil {
		hc.Fail(err, "get slot")
		return
	}

	// кнопка переключает то состояние, которое видел пользователь
	swappable := slot.Status == model.SlotStatusBusy
	if _, err := h.SlotService.SetSwappable(hc.Ctx, hc.User.ID, slotID, swappable); err != nil {
		hc.Fail(err, "toggle swappable")
		return
	}

	slots, err := h.SlotService.ListMySlots(hc.Ctx, hc.User.ID)
	if err != nil {
		hc.Fail(err, "list my slots")
		return
	}

	if swappable {
		hc.Answer("🔄 Слот доступен для обмена")
	} else {
		hc.Answer("🔒 Слот снят с обмена")
	}
	hc.Show(common.BuildMySlotsScreen(slots))
}

func (h *Handler) handleDeleteSlot(hc *HandlerContext) {
	slotID, err := common.ParseIDFromCallback(hc.Callback.Data)
	if err != nil {
		hc.Fail(err, "parse slot id")
		return
	}

	slot, err := h.SlotService.GetSlot(hc.Ctx, slotID)
	if err != nil {
		hc.Fail(err, "get slot")
		return
	}
	if slot.OwnerID != hc.User.ID {
		hc.AnswerAlert("⛔ Это не ваш слот")
		return
	}

	hc.Answer("")
	hc.Show(common.BuildDeleteConfirmScreen(slot))
}

func (h *Handler) handleConfirmDelete(hc *HandlerContext) {
	slotID, err := common.ParseIDFromCallback(hc.Callback.Data)
	if err != nil {
		hc.Fail(err, "parse slot id")
		return
	}

	if err := h.SlotService.DeleteSlot(hc.Ctx, hc.User.ID, slotID); err != nil {
		hc.Fail(err, "delete slot")
		return
	}

	slots, err := h.SlotService.ListMySlots(hc.Ctx, hc.User.ID)
	if err != nil {
		hc.Fail(err, "list my slots")
		return
	}

	hc.Answer("🗑 Слот удалён")
	hc.Show(common.BuildMySlotsScreen(slots))
}
