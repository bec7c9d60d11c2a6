package callbacks

import (
	"github.com/Freeeeeet/slotswap_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/slotswap_bot/internal/model"
	"go.uber.org/zap"
)

func (h *Handler) handleViewMarket(hc *HandlerContext) {
	slots, err := h.SwapService.ListSwappableSlots(hc.Ctx, hc.User.ID)
	if err != nil {
		hc.Fail(err, "list swappable slots")
		return
	}
	hc.Answer("")
	hc.Show(common.BuildMarketScreen(slots))
}

func (h *Handler) handleViewRequests(hc *HandlerContext) {
	requests, err := h.SwapService.ListMyRequests(hc.Ctx, hc.User.ID)
	if err != nil {
		hc.Fail(err, "list my requests")
		return
	}
	hc.Answer("")
	hc.Show(common.BuildRequestsScreen(requests))
}

// handleSwapTarget пользователь выбрал чужой слот, предлагаем выбрать свой
func (h *Handler) handleSwapTarget(hc *HandlerContext) {
	targetID, err := common.ParseIDFromCallback(hc.Callback.Data)
	if err != nil {
		hc.Fail(err, "parse slot id")
		return
	}

	target, err := h.SlotService.GetSlot(hc.Ctx, targetID)
	if err != nil {
		hc.Fail(err, "get target slot")
		return
	}
	if !target.IsSwappable() {
		hc.AnswerAlert("⏳ Этот слот уже недоступен для обмена")
		return
	}
	if target.Owner == nil {
		if owner, err := h.UserService.GetByID(hc.Ctx, target.OwnerID); err == nil {
			target.Owner = owner
		}
	}

	mine, err := h.SlotService.ListMySlots(hc.Ctx, hc.User.ID)
	if err != nil {
		hc.Fail(err, "list my slots")
		return
	}

	hc.Answer("")
	hc.Show(common.BuildOfferScreen(target, mine))
}

// handleSwapOffer создаёт запрос на обмен и уведомляет владельца целевого слота
func (h *Handler) handleSwapOffer(hc *HandlerContext) {
	ids, err := common.ParseIDsFromCallback(hc.Callback.Data, 2)
	if err != nil {
		hc.Fail(err, "parse swap offer")
		return
	}
	theirSlotID, mySlotID := ids[0], ids[1]

	req, err := h.SwapService.ProposeSwap(hc.Ctx, hc.User.ID, mySlotID, theirSlotID)
	if err != nil {
		hc.Fail(err, "propose swap")
		return
	}

	hc.Answer("📨 Запрос отправлен")
	hc.Show("📨 Запрос на обмен отправлен. Слоты зарезервированы до ответа.\n\n"+
		"Статус можно посмотреть в /requests", nil)

	responder, err := h.UserService.GetByID(hc.Ctx, req.ResponderID)
	if err != nil || responder == nil {
		h.Logger.Warn("Cannot notify responder",
			zap.Int64("request_id", req.ID),
			zap.Int64("responder_id", req.ResponderID),
			zap.Error(err))
		return
	}

	text, kb := common.BuildProposalNotification(req, hc.User)
	if err := common.SendHTML(hc.Ctx, hc.Bot, responder.TelegramID, text, kb); err != nil {
		h.Logger.Warn("Failed to notify responder",
			zap.Int64("request_id", req.ID),
			zap.Error(err))
	}
}

// handleRespond принимает или отклоняет запрос и уведомляет инициатора
func (h *Handler) handleRespond(hc *HandlerContext, accept bool) {
	requestID, err := common.ParseIDFromCallback(hc.Callback.Data)
	if err != nil {
		hc.Fail(err, "parse request id")
		return
	}

	req, err := h.SwapService.RespondToSwap(hc.Ctx, hc.User.ID, requestID, accept)
	if err != nil {
		hc.Fail(err, "respond to swap")
		return
	}

	h.attachSlots(hc, req)

	if accept {
		hc.Answer("✅ Обмен выполнен")
	} else {
		hc.Answer("❌ Запрос отклонён")
	}

	requests, err := h.SwapService.ListMyRequests(hc.Ctx, hc.User.ID)
	if err != nil {
		h.Logger.Error("Failed to reload requests", zap.Error(err))
	} else {
		hc.Show(common.BuildRequestsScreen(requests))
	}

	requester, err := h.UserService.GetByID(hc.Ctx, req.RequesterID)
	if err != nil || requester == nil {
		h.Logger.Warn("Cannot notify requester",
			zap.Int64("request_id", req.ID),
			zap.Int64("requester_id", req.RequesterID),
			zap.Error(err))
		return
	}

	text := common.BuildResponseNotification(req, hc.User)
	if err := common.SendHTML(hc.Ctx, hc.Bot, requester.TelegramID, text, nil); err != nil {
		h.Logger.Warn("Failed to notify requester",
			zap.Int64("request_id", req.ID),
			zap.Error(err))
	}
}

// attachSlots подгружает слоты запроса для текста уведомления
func (h *Handler) attachSlots(hc *HandlerContext, req *model.SwapRequest) {
	if req.MySlot == nil {
		req.MySlot, _ = h.SlotService.GetSlot(hc.Ctx, req.MySlotID)
	}
	if req.TheirSlot == nil {
		req.TheirSlot, _ = h.SlotService.GetSlot(hc.Ctx, req.TheirSlotID)
	}
}
