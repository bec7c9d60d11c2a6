package callbacks

import (
	"context"
	"strings"

	"github.com/Freeeeeet/slotswap_bot/internal/controller/callbacks/common"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleCallbackQuery обрабатывает нажатия на inline кнопки
func (h *Handler) HandleCallbackQuery(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	h.Route(ctx, b, update.CallbackQuery)
}

// Route распределяет callback query по соответствующим обработчикам
func (h *Handler) Route(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	data := callback.Data

	h.Logger.Info("Routing callback",
		zap.String("data", data),
		zap.Int64("user_id", callback.From.ID),
		zap.String("user_name", callback.From.FirstName))

	switch {
	case data == common.Noop:
		common.AnswerCallback(ctx, b, callback.ID, "")

	// ===== Навигация =====
	case data == common.ViewMySlots:
		h.withUser(ctx, b, callback, h.handleViewMySlots)
	case data == common.ViewMarket:
		h.withUser(ctx, b, callback, h.handleViewMarket)
	case data == common.ViewRequests:
		h.withUser(ctx, b, callback, h.handleViewRequests)
	case data == common.ViewWeek:
		h.withUser(ctx, b, callback, h.handleViewWeek)

	// ===== Слоты =====
	case data == common.NewSlot:
		h.withUser(ctx, b, callback, h.handleNewSlot)
	case strings.HasPrefix(data, common.ToggleSlot):
		h.withUser(ctx, b, callback, h.handleToggleSlot)
	case strings.HasPrefix(data, common.DeleteSlot):
		h.withUser(ctx, b, callback, h.handleDeleteSlot)
	case strings.HasPrefix(data, common.ConfirmDelete):
		h.withUser(ctx, b, callback, h.handleConfirmDelete)

	// ===== Обмен =====
	case strings.HasPrefix(data, common.SwapTarget):
		h.withUser(ctx, b, callback, h.handleSwapTarget)
	case strings.HasPrefix(data, common.SwapOffer):
		h.withUser(ctx, b, callback, h.handleSwapOffer)
	case strings.HasPrefix(data, common.SwapAccept):
		h.withUser(ctx, b, callback, func(hc *HandlerContext) { h.handleRespond(hc, true) })
	case strings.HasPrefix(data, common.SwapReject):
		h.withUser(ctx, b, callback, func(hc *HandlerContext) { h.handleRespond(hc, false) })

	default:
		h.Logger.Warn("Unknown callback data", zap.String("data", data))
		common.AnswerCallback(ctx, b, callback.ID, "❓ Неизвестная команда")
	}
}
