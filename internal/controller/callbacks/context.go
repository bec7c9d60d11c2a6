package callbacks

import (
	"context"

	"github.com/Freeeeeet/slotswap_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/slotswap_bot/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandlerContext содержит общие данные для обработки одного callback
type HandlerContext struct {
	Ctx        context.Context
	Bot        *bot.Bot
	Callback   *models.CallbackQuery
	Handler    *Handler
	Message    *models.Message
	User       *model.User
	TelegramID int64
	ChatID     int64
}

func newHandlerContext(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *Handler) *HandlerContext {
	msg := common.GetMessageFromCallback(callback)
	chatID := callback.From.ID
	if msg != nil {
		chatID = msg.Chat.ID
	}

	return &HandlerContext{
		Ctx:        ctx,
		Bot:        b,
		Callback:   callback,
		Handler:    h,
		Message:    msg,
		TelegramID: callback.From.ID,
		ChatID:     chatID,
	}
}

// withUser загружает пользователя и вызывает handler.
// Незарегистрированному пользователю сразу отвечает alert-ом
func (h *Handler) withUser(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, handler func(*HandlerContext)) {
	hc := newHandlerContext(ctx, b, callback, h)

	user, err := h.UserService.GetByTelegramID(ctx, hc.TelegramID)
	if err == nil && user == nil {
		err = common.ErrUserNotFound
	}
	if err != nil {
		h.Logger.Error("Failed to load user",
			zap.Int64("telegram_id", hc.TelegramID),
			zap.Error(err))
		hc.AnswerAlert(common.ErrorMessage(err))
		return
	}
	hc.User = user

	handler(hc)
}

// Answer отвечает на callback query
func (hc *HandlerContext) Answer(text string) {
	common.AnswerCallback(hc.Ctx, hc.Bot, hc.Callback.ID, text)
}

// AnswerAlert отвечает на callback query с alert
func (hc *HandlerContext) AnswerAlert(text string) {
	common.AnswerCallbackAlert(hc.Ctx, hc.Bot, hc.Callback.ID, text)
}

// Fail логирует ошибку операции и показывает пользователю понятное сообщение
func (hc *HandlerContext) Fail(err error, operation string) {
	hc.Handler.Logger.Error("Operation failed",
		zap.String("operation", operation),
		zap.Int64("telegram_id", hc.TelegramID),
		zap.Error(err))
	hc.AnswerAlert(common.ErrorMessage(err))
}

// Show заменяет текущее сообщение экраном, а если редактировать нечего, отправляет новое
func (hc *HandlerContext) Show(text string, keyboard *models.InlineKeyboardMarkup) {
	if hc.Message == nil {
		if err := common.SendHTML(hc.Ctx, hc.Bot, hc.ChatID, text, keyboard); err != nil {
			hc.Handler.Logger.Error("Failed to send message", zap.Error(err))
		}
		return
	}

	params := &bot.EditMessageTextParams{
		ChatID:    hc.ChatID,
		MessageID: hc.Message.ID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	}
	if keyboard != nil {
		params.ReplyMarkup = keyboard
	}

	_, err := hc.Bot.EditMessageText(hc.Ctx, params)
	if err != nil && !common.IsMessageNotModifiedError(err) {
		hc.Handler.Logger.Error("Failed to edit message",
			zap.Int64("telegram_id", hc.TelegramID),
			zap.Error(err))
	}
}
