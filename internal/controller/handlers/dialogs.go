package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Freeeeeet/slotswap_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/slotswap_bot/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/slotswap_bot/internal/controller/state"
	"github.com/Freeeeeet/slotswap_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleNewSlotStart начинает диалог создания слота (/newslot)
func (h *Handlers) HandleNewSlotStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}

	telegramID := update.Message.From.ID

	h.logger.Info("Starting slot creation",
		zap.Int64("telegram_id", telegramID),
		zap.Int64("user_id", user.ID))

	h.stateManager.ClearState(telegramID)
	h.stateManager.SetState(telegramID, state.StateNewSlotTitle)

	h.sendScreen(ctx, b, update.Message.Chat.ID, common.PromptSlotTitle, nil)
}

// handleNewSlotTitleStep обрабатывает ввод названия слота
func (h *Handlers) handleNewSlotTitleStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	title := strings.TrimSpace(update.Message.Text)

	if title == "" {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Название не может быть пустым.\n\nПопробуйте ещё раз:")
		return
	}
	if len([]rune(title)) > service.SlotTitleMaxLength {
		h.sendError(ctx, b, update.Message.Chat.ID,
			fmt.Sprintf("❌ Название слишком длинное. Максимум %d символов.\n\nПопробуйте ещё раз:", service.SlotTitleMaxLength))
		return
	}

	h.stateManager.SetData(telegramID, state.KeySlotTitle, title)
	h.stateManager.SetState(telegramID, state.StateNewSlotStart)

	h.sendScreen(ctx, b, update.Message.Chat.ID, common.PromptSlotStart, nil)
}

// handleNewSlotStartStep обрабатывает ввод времени начала
func (h *Handlers) handleNewSlotStartStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID

	start, err := parseSlotStart(update.Message.Text, h.location, h.now())
	switch {
	case errors.Is(err, errStartInPast):
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Это время уже прошло. Введите время в будущем:")
		return
	case err != nil:
		h.sendError(ctx, b, update.Message.Chat.ID,
			"❌ Не получилось разобрать дату. Нужен формат ДД.ММ.ГГГГ ЧЧ:ММ, например 19.10.2026 09:30")
		return
	}

	h.stateManager.SetData(telegramID, state.KeySlotStart, start)
	h.stateManager.SetState(telegramID, state.StateNewSlotDuration)

	h.sendScreen(ctx, b, update.Message.Chat.ID, common.PromptDuration, nil)
}

// handleNewSlotDurationStep обрабатывает ввод длительности и создаёт слот
func (h *Handlers) handleNewSlotDurationStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	duration, err := parseDurationMinutes(update.Message.Text)
	if err != nil {
		h.sendError(ctx, b, chatID,
			fmt.Sprintf("❌ Длительность - целое число минут от %d до %d.\n\nПопробуйте ещё раз:", SlotMinDuration, SlotMaxDuration))
		return
	}

	title := h.stateManager.GetString(telegramID, state.KeySlotTitle)
	start, ok := h.stateManager.GetTime(telegramID, state.KeySlotStart)
	if title == "" || !ok {
		h.logger.Warn("Slot dialog data lost", zap.Int64("telegram_id", telegramID))
		h.stateManager.ClearState(telegramID)
		h.sendError(ctx, b, chatID, "❌ Данные диалога потерялись. Начните заново: /newslot")
		return
	}

	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}

	slot, err := h.slotService.CreateSlot(ctx, user.ID, title, start, start.Add(duration), false)
	if err != nil {
		h.logger.Error("Failed to create slot", zap.Int64("user_id", user.ID), zap.Error(err))
		h.sendError(ctx, b, chatID, common.ErrorMessage(err))
		return
	}

	h.stateManager.ClearState(telegramID)

	h.logger.Info("Slot created via dialog",
		zap.Int64("user_id", user.ID),
		zap.Int64("slot_id", slot.ID))

	slots, err := h.slotService.ListMySlots(ctx, user.ID)
	if err != nil {
		h.logger.Error("Failed to list slots", zap.Int64("user_id", user.ID), zap.Error(err))
		return
	}

	text, kb := common.BuildMySlotsScreen(slots)
	created := fmt.Sprintf("✅ Слот создан: %s, %s\n\n",
		formatting.FormatDateTime(slot.StartTime), formatting.FormatDuration(int(duration.Minutes())))
	h.sendScreen(ctx, b, chatID, created+text, kb)
}
