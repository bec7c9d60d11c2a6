package common

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/slotswap_bot/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// AnswerCallback отвечает на callback query (без alert)
func AnswerCallback(ctx context.Context, b *bot.Bot, callbackID string, text string) {
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       false,
	})
}

// AnswerCallbackAlert отвечает на callback query с alert (всплывающее окно)
func AnswerCallbackAlert(ctx context.Context, b *bot.Bot, callbackID string, text string) {
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       true,
	})
}

// GetMessageFromCallback извлекает сообщение из callback query
func GetMessageFromCallback(callback *models.CallbackQuery) *models.Message {
	if callback.Message.Message != nil {
		return callback.Message.Message
	}
	return nil
}

// ParseIDsFromCallback извлекает ID из callback data.
// Например: "swap_offer:12:34" -> [12 34]
func ParseIDsFromCallback(data string, count int) ([]int64, error) {
	parts := strings.Split(data, ":")
	if len(parts) != count+1 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFormat, data)
	}

	ids := make([]int64, 0, count)
	for _, part := range parts[1:] {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidFormat, data)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ParseIDFromCallback извлекает один ID: "toggle_slot:123" -> 123
func ParseIDFromCallback(data string) (int64, error) {
	ids, err := ParseIDsFromCallback(data, 1)
	if err != nil {
		return 0, err
	}
	return ids[0], nil
}

// CallbackData собирает callback data из префикса и ID
func CallbackData(prefix string, ids ...int64) string {
	var sb strings.Builder
	sb.WriteString(prefix)
	for i, id := range ids {
		if i > 0 {
			sb.WriteByte(':')
		}
		sb.WriteString(strconv.FormatInt(id, 10))
	}
	return sb.String()
}

// IsMessageNotModifiedError Telegram отвечает ошибкой, если текст и клавиатура не изменились
func IsMessageNotModifiedError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "message is not modified")
}

// SendHTML отправляет сообщение с HTML-разметкой
func SendHTML(ctx context.Context, b *bot.Bot, chatID int64, text string, keyboard *models.InlineKeyboardMarkup) error {
	params := &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	}
	if keyboard != nil {
		params.ReplyMarkup = keyboard
	}
	_, err := b.SendMessage(ctx, params)
	return err
}

// SendWeekImage отправляет картинку недели со слотами пользователя
func SendWeekImage(ctx context.Context, b *bot.Bot, chatID int64, slots []*model.Slot, now time.Time) error {
	data, err := RenderWeekImage(now, slots, now)
	if err != nil {
		return err
	}

	start := WeekStart(now)
	_, err = b.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID: chatID,
		Photo: &models.InputFileUpload{
			Filename: "week.png",
			Data:     bytes.NewReader(data),
		},
		Caption: fmt.Sprintf("🗓 Неделя %s - %s", start.Format("02.01"), start.AddDate(0, 0, 6).Format("02.01")),
	})
	return err
}
