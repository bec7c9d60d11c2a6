package common

import (
	"errors"

	"github.com/Freeeeeet/slotswap_bot/internal/service"
)

// Общие ошибки для обработчиков
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrNoMessage     = errors.New("no message in callback")
	ErrInvalidFormat = errors.New("invalid callback format")
)

// ErrorMessage возвращает пользовательское сообщение для ошибки
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return "❌ Пользователь не найден. Используйте /start"
	case errors.Is(err, ErrNoMessage):
		return "❌ Ошибка обработки сообщения"
	case errors.Is(err, ErrInvalidFormat):
		return "❌ Неверный формат данных"
	case errors.Is(err, service.ErrCompensationFailed):
		// раньше Conflict: данные уже могли измениться
		return "⚠️ Обмен обработан не полностью. Мы уже знаем о проблеме и исправим её вручную"
	case errors.Is(err, service.ErrInvalidArgument):
		return "❌ Некорректные данные"
	case errors.Is(err, service.ErrNotFound):
		return "❌ Не найдено. Возможно, слот или запрос уже удалены"
	case errors.Is(err, service.ErrForbidden):
		return "⛔ Недостаточно прав для этого действия"
	case errors.Is(err, service.ErrConflict):
		return "⏳ Состояние изменилось, пока вы выбирали. Обновите список и попробуйте снова"
	default:
		return "❌ Произошла ошибка"
	}
}
