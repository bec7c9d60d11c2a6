package common

import (
	"fmt"
	"html"
	"strings"

	"github.com/Freeeeeet/slotswap_bot/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/slotswap_bot/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/slotswap_bot/internal/model"
	"github.com/Freeeeeet/slotswap_bot/internal/service"
	"github.com/go-telegram/bot/models"
)

// Сколько элементов показываем в одном сообщении
const maxListItems = 20

func slotLine(slot *model.Slot) string {
	if slot == nil {
		return "<i>слот удалён</i>"
	}
	return fmt.Sprintf("<b>%s</b> (%s)", html.EscapeString(slot.Title), formatting.FormatTimeRange(slot.StartTime, slot.EndTime))
}

func userName(user *model.User) string {
	if user == nil {
		return "пользователь"
	}
	return html.EscapeString(user.DisplayName())
}

func buttonTitle(slot *model.Slot) string {
	title := []rune(slot.Title)
	if len(title) > 24 {
		title = append(title[:23], '…')
	}
	return fmt.Sprintf("%s · %s", string(title), slot.StartTime.Format("02.01 15:04"))
}

func navigationRow(skip string) []models.InlineKeyboardButton {
	buttons := []struct{ text, data string }{
		{"📋 Мои слоты", ViewMySlots},
		{"🔁 Маркет", ViewMarket},
		{"📨 Запросы", ViewRequests},
	}
	row := make([]models.InlineKeyboardButton, 0, len(buttons))
	for _, btn := range buttons {
		if btn.data != skip {
			row = append(row, keyboard.Button(btn.text, btn.data))
		}
	}
	return row
}

// BuildMySlotsScreen экран "Мои слоты" с переключателем обмена и удалением
func BuildMySlotsScreen(slots []*model.Slot) (string, *models.InlineKeyboardMarkup) {
	kb := keyboard.NewBuilder()

	if len(slots) == 0 {
		kb.Row(keyboard.Button("➕ Новый слот", NewSlot))
		kb.Row(navigationRow(ViewMySlots)...)
		return "📋 <b>Мои слоты</b>\n\nУ вас пока нет слотов. Создайте первый через /newslot", kb.Build()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📋 <b>Мои слоты</b> (%d %s)\n\n", len(slots), formatting.PluralizeSlots(len(slots)))

	for i, slot := range slots {
		if i == maxListItems {
			fmt.Fprintf(&sb, "… и ещё %d\n", len(slots)-maxListItems)
			break
		}
		fmt.Fprintf(&sb, "%d. %s\n    %s\n", i+1, slotLine(slot), formatting.GetSlotStatusDisplay(slot.Status))

		switch slot.Status {
		case model.SlotStatusBusy:
			kb.Row(
				keyboard.ButtonID(fmt.Sprintf("%d. 🔄 Отдать на обмен", i+1), ToggleSlot, slot.ID),
				keyboard.ButtonID("🗑", DeleteSlot, slot.ID),
			)
		case model.SlotStatusSwappable:
			kb.Row(
				keyboard.ButtonID(fmt.Sprintf("%d. 🔒 Снять с обмена", i+1), ToggleSlot, slot.ID),
				keyboard.ButtonID("🗑", DeleteSlot, slot.ID),
			)
		}
	}

	kb.Row(keyboard.Button("➕ Новый слот", NewSlot), keyboard.Button("🗓 Неделя", ViewWeek))
	kb.Row(navigationRow(ViewMySlots)...)

	return sb.String(), kb.Build()
}

// BuildDeleteConfirmScreen подтверждение удаления слота
func BuildDeleteConfirmScreen(slot *model.Slot) (string, *models.InlineKeyboardMarkup) {
	text := fmt.Sprintf("🗑 Удалить слот %s?\n\nДействие нельзя отменить.", slotLine(slot))
	kb := keyboard.NewBuilder().
		Row(
			keyboard.ButtonID("✅ Удалить", ConfirmDelete, slot.ID),
			keyboard.Button("⬅️ Назад", ViewMySlots),
		).
		Build()
	return text, kb
}

// BuildMarketScreen чужие слоты, доступные для обмена
func BuildMarketScreen(slots []*model.Slot) (string, *models.InlineKeyboardMarkup) {
	kb := keyboard.NewBuilder()

	if len(slots) == 0 {
		kb.Row(navigationRow(ViewMarket)...)
		return "🔁 <b>Маркет</b>\n\nСейчас никто не предлагает слоты для обмена.", kb.Build()
	}

	var sb strings.Builder
	sb.WriteString("🔁 <b>Маркет</b>\n\nВыберите слот, который хотите получить:\n\n")

	for i, slot := range slots {
		if i == maxListItems {
			fmt.Fprintf(&sb, "… и ещё %d\n", len(slots)-maxListItems)
			break
		}
		fmt.Fprintf(&sb, "%d. %s\n    👤 %s\n", i+1, slotLine(slot), userName(slot.Owner))
		kb.Row(keyboard.ButtonID(fmt.Sprintf("%d. %s", i+1, buttonTitle(slot)), SwapTarget, slot.ID))
	}

	kb.Row(navigationRow(ViewMarket)...)
	return sb.String(), kb.Build()
}

// BuildOfferScreen выбор своего слота в обмен на target
func BuildOfferScreen(target *model.Slot, mine []*model.Slot) (string, *models.InlineKeyboardMarkup) {
	kb := keyboard.NewBuilder()

	var offers []*model.Slot
	for _, slot := range mine {
		if slot.IsSwappable() {
			offers = append(offers, slot)
		}
	}

	if len(offers) == 0 {
		kb.Row(keyboard.Button("📋 Мои слоты", ViewMySlots), keyboard.Button("⬅️ Назад", ViewMarket))
		text := fmt.Sprintf("🔁 Вы выбрали %s\n\n"+
			"У вас нет слотов, доступных для обмена. Отметьте слот кнопкой «Отдать на обмен» в /myslots.",
			slotLine(target))
		return text, kb.Build()
	}

	text := fmt.Sprintf("🔁 Вы выбрали %s\n👤 %s\n\nКакой из своих слотов предложите взамен?",
		slotLine(target), userName(target.Owner))

	for i, slot := range offers {
		if i == maxListItems {
			break
		}
		kb.Row(keyboard.ButtonID(buttonTitle(slot), SwapOffer, target.ID, slot.ID))
	}
	kb.Row(keyboard.Button("⬅️ Назад", ViewMarket))

	return text, kb.Build()
}

// BuildRequestsScreen входящие и исходящие запросы на обмен
func BuildRequestsScreen(requests *service.MyRequests) (string, *models.InlineKeyboardMarkup) {
	kb := keyboard.NewBuilder()
	var sb strings.Builder

	sb.WriteString("📨 <b>Запросы на обмен</b>\n\n")

	sb.WriteString("<b>Входящие</b>\n")
	if len(requests.Incoming) == 0 {
		sb.WriteString("— нет\n")
	}
	for i, req := range requests.Incoming {
		if i == maxListItems {
			fmt.Fprintf(&sb, "… и ещё %d\n", len(requests.Incoming)-maxListItems)
			break
		}
		fmt.Fprintf(&sb, "#%d %s\n    %s предлагает %s\n    за ваш %s\n",
			req.ID, formatting.GetSwapRequestStatusDisplay(req.Status),
			userName(req.Requester), slotLine(req.MySlot), slotLine(req.TheirSlot))

		if req.IsPending() {
			kb.Row(
				keyboard.ButtonID(fmt.Sprintf("✅ Принять #%d", req.ID), SwapAccept, req.ID),
				keyboard.ButtonID(fmt.Sprintf("❌ Отклонить #%d", req.ID), SwapReject, req.ID),
			)
		}
	}

	sb.WriteString("\n<b>Исходящие</b>\n")
	if len(requests.Outgoing) == 0 {
		sb.WriteString("— нет\n")
	}
	for i, req := range requests.Outgoing {
		if i == maxListItems {
			fmt.Fprintf(&sb, "… и ещё %d\n", len(requests.Outgoing)-maxListItems)
			break
		}
		fmt.Fprintf(&sb, "#%d %s\n    ваш %s\n    на %s у %s\n",
			req.ID, formatting.GetSwapRequestStatusDisplay(req.Status),
			slotLine(req.MySlot), slotLine(req.TheirSlot), userName(req.Responder))
	}

	kb.Row(navigationRow(ViewRequests)...)
	return sb.String(), kb.Build()
}

// BuildProposalNotification сообщение владельцу целевого слота о новом запросе
func BuildProposalNotification(req *model.SwapRequest, requester *model.User) (string, *models.InlineKeyboardMarkup) {
	text := fmt.Sprintf("📨 <b>Новый запрос на обмен #%d</b>\n\n"+
		"%s предлагает свой слот %s\nв обмен на ваш %s",
		req.ID, userName(requester), slotLine(req.MySlot), slotLine(req.TheirSlot))

	kb := keyboard.NewBuilder().
		Row(
			keyboard.ButtonID("✅ Принять", SwapAccept, req.ID),
			keyboard.ButtonID("❌ Отклонить", SwapReject, req.ID),
		).
		Build()
	return text, kb
}

// BuildResponseNotification сообщение инициатору об ответе на его запрос
func BuildResponseNotification(req *model.SwapRequest, responder *model.User) string {
	if req.Status == model.SwapRequestStatusAccepted {
		return fmt.Sprintf("✅ %s принял(а) обмен #%d.\n\nТеперь слот %s ваш, а %s передан взамен.",
			userName(responder), req.ID, slotLine(req.TheirSlot), slotLine(req.MySlot))
	}
	return fmt.Sprintf("❌ %s отклонил(а) обмен #%d.\n\nВаш слот %s снова доступен для обмена.",
		userName(responder), req.ID, slotLine(req.MySlot))
}
