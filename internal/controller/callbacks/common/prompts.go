package common

// Подсказки диалога создания слота
const (
	PromptSlotTitle = "➕ <b>Новый слот</b>\n\nВведите название (например, «Стендап» или «Спортзал»).\n\n/cancel - отменить"
	PromptSlotStart = "🕐 Когда начинается слот? Формат: <code>ДД.ММ.ГГГГ ЧЧ:ММ</code>, например <code>19.10.2026 09:30</code>"
	PromptDuration  = "⏱ Сколько минут длится слот? Например, <code>30</code> или <code>90</code>"
)
