package state

// UserState представляет текущее состояние пользователя в диалоге
type UserState string

const (
	StateNone UserState = "" // Нет активного состояния

	// Состояния диалога создания слота
	StateNewSlotTitle    UserState = "new_slot_title"
	StateNewSlotStart    UserState = "new_slot_start"
	StateNewSlotDuration UserState = "new_slot_duration"
)

// Ключи временных данных диалога
const (
	KeySlotTitle = "slot_title"
	KeySlotStart = "slot_start"
)

// UserData хранит временные данные пользователя во время диалога
type UserData struct {
	State UserState
	Data  map[string]interface{} // Временные данные для текущего диалога
}
