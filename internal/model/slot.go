package model

import "time"

type SlotStatus string

const (
	SlotStatusBusy        SlotStatus = "BUSY"
	SlotStatusSwappable   SlotStatus = "SWAPPABLE"
	SlotStatusSwapPending SlotStatus = "SWAP_PENDING" // зарезервирован ровно одним открытым запросом
)

// Slot - интервал времени [StartTime, EndTime), принадлежащий одному пользователю
type Slot struct {
	ID        int64      `json:"id"`
	OwnerID   int64      `json:"owner_id"`
	Title     string     `json:"title"`
	StartTime time.Time  `json:"start_time"`
	EndTime   time.Time  `json:"end_time"`
	Status    SlotStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// Заполняется только для отображения (не из БД)
	Owner *User `json:"owner,omitempty"`
}

// IsSwappable проверяет что слот можно предложить или запросить для обмена
func (s *Slot) IsSwappable() bool {
	return s.Status == SlotStatusSwappable
}

// IsSwapPending проверяет что слот зарезервирован обменом
func (s *Slot) IsSwapPending() bool {
	return s.Status == SlotStatusSwapPending
}
