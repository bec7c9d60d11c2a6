package model

import "time"

type SwapRequestStatus string

const (
	SwapRequestStatusPending  SwapRequestStatus = "PENDING"  // Ожидает ответа
	SwapRequestStatusAccepted SwapRequestStatus = "ACCEPTED" // Принят, владельцы обменяны
	SwapRequestStatusRejected SwapRequestStatus = "REJECTED" // Отклонён, слоты освобождены
)

// SwapRequest - предложение обменять MySlot (слот инициатора) на TheirSlot
type SwapRequest struct {
	ID          int64             `json:"id"`
	RequesterID int64             `json:"requester_id"`
	ResponderID int64             `json:"responder_id"` // владелец TheirSlot на момент создания
	MySlotID    int64             `json:"my_slot_id"`
	TheirSlotID int64             `json:"their_slot_id"`
	Status      SwapRequestStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`

	// Дополнительные поля для удобства (не из БД)
	MySlot    *Slot `json:"my_slot,omitempty"`
	TheirSlot *Slot `json:"their_slot,omitempty"`
	Requester *User `json:"requester,omitempty"`
	Responder *User `json:"responder,omitempty"`
}

// IsPending проверяет что запрос ещё ждёт ответа
func (r *SwapRequest) IsPending() bool {
	return r.Status == SwapRequestStatusPending
}

// Holds проверяет что запрос ссылается на слот
func (r *SwapRequest) Holds(slotID int64) bool {
	return r.MySlotID == slotID || r.TheirSlotID == slotID
}
