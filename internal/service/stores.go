package service

import (
	"context"

	"github.com/Freeeeeet/slotswap_bot/internal/model"
)

// SlotStore хранилище слотов. Все методы поиска возвращают nil, nil если запись не найдена
type SlotStore interface {
	Create(ctx context.Context, slot *model.Slot) error
	GetByID(ctx context.Context, id int64) (*model.Slot, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*model.Slot, error)
	GetByOwnerID(ctx context.Context, ownerID int64) ([]*model.Slot, error)
	GetByStatus(ctx context.Context, status model.SlotStatus) ([]*model.Slot, error)
	GetSwappable(ctx context.Context, excludeOwnerID int64) ([]*model.Slot, error)

	// CompareAndSetStatus атомарно меняет статус, только если текущий равен expected
	CompareAndSetStatus(ctx context.Context, slotID int64, expected, next model.SlotStatus) (bool, error)
	SetStatus(ctx context.Context, slotID int64, status model.SlotStatus) error
	Reassign(ctx context.Context, slotID, ownerID int64, status model.SlotStatus) error

	UpdateDetails(ctx context.Context, slot *model.Slot) (bool, error)
	Delete(ctx context.Context, slotID, ownerID int64) (bool, error)
}

// SwapRequestStore журнал запросов на обмен
type SwapRequestStore interface {
	Create(ctx context.Context, req *model.SwapRequest) error
	GetByID(ctx context.Context, id int64) (*model.SwapRequest, error)

	// CompareAndSetStatus атомарно меняет статус, только если текущий равен expected
	CompareAndSetStatus(ctx context.Context, id int64, expected, next model.SwapRequestStatus) (bool, error)

	GetByResponderID(ctx context.Context, responderID int64) ([]*model.SwapRequest, error)
	GetByRequesterID(ctx context.Context, requesterID int64) ([]*model.SwapRequest, error)
	GetPending(ctx context.Context) ([]*model.SwapRequest, error)
}

// UserDirectory источник отображаемых данных пользователей
type UserDirectory interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*model.User, error)
}
