package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Freeeeeet/slotswap_bot/internal/model"
	"github.com/Freeeeeet/slotswap_bot/internal/repository"
	"go.uber.org/zap"
)

// Ограничения на название слота
const (
	SlotTitleMaxLength = 200
)

// SlotService управляет собственными слотами пользователя.
// Переводит слоты только между BUSY и SWAPPABLE, SWAP_PENDING не трогает
type SlotService struct {
	slots  SlotStore
	logger *zap.Logger
}

func NewSlotService(slots SlotStore, logger *zap.Logger) *SlotService {
	return &SlotService{
		slots:  slots,
		logger: logger,
	}
}

func validateSlot(title string, start, end time.Time) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("title is required: %w", ErrInvalidArgument)
	}
	if utf8.RuneCountInString(title) > SlotTitleMaxLength {
		return "", fmt.Errorf("title is longer than %d characters: %w", SlotTitleMaxLength, ErrInvalidArgument)
	}
	if !end.After(start) {
		return "", fmt.Errorf("end time must be after start time: %w", ErrInvalidArgument)
	}
	return title, nil
}

// CreateSlot создаёт слот пользователя (BUSY, либо сразу SWAPPABLE)
func (s *SlotService) CreateSlot(ctx context.Context, ownerID int64, title string, start, end time.Time, swappable bool) (*model.Slot, error) {
	title, err := validateSlot(title, start, end)
	if err != nil {
		return nil, err
	}

	status := model.SlotStatusBusy
	if swappable {
		status = model.SlotStatusSwappable
	}

	slot := &model.Slot{
		OwnerID:   ownerID,
		Title:     title,
		StartTime: start,
		EndTime:   end,
		Status:    status,
	}

	if err := s.slots.Create(ctx, slot); err != nil {
		return nil, fmt.Errorf("create slot: %w", err)
	}

	s.logger.Info("Slot created",
		zap.Int64("slot_id", slot.ID),
		zap.Int64("owner_id", ownerID),
		zap.String("status", string(status)),
	)

	return slot, nil
}

// GetSlot получает слот по ID
func (s *SlotService) GetSlot(ctx context.Context, slotID int64) (*model.Slot, error) {
	slot, err := s.slots.GetByID(ctx, slotID)
	if err != nil {
		return nil, fmt.Errorf("get slot: %w", err)
	}
	if slot == nil {
		return nil, fmt.Errorf("slot not found: %w", ErrNotFound)
	}
	return slot, nil
}

// ListMySlots получает слоты пользователя по времени начала
func (s *SlotService) ListMySlots(ctx context.Context, ownerID int64) ([]*model.Slot, error) {
	slots, err := s.slots.GetByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get slots: %w", err)
	}
	return slots, nil
}

// getOwned получает слот и проверяет владельца
func (s *SlotService) getOwned(ctx context.Context, ownerID, slotID int64) (*model.Slot, error) {
	slot, err := s.GetSlot(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if slot.OwnerID != ownerID {
		s.logger.Warn("Slot access by non-owner",
			zap.Int64("slot_id", slotID),
			zap.Int64("user_id", ownerID))
		return nil, fmt.Errorf("no permission for this slot: %w", ErrForbidden)
	}
	return slot, nil
}

// UpdateSlot меняет название и время слота
func (s *SlotService) UpdateSlot(ctx context.Context, ownerID, slotID int64, title string, start, end time.Time) (*model.Slot, error) {
	title, err := validateSlot(title, start, end)
	if err != nil {
		return nil, err
	}

	slot, err := s.getOwned(ctx, ownerID, slotID)
	if err != nil {
		return nil, err
	}
	if slot.IsSwapPending() {
		return nil, fmt.Errorf("slot is part of a pending swap: %w", ErrConflict)
	}

	slot.Title = title
	slot.StartTime = start
	slot.EndTime = end

	ok, err := s.slots.UpdateDetails(ctx, slot)
	if err != nil {
		return nil, fmt.Errorf("update slot: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("slot changed concurrently: %w", ErrConflict)
	}

	s.logger.Info("Slot updated", zap.Int64("slot_id", slotID), zap.Int64("owner_id", ownerID))

	return slot, nil
}

// SetSwappable переключает слот между BUSY и SWAPPABLE.
// Повторный вызов с тем же значением ничего не меняет
func (s *SlotService) SetSwappable(ctx context.Context, ownerID, slotID int64, swappable bool) (*model.Slot, error) {
	slot, err := s.getOwned(ctx, ownerID, slotID)
	if err != nil {
		return nil, err
	}

	from, to := model.SlotStatusSwappable, model.SlotStatusBusy
	if swappable {
		from, to = model.SlotStatusBusy, model.SlotStatusSwappable
	}

	if slot.Status == to {
		return slot, nil
	}
	if slot.Status != from {
		return nil, fmt.Errorf("slot is part of a pending swap: %w", ErrConflict)
	}

	ok, err := s.slots.CompareAndSetStatus(ctx, slotID, from, to)
	if err != nil {
		return nil, fmt.Errorf("update slot status: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("slot status changed concurrently: %w", ErrConflict)
	}
	slot.Status = to

	s.logger.Info("Slot status changed",
		zap.Int64("slot_id", slotID),
		zap.String("status", string(to)),
	)

	return slot, nil
}

// DeleteSlot удаляет слот, если он не участвует в обмене и не упоминается в истории
func (s *SlotService) DeleteSlot(ctx context.Context, ownerID, slotID int64) error {
	slot, err := s.getOwned(ctx, ownerID, slotID)
	if err != nil {
		return err
	}
	if slot.IsSwapPending() {
		return fmt.Errorf("slot is part of a pending swap: %w", ErrConflict)
	}

	ok, err := s.slots.Delete(ctx, slotID, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrReferenced) {
			return fmt.Errorf("slot has swap history: %w", ErrConflict)
		}
		return fmt.Errorf("delete slot: %w", err)
	}
	if !ok {
		return fmt.Errorf("slot changed concurrently: %w", ErrConflict)
	}

	s.logger.Info("Slot deleted", zap.Int64("slot_id", slotID), zap.Int64("owner_id", ownerID))

	return nil
}
