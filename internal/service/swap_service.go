package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/slotswap_bot/internal/model"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// SwapConfig настройки движка обмена
type SwapConfig struct {
	// OpTimeout ограничивает одну операцию целиком (0 - без ограничения)
	OpTimeout time.Duration
	// CompensationRetries количество повторов компенсирующей записи
	CompensationRetries uint64
	// CompensationBackoff начальная пауза экспоненциального backoff
	CompensationBackoff time.Duration
	// CompensationTimeout общий лимит времени на компенсацию одного слота
	CompensationTimeout time.Duration
}

// DefaultSwapConfig возвращает настройки по умолчанию
func DefaultSwapConfig() SwapConfig {
	return SwapConfig{
		OpTimeout:           5 * time.Second,
		CompensationRetries: 5,
		CompensationBackoff: 50 * time.Millisecond,
		CompensationTimeout: 10 * time.Second,
	}
}

// SwapService резервирует слоты под обмен и ведёт запрос от PENDING до ACCEPTED/REJECTED.
// Единственный, кто пишет SWAP_PENDING в слоты и статус в запросы.
// Корректность держится только на compare-and-set хранилища, без блокировок в процессе
type SwapService struct {
	slots    SlotStore
	requests SwapRequestStore
	users    UserDirectory
	cfg      SwapConfig
	logger   *zap.Logger
	now      func() time.Time
}

func NewSwapService(
	slots SlotStore,
	requests SwapRequestStore,
	users UserDirectory,
	cfg SwapConfig,
	logger *zap.Logger,
) *SwapService {
	defaults := DefaultSwapConfig()
	if cfg.CompensationBackoff <= 0 {
		cfg.CompensationBackoff = defaults.CompensationBackoff
	}
	if cfg.CompensationTimeout <= 0 {
		cfg.CompensationTimeout = defaults.CompensationTimeout
	}

	return &SwapService{
		slots:    slots,
		requests: requests,
		users:    users,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *SwapService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.OpTimeout > 0 {
		return context.WithTimeout(ctx, s.cfg.OpTimeout)
	}
	return context.WithCancel(ctx)
}

// ProposeSwap резервирует mySlot и theirSlot и создаёт PENDING запрос.
//
// Порядок захвата: сначала свой слот, потом чужой. Если чужой захватить не удалось,
// свой слот возвращается в SWAPPABLE до возврата ErrConflict
func (s *SwapService) ProposeSwap(ctx context.Context, requesterID, mySlotID, theirSlotID int64) (*model.SwapRequest, error) {
	if mySlotID == theirSlotID {
		return nil, fmt.Errorf("cannot swap a slot with itself: %w", ErrInvalidArgument)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	log := s.logger.With(
		zap.String("op_id", uuid.NewString()),
		zap.Int64("requester_id", requesterID),
		zap.Int64("my_slot_id", mySlotID),
		zap.Int64("their_slot_id", theirSlotID),
	)

	mySlot, err := s.slots.GetByID(ctx, mySlotID)
	if err != nil {
		return nil, fmt.Errorf("get offered slot: %w", err)
	}
	theirSlot, err := s.slots.GetByID(ctx, theirSlotID)
	if err != nil {
		return nil, fmt.Errorf("get target slot: %w", err)
	}

	if mySlot == nil || theirSlot == nil {
		return nil, fmt.Errorf("one or both slots not found: %w", ErrNotFound)
	}

	if mySlot.OwnerID != requesterID {
		log.Warn("Swap proposed with a slot the requester does not own",
			zap.Int64("owner_id", mySlot.OwnerID))
		return nil, fmt.Errorf("must own offered slot: %w", ErrForbidden)
	}

	if theirSlot.OwnerID == requesterID {
		return nil, fmt.Errorf("target slot already yours: %w", ErrInvalidArgument)
	}

	if !mySlot.IsSwappable() || !theirSlot.IsSwappable() {
		return nil, fmt.Errorf("both slots must be swappable: %w", ErrConflict)
	}

	// Фаза 1: свой слот
	ok, err := s.slots.CompareAndSetStatus(ctx, mySlotID, model.SlotStatusSwappable, model.SlotStatusSwapPending)
	if err != nil {
		return nil, fmt.Errorf("reserve offered slot: %w", err)
	}
	if !ok {
		log.Info("Offered slot was taken before reservation")
		return nil, fmt.Errorf("failed to reserve your slot, try again: %w", ErrConflict)
	}

	// Фаза 2: чужой слот, при неудаче откатываем фазу 1
	ok, err = s.slots.CompareAndSetStatus(ctx, theirSlotID, model.SlotStatusSwappable, model.SlotStatusSwapPending)
	if err != nil || !ok {
		if cerr := s.releaseSlots(ctx, log, mySlotID); cerr != nil {
			return nil, cerr
		}
		if err != nil {
			log.Error("Target slot reservation outcome unknown", zap.Error(err))
			return nil, fmt.Errorf("reserve target slot: %w", err)
		}
		log.Info("Target slot was taken, offered slot released")
		return nil, fmt.Errorf("failed to reserve their slot, it may have been taken: %w", ErrConflict)
	}

	req := &model.SwapRequest{
		RequesterID: requesterID,
		ResponderID: theirSlot.OwnerID,
		MySlotID:    mySlotID,
		TheirSlotID: theirSlotID,
		Status:      model.SwapRequestStatusPending,
		CreatedAt:   s.now(),
	}

	if err := s.requests.Create(ctx, req); err != nil {
		// Без запроса резерв никто не снимет
		if cerr := s.releaseSlots(ctx, log, mySlotID, theirSlotID); cerr != nil {
			return nil, cerr
		}
		return nil, fmt.Errorf("create swap request: %w", err)
	}

	mySlot.Status = model.SlotStatusSwapPending
	theirSlot.Status = model.SlotStatusSwapPending
	req.MySlot = mySlot
	req.TheirSlot = theirSlot

	log.Info("Swap proposed",
		zap.Int64("request_id", req.ID),
		zap.Int64("responder_id", req.ResponderID),
	)

	return req, nil
}

// RespondToSwap принимает или отклоняет запрос. Отвечать может только ResponderID,
// и только один раз: статус запроса переводится через compare-and-set
func (s *SwapService) RespondToSwap(ctx context.Context, responderID, requestID int64, accept bool) (*model.SwapRequest, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	log := s.logger.With(
		zap.String("op_id", uuid.NewString()),
		zap.Int64("responder_id", responderID),
		zap.Int64("request_id", requestID),
		zap.Bool("accept", accept),
	)

	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("get swap request: %w", err)
	}

	if req == nil {
		return nil, fmt.Errorf("swap request not found: %w", ErrNotFound)
	}

	if req.ResponderID != responderID {
		log.Warn("Swap response from a user who is not the responder",
			zap.Int64("expected_responder_id", req.ResponderID))
		return nil, fmt.Errorf("only the responder can answer: %w", ErrForbidden)
	}

	if !req.IsPending() {
		return nil, fmt.Errorf("swap request already processed: %w", ErrConflict)
	}

	if accept {
		return s.accept(ctx, log, req)
	}
	return s.reject(ctx, log, req)
}

// claim переводит запрос из PENDING в терминальный статус. Это единственная точка,
// которую может пройти только один ответ
func (s *SwapService) claim(ctx context.Context, req *model.SwapRequest, status model.SwapRequestStatus) error {
	ok, err := s.requests.CompareAndSetStatus(ctx, req.ID, model.SwapRequestStatusPending, status)
	if err != nil {
		return fmt.Errorf("update swap request status: %w", err)
	}
	if !ok {
		return fmt.Errorf("swap request already processed: %w", ErrConflict)
	}
	req.Status = status
	req.UpdatedAt = s.now()
	return nil
}

func (s *SwapService) reject(ctx context.Context, log *zap.Logger, req *model.SwapRequest) (*model.SwapRequest, error) {
	// Сначала фиксируем исход, потом освобождаем слоты
	if err := s.claim(ctx, req, model.SwapRequestStatusRejected); err != nil {
		return nil, err
	}

	var errs []error
	for _, slotID := range []int64{req.MySlotID, req.TheirSlotID} {
		err := s.compensate(ctx, log, "revert slot", slotID, func(ctx context.Context) error {
			return s.slots.SetStatus(ctx, slotID, model.SlotStatusSwappable)
		})
		if err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	log.Info("Swap rejected",
		zap.Int64("my_slot_id", req.MySlotID),
		zap.Int64("their_slot_id", req.TheirSlotID),
	)

	return req, nil
}

func (s *SwapService) accept(ctx context.Context, log *zap.Logger, req *model.SwapRequest) (*model.SwapRequest, error) {
	mySlot, err := s.slots.GetByID(ctx, req.MySlotID)
	if err != nil {
		return nil, fmt.Errorf("get offered slot: %w", err)
	}
	theirSlot, err := s.slots.GetByID(ctx, req.TheirSlotID)
	if err != nil {
		return nil, fmt.Errorf("get target slot: %w", err)
	}
	if mySlot == nil || theirSlot == nil {
		log.Error("Pending swap request references a missing slot")
		return nil, fmt.Errorf("swap request %d references a missing slot", req.ID)
	}

	// Пока слоты в SWAP_PENDING, владельцы не меняются: читать их до claim безопасно
	myOwner, theirOwner := mySlot.OwnerID, theirSlot.OwnerID

	if err := s.claim(ctx, req, model.SwapRequestStatusAccepted); err != nil {
		return nil, err
	}

	var errs []error
	commits := []struct {
		slot  *model.Slot
		owner int64
	}{
		{mySlot, theirOwner},
		{theirSlot, myOwner},
	}
	for _, c := range commits {
		slot, owner := c.slot, c.owner
		err := s.compensate(ctx, log, "commit slot", slot.ID, func(ctx context.Context) error {
			return s.slots.Reassign(ctx, slot.ID, owner, model.SlotStatusBusy)
		})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		slot.OwnerID = owner
		slot.Status = model.SlotStatusBusy
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	req.MySlot = mySlot
	req.TheirSlot = theirSlot

	log.Info("Swap accepted",
		zap.Int64("my_slot_id", req.MySlotID),
		zap.Int64("their_slot_id", req.TheirSlotID),
		zap.Int64("requester_id", req.RequesterID),
	)

	return req, nil
}

// releaseSlots снимает резерв, поставленный этим же вызовом ProposeSwap
func (s *SwapService) releaseSlots(ctx context.Context, log *zap.Logger, slotIDs ...int64) error {
	var errs []error
	for _, slotID := range slotIDs {
		err := s.compensate(ctx, log, "release slot", slotID, func(ctx context.Context) error {
			ok, err := s.slots.CompareAndSetStatus(ctx, slotID, model.SlotStatusSwapPending, model.SlotStatusSwappable)
			if err != nil {
				return err
			}
			if !ok {
				return errNotReserved
			}
			return nil
		})
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// errNotReserved - слот, который мы сами зарезервировали, уже не в SWAP_PENDING
var errNotReserved = errors.New("slot is no longer swap pending")

// compensate выполняет корректирующую запись с повторами. Если запись так и не прошла,
// инварианты нарушены: пишем отдельный error-лог с incident_id и возвращаем ErrCompensationFailed
func (s *SwapService) compensate(ctx context.Context, log *zap.Logger, action string, slotID int64, write func(ctx context.Context) error) error {
	// Компенсация должна дойти до конца даже если вызывающий уже отменил контекст
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.CompensationTimeout)
	defer cancel()

	backoff := retry.WithMaxRetries(s.cfg.CompensationRetries, retry.NewExponential(s.cfg.CompensationBackoff))

	attempts := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++
		err := write(ctx)
		if err == nil || errors.Is(err, errNotReserved) {
			return err
		}
		log.Warn("Compensating write failed, retrying",
			zap.String("action", action),
			zap.Int64("slot_id", slotID),
			zap.Int("attempt", attempts),
			zap.Error(err))
		return retry.RetryableError(err)
	})
	if err == nil {
		return nil
	}

	incidentID := uuid.NewString()
	log.Error("Compensation failed, slot requires reconciliation",
		zap.Bool("compensation_failed", true),
		zap.String("incident_id", incidentID),
		zap.String("action", action),
		zap.Int64("slot_id", slotID),
		zap.Int("attempts", attempts),
		zap.Error(err))

	return fmt.Errorf("%s %d (incident %s): %w: %w", action, slotID, incidentID, ErrCompensationFailed, err)
}
