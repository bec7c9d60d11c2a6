package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/slotswap_bot/internal/model"
	"go.uber.org/zap"
)

// Виды нарушений инварианта Slot/SwapRequest
const (
	AnomalyOrphanedReservation = "orphaned_reservation"   // SWAP_PENDING слот без открытого запроса
	AnomalyDoubleReservation   = "double_reservation"     // слот держат несколько открытых запросов
	AnomalyUnreservedRequest   = "unreserved_pending_req" // открытый запрос, слот которого не в SWAP_PENDING
)

// Anomaly одно найденное нарушение
type Anomaly struct {
	Kind      string
	SlotID    int64
	RequestID int64 // 0 если запроса нет
	Detail    string
}

func (a Anomaly) key() string {
	return fmt.Sprintf("%s:%d:%d", a.Kind, a.SlotID, a.RequestID)
}

// AuditSlotStore слоты, нужные аудитору
type AuditSlotStore interface {
	GetByStatus(ctx context.Context, status model.SlotStatus) ([]*model.Slot, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*model.Slot, error)
}

// AuditRequestStore запросы, нужные аудитору
type AuditRequestStore interface {
	GetPending(ctx context.Context) ([]*model.SwapRequest, error)
}

// Auditor периодически сверяет слоты и открытые запросы и сообщает о нарушениях.
// Ничего не исправляет: застрявшие резервы разбираются вручную
type Auditor struct {
	slots    AuditSlotStore
	requests AuditRequestStore
	interval time.Duration
	logger   *zap.Logger
	stopChan chan struct{}

	// нарушения прошлого прохода; повторное считается подтверждённым
	previous map[string]struct{}
}

// NewAuditor создаёт новый аудитор
func NewAuditor(slots AuditSlotStore, requests AuditRequestStore, interval time.Duration, logger *zap.Logger) *Auditor {
	return &Auditor{
		slots:    slots,
		requests: requests,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
		previous: make(map[string]struct{}),
	}
}

// Start запускает фоновую проверку
func (a *Auditor) Start(ctx context.Context) {
	a.logger.Info("Starting swap invariant auditor", zap.Duration("interval", a.interval))

	go a.run(ctx)
}

// Stop останавливает фоновую проверку
func (a *Auditor) Stop() {
	a.logger.Info("Stopping swap invariant auditor")
	close(a.stopChan)
}

func (a *Auditor) run(ctx context.Context) {
	a.check(ctx)

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.check(ctx)
		case <-a.stopChan:
			a.logger.Info("Auditor stopped")
			return
		case <-ctx.Done():
			a.logger.Info("Auditor cancelled")
			return
		}
	}
}

// check выполняет один проход и логирует результат.
// Резерв в процессе ProposeSwap кратко выглядит как нарушение, поэтому
// error-уровень только для нарушений, найденных два прохода подряд
func (a *Auditor) check(ctx context.Context) {
	anomalies, err := a.Audit(ctx)
	if err != nil {
		a.logger.Error("Swap invariant audit failed", zap.Error(err))
		return
	}

	current := make(map[string]struct{}, len(anomalies))
	for _, anomaly := range anomalies {
		key := anomaly.key()
		current[key] = struct{}{}

		fields := []zap.Field{
			zap.String("kind", anomaly.Kind),
			zap.Int64("slot_id", anomaly.SlotID),
			zap.Int64("request_id", anomaly.RequestID),
			zap.String("detail", anomaly.Detail),
		}

		if _, seen := a.previous[key]; seen {
			a.logger.Error("Swap invariant violated, reconciliation required",
				append(fields, zap.Bool("reconciliation_required", true))...)
		} else {
			a.logger.Warn("Possible swap invariant violation", fields...)
		}
	}
	a.previous = current

	if len(anomalies) == 0 {
		a.logger.Debug("Swap invariant audit clean")
	}
}

// Audit находит слоты и запросы, нарушающие инвариант
// "слот в SWAP_PENDING ⇔ ровно один PENDING запрос ссылается на него"
func (a *Auditor) Audit(ctx context.Context) ([]Anomaly, error) {
	pending, err := a.requests.GetPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("get pending requests: %w", err)
	}

	reserved, err := a.slots.GetByStatus(ctx, model.SlotStatusSwapPending)
	if err != nil {
		return nil, fmt.Errorf("get reserved slots: %w", err)
	}

	holders := make(map[int64][]int64)
	var referenced []int64
	for _, req := range pending {
		holders[req.MySlotID] = append(holders[req.MySlotID], req.ID)
		holders[req.TheirSlotID] = append(holders[req.TheirSlotID], req.ID)
		referenced = append(referenced, req.MySlotID, req.TheirSlotID)
	}

	var anomalies []Anomaly

	reservedIDs := make(map[int64]struct{}, len(reserved))
	for _, slot := range reserved {
		reservedIDs[slot.ID] = struct{}{}
		switch n := len(holders[slot.ID]); {
		case n == 0:
			anomalies = append(anomalies, Anomaly{
				Kind:   AnomalyOrphanedReservation,
				SlotID: slot.ID,
				Detail: "slot is SWAP_PENDING but no pending request holds it",
			})
		case n > 1:
			for _, reqID := range holders[slot.ID] {
				anomalies = append(anomalies, Anomaly{
					Kind:      AnomalyDoubleReservation,
					SlotID:    slot.ID,
					RequestID: reqID,
					Detail:    fmt.Sprintf("slot is held by %d pending requests", n),
				})
			}
		}
	}

	if len(referenced) == 0 {
		return anomalies, nil
	}

	// Слоты открытых запросов, которые не попали в выборку SWAP_PENDING
	slots, err := a.slots.GetByIDs(ctx, referenced)
	if err != nil {
		return nil, fmt.Errorf("get request slots: %w", err)
	}
	statusByID := make(map[int64]model.SlotStatus, len(slots))
	for _, slot := range slots {
		statusByID[slot.ID] = slot.Status
	}

	for _, req := range pending {
		for _, slotID := range []int64{req.MySlotID, req.TheirSlotID} {
			if _, ok := reservedIDs[slotID]; ok {
				continue
			}
			status, exists := statusByID[slotID]
			if exists && status == model.SlotStatusSwapPending {
				// зарезервирован между двумя чтениями
				continue
			}
			detail := "slot is missing"
			if exists {
				detail = "slot status is " + string(status)
			}
			anomalies = append(anomalies, Anomaly{
				Kind:      AnomalyUnreservedRequest,
				SlotID:    slotID,
				RequestID: req.ID,
				Detail:    detail,
			})
		}
	}

	return anomalies, nil
}
