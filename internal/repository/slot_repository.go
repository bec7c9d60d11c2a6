package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/slotswap_bot/internal/model"
	"github.com/Freeeeeet/slotswap_bot/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
)

const slotColumns = `id, owner_id, title, start_time, end_time, status, created_at, updated_at`

type SlotRepository struct {
	*base.Repository
}

func NewSlotRepository(pool *pgxpool.Pool) *SlotRepository {
	return &SlotRepository{Repository: base.NewRepository(pool)}
}

func scanSlot(row base.Scanner) (*model.Slot, error) {
	var slot model.Slot
	err := row.Scan(
		&slot.ID,
		&slot.OwnerID,
		&slot.Title,
		&slot.StartTime,
		&slot.EndTime,
		&slot.Status,
		&slot.CreatedAt,
		&slot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *SlotRepository) list(ctx context.Context, op, query string, args ...interface{}) ([]*model.Slot, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var slots []*model.Slot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return slots, nil
}

// Create создаёт новый слот
func (r *SlotRepository) Create(ctx context.Context, slot *model.Slot) error {
	query := `
		INSERT INTO slots (owner_id, title, start_time, end_time, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		slot.OwnerID,
		slot.Title,
		slot.StartTime,
		slot.EndTime,
		slot.Status,
	).Scan(&slot.ID, &slot.CreatedAt, &slot.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create slot: %w", err)
	}

	return nil
}

// GetByID получает слот по ID
func (r *SlotRepository) GetByID(ctx context.Context, id int64) (*model.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots WHERE id = $1`

	slot, err := scanSlot(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get slot by id: %w", err)
	}

	return slot, nil
}

// GetByIDs получает слоты по списку ID
func (r *SlotRepository) GetByIDs(ctx context.Context, ids []int64) ([]*model.Slot, error) {
	if len(ids) == 0 {
		return []*model.Slot{}, nil
	}

	query := `SELECT ` + slotColumns + ` FROM slots WHERE id = ANY($1)`
	return r.list(ctx, "get slots by ids", query, ids)
}

// GetByOwnerID получает все слоты пользователя
func (r *SlotRepository) GetByOwnerID(ctx context.Context, ownerID int64) ([]*model.Slot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM slots
		WHERE owner_id = $1
		ORDER BY start_time
	`
	return r.list(ctx, "get slots by owner", query, ownerID)
}

// GetSwappable получает слоты, доступные для обмена, кроме слотов excludeOwnerID
func (r *SlotRepository) GetSwappable(ctx context.Context, excludeOwnerID int64) ([]*model.Slot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM slots
		WHERE status = 'SWAPPABLE' AND owner_id <> $1
		ORDER BY start_time
	`
	return r.list(ctx, "get swappable slots", query, excludeOwnerID)
}

// GetByStatus получает все слоты с указанным статусом
func (r *SlotRepository) GetByStatus(ctx context.Context, status model.SlotStatus) ([]*model.Slot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM slots
		WHERE status = $1
		ORDER BY id
	`
	return r.list(ctx, "get slots by status", query, status)
}

// CompareAndSetStatus меняет статус только если текущий статус равен expected.
// Возвращает false если слот успел измениться (или не существует)
func (r *SlotRepository) CompareAndSetStatus(ctx context.Context, slotID int64, expected, next model.SlotStatus) (bool, error) {
	query := `
		UPDATE slots
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`

	affected, err := r.ExecAffected(ctx, query, next, slotID, expected)
	if err != nil {
		return false, fmt.Errorf("compare and set slot status: %w", err)
	}

	return affected == 1, nil
}

// SetStatus безусловно обновляет статус слота
func (r *SlotRepository) SetStatus(ctx context.Context, slotID int64, status model.SlotStatus) error {
	query := `
		UPDATE slots
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`

	affected, err := r.ExecAffected(ctx, query, status, slotID)
	if err != nil {
		return fmt.Errorf("update slot status: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("slot not found")
	}

	return nil
}

// Reassign передаёт слот новому владельцу и выставляет статус
func (r *SlotRepository) Reassign(ctx context.Context, slotID, ownerID int64, status model.SlotStatus) error {
	query := `
		UPDATE slots
		SET owner_id = $1, status = $2, updated_at = NOW()
		WHERE id = $3
	`

	affected, err := r.ExecAffected(ctx, query, ownerID, status, slotID)
	if err != nil {
		return fmt.Errorf("reassign slot: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("slot not found")
	}

	return nil
}

// UpdateDetails обновляет название и время слота владельца.
// Слоты в обмене не редактируются: возвращает false
func (r *SlotRepository) UpdateDetails(ctx context.Context, slot *model.Slot) (bool, error) {
	query := `
		UPDATE slots
		SET title = $1, start_time = $2, end_time = $3, updated_at = NOW()
		WHERE id = $4 AND owner_id = $5 AND status <> 'SWAP_PENDING'
		RETURNING updated_at
	`

	err := r.QueryRow(
		ctx, query,
		slot.Title,
		slot.StartTime,
		slot.EndTime,
		slot.ID,
		slot.OwnerID,
	).Scan(&slot.UpdatedAt)

	if err != nil {
		if base.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("update slot: %w", err)
	}

	return true, nil
}

// Delete удаляет слот владельца, если он не участвует в обмене
func (r *SlotRepository) Delete(ctx context.Context, slotID, ownerID int64) (bool, error) {
	query := `DELETE FROM slots WHERE id = $1 AND owner_id = $2 AND status <> 'SWAP_PENDING'`

	affected, err := r.ExecAffected(ctx, query, slotID, ownerID)
	if err != nil {
		if base.IsForeignKeyViolation(err) {
			return false, ErrReferenced
		}
		return false, fmt.Errorf("delete slot: %w", err)
	}

	return affected == 1, nil
}
