package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/slotswap_bot/internal/model"
	"github.com/Freeeeeet/slotswap_bot/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
)

const swapRequestColumns = `id, requester_id, responder_id, my_slot_id, their_slot_id, status, created_at, updated_at`

type SwapRequestRepository struct {
	*base.Repository
}

func NewSwapRequestRepository(pool *pgxpool.Pool) *SwapRequestRepository {
	return &SwapRequestRepository{Repository: base.NewRepository(pool)}
}

func scanSwapRequest(row base.Scanner) (*model.SwapRequest, error) {
	var req model.SwapRequest
	err := row.Scan(
		&req.ID,
		&req.RequesterID,
		&req.ResponderID,
		&req.MySlotID,
		&req.TheirSlotID,
		&req.Status,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *SwapRequestRepository) list(ctx context.Context, op, query string, args ...interface{}) ([]*model.SwapRequest, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var requests []*model.SwapRequest
	for rows.Next() {
		req, err := scanSwapRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan swap request: %w", err)
		}
		requests = append(requests, req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return requests, nil
}

// Create создаёт запрос на обмен
func (r *SwapRequestRepository) Create(ctx context.Context, req *model.SwapRequest) error {
	query := `
		INSERT INTO swap_requests (requester_id, responder_id, my_slot_id, their_slot_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING id, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		req.RequesterID,
		req.ResponderID,
		req.MySlotID,
		req.TheirSlotID,
		req.Status,
		req.CreatedAt,
	).Scan(&req.ID, &req.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create swap request: %w", err)
	}

	return nil
}

// GetByID получает запрос по ID
func (r *SwapRequestRepository) GetByID(ctx context.Context, id int64) (*model.SwapRequest, error) {
	query := `SELECT ` + swapRequestColumns + ` FROM swap_requests WHERE id = $1`

	req, err := scanSwapRequest(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get swap request by id: %w", err)
	}

	return req, nil
}

// CompareAndSetStatus меняет статус запроса только если текущий статус равен expected
func (r *SwapRequestRepository) CompareAndSetStatus(ctx context.Context, id int64, expected, next model.SwapRequestStatus) (bool, error) {
	query := `
		UPDATE swap_requests
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`

	affected, err := r.ExecAffected(ctx, query, next, id, expected)
	if err != nil {
		return false, fmt.Errorf("compare and set swap request status: %w", err)
	}

	return affected == 1, nil
}

// GetByResponderID получает входящие запросы пользователя, новые первыми
func (r *SwapRequestRepository) GetByResponderID(ctx context.Context, responderID int64) ([]*model.SwapRequest, error) {
	query := `
		SELECT ` + swapRequestColumns + `
		FROM swap_requests
		WHERE responder_id = $1
		ORDER BY created_at DESC, id DESC
	`
	return r.list(ctx, "get swap requests by responder", query, responderID)
}

// GetByRequesterID получает исходящие запросы пользователя, новые первыми
func (r *SwapRequestRepository) GetByRequesterID(ctx context.Context, requesterID int64) ([]*model.SwapRequest, error) {
	query := `
		SELECT ` + swapRequestColumns + `
		FROM swap_requests
		WHERE requester_id = $1
		ORDER BY created_at DESC, id DESC
	`
	return r.list(ctx, "get swap requests by requester", query, requesterID)
}

// GetPending получает все необработанные запросы
func (r *SwapRequestRepository) GetPending(ctx context.Context) ([]*model.SwapRequest, error) {
	query := `
		SELECT ` + swapRequestColumns + `
		FROM swap_requests
		WHERE status = 'PENDING'
		ORDER BY id
	`
	return r.list(ctx, "get pending swap requests", query)
}
