package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/Freeeeeet/slotswap_bot/internal/model"
	"golang.org/x/sync/errgroup"
)

// MyRequests входящие и исходящие запросы пользователя, новые первыми
type MyRequests struct {
	Incoming []*model.SwapRequest `json:"incoming"`
	Outgoing []*model.SwapRequest `json:"outgoing"`
}

// ListSwappableSlots возвращает чужие слоты в статусе SWAPPABLE с данными владельцев
func (s *SwapService) ListSwappableSlots(ctx context.Context, callerID int64) ([]*model.Slot, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	found, err := s.slots.GetSwappable(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("get swappable slots: %w", err)
	}

	slots := make([]*model.Slot, 0, len(found))
	ownerIDs := make([]int64, 0, len(found))
	for _, slot := range found {
		if slot.OwnerID == callerID || !slot.IsSwappable() {
			continue
		}
		slots = append(slots, slot)
		ownerIDs = append(ownerIDs, slot.OwnerID)
	}

	owners, err := s.usersByID(ctx, ownerIDs)
	if err != nil {
		return nil, err
	}
	for _, slot := range slots {
		slot.Owner = owners[slot.OwnerID]
	}

	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].StartTime.Before(slots[j].StartTime)
	})

	return slots, nil
}

// ListMyRequests возвращает входящие (callerID - responder) и исходящие
// (callerID - requester) запросы со слотами и участниками
func (s *SwapService) ListMyRequests(ctx context.Context, callerID int64) (*MyRequests, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var incoming, outgoing []*model.SwapRequest

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		incoming, err = s.requests.GetByResponderID(gctx, callerID)
		if err != nil {
			return fmt.Errorf("get incoming swap requests: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		outgoing, err = s.requests.GetByRequesterID(gctx, callerID)
		if err != nil {
			return fmt.Errorf("get outgoing swap requests: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	all := append(append([]*model.SwapRequest{}, incoming...), outgoing...)
	if err := s.resolveRequests(ctx, all); err != nil {
		return nil, err
	}

	sortNewestFirst(incoming)
	sortNewestFirst(outgoing)

	return &MyRequests{
		Incoming: nonNil(incoming),
		Outgoing: nonNil(outgoing),
	}, nil
}

// resolveRequests подгружает слоты и участников для отображения
func (s *SwapService) resolveRequests(ctx context.Context, requests []*model.SwapRequest) error {
	if len(requests) == 0 {
		return nil
	}

	slotIDs := make([]int64, 0, len(requests)*2)
	userIDs := make([]int64, 0, len(requests)*2)
	for _, req := range requests {
		slotIDs = append(slotIDs, req.MySlotID, req.TheirSlotID)
		userIDs = append(userIDs, req.RequesterID, req.ResponderID)
	}

	slots, err := s.slots.GetByIDs(ctx, uniqueIDs(slotIDs))
	if err != nil {
		return fmt.Errorf("get request slots: %w", err)
	}
	slotByID := make(map[int64]*model.Slot, len(slots))
	for _, slot := range slots {
		slotByID[slot.ID] = slot
	}

	users, err := s.usersByID(ctx, userIDs)
	if err != nil {
		return err
	}

	for _, req := range requests {
		req.MySlot = slotByID[req.MySlotID]
		req.TheirSlot = slotByID[req.TheirSlotID]
		req.Requester = users[req.RequesterID]
		req.Responder = users[req.ResponderID]
	}

	return nil
}

func (s *SwapService) usersByID(ctx context.Context, ids []int64) (map[int64]*model.User, error) {
	result := make(map[int64]*model.User)
	if len(ids) == 0 {
		return result, nil
	}

	users, err := s.users.GetByIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}
	for _, user := range users {
		result[user.ID] = user
	}
	return result, nil
}

func sortNewestFirst(requests []*model.SwapRequest) {
	sort.SliceStable(requests, func(i, j int) bool {
		if requests[i].CreatedAt.Equal(requests[j].CreatedAt) {
			return requests[i].ID > requests[j].ID
		}
		return requests[i].CreatedAt.After(requests[j].CreatedAt)
	})
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	result := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}

func nonNil(requests []*model.SwapRequest) []*model.SwapRequest {
	if requests == nil {
		return []*model.SwapRequest{}
	}
	return requests
}
