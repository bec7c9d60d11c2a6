package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/slotswap_bot/internal/model"
	"github.com/Freeeeeet/slotswap_bot/internal/repository"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

var errStoreDown = errors.New("store unavailable")

// memStore хранит слоты, запросы и пользователей в памяти с атомарным CAS,
// как условный UPDATE в Postgres. Хуки позволяют вклиниться между шагами протокола
type memStore struct {
	mu       sync.Mutex
	slots    map[int64]*model.Slot
	requests map[int64]*model.SwapRequest
	users    map[int64]*model.User

	nextSlotID    int64
	nextRequestID int64
	writes        int

	// beforeSlotCAS вызывается вне блокировки перед каждым CAS по слоту
	beforeSlotCAS func(slotID int64, expected, next model.SlotStatus)
	// slotCASErr возвращает ошибку хранилища для CAS по слоту
	slotCASErr func(slotID int64, expected, next model.SlotStatus) error
	// failSetStatus/failReassign - сколько ближайших вызовов завершить ошибкой (-1 - все)
	failSetStatus    int
	failReassign     int
	createRequestErr error
	requestCASErr    error
}

func newMemStore() *memStore {
	return &memStore{
		slots:    make(map[int64]*model.Slot),
		requests: make(map[int64]*model.SwapRequest),
		users:    make(map[int64]*model.User),
	}
}

func (m *memStore) slotStore() *memSlots       { return &memSlots{m} }
func (m *memStore) requestStore() *memRequests { return &memRequests{m} }
func (m *memStore) userStore() *memUsers       { return &memUsers{m} }

func (m *memStore) addUser(id int64, firstName, username string) *model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	user := &model.User{ID: id, TelegramID: 1000 + id, FirstName: firstName, Username: username}
	m.users[id] = user
	return user
}

func (m *memStore) addSlot(ownerID int64, title string, start time.Time, status model.SlotStatus) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextSlotID++
	m.slots[m.nextSlotID] = &model.Slot{
		ID:        m.nextSlotID,
		OwnerID:   ownerID,
		Title:     title,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Status:    status,
	}
	return m.nextSlotID
}

func (m *memStore) slot(t *testing.T, id int64) model.Slot {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	slot, ok := m.slots[id]
	require.True(t, ok, "slot %d not found", id)
	return *slot
}

func (m *memStore) forceSlotStatus(id int64, status model.SlotStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[id].Status = status
}

func (m *memStore) request(t *testing.T, id int64) model.SwapRequest {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	require.True(t, ok, "request %d not found", id)
	return *req
}

func (m *memStore) requestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func (m *memStore) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// requireInvariant проверяет: слот в SWAP_PENDING тогда и только тогда,
// когда на него ссылается ровно один PENDING запрос
func (m *memStore) requireInvariant(t *testing.T) {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()

	holders := make(map[int64]int)
	for _, req := range m.requests {
		if req.IsPending() {
			holders[req.MySlotID]++
			holders[req.TheirSlotID]++
		}
	}
	for id, slot := range m.slots {
		if slot.IsSwapPending() {
			require.Equal(t, 1, holders[id], "slot %d is SWAP_PENDING but held by %d pending requests", id, holders[id])
		} else {
			require.Zero(t, holders[id], "slot %d is %s but held by a pending request", id, slot.Status)
		}
	}
}

func takeFailure(counter *int) bool {
	if *counter == 0 {
		return false
	}
	if *counter > 0 {
		*counter--
	}
	return true
}

type memSlots struct{ m *memStore }

func (s *memSlots) Create(_ context.Context, slot *model.Slot) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.nextSlotID++
	s.m.writes++
	slot.ID = s.m.nextSlotID
	slot.CreatedAt = time.Now()
	slot.UpdatedAt = slot.CreatedAt
	stored := *slot
	s.m.slots[slot.ID] = &stored
	return nil
}

func (s *memSlots) GetByID(_ context.Context, id int64) (*model.Slot, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	slot, ok := s.m.slots[id]
	if !ok {
		return nil, nil
	}
	cp := *slot
	return &cp, nil
}

func (s *memSlots) filter(keep func(*model.Slot) bool) []*model.Slot {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var result []*model.Slot
	for _, slot := range s.m.slots {
		if keep(slot) {
			cp := *slot
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (s *memSlots) GetByIDs(_ context.Context, ids []int64) ([]*model.Slot, error) {
	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	return s.filter(func(slot *model.Slot) bool { return want[slot.ID] }), nil
}

func (s *memSlots) GetByOwnerID(_ context.Context, ownerID int64) ([]*model.Slot, error) {
	return s.filter(func(slot *model.Slot) bool { return slot.OwnerID == ownerID }), nil
}

func (s *memSlots) GetByStatus(_ context.Context, status model.SlotStatus) ([]*model.Slot, error) {
	return s.filter(func(slot *model.Slot) bool { return slot.Status == status }), nil
}

func (s *memSlots) GetSwappable(_ context.Context, excludeOwnerID int64) ([]*model.Slot, error) {
	return s.filter(func(slot *model.Slot) bool {
		return slot.IsSwappable() && slot.OwnerID != excludeOwnerID
	}), nil
}

func (s *memSlots) CompareAndSetStatus(_ context.Context, slotID int64, expected, next model.SlotStatus) (bool, error) {
	if s.m.beforeSlotCAS != nil {
		s.m.beforeSlotCAS(slotID, expected, next)
	}
	if s.m.slotCASErr != nil {
		if err := s.m.slotCASErr(slotID, expected, next); err != nil {
			return false, err
		}
	}

	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	slot, ok := s.m.slots[slotID]
	if !ok || slot.Status != expected {
		return false, nil
	}
	slot.Status = next
	slot.UpdatedAt = time.Now()
	s.m.writes++
	return true, nil
}

func (s *memSlots) SetStatus(_ context.Context, slotID int64, status model.SlotStatus) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if takeFailure(&s.m.failSetStatus) {
		return errStoreDown
	}
	slot, ok := s.m.slots[slotID]
	if !ok {
		return errors.New("slot not found")
	}
	slot.Status = status
	s.m.writes++
	return nil
}

func (s *memSlots) Reassign(_ context.Context, slotID, ownerID int64, status model.SlotStatus) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if takeFailure(&s.m.failReassign) {
		return errStoreDown
	}
	slot, ok := s.m.slots[slotID]
	if !ok {
		return errors.New("slot not found")
	}
	slot.OwnerID = ownerID
	slot.Status = status
	s.m.writes++
	return nil
}

func (s *memSlots) UpdateDetails(_ context.Context, slot *model.Slot) (bool, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	stored, ok := s.m.slots[slot.ID]
	if !ok || stored.OwnerID != slot.OwnerID || stored.IsSwapPending() {
		return false, nil
	}
	stored.Title = slot.Title
	stored.StartTime = slot.StartTime
	stored.EndTime = slot.EndTime
	s.m.writes++
	return true, nil
}

func (s *memSlots) Delete(_ context.Context, slotID, ownerID int64) (bool, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	stored, ok := s.m.slots[slotID]
	if !ok || stored.OwnerID != ownerID || stored.IsSwapPending() {
		return false, nil
	}
	for _, req := range s.m.requests {
		if req.Holds(slotID) {
			return false, repository.ErrReferenced
		}
	}
	delete(s.m.slots, slotID)
	s.m.writes++
	return true, nil
}

type memRequests struct{ m *memStore }

func (r *memRequests) Create(_ context.Context, req *model.SwapRequest) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.createRequestErr != nil {
		return r.m.createRequestErr
	}
	r.m.nextRequestID++
	r.m.writes++
	req.ID = r.m.nextRequestID
	req.UpdatedAt = req.CreatedAt
	stored := *req
	r.m.requests[req.ID] = &stored
	return nil
}

func (r *memRequests) GetByID(_ context.Context, id int64) (*model.SwapRequest, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	req, ok := r.m.requests[id]
	if !ok {
		return nil, nil
	}
	cp := *req
	return &cp, nil
}

func (r *memRequests) CompareAndSetStatus(_ context.Context, id int64, expected, next model.SwapRequestStatus) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.requestCASErr != nil {
		return false, r.m.requestCASErr
	}
	req, ok := r.m.requests[id]
	if !ok || req.Status != expected {
		return false, nil
	}
	req.Status = next
	r.m.writes++
	return true, nil
}

func (r *memRequests) filter(keep func(*model.SwapRequest) bool) []*model.SwapRequest {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var result []*model.SwapRequest
	for _, req := range r.m.requests {
		if keep(req) {
			cp := *req
			result = append(result, &cp)
		}
	}
	// порядок как попало: сервис обязан отсортировать сам
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (r *memRequests) GetByResponderID(_ context.Context, responderID int64) ([]*model.SwapRequest, error) {
	return r.filter(func(req *model.SwapRequest) bool { return req.ResponderID == responderID }), nil
}

func (r *memRequests) GetByRequesterID(_ context.Context, requesterID int64) ([]*model.SwapRequest, error) {
	return r.filter(func(req *model.SwapRequest) bool { return req.RequesterID == requesterID }), nil
}

func (r *memRequests) GetPending(_ context.Context) ([]*model.SwapRequest, error) {
	return r.filter(func(req *model.SwapRequest) bool { return req.IsPending() }), nil
}

type memUsers struct{ m *memStore }

func (u *memUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	u.m.mu.Lock()
	defer u.m.mu.Unlock()
	user, ok := u.m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *user
	return &cp, nil
}

func (u *memUsers) GetByIDs(_ context.Context, ids []int64) ([]*model.User, error) {
	u.m.mu.Lock()
	defer u.m.mu.Unlock()
	var result []*model.User
	for _, id := range ids {
		if user, ok := u.m.users[id]; ok {
			cp := *user
			result = append(result, &cp)
		}
	}
	return result, nil
}

func testSwapConfig() SwapConfig {
	return SwapConfig{
		OpTimeout:           time.Second,
		CompensationRetries: 3,
		CompensationBackoff: time.Millisecond,
		CompensationTimeout: time.Second,
	}
}

func newTestSwapService(t *testing.T, store *memStore) *SwapService {
	t.Helper()
	return NewSwapService(
		store.slotStore(),
		store.requestStore(),
		store.userStore(),
		testSwapConfig(),
		zaptest.NewLogger(t),
	)
}

// newObservedSwapService возвращает сервис, логи которого можно проверить
func newObservedSwapService(store *memStore) (*SwapService, *observer.ObservedLogs) {
	core, logs := observer.New(zap.InfoLevel)
	svc := NewSwapService(
		store.slotStore(),
		store.requestStore(),
		store.userStore(),
		testSwapConfig(),
		zap.New(core),
	)
	return svc, logs
}
