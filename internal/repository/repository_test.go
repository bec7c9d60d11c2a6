package repository

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Freeeeeet/slotswap_bot/internal/app"
	"github.com/Freeeeeet/slotswap_bot/internal/model"
	"github.com/Freeeeeet/slotswap_bot/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// Тесты ходят в настоящий Postgres: SLOTSWAP_TEST_DSN=postgres://... go test ./internal/repository
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("SLOTSWAP_TEST_DSN")
	if dsn == "" {
		t.Skip("SLOTSWAP_TEST_DSN is not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	migrator, err := app.NewMigrator(pool, migrations.FS, ".", zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, migrator.Run(ctx))
	require.NoError(t, migrator.Close())

	_, err = pool.Exec(ctx, `TRUNCATE swap_requests, slots, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	return pool
}

func createUser(t *testing.T, users *UserRepository, telegramID int64, name string) *model.User {
	t.Helper()
	user := &model.User{TelegramID: telegramID, FirstName: name}
	require.NoError(t, users.Create(context.Background(), user))
	return user
}

func createSlot(t *testing.T, slots *SlotRepository, ownerID int64, status model.SlotStatus) *model.Slot {
	t.Helper()
	start := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	slot := &model.Slot{
		OwnerID:   ownerID,
		Title:     "Standup",
		StartTime: start,
		EndTime:   start.Add(30 * time.Minute),
		Status:    status,
	}
	require.NoError(t, slots.Create(context.Background(), slot))
	return slot
}

func TestSlotRepository_CompareAndSetStatus(t *testing.T) {
	pool := testPool(t)
	users := NewUserRepository(pool)
	slots := NewSlotRepository(pool)
	ctx := context.Background()

	anna := createUser(t, users, 1001, "Anna")
	slot := createSlot(t, slots, anna.ID, model.SlotStatusSwappable)

	ok, err := slots.CompareAndSetStatus(ctx, slot.ID, model.SlotStatusBusy, model.SlotStatusSwapPending)
	require.NoError(t, err)
	assert.False(t, ok, "wrong expected status")

	ok, err = slots.CompareAndSetStatus(ctx, slot.ID, model.SlotStatusSwappable, model.SlotStatusSwapPending)
	require.NoError(t, err)
	assert.True(t, ok)

	stored, err := slots.GetByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SlotStatusSwapPending, stored.Status)

	ok, err = slots.CompareAndSetStatus(ctx, 999999, model.SlotStatusSwappable, model.SlotStatusSwapPending)
	require.NoError(t, err)
	assert.False(t, ok, "missing slot")
}

func TestSlotRepository_ConcurrentReservation(t *testing.T) {
	pool := testPool(t)
	users := NewUserRepository(pool)
	slots := NewSlotRepository(pool)
	ctx := context.Background()

	anna := createUser(t, users, 1001, "Anna")
	slot := createSlot(t, slots, anna.ID, model.SlotStatusSwappable)

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := slots.CompareAndSetStatus(ctx, slot.ID, model.SlotStatusSwappable, model.SlotStatusSwapPending)
			assert.NoError(t, err)
			if ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

func TestSlotRepository_ReassignAndDelete(t *testing.T) {
	pool := testPool(t)
	users := NewUserRepository(pool)
	slots := NewSlotRepository(pool)
	requests := NewSwapRequestRepository(pool)
	ctx := context.Background()

	anna := createUser(t, users, 1001, "Anna")
	boris := createUser(t, users, 1002, "Boris")
	mine := createSlot(t, slots, anna.ID, model.SlotStatusSwapPending)
	theirs := createSlot(t, slots, boris.ID, model.SlotStatusSwapPending)

	ok, err := slots.Delete(ctx, mine.ID, anna.ID)
	require.NoError(t, err)
	assert.False(t, ok, "reserved slot is not deleted")

	req := &model.SwapRequest{
		RequesterID: anna.ID,
		ResponderID: boris.ID,
		MySlotID:    mine.ID,
		TheirSlotID: theirs.ID,
		Status:      model.SwapRequestStatusPending,
		CreatedAt:   time.Now(),
	}
	require.NoError(t, requests.Create(ctx, req))
	assert.NotZero(t, req.ID)

	require.NoError(t, slots.Reassign(ctx, mine.ID, boris.ID, model.SlotStatusBusy))
	stored, err := slots.GetByID(ctx, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, boris.ID, stored.OwnerID)
	assert.Equal(t, model.SlotStatusBusy, stored.Status)

	_, err = slots.Delete(ctx, mine.ID, boris.ID)
	assert.ErrorIs(t, err, ErrReferenced, "slot with swap history")

	assert.Error(t, slots.SetStatus(ctx, 999999, model.SlotStatusBusy))
}

func TestSwapRequestRepository(t *testing.T) {
	pool := testPool(t)
	users := NewUserRepository(pool)
	slots := NewSlotRepository(pool)
	requests := NewSwapRequestRepository(pool)
	ctx := context.Background()

	anna := createUser(t, users, 1001, "Anna")
	boris := createUser(t, users, 1002, "Boris")
	mine := createSlot(t, slots, anna.ID, model.SlotStatusSwapPending)
	theirs := createSlot(t, slots, boris.ID, model.SlotStatusSwapPending)

	req := &model.SwapRequest{
		RequesterID: anna.ID,
		ResponderID: boris.ID,
		MySlotID:    mine.ID,
		TheirSlotID: theirs.ID,
		Status:      model.SwapRequestStatusPending,
		CreatedAt:   time.Now(),
	}
	require.NoError(t, requests.Create(ctx, req))

	pending, err := requests.GetPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	incoming, err := requests.GetByResponderID(ctx, boris.ID)
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Equal(t, req.ID, incoming[0].ID)

	ok, err := requests.CompareAndSetStatus(ctx, req.ID, model.SwapRequestStatusPending, model.SwapRequestStatusRejected)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = requests.CompareAndSetStatus(ctx, req.ID, model.SwapRequestStatusPending, model.SwapRequestStatusAccepted)
	require.NoError(t, err)
	assert.False(t, ok, "request is answered once")

	pending, err = requests.GetPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	found, err := requests.GetByID(ctx, 999999)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestUserRepository_GetByIDs(t *testing.T) {
	pool := testPool(t)
	users := NewUserRepository(pool)
	ctx := context.Background()

	anna := createUser(t, users, 1001, "Anna")
	boris := createUser(t, users, 1002, "Boris")

	found, err := users.GetByIDs(ctx, []int64{anna.ID, boris.ID, 999999})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	byTelegram, err := users.GetByTelegramID(ctx, 1002)
	require.NoError(t, err)
	require.NotNil(t, byTelegram)
	assert.Equal(t, "Boris", byTelegram.FirstName)

	missing, err := users.GetByTelegramID(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, missing)
}
