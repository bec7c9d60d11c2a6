package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Freeeeeet/slotswap_bot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestSlotService(t *testing.T, store *memStore) *SlotService {
	t.Helper()
	return NewSlotService(store.slotStore(), zaptest.NewLogger(t))
}

func TestCreateSlot(t *testing.T) {
	store := newMemStore()
	svc := newTestSlotService(t, store)
	ctx := context.Background()

	slot, err := svc.CreateSlot(ctx, anna, "  Standup ", monday, monday.Add(30*time.Minute), false)
	require.NoError(t, err)
	assert.NotZero(t, slot.ID)
	assert.Equal(t, "Standup", slot.Title)
	assert.Equal(t, model.SlotStatusBusy, slot.Status)

	swappable, err := svc.CreateSlot(ctx, anna, "Review", monday, monday.Add(time.Hour), true)
	require.NoError(t, err)
	assert.Equal(t, model.SlotStatusSwappable, swappable.Status)

	mine, err := svc.ListMySlots(ctx, anna)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func TestCreateSlot_Validation(t *testing.T) {
	tests := []struct {
		name  string
		title string
		start time.Time
		end   time.Time
	}{
		{"empty title", "   ", monday, monday.Add(time.Hour)},
		{"title too long", strings.Repeat("я", SlotTitleMaxLength+1), monday, monday.Add(time.Hour)},
		{"end before start", "Standup", monday, monday.Add(-time.Hour)},
		{"zero length", "Standup", monday, monday},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			svc := newTestSlotService(t, store)

			_, err := svc.CreateSlot(context.Background(), anna, tt.title, tt.start, tt.end, false)

			require.ErrorIs(t, err, ErrInvalidArgument)
			assert.Zero(t, store.writeCount())
		})
	}
}

func TestSetSwappable(t *testing.T) {
	store := newMemStore()
	svc := newTestSlotService(t, store)
	ctx := context.Background()
	id := store.addSlot(anna, "Standup", monday, model.SlotStatusBusy)

	slot, err := svc.SetSwappable(ctx, anna, id, true)
	require.NoError(t, err)
	assert.Equal(t, model.SlotStatusSwappable, slot.Status)

	// повторное включение ничего не пишет
	writes := store.writeCount()
	_, err = svc.SetSwappable(ctx, anna, id, true)
	require.NoError(t, err)
	assert.Equal(t, writes, store.writeCount())

	slot, err = svc.SetSwappable(ctx, anna, id, false)
	require.NoError(t, err)
	assert.Equal(t, model.SlotStatusBusy, slot.Status)
	assert.Equal(t, model.SlotStatusBusy, store.slot(t, id).Status)
}

func TestSetSwappable_Rejections(t *testing.T) {
	store := newMemStore()
	svc := newTestSlotService(t, store)
	ctx := context.Background()
	pending := store.addSlot(anna, "Standup", monday, model.SlotStatusSwapPending)

	_, err := svc.SetSwappable(ctx, boris, pending, false)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.SetSwappable(ctx, anna, pending, false)
	require.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, model.SlotStatusSwapPending, store.slot(t, pending).Status)

	_, err = svc.SetSwappable(ctx, anna, 999, true)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateSlot(t *testing.T) {
	store := newMemStore()
	svc := newTestSlotService(t, store)
	ctx := context.Background()
	id := store.addSlot(anna, "Standup", monday, model.SlotStatusSwappable)

	slot, err := svc.UpdateSlot(ctx, anna, id, "Planning", monday.Add(time.Hour), monday.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "Planning", slot.Title)

	stored := store.slot(t, id)
	assert.Equal(t, "Planning", stored.Title)
	assert.Equal(t, monday.Add(time.Hour), stored.StartTime)
	assert.Equal(t, model.SlotStatusSwappable, stored.Status)

	store.forceSlotStatus(id, model.SlotStatusSwapPending)
	_, err = svc.UpdateSlot(ctx, anna, id, "Other", monday, monday.Add(time.Hour))
	require.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, "Planning", store.slot(t, id).Title)
}

func TestDeleteSlot(t *testing.T) {
	f := newPairFixture(t)
	svc := newTestSlotService(t, f.store)
	ctx := context.Background()

	free := f.store.addSlot(anna, "Free", monday.Add(10*time.Hour), model.SlotStatusBusy)
	require.ErrorIs(t, svc.DeleteSlot(ctx, boris, free), ErrForbidden)
	require.NoError(t, svc.DeleteSlot(ctx, anna, free))
	require.ErrorIs(t, svc.DeleteSlot(ctx, anna, free), ErrNotFound)

	req := f.propose(t)
	require.ErrorIs(t, svc.DeleteSlot(ctx, anna, f.s1), ErrConflict, "pending slot")

	_, err := f.svc.RespondToSwap(ctx, boris, req.ID, false)
	require.NoError(t, err)
	require.ErrorIs(t, svc.DeleteSlot(ctx, anna, f.s1), ErrConflict, "slot with swap history")
	f.store.slot(t, f.s1)
}
