package keyboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_Columns(t *testing.T) {
	kb := NewBuilder().
		Columns(2,
			Button("a", "a"),
			Button("b", "b"),
			Button("c", "c"),
		).
		Row().
		Row(ButtonID("Обменять", "swap_offer:", 12, 34)).
		Build()

	require.Len(t, kb.InlineKeyboard, 3, "empty rows are skipped")
	assert.Len(t, kb.InlineKeyboard[0], 2)
	assert.Len(t, kb.InlineKeyboard[1], 1)
	assert.Equal(t, "swap_offer:12:34", kb.InlineKeyboard[2][0].CallbackData)
}
