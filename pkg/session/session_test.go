package session

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreAppendOrder(t *testing.T) {
	store := NewStore()

	const n = 10
	for i := 0; i < n; i++ {
		role := RoleUser
		if i%2 == 1 {
			role = RoleAssistant
		}
		store.Append("s1", role, fmt.Sprintf("turn-%d", i))
	}

	history := store.History("s1")
	require.Len(t, history, n)
	for i, turn := range history {
		assert.Equal(t, fmt.Sprintf("turn-%d", i), turn.Text)
		assert.NotEmpty(t, turn.ID)
		assert.False(t, turn.Timestamp.IsZero())
	}
}

func TestStoreUnknownSessionIsEmpty(t *testing.T) {
	store := NewStore()

	history := store.History("never-seen")
	assert.NotNil(t, history)
	assert.Empty(t, history)
	assert.Equal(t, 0, store.Len("never-seen"))
}

func TestStoreSessionsAreIsolated(t *testing.T) {
	store := NewStore()

	store.Append("a", RoleUser, "hello from a")
	store.Append("b", RoleUser, "hello from b")
	store.Append("a", RoleAssistant, "reply to a")

	assert.Equal(t, 2, store.Len("a"))
	assert.Equal(t, 1, store.Len("b"))
	assert.Equal(t, 2, store.Sessions())
	assert.Equal(t, "hello from b", store.History("b")[0].Text)
}

func TestHistoryIsACopy(t *testing.T) {
	store := NewStore()
	store.Append("s", RoleUser, "original")

	history := store.History("s")
	history[0].Text = "mutated"

	assert.Equal(t, "original", store.History("s")[0].Text)
}

func TestWindow(t *testing.T) {
	turns := make([]Turn, 6)
	for i := range turns {
		turns[i] = Turn{Text: fmt.Sprintf("t%d", i)}
	}

	tests := []struct {
		name     string
		maxTurns int
		want     []string
	}{
		{"zero keeps all", 0, []string{"t0", "t1", "t2", "t3", "t4", "t5"}},
		{"negative keeps all", -1, []string{"t0", "t1", "t2", "t3", "t4", "t5"}},
		{"larger than history keeps all", 10, []string{"t0", "t1", "t2", "t3", "t4", "t5"}},
		{"drops oldest first", 2, []string{"t4", "t5"}},
		{"exact fit", 6, []string{"t0", "t1", "t2", "t3", "t4", "t5"}},
		{"single most recent", 1, []string{"t5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Window(turns, tt.maxTurns)
			require.Len(t, got, len(tt.want))
			for i, text := range tt.want {
				assert.Equal(t, text, got[i].Text)
			}
		})
	}
}

func TestWindowNeverExceedsMax(t *testing.T) {
	turns := make([]Turn, 50)
	for max := 1; max <= 60; max++ {
		got := Window(turns, max)
		assert.LessOrEqual(t, len(got), max)
	}
}

func TestWindowTokensDropsOldest(t *testing.T) {
	// Each turn estimates at 10 tokens (40 chars).
	text := ""
	for i := 0; i < 40; i++ {
		text += "x"
	}
	turns := []Turn{
		{Text: text}, {Text: text}, {Text: text}, {Text: text},
	}

	got := WindowTokens(turns, 25)
	require.Len(t, got, 2)
	assert.Equal(t, turns[2], got[0])
	assert.Equal(t, turns[3], got[1])

	assert.Len(t, WindowTokens(turns, 0), 4)
	assert.Len(t, WindowTokens(turns, 1000), 4)
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Equal(t, 1, EstimateTokens("word"))
	assert.Equal(t, 10, EstimateTokens("0123456789012345678901234567890123456789"))
}
