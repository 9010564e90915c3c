package crops

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog(t *testing.T) {
	c := Catalog()
	require.Len(t, c, 12)
	assert.Equal(t, "tomato", c[0].ID)
	assert.Equal(t, "grape", c[11].ID)

	// Mutating the copy leaves the catalog alone.
	c[0].ID = "changed"
	assert.Equal(t, "tomato", Catalog()[0].ID)
}

func TestSelectionToggle(t *testing.T) {
	s := NewSelection(nil)

	assert.True(t, s.Toggle("tomato"))
	assert.True(t, s.Toggle("wheat"))
	assert.Equal(t, []string{"tomato", "wheat"}, s.IDs())

	assert.True(t, s.Toggle("tomato"))
	assert.Equal(t, []string{"wheat"}, s.IDs())

	assert.False(t, s.Toggle("durian"))
	assert.Equal(t, 1, s.Len())
}

func TestSelectionCap(t *testing.T) {
	s := NewSelection(nil)
	for _, c := range Catalog()[:MaxSelected] {
		require.True(t, s.Toggle(c.ID))
	}
	require.True(t, s.Full())

	// A ninth crop is refused.
	assert.False(t, s.Toggle("grape"))
	assert.Equal(t, MaxSelected, s.Len())
	assert.False(t, s.Contains("grape"))

	// Removing still works at the limit.
	assert.True(t, s.Toggle("tomato"))
	assert.Equal(t, MaxSelected-1, s.Len())
}

func TestToggleSequencesKeepInvariants(t *testing.T) {
	ids := []string{"durian"}
	for _, c := range Catalog() {
		ids = append(ids, c.ID)
	}

	for seed := uint64(1); seed <= 50; seed++ {
		rng := rand.New(rand.NewPCG(seed, seed*7919))
		s := NewSelection(nil)
		for step := 0; step < 200; step++ {
			id := ids[rng.IntN(len(ids))]
			before := s.Contains(id)
			changed := s.Toggle(id)

			require.NoError(t, Validate(s.IDs()), "seed %d step %d toggling %s", seed, step, id)
			if changed {
				assert.NotEqual(t, before, s.Contains(id))
			} else {
				assert.False(t, s.Contains(id))
			}
		}
	}
}

func TestNewSelectionSanitizes(t *testing.T) {
	s := NewSelection([]string{"rice", "rice", "wheat", "onion", "potato", "corn", "cotton", "banana", "mango", "apple"})
	assert.Equal(t, MaxSelected, s.Len())
	assert.Equal(t, []string{"rice", "wheat", "onion", "potato", "corn", "cotton", "banana", "mango"}, s.IDs())
	assert.NoError(t, Validate(s.IDs()))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(nil))
	assert.NoError(t, Validate([]string{"tomato", "wheat"}))
	assert.ErrorIs(t, Validate([]string{"tomato", "tomato"}), ErrDuplicate)
	assert.ErrorIs(t, Validate(make([]string, MaxSelected+1)), ErrTooMany)
}

func TestEmoji(t *testing.T) {
	assert.Equal(t, "🍅", Emoji("tomato"))
	assert.Equal(t, "🌱", Emoji("unknown"))
}
