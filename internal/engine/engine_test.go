package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedRand always returns the same index so picks are deterministic.
type fixedRand struct{ n int }

func (f fixedRand) Intn(int) int { return f.n }

func TestEligible(t *testing.T) {
	shielded := map[string]bool{"clash": true, "montagne": true}

	cases := []struct {
		name    string
		catalog []string
		filter  Filter
		want    []string
	}{
		{
			name:    "no constraints keeps catalog order",
			catalog: []string{"doc", "rook", "clash"},
			filter:  Filter{WantsShields: true, Shielded: shielded},
			want:    []string{"doc", "rook", "clash"},
		},
		{
			name:    "used operators excluded",
			catalog: []string{"doc", "rook", "clash"},
			filter:  Filter{Used: map[string]bool{"rook": true}, WantsShields: true, Shielded: shielded},
			want:    []string{"doc", "clash"},
		},
		{
			name:    "ban matches case-insensitively",
			catalog: []string{"Doc", "Rook"},
			filter:  Filter{Ban: "dOc", WantsShields: true, Shielded: shielded},
			want:    []string{"Rook"},
		},
		{
			name:    "ban not in catalog never matches",
			catalog: []string{"doc", "rook"},
			filter:  Filter{Ban: "not-an-operator", WantsShields: true, Shielded: shielded},
			want:    []string{"doc", "rook"},
		},
		{
			name:    "shields disabled removes shielded operators",
			catalog: []string{"doc", "clash", "rook"},
			filter:  Filter{WantsShields: false, Shielded: shielded},
			want:    []string{"doc", "rook"},
		},
		{
			name:    "shields enabled keeps shielded operators",
			catalog: []string{"clash"},
			filter:  Filter{WantsShields: true, Shielded: shielded},
			want:    []string{"clash"},
		},
		{
			name:    "all constraints stack",
			catalog: []string{"doc", "rook", "clash", "mira"},
			filter: Filter{
				Used:         map[string]bool{"mira": true},
				Ban:          "rook",
				WantsShields: false,
				Shielded:     shielded,
			},
			want: []string{"doc"},
		},
		{
			name:    "everything filtered out",
			catalog: []string{"clash"},
			filter:  Filter{WantsShields: false, Shielded: shielded},
			want:    nil,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Eligible(tc.catalog, tc.filter))
		})
	}
}

func TestPick(t *testing.T) {
	t.Run("empty eligible set", func(t *testing.T) {
		_, ok := Pick(nil, fixedRand{})
		assert.False(t, ok)
	})

	t.Run("picks the index the rng chooses", func(t *testing.T) {
		eligible := []string{"doc", "rook", "clash"}

		op, ok := Pick(eligible, fixedRand{n: 0})
		require.True(t, ok)
		assert.Equal(t, "doc", op)

		op, ok = Pick(eligible, fixedRand{n: 2})
		require.True(t, ok)
		assert.Equal(t, "clash", op)
	})
}

func TestParseCategory(t *testing.T) {
	cat, ok := ParseCategory("atk")
	require.True(t, ok)
	assert.Equal(t, CategoryAttack, cat)

	cat, ok = ParseCategory("def")
	require.True(t, ok)
	assert.Equal(t, CategoryDefense, cat)

	_, ok = ParseCategory("support")
	assert.False(t, ok)
}
