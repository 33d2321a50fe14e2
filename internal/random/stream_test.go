package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestStreamIsDeterministic(t *testing.T) {
	a := New(12345)
	b := New(12345)
	for i := 0; i < 100; i++ {
		require.Equal(t, a.NextLong(), b.NextLong())
	}
}

func TestStreamKnownValues(t *testing.T) {
	// First values of the 48-bit LCG seeded with 0.
	s := New(0)
	assert.Equal(t, 60, s.NextInt(100))
	assert.Equal(t, 48, s.NextInt(100))

	s = New(42)
	assert.Equal(t, 0, s.NextInt(10))
	assert.Equal(t, 3, s.NextInt(10))
}

func TestNextIntStaysInBounds(t *testing.T) {
	s := New(99)
	for _, bound := range []int{1, 2, 3, 6, 7, 16, 1000} {
		for i := 0; i < 200; i++ {
			v := s.NextInt(bound)
			require.GreaterOrEqual(t, v, 0)
			require.Less(t, v, bound)
		}
	}
}

func TestRollDie(t *testing.T) {
	s := New(7)
	seen := map[int]bool{}
	for i := 0; i < 500; i++ {
		v := s.RollDie()
		require.True(t, v >= 1 && v <= 6, "face %d", v)
		seen[v] = true
	}
	assert.Len(t, seen, 6)
}

func TestShuffleIsPermutation(t *testing.T) {
	items := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	New(5).Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })

	again := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	New(5).Shuffle(len(again), func(i, j int) { again[i], again[j] = again[j], again[i] })

	assert.Equal(t, items, again)
	assert.ElementsMatch(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, items)
}

func TestStreamBacksRand(t *testing.T) {
	r1 := rand.New(New(77))
	r2 := rand.New(New(77))
	for i := 0; i < 20; i++ {
		assert.Equal(t, r1.Intn(1000), r2.Intn(1000))
	}
}

func TestPanicsOnNonPositiveBound(t *testing.T) {
	assert.Panics(t, func() { New(1).NextInt(0) })
}
