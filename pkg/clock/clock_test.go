package clock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequence(t *testing.T) {
	s := NewSequence(10)

	assert.Equal(t, uint64(10), s.Current())
	assert.Equal(t, uint64(11), s.Now())
	assert.Equal(t, uint64(12), s.Now())
	assert.Equal(t, uint64(12), s.Current())
}

func TestSequence_Concurrent(t *testing.T) {
	s := NewSequence(0)
	seen := make(chan uint64, 1000)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				seen <- s.Now()
			}
		}()
	}
	wg.Wait()
	close(seen)

	unique := make(map[uint64]struct{})
	for v := range seen {
		unique[v] = struct{}{}
	}
	assert.Len(t, unique, 1000)
	assert.Equal(t, uint64(1000), s.Current())
}

func TestMonotonic_StrictlyIncreasing(t *testing.T) {
	frozen := time.Unix(0, 500)
	m := &Monotonic{now: func() time.Time { return frozen }}

	assert.Equal(t, uint64(500), m.Now())
	assert.Equal(t, uint64(501), m.Now())
	assert.Equal(t, uint64(502), m.Now())

	frozen = time.Unix(0, 400)
	assert.Equal(t, uint64(503), m.Now())

	frozen = time.Unix(0, 1000)
	assert.Equal(t, uint64(1000), m.Now())
}

func TestMonotonic_WallClock(t *testing.T) {
	m := NewMonotonic()
	before := uint64(time.Now().UnixNano())

	prev := m.Now()
	require.GreaterOrEqual(t, prev, before)
	for i := 0; i < 100; i++ {
		next := m.Now()
		require.Greater(t, next, prev)
		prev = next
	}
}
