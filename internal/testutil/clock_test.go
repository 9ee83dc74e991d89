package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedClock_FrozenUntilAdvanced(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	clock := NewFixedClock(start)

	assert.Equal(t, start, clock.Now())
	assert.Equal(t, start, clock.Now())

	got := clock.Advance(36 * time.Hour)
	assert.Equal(t, start.Add(36*time.Hour), got)
	assert.Equal(t, got, clock.Now())
}

func TestFixedClock_SetConvertsToUTC(t *testing.T) {
	clock := NewFixedClock(time.Time{})
	loc := time.FixedZone("EST", -5*60*60)

	clock.Set(time.Date(2026, 3, 2, 4, 0, 0, 0, loc))
	assert.Equal(t, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), clock.Now())
}

func TestFixedClock_ThreadSafe(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	clock := NewFixedClock(start)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			clock.Advance(time.Minute)
		}()
	}
	wg.Wait()

	assert.Equal(t, start.Add(50*time.Minute), clock.Now())
}
