package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedClock_StartsAtEpoch(t *testing.T) {
	clock := NewFixedClock(time.Second)
	assert.Equal(t, Epoch, clock.Now())
	assert.Equal(t, int64(1760000000000), Epoch.UnixMilli())
}

func TestFixedClock_AdvancesByStep(t *testing.T) {
	clock := NewFixedClock(time.Second)

	clock.Now()
	assert.Equal(t, Epoch.Add(time.Second), clock.Now())
	assert.Equal(t, Epoch.Add(2*time.Second), clock.Now())
	assert.Equal(t, int64(3), clock.Reads())
}

func TestFixedClock_ZeroStepIsFrozen(t *testing.T) {
	clock := NewFixedClock(0)
	for range 5 {
		assert.Equal(t, Epoch, clock.Now())
	}
}

func TestFixedClock_Reset(t *testing.T) {
	clock := NewFixedClock(time.Minute)
	clock.Now()
	clock.Now()

	clock.Reset()

	assert.Equal(t, int64(0), clock.Reads())
	assert.Equal(t, Epoch, clock.Now())
}

func TestFixedClock_ThreadSafe(t *testing.T) {
	clock := NewFixedClock(time.Millisecond)

	var wg sync.WaitGroup
	seen := make(chan time.Time, 1000)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				seen <- clock.Now()
			}
		}()
	}
	wg.Wait()
	close(seen)

	unique := make(map[time.Time]bool)
	for ts := range seen {
		unique[ts] = true
	}
	require.Len(t, unique, 1000, "every read must observe a distinct instant")
}
