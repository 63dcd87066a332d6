package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestSteppedClock_StartsAtStart(t *testing.T) {
	clock := NewSteppedClock(epoch, time.Second)
	assert.Equal(t, epoch, clock.Current())
}

func TestSteppedClock_NowAdvancesMonotonically(t *testing.T) {
	clock := NewSteppedClock(epoch, time.Second)

	assert.Equal(t, epoch.Add(1*time.Second), clock.Now())
	assert.Equal(t, epoch.Add(2*time.Second), clock.Now())
	assert.Equal(t, epoch.Add(3*time.Second), clock.Now())
	assert.Equal(t, epoch.Add(3*time.Second), clock.Current())
}

func TestSteppedClock_Reset(t *testing.T) {
	clock := NewSteppedClock(epoch, time.Minute)

	clock.Now()
	clock.Now()
	assert.Equal(t, epoch.Add(2*time.Minute), clock.Current())

	clock.Reset(epoch)
	assert.Equal(t, epoch, clock.Current())
	assert.Equal(t, epoch.Add(time.Minute), clock.Now())
}

func TestSteppedClock_ThreadSafe(t *testing.T) {
	clock := NewSteppedClock(epoch, time.Millisecond)
	const goroutines = 50
	const calls = 50

	var wg sync.WaitGroup
	wg.Add(goroutines)
	results := make([][]time.Time, goroutines)
	for i := 0; i < goroutines; i++ {
		results[i] = make([]time.Time, calls)
		go func(idx int) {
			defer wg.Done()
			for j := 0; j < calls; j++ {
				results[idx][j] = clock.Now()
			}
		}(i)
	}
	wg.Wait()

	// Every handed-out instant is unique.
	seen := make(map[time.Time]bool, goroutines*calls)
	for i := range results {
		for _, ts := range results[i] {
			assert.False(t, seen[ts], "duplicate instant %v", ts)
			seen[ts] = true
		}
	}
	assert.Equal(t, epoch.Add(goroutines*calls*time.Millisecond), clock.Current())
}
