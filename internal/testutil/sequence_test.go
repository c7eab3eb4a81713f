package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequence_StartsAtStart(t *testing.T) {
	seq := NewSequence(1000)
	assert.Equal(t, int64(1000), seq.Peek())
	assert.Equal(t, int64(1000), seq.Next())
	assert.Equal(t, int64(1001), seq.Next())
	assert.Equal(t, int64(1002), seq.Peek())
}

func TestSequence_ThreadSafe(t *testing.T) {
	seq := NewSequence(1)
	const numGoroutines = 50
	const callsPerGoroutine = 100

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	var mu sync.Mutex
	seen := make(map[int64]bool)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < callsPerGoroutine; j++ {
				id := seq.Next()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, numGoroutines*callsPerGoroutine)
	assert.Equal(t, int64(numGoroutines*callsPerGoroutine+1), seq.Peek())
}

func TestFixedUIDs(t *testing.T) {
	next := FixedUIDs()
	assert.Equal(t, "uid-1", next())
	assert.Equal(t, "uid-2", next())

	// A new generator starts over.
	assert.Equal(t, "uid-1", FixedUIDs()())
}
