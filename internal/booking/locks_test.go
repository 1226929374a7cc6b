package booking

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionLocksSerializeSameSession(t *testing.T) {
	locks := newSessionLocks()

	const goroutines = 8
	const increments = 200
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < increments; j++ {
				e := locks.acquire(42)
				counter++
				locks.release(42, e)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, goroutines*increments, counter)
	assert.Equal(t, 0, locks.size())
}

func TestSessionLocksDistinctSessionsDoNotBlock(t *testing.T) {
	locks := newSessionLocks()

	// Hold session 1 for the whole test; session 2 must still be
	// acquirable without waiting.
	e1 := locks.acquire(1)
	defer locks.release(1, e1)

	done := make(chan struct{})
	go func() {
		e2 := locks.acquire(2)
		locks.release(2, e2)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("acquire on a distinct session blocked behind an unrelated holder")
	}

	assert.Equal(t, 1, locks.size())
}

func TestSessionLocksEntriesCollectedWhenIdle(t *testing.T) {
	locks := newSessionLocks()

	for id := uint64(1); id <= 5; id++ {
		e := locks.acquire(id)
		locks.release(id, e)
	}
	assert.Equal(t, 0, locks.size())

	// An entry with a waiter is kept until the last reference drops.
	e := locks.acquire(7)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w := locks.acquire(7)
		locks.release(7, w)
	}()

	// Wait for the second goroutine to register as a waiter.
	for locks.size() != 1 || func() bool {
		locks.mu.Lock()
		defer locks.mu.Unlock()
		return locks.entries[7] == nil || locks.entries[7].refs < 2
	}() {
		time.Sleep(time.Millisecond)
	}

	locks.release(7, e)
	wg.Wait()
	assert.Equal(t, 0, locks.size())
}
