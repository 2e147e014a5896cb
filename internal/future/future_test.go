package future

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveOnce(t *testing.T) {
	f := New[int]()
	assert.False(t, f.IsSettled())

	_, err := f.Result()
	assert.ErrorIs(t, err, ErrNotSettled)

	assert.True(t, f.Resolve(1))
	assert.False(t, f.Resolve(2))
	assert.False(t, f.Reject(errors.New("late")))

	for i := 0; i < 3; i++ {
		v, err := f.Result()
		require.NoError(t, err)
		assert.Equal(t, 1, v)
	}
}

func TestRejectOnce(t *testing.T) {
	first := errors.New("first")
	f := Rejected[string](first)

	assert.False(t, f.Reject(errors.New("second")))
	assert.False(t, f.Resolve("value"))

	for i := 0; i < 3; i++ {
		_, err := f.Await(context.Background())
		assert.Same(t, first, err)
	}
}

func TestRejectNilIgnored(t *testing.T) {
	f := New[int]()
	assert.False(t, f.Reject(nil))
	assert.False(t, f.IsSettled())
}

func TestAwaitContext(t *testing.T) {
	f := New[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := f.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestConcurrentSettle(t *testing.T) {
	f := New[int]()
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if f.Resolve(i) {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
	v, err := Resolved(0).Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, v)
}
