package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printcraft/storefront/internal/core/ports"
)

func TestDispatcher_PreservesPerKeyOrder(t *testing.T) {
	d := NewDispatcher(4, zerolog.Nop())
	d.Start(context.Background())

	var mu sync.Mutex
	seen := make(map[string][]int)
	keys := []string{"media:a", "media:b", "media:c", "order:1", "order:2"}
	for i := 0; i < 50; i++ {
		for _, k := range keys {
			d.Enqueue(ports.Task{Key: k, Name: "record", Run: func(context.Context) error {
				mu.Lock()
				seen[k] = append(seen[k], i)
				mu.Unlock()
				return nil
			}})
		}
	}
	require.NoError(t, d.Stop(context.Background()))

	for _, k := range keys {
		require.Len(t, seen[k], 50, "key %s", k)
		for i, v := range seen[k] {
			assert.Equal(t, i, v, "key %s out of order", k)
		}
	}
}

func TestDispatcher_StopDrainsQueuedTasks(t *testing.T) {
	d := NewDispatcher(2, zerolog.Nop())
	d.Start(context.Background())

	var ran atomic.Int32
	for i := 0; i < 20; i++ {
		d.Enqueue(ports.Task{Key: fmt.Sprint(i), Name: "slow", Run: func(context.Context) error {
			time.Sleep(time.Millisecond)
			ran.Add(1)
			return nil
		}})
	}
	require.NoError(t, d.Stop(context.Background()))
	assert.EqualValues(t, 20, ran.Load())

	// Tasks after Stop are dropped, not panicking on a closed channel.
	d.Enqueue(ports.Task{Key: "late", Name: "late", Run: func(context.Context) error {
		ran.Add(1)
		return nil
	}})
	assert.EqualValues(t, 20, ran.Load())
	require.NoError(t, d.Stop(context.Background()))
}

func TestDispatcher_SurvivesFailingAndPanickingTasks(t *testing.T) {
	d := NewDispatcher(1, zerolog.Nop())
	d.Start(context.Background())

	var ran atomic.Int32
	d.Enqueue(ports.Task{Key: "k", Name: "fail", Run: func(context.Context) error { return errors.New("boom") }})
	d.Enqueue(ports.Task{Key: "k", Name: "panic", Run: func(context.Context) error { panic("bad task") }})
	d.Enqueue(ports.Task{Key: "k", Name: "ok", Run: func(context.Context) error {
		ran.Add(1)
		return nil
	}})
	require.NoError(t, d.Stop(context.Background()))
	assert.EqualValues(t, 1, ran.Load())
}

func TestDispatcher_StopHonoursDeadline(t *testing.T) {
	d := NewDispatcher(1, zerolog.Nop())
	d.Start(context.Background())

	release := make(chan struct{})
	d.Enqueue(ports.Task{Key: "k", Name: "blocked", Run: func(context.Context) error {
		<-release
		return nil
	}})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := d.Stop(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	close(release)
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(0, zerolog.Nop())
	assert.Len(t, d.workers, defaultWorkers)
	assert.Equal(t, d.shardIndex("media:p1"), d.shardIndex("media:p1"))
}
