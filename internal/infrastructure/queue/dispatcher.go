package queue

import (
	"context"
	"fmt"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/printcraft/storefront/internal/api/metrics"
	"github.com/printcraft/storefront/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// Dispatcher routes background tasks to a fixed set of workers using
// consistent hashing on the task key, so tasks for one document run in order.
type Dispatcher struct {
	workers []chan ports.Task
	log     zerolog.Logger

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.Task, numWorkers),
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.Task, channelBuffer)
	}
	return d
}

// Start launches the worker goroutines. ctx is handed to every task.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends a task to the worker responsible for its key. It blocks once
// the worker buffer is full. Tasks submitted after Stop are dropped.
func (d *Dispatcher) Enqueue(task ports.Task) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		d.log.Warn().Str("task", task.Name).Str("key", task.Key).Msg("dispatcher stopped, task dropped")
		metrics.TasksProcessedTotal.WithLabelValues(task.Name, "dropped").Inc()
		return
	}
	idx := d.shardIndex(task.Key)
	d.workers[idx] <- task
	metrics.TaskQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
}

// Stop closes the worker channels and waits for queued tasks to finish or
// ctx to expire.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.stopped {
		d.stopped = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("dispatcher drain: %w", ctx.Err())
	}
}

// shardIndex maps a task key deterministically to a worker index.
func (d *Dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.Task) {
	defer d.wg.Done()
	workerID := strconv.Itoa(id)
	for task := range ch {
		metrics.TaskQueueDepth.WithLabelValues(workerID).Set(float64(len(ch)))
		d.run(ctx, id, task)
	}
}

func (d *Dispatcher) run(ctx context.Context, workerID int, task ports.Task) {
	started := time.Now()
	defer func() {
		metrics.TaskDuration.WithLabelValues(task.Name).Observe(time.Since(started).Seconds())
		if r := recover(); r != nil {
			metrics.TasksProcessedTotal.WithLabelValues(task.Name, "panic").Inc()
			d.log.Error().
				Str("task", task.Name).
				Str("key", task.Key).
				Int("worker_id", workerID).
				Interface("panic", r).
				Msg("task panicked")
		}
	}()

	if err := task.Run(ctx); err != nil {
		metrics.TasksProcessedTotal.WithLabelValues(task.Name, "failure").Inc()
		d.log.Error().Err(err).
			Str("task", task.Name).
			Str("key", task.Key).
			Int("worker_id", workerID).
			Msg("task failed")
		return
	}
	metrics.TasksProcessedTotal.WithLabelValues(task.Name, "success").Inc()
	d.log.Debug().Str("task", task.Name).Str("key", task.Key).Dur("took", time.Since(started)).Msg("task done")
}
