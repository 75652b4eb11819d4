package confirmations

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/inventory-reorder/internal/events"
	"github.com/angelmondragon/inventory-reorder/pkg/enums"
	"github.com/angelmondragon/inventory-reorder/pkg/logger"
	"github.com/angelmondragon/inventory-reorder/pkg/metrics"
)

const (
	defaultWorkers  = 4
	defaultCapacity = 256
	subscriberName  = "supplier-confirmations"
)

var (
	ErrQueueClosed = errors.New("confirmation queue closed")
	ErrQueueFull   = errors.New("confirmation queue full")
	ErrNotStarted  = errors.New("confirmation queue not started")
)

// Confirmer delivers the supplier's confirmation for an order.
type Confirmer interface {
	Confirm(ctx context.Context, orderID uuid.UUID) error
}

// QueueParams configures the confirmation queue.
type QueueParams struct {
	Logger    *logger.Logger
	Confirmer Confirmer
	Metrics   *metrics.ConfirmationMetrics
	Delay     time.Duration
	Workers   int
	Capacity  int
}

// Task tracks one scheduled confirmation.
type Task struct {
	OrderID uuid.UUID

	done       chan struct{}
	mu         sync.Mutex
	outcome    enums.ConfirmationOutcome
	err        error
	finishedAt time.Time
}

func newTask(orderID uuid.UUID) *Task {
	return &Task{
		OrderID: orderID,
		done:    make(chan struct{}),
		outcome: enums.ConfirmationOutcomeQueued,
	}
}

func (t *Task) finish(outcome enums.ConfirmationOutcome, err error) {
	t.mu.Lock()
	t.outcome = outcome
	t.err = err
	t.finishedAt = time.Now().UTC()
	t.mu.Unlock()
	close(t.done)
}

// Done is closed once the task has a final outcome.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Result returns the current outcome and, for failed tasks, the error.
func (t *Task) Result() (enums.ConfirmationOutcome, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.outcome, t.err
}

// Wait blocks until the task finishes or ctx is done.
func (t *Task) Wait(ctx context.Context) (enums.ConfirmationOutcome, error) {
	select {
	case <-t.done:
		return t.Result()
	case <-ctx.Done():
		return enums.ConfirmationOutcomeQueued, ctx.Err()
	}
}

// Queue runs supplier confirmations on a fixed pool of workers, each after a
// configurable delay. Tasks are held in memory only.
type Queue struct {
	logg      *logger.Logger
	confirmer Confirmer
	metrics   *metrics.ConfirmationMetrics
	delay     time.Duration
	workers   int

	mu      sync.RWMutex
	tasks   chan *Task
	closed  bool
	started bool
	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewQueue(params QueueParams) (*Queue, error) {
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if params.Confirmer == nil {
		return nil, errors.New("confirmer is required")
	}
	if params.Delay < 0 {
		return nil, errors.New("delay must not be negative")
	}
	workers := params.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	capacity := params.Capacity
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Queue{
		logg:      params.Logger,
		confirmer: params.Confirmer,
		metrics:   params.Metrics,
		delay:     params.Delay,
		workers:   workers,
		tasks:     make(chan *Task, capacity),
	}, nil
}

// Start launches the workers. Calling it more than once is a no-op.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started || q.closed {
		return
	}
	q.started = true
	q.baseCtx, q.cancel = context.WithCancel(context.WithoutCancel(ctx))
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.work(i)
	}
	q.logg.Info(q.logg.WithField(ctx, "workers", q.workers), "confirmation queue started")
}

// Enqueue schedules a confirmation for orderID without blocking.
func (q *Queue) Enqueue(orderID uuid.UUID) (*Task, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return nil, ErrQueueClosed
	}
	if !q.started {
		return nil, ErrNotStarted
	}

	task := newTask(orderID)
	select {
	case q.tasks <- task:
		q.metrics.AddInflight(1)
		return task, nil
	default:
		return nil, ErrQueueFull
	}
}

// Shutdown stops accepting tasks, cancels pending delays, and waits for the
// workers to drain. Tasks still waiting are marked canceled.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	if q.cancel != nil {
		q.cancel()
	}
	close(q.tasks)
	started := q.started
	q.mu.Unlock()

	if !started {
		for task := range q.tasks {
			q.complete(task, enums.ConfirmationOutcomeCanceled, context.Canceled)
		}
		return nil
	}

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("confirmation queue shutdown: %w", ctx.Err())
	}
}

func (q *Queue) work(id int) {
	defer q.wg.Done()
	for task := range q.tasks {
		q.run(id, task)
	}
}

func (q *Queue) run(worker int, task *Task) {
	ctx := q.logg.WithFields(q.baseCtx, map[string]any{
		"worker":   worker,
		"order_id": task.OrderID.String(),
	})

	if err := sleep(ctx, q.delay); err != nil {
		q.complete(task, enums.ConfirmationOutcomeCanceled, err)
		return
	}

	if err := q.confirmer.Confirm(ctx, task.OrderID); err != nil {
		if ctx.Err() != nil {
			q.complete(task, enums.ConfirmationOutcomeCanceled, err)
			return
		}
		q.logg.Error(ctx, "supplier confirmation failed", err)
		q.complete(task, enums.ConfirmationOutcomeFailed, err)
		return
	}
	q.logg.Info(ctx, "supplier confirmation delivered")
	q.complete(task, enums.ConfirmationOutcomeSucceeded, nil)
}

func (q *Queue) complete(task *Task, outcome enums.ConfirmationOutcome, err error) {
	task.finish(outcome, err)
	q.metrics.AddInflight(-1)
	q.metrics.IncOutcome(outcome.String())
}

// Register schedules a confirmation for every manual order placed on bus, and
// for automatic orders too when includeAutomatic is set.
func (q *Queue) Register(bus *events.Bus, includeAutomatic bool) (*events.Subscription, error) {
	if bus == nil {
		return nil, errors.New("event bus is required")
	}
	return events.SubscribeSupplierOrderPlaced(bus, subscriberName, func(ctx context.Context, event events.SupplierOrderPlaced) error {
		if event.Source == enums.OrderSourceAutomatic && !includeAutomatic {
			return nil
		}
		if _, err := q.Enqueue(event.OrderID); err != nil {
			return fmt.Errorf("enqueue confirmation for %s: %w", event.OrderID, err)
		}
		q.logg.Debug(q.logg.WithOrderID(ctx, event.OrderID.String()), "confirmation scheduled")
		return nil
	})
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
