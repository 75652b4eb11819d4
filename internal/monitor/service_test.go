package monitor

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/inventory-reorder/internal/events"
	"github.com/angelmondragon/inventory-reorder/pkg/db/models"
	"github.com/angelmondragon/inventory-reorder/pkg/logger"
	"github.com/angelmondragon/inventory-reorder/pkg/metrics"
)

type fakeItems struct {
	mu    sync.Mutex
	rows  []models.Item
	errs  []error
	calls int
}

func (f *fakeItems) List(context.Context, string) ([]models.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return f.rows, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.StockLow
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, event events.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event.(events.StockLow))
	return f.err
}

func intPtr(v int) *int { return &v }

func newTestService(t *testing.T, items *fakeItems, pub *fakePublisher) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Logger:    logger.New(logger.Options{ServiceName: "monitor-test", Output: io.Discard}),
		Items:     items,
		Publisher: pub,
		Metrics:   metrics.NewMonitorMetrics(prometheus.NewRegistry()),
		Interval:  time.Minute,
	})
	if err != nil {
		t.Fatalf("construct monitor: %v", err)
	}
	return svc
}

func TestScanPublishesOnlyItemsStrictlyBelowThreshold(t *testing.T) {
	low := models.Item{ID: uuid.New(), Name: "low", Stock: 3, ComputedReorderPoint: 6}
	atThreshold := models.Item{ID: uuid.New(), Name: "equal", Stock: 6, ComputedReorderPoint: 6}
	zeroThreshold := models.Item{ID: uuid.New(), Name: "zero", Stock: 0, ComputedReorderPoint: 0}
	manual := models.Item{ID: uuid.New(), Name: "manual", Stock: 10, ComputedReorderPoint: 5, ManualReorderPoint: intPtr(25)}
	manualLower := models.Item{ID: uuid.New(), Name: "manual-lower", Stock: 10, ComputedReorderPoint: 50, ManualReorderPoint: intPtr(4)}

	items := &fakeItems{rows: []models.Item{low, atThreshold, zeroThreshold, manual, manualLower}}
	pub := &fakePublisher{}
	svc := newTestService(t, items, pub)

	result, err := svc.Scan(context.Background())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if result.Scanned != 5 || result.Low != 2 {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(pub.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(pub.events))
	}
	if got := pub.events[0]; got.ItemID != low.ID || got.Stock != 3 || got.ReorderPoint != 6 {
		t.Fatalf("unexpected first event %+v", got)
	}
	if got := pub.events[1]; got.ItemID != manual.ID || got.Stock != 10 || got.ReorderPoint != 25 {
		t.Fatalf("manual threshold should take precedence: %+v", got)
	}
}

func TestScanContinuesAfterPublishFailure(t *testing.T) {
	items := &fakeItems{rows: []models.Item{
		{ID: uuid.New(), Stock: 1, ComputedReorderPoint: 5},
		{ID: uuid.New(), Stock: 2, ComputedReorderPoint: 5},
	}}
	pub := &fakePublisher{err: errors.New("handler failed")}
	svc := newTestService(t, items, pub)

	result, err := svc.Scan(context.Background())
	if err != nil {
		t.Fatalf("publish failures should not fail the scan: %v", err)
	}
	if len(pub.events) != 2 || result.PublishFailed != 2 {
		t.Fatalf("expected both items attempted, got events=%d result=%+v", len(pub.events), result)
	}
}

func TestRunBacksOffAfterFailuresAndResets(t *testing.T) {
	items := &fakeItems{errs: []error{errors.New("db down"), errors.New("db down"), nil, errors.New("db down")}}
	svc := newTestService(t, items, &fakePublisher{})
	svc.backoffBase = time.Second
	svc.backoffMax = 3 * time.Second

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var waits []time.Duration
	svc.sleep = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		if len(waits) == 5 {
			cancel()
			return ctx.Err()
		}
		return nil
	}

	if err := svc.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
	if len(waits) != 5 {
		t.Fatalf("expected 5 waits, got %d", len(waits))
	}

	within := func(d, base time.Duration) bool { return d >= base && d < base+jitterWindow }
	if !within(waits[0], time.Second) {
		t.Fatalf("first backoff should start at base, got %v", waits[0])
	}
	if !within(waits[1], 2*time.Second) {
		t.Fatalf("second backoff should double, got %v", waits[1])
	}
	if waits[2] != time.Minute {
		t.Fatalf("successful scan should wait the interval, got %v", waits[2])
	}
	if !within(waits[3], time.Second) {
		t.Fatalf("backoff should reset after success, got %v", waits[3])
	}
	if waits[4] != time.Minute {
		t.Fatalf("expected interval wait, got %v", waits[4])
	}
}

func TestRunStopsPromptlyOnCancel(t *testing.T) {
	items := &fakeItems{}
	svc := newTestService(t, items, &fakePublisher{})
	svc.interval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop after cancel")
	}
	if items.calls < 1 {
		t.Fatal("expected an immediate scan on start")
	}
}

func TestNextBackoffCaps(t *testing.T) {
	if got := nextBackoff(0, time.Second, 30*time.Second); got != time.Second {
		t.Fatalf("expected base, got %v", got)
	}
	if got := nextBackoff(20*time.Second, time.Second, 30*time.Second); got != 30*time.Second {
		t.Fatalf("expected cap, got %v", got)
	}
}
