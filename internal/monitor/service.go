package monitor

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/angelmondragon/inventory-reorder/internal/events"
	"github.com/angelmondragon/inventory-reorder/pkg/db/models"
	"github.com/angelmondragon/inventory-reorder/pkg/logger"
	"github.com/angelmondragon/inventory-reorder/pkg/metrics"
)

const (
	defaultInterval    = 30 * time.Second
	defaultBackoffBase = time.Second
	defaultBackoffMax  = 30 * time.Second
	jitterWindow       = 250 * time.Millisecond
)

type itemLister interface {
	List(ctx context.Context, nameQuery string) ([]models.Item, error)
}

type eventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// ServiceParams configure the low-stock monitor.
type ServiceParams struct {
	Logger      *logger.Logger
	Items       itemLister
	Publisher   eventPublisher
	Metrics     *metrics.MonitorMetrics
	Interval    time.Duration
	BackoffBase time.Duration
	BackoffMax  time.Duration
	Now         func() time.Time
}

// Service periodically compares every item's stock with its effective
// reorder point and publishes StockLow for each item strictly below a
// positive threshold.
type Service struct {
	logg        *logger.Logger
	items       itemLister
	publisher   eventPublisher
	metrics     *metrics.MonitorMetrics
	interval    time.Duration
	backoffBase time.Duration
	backoffMax  time.Duration
	now         func() time.Time
	sleep       func(ctx context.Context, d time.Duration) error
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, errors.New("logger required")
	}
	if params.Items == nil {
		return nil, errors.New("item lister required")
	}
	if params.Publisher == nil {
		return nil, errors.New("event publisher required")
	}
	s := &Service{
		logg:        params.Logger,
		items:       params.Items,
		publisher:   params.Publisher,
		metrics:     params.Metrics,
		interval:    orDefault(params.Interval, defaultInterval),
		backoffBase: orDefault(params.BackoffBase, defaultBackoffBase),
		backoffMax:  orDefault(params.BackoffMax, defaultBackoffMax),
		now:         params.Now,
		sleep:       sleep,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.backoffMax < s.backoffBase {
		s.backoffMax = s.backoffBase
	}
	return s, nil
}

// ScanResult summarizes one pass over the catalog.
type ScanResult struct {
	Scanned       int
	Low           int
	PublishFailed int
}

// Run scans immediately and then every interval until ctx is canceled. A
// failed scan is logged and retried after an escalating, jittered backoff.
func (s *Service) Run(ctx context.Context) error {
	ctx = s.logg.WithComponent(ctx, "low-stock-monitor")
	s.logg.Info(s.logg.WithField(ctx, "interval", s.interval.String()), "low-stock monitor started")

	var backoff time.Duration
	for {
		wait := s.interval
		if _, err := s.Scan(ctx); err != nil {
			if ctx.Err() != nil {
				break
			}
			s.metrics.IncScanError()
			backoff = nextBackoff(backoff, s.backoffBase, s.backoffMax)
			wait = withJitter(backoff)
			s.logg.Error(s.logg.WithField(ctx, "retry_in_ms", wait.Milliseconds()), "low-stock scan failed", err)
		} else {
			backoff = 0
		}

		if err := s.sleep(ctx, wait); err != nil {
			break
		}
	}

	s.logg.Info(ctx, "low-stock monitor stopped")
	return ctx.Err()
}

// Scan reads a snapshot of all items and publishes StockLow for those below
// threshold. Publish failures are logged per item and do not stop the scan.
func (s *Service) Scan(ctx context.Context) (ScanResult, error) {
	rows, err := s.items.List(ctx, "")
	if err != nil {
		return ScanResult{}, fmt.Errorf("list items: %w", err)
	}

	result := ScanResult{Scanned: len(rows)}
	observedAt := s.now().UTC()
	for _, item := range rows {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if !item.IsBelowReorderPoint() {
			continue
		}
		result.Low++

		event := events.StockLow{
			ItemID:       item.ID,
			Stock:        item.Stock,
			ReorderPoint: item.EffectiveReorderPoint(),
			ObservedAt:   observedAt,
		}
		s.metrics.IncEvent()
		if err := s.publisher.Publish(ctx, event); err != nil {
			result.PublishFailed++
			s.logg.Error(s.logg.WithItemID(ctx, item.ID.String()), "stock low handlers failed", err)
		}
	}

	s.metrics.ObserveScan(result.Low)
	if result.Low > 0 {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"scanned":        result.Scanned,
			"low":            result.Low,
			"publish_failed": result.PublishFailed,
		}), "low-stock scan complete")
	}
	return result, nil
}

func nextBackoff(current, base, max time.Duration) time.Duration {
	if current <= 0 {
		return base
	}
	next := current * 2
	if next > max {
		return max
	}
	return next
}

func withJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d + rand.N(jitterWindow)
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

func orDefault(value, fallback time.Duration) time.Duration {
	if value <= 0 {
		return fallback
	}
	return value
}
