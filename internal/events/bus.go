package events

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/angelmondragon/inventory-reorder/pkg/logger"
	"github.com/angelmondragon/inventory-reorder/pkg/metrics"
)

var (
	ErrUnsupportedKind = errors.New("unsupported event kind")
	ErrHandlerPanic    = errors.New("event handler panicked")
)

// Handler reacts to a published event.
type Handler func(ctx context.Context, event Event) error

type handlerEntry struct {
	name    string
	handler Handler
}

// BusParams configures the in-process event bus.
type BusParams struct {
	Logger  *logger.Logger
	Metrics *metrics.EventBusMetrics
}

// Bus fans events out to every handler subscribed to the event's kind.
// Delivery is in-process and at-most-once; nothing is persisted or replayed.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Kind]map[uint64]handlerEntry
	nextID   uint64
	logg     *logger.Logger
	metrics  *metrics.EventBusMetrics
}

func NewBus(params BusParams) (*Bus, error) {
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	handlers := make(map[Kind]map[uint64]handlerEntry, len(validKinds))
	for _, kind := range validKinds {
		handlers[kind] = map[uint64]handlerEntry{}
	}
	return &Bus{
		handlers: handlers,
		logg:     params.Logger,
		metrics:  params.Metrics,
	}, nil
}

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	bus  *Bus
	kind Kind
	id   uint64
	once sync.Once
}

// Unsubscribe removes the handler. Publishes already in flight still run it.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.bus == nil {
		return
	}
	s.once.Do(func() {
		s.bus.mu.Lock()
		delete(s.bus.handlers[s.kind], s.id)
		s.bus.mu.Unlock()
	})
}

func (s *Subscription) Kind() Kind {
	return s.kind
}

// Subscribe registers handler for kind. The name labels logs and metrics.
func (b *Bus) Subscribe(kind Kind, name string, handler Handler) (*Subscription, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
	}
	if handler == nil {
		return nil, errors.New("handler is required")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.handlers[kind][id] = handlerEntry{name: name, handler: handler}
	return &Subscription{bus: b, kind: kind, id: id}, nil
}

// SubscribeStockLow registers a handler typed to StockLow events.
func SubscribeStockLow(b *Bus, name string, fn func(ctx context.Context, event StockLow) error) (*Subscription, error) {
	return b.Subscribe(KindStockLow, name, func(ctx context.Context, event Event) error {
		typed, ok := event.(StockLow)
		if !ok {
			return fmt.Errorf("unexpected payload %T for %s", event, KindStockLow)
		}
		return fn(ctx, typed)
	})
}

// SubscribeSupplierOrderPlaced registers a handler typed to SupplierOrderPlaced events.
func SubscribeSupplierOrderPlaced(b *Bus, name string, fn func(ctx context.Context, event SupplierOrderPlaced) error) (*Subscription, error) {
	return b.Subscribe(KindSupplierOrderPlaced, name, func(ctx context.Context, event Event) error {
		typed, ok := event.(SupplierOrderPlaced)
		if !ok {
			return fmt.Errorf("unexpected payload %T for %s", event, KindSupplierOrderPlaced)
		}
		return fn(ctx, typed)
	})
}

// HandlerCount returns the number of handlers currently subscribed to kind.
func (b *Bus) HandlerCount(kind Kind) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[kind])
}

// Publish runs every handler for the event's kind concurrently and waits for all
// of them. Handler errors and panics are logged and returned combined.
func (b *Bus) Publish(ctx context.Context, event Event) error {
	if event == nil {
		return errors.New("event is required")
	}
	kind := event.Kind()
	if !kind.IsValid() {
		return fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
	}

	b.mu.RLock()
	entries := make([]handlerEntry, 0, len(b.handlers[kind]))
	for _, entry := range b.handlers[kind] {
		entries = append(entries, entry)
	}
	b.mu.RUnlock()

	b.metrics.IncPublished(string(kind))
	if len(entries) == 0 {
		return nil
	}

	errs := make([]error, len(entries))
	var wg sync.WaitGroup
	wg.Add(len(entries))
	for i, entry := range entries {
		go func(i int, entry handlerEntry) {
			defer wg.Done()
			errs[i] = b.invoke(ctx, kind, entry, event)
		}(i, entry)
	}
	wg.Wait()

	return multierr.Combine(errs...)
}

func (b *Bus) invoke(ctx context.Context, kind Kind, entry handlerEntry, event Event) (err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v", ErrHandlerPanic, entry.name, r)
			b.logg.Error(b.logg.WithField(ctx, "panic_stack", string(debug.Stack())), "event handler panic", err)
		}
		b.metrics.ObserveHandler(string(kind), time.Since(start))
		if err != nil {
			b.metrics.IncHandlerFailure(string(kind), entry.name)
		}
	}()

	hctx := b.logg.WithFields(ctx, map[string]any{"event": string(kind), "handler": entry.name})
	if err := entry.handler(hctx, event); err != nil {
		b.logg.Error(hctx, "event handler failed", err)
		return fmt.Errorf("%s: %w", entry.name, err)
	}
	return nil
}
