package demand

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/angelmondragon/inventory-reorder/pkg/db"
	"github.com/angelmondragon/inventory-reorder/pkg/logger"
)

const (
	newDayMaxDemand   = 4
	extraDayMaxDemand = 2
)

type itemLister interface {
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
}

// SimulatorParams wires the synthetic demand job.
type SimulatorParams struct {
	Repo   Repository
	Items  itemLister
	Logger *logger.Logger
	Now    func() time.Time
	Rand   func(n int) int
}

// Simulator makes sure every item has a demand row for today: new rows get
// 0..4 units, existing rows grow by 0..2.
type Simulator struct {
	repo  Repository
	items itemLister
	logg  *logger.Logger
	now   func() time.Time
	rand  func(n int) int
}

func NewSimulator(params SimulatorParams) (*Simulator, error) {
	if params.Repo == nil {
		return nil, errors.New("demand repository required")
	}
	if params.Items == nil {
		return nil, errors.New("item lister required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	rnd := params.Rand
	if rnd == nil {
		rnd = rand.IntN
	}
	return &Simulator{repo: params.Repo, items: params.Items, logg: params.Logger, now: now, rand: rnd}, nil
}

func (s *Simulator) Name() string { return "demand-simulator" }

func (s *Simulator) Run(ctx context.Context) error {
	ids, err := s.items.ListIDs(ctx)
	if err != nil {
		return fmt.Errorf("list items: %w", err)
	}

	today := s.now()
	var errs error
	for _, id := range ids {
		if ctx.Err() != nil {
			return multierr.Append(errs, ctx.Err())
		}
		qty, err := s.quantityFor(ctx, id, today)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if err := s.repo.Increment(ctx, id, today, qty); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("item %s: %w", id, err))
		}
	}

	s.logg.Info(s.logg.WithField(ctx, "count", len(ids)), "demand simulated")
	return errs
}

func (s *Simulator) quantityFor(ctx context.Context, id uuid.UUID, day time.Time) (int, error) {
	_, err := s.repo.Find(ctx, id, day)
	switch {
	case err == nil:
		return s.rand(extraDayMaxDemand + 1), nil
	case db.IsNotFound(err):
		return s.rand(newDayMaxDemand + 1), nil
	default:
		return 0, fmt.Errorf("item %s: %w", id, err)
	}
}
