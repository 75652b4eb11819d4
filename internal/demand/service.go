package demand

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/inventory-reorder/pkg/db"
	"github.com/angelmondragon/inventory-reorder/pkg/db/models"
	pkgerrors "github.com/angelmondragon/inventory-reorder/pkg/errors"
	"github.com/angelmondragon/inventory-reorder/pkg/logger"
)

// DefaultWindowDays is the trailing demand window used for reorder points.
const DefaultWindowDays = 30

// StatDTO is one day of recorded demand.
type StatDTO struct {
	Day      string `json:"day"`
	Quantity int    `json:"quantity"`
}

type itemLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
}

// LedgerParams wires the demand ledger.
type LedgerParams struct {
	Repo       Repository
	Items      itemLoader
	Logger     *logger.Logger
	WindowDays int
	Now        func() time.Time
}

// Ledger records daily demand per item and answers trailing-window queries.
type Ledger struct {
	repo       Repository
	items      itemLoader
	logg       *logger.Logger
	windowDays int
	now        func() time.Time
}

func NewLedger(params LedgerParams) (*Ledger, error) {
	if params.Repo == nil {
		return nil, errors.New("demand repository required")
	}
	if params.Items == nil {
		return nil, errors.New("item loader required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger required")
	}
	window := params.WindowDays
	if window <= 0 {
		window = DefaultWindowDays
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Ledger{
		repo:       params.Repo,
		items:      params.Items,
		logg:       params.Logger,
		windowDays: window,
		now:        now,
	}, nil
}

// Today returns the current UTC calendar day.
func (l *Ledger) Today() time.Time {
	return models.DayOf(l.now())
}

// WindowStart is the first day included in the trailing window: today minus WindowDays.
func (l *Ledger) WindowStart() time.Time {
	return l.Today().AddDate(0, 0, -l.windowDays)
}

// Record adds quantity to the item's demand for day. A zero day means today.
func (l *Ledger) Record(ctx context.Context, itemID uuid.UUID, day time.Time, quantity int) error {
	if quantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be >= 0")
	}
	if day.IsZero() {
		day = l.now()
	}
	if models.DayOf(day).After(l.Today()) {
		return pkgerrors.New(pkgerrors.CodeValidation, "day must not be in the future")
	}
	if err := l.ensureItem(ctx, itemID); err != nil {
		return err
	}
	if err := l.repo.Increment(ctx, itemID, day, quantity); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: record demand")
	}
	return nil
}

// Trailing lists the recorded days inside the window, oldest first.
func (l *Ledger) Trailing(ctx context.Context, itemID uuid.UUID) ([]StatDTO, error) {
	if err := l.ensureItem(ctx, itemID); err != nil {
		return nil, err
	}
	rows, err := l.repo.ListSince(ctx, itemID, l.WindowStart())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list demand")
	}
	out := make([]StatDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, StatDTO{Day: row.Day.UTC().Format(time.DateOnly), Quantity: row.Quantity})
	}
	return out, nil
}

// Window aggregates total demand and recorded days inside the trailing window.
func (l *Ledger) Window(ctx context.Context, itemID uuid.UUID) (Window, error) {
	return l.repo.WindowSince(ctx, itemID, l.WindowStart())
}

func (l *Ledger) ensureItem(ctx context.Context, itemID uuid.UUID) error {
	if _, err := l.items.FindByID(ctx, itemID); err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load item")
	}
	return nil
}
