package items

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/inventory-reorder/internal/events"
	"github.com/angelmondragon/inventory-reorder/internal/repo/repotest"
	"github.com/angelmondragon/inventory-reorder/pkg/db/models"
	"github.com/angelmondragon/inventory-reorder/pkg/enums"
	pkgerrors "github.com/angelmondragon/inventory-reorder/pkg/errors"
	"github.com/angelmondragon/inventory-reorder/pkg/logger"
)

type stubCalculator struct {
	repo  Repository
	value int
	calls []uuid.UUID
	err   error
}

func (s *stubCalculator) ComputeReorderPoint(ctx context.Context, id uuid.UUID) (int, error) {
	s.calls = append(s.calls, id)
	if s.err != nil {
		return 0, s.err
	}
	if err := s.repo.UpdateComputedReorderPoint(ctx, id, s.value); err != nil {
		return 0, err
	}
	return s.value, nil
}

type capturePublisher struct {
	events []events.Event
	err    error
}

func (c *capturePublisher) Publish(_ context.Context, event events.Event) error {
	c.events = append(c.events, event)
	return c.err
}

type fixture struct {
	svc       Service
	repo      Repository
	calc      *stubCalculator
	publisher *capturePublisher
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	repo := NewRepository(repotest.NewDB(t))
	calc := &stubCalculator{repo: repo, value: 12}
	pub := &capturePublisher{}
	svc, err := NewService(ServiceParams{
		Repo:       repo,
		Calculator: calc,
		Publisher:  pub,
		Logger:     logger.New(logger.Options{ServiceName: "items-test", Output: io.Discard}),
		Now:        func() time.Time { return time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	return fixture{svc: svc, repo: repo, calc: calc, publisher: pub}
}

func intPtr(v int) *int { return &v }

func TestCreateAppliesDefaultsAndComputesThreshold(t *testing.T) {
	f := newFixture(t)

	dto, err := f.svc.Create(context.Background(), CreateItemInput{SKU: " SKU-1 ", Name: "Widget", Stock: 4})
	require.NoError(t, err)

	assert.Equal(t, "SKU-1", dto.SKU)
	assert.Equal(t, DefaultLeadTimeDays, dto.LeadTimeDays)
	assert.Equal(t, DefaultSafetyStock, dto.SafetyStock)
	assert.Equal(t, 12, dto.ComputedReorderPoint)
	assert.Equal(t, 12, dto.ReorderPoint)
	assert.Equal(t, enums.StockStatusLow, dto.Status)
	assert.Equal(t, []uuid.UUID{dto.ID}, f.calc.calls)
}

func TestCreateRejectsDuplicateSKU(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, CreateItemInput{SKU: "SKU-1", Name: "Widget"})
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, CreateItemInput{SKU: "SKU-1", Name: "Other"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)
}

func TestCreateValidatesInput(t *testing.T) {
	f := newFixture(t)
	cases := map[string]CreateItemInput{
		"missing sku":     {Name: "Widget"},
		"missing name":    {SKU: "SKU-1"},
		"zero lead time":  {SKU: "SKU-1", Name: "Widget", LeadTimeDays: intPtr(0)},
		"negative safety": {SKU: "SKU-1", Name: "Widget", SafetyStock: intPtr(-1)},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Create(context.Background(), input)
			assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
		})
	}
}

func TestSetReorderThresholdOverridesAndClears(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dto, err := f.svc.Create(ctx, CreateItemInput{SKU: "SKU-1", Name: "Widget", Stock: 30})
	require.NoError(t, err)

	require.NoError(t, f.svc.SetReorderThreshold(ctx, dto.ID, ThresholdInput{ReorderPoint: intPtr(40), SafetyStock: intPtr(8)}))
	got, err := f.svc.Get(ctx, dto.ID)
	require.NoError(t, err)
	assert.Equal(t, 40, got.ReorderPoint)
	assert.Equal(t, 12, got.ComputedReorderPoint)
	assert.Equal(t, 8, got.SafetyStock)
	assert.Equal(t, enums.StockStatusLow, got.Status)

	require.NoError(t, f.svc.SetReorderThreshold(ctx, dto.ID, ThresholdInput{}))
	got, err = f.svc.Get(ctx, dto.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ManualReorderPoint)
	assert.Equal(t, 12, got.ReorderPoint)
	assert.Equal(t, 8, got.SafetyStock)
	assert.Equal(t, enums.StockStatusOK, got.Status)
}

func TestSetReorderThresholdUnknownItem(t *testing.T) {
	f := newFixture(t)
	err := f.svc.SetReorderThreshold(context.Background(), uuid.New(), ThresholdInput{ReorderPoint: intPtr(1)})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)
}

func TestUpdateRecomputes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dto, err := f.svc.Create(ctx, CreateItemInput{SKU: "SKU-1", Name: "Widget"})
	require.NoError(t, err)

	f.calc.value = 20
	require.NoError(t, f.svc.Update(ctx, dto.ID, UpdateItemInput{SKU: "SKU-1", Name: "Widget v2", Stock: 50, LeadTimeDays: 7, SafetyStock: 2}))

	got, err := f.svc.Get(ctx, dto.ID)
	require.NoError(t, err)
	assert.Equal(t, "Widget v2", got.Name)
	assert.Equal(t, 50, got.Stock)
	assert.Equal(t, 7, got.LeadTimeDays)
	assert.Equal(t, 20, got.ComputedReorderPoint)
	assert.Len(t, f.calc.calls, 2)
}

func TestListFiltersByName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, in := range []CreateItemInput{
		{SKU: "A", Name: "Blue Pen"},
		{SKU: "B", Name: "Red pen"},
		{SKU: "C", Name: "Stapler"},
	} {
		_, err := f.svc.Create(ctx, in)
		require.NoError(t, err)
	}

	rows, err := f.svc.List(ctx, "PEN")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Blue Pen", rows[0].Name)
	assert.Equal(t, "Red pen", rows[1].Name)

	all, err := f.svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestForceReorderPublishesStockLow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dto, err := f.svc.Create(ctx, CreateItemInput{SKU: "SKU-1", Name: "Widget", Stock: 100})
	require.NoError(t, err)

	require.NoError(t, f.svc.ForceReorder(ctx, dto.ID))
	require.Len(t, f.publisher.events, 1)
	event, ok := f.publisher.events[0].(events.StockLow)
	require.True(t, ok)
	assert.Equal(t, dto.ID, event.ItemID)
	assert.Zero(t, event.Stock)
	assert.Zero(t, event.ReorderPoint)
}

func TestForceReorderUnknownItem(t *testing.T) {
	f := newFixture(t)
	err := f.svc.ForceReorder(context.Background(), uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)
	assert.Empty(t, f.publisher.events)
}

func TestForceReorderHandlerFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dto, err := f.svc.Create(ctx, CreateItemInput{SKU: "SKU-1", Name: "Widget"})
	require.NoError(t, err)

	f.publisher.err = errors.New("boom")
	err = f.svc.ForceReorder(ctx, dto.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency), "got %v", err)
}

func TestRepositoryAdjustStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := &models.Item{SKU: "SKU-1", Name: "Widget", Stock: 3, LeadTimeDays: 3, SafetyStock: 5}
	require.NoError(t, f.repo.Create(ctx, item))

	require.NoError(t, f.repo.AdjustStock(ctx, item.ID, 20))
	got, err := f.repo.FindByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 23, got.Stock)

	assert.Error(t, f.repo.AdjustStock(ctx, uuid.New(), 1))
}

func TestRepositoryCount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	count, err := f.repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, f.repo.Create(ctx, &models.Item{SKU: "SKU-1", Name: "Widget", LeadTimeDays: 3, SafetyStock: 5}))
	require.NoError(t, f.repo.Create(ctx, &models.Item{SKU: "SKU-2", Name: "Gadget", LeadTimeDays: 3, SafetyStock: 5}))
	count, err = f.repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}
