package items

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/inventory-reorder/internal/events"
	"github.com/angelmondragon/inventory-reorder/pkg/db"
	"github.com/angelmondragon/inventory-reorder/pkg/db/models"
	pkgerrors "github.com/angelmondragon/inventory-reorder/pkg/errors"
	"github.com/angelmondragon/inventory-reorder/pkg/logger"
)

const (
	DefaultLeadTimeDays = 3
	DefaultSafetyStock  = 5
)

// Service exposes item intake and threshold management.
type Service interface {
	Create(ctx context.Context, input CreateItemInput) (*ItemDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateItemInput) error
	Get(ctx context.Context, id uuid.UUID) (*ItemDTO, error)
	List(ctx context.Context, nameQuery string) ([]ItemSummaryDTO, error)
	SetReorderThreshold(ctx context.Context, id uuid.UUID, input ThresholdInput) error
	Recompute(ctx context.Context, id uuid.UUID) (int, error)
	ForceReorder(ctx context.Context, id uuid.UUID) error
}

// CreateItemInput holds the validated payload to create an item.
// Nil lead time and safety stock fall back to the defaults.
type CreateItemInput struct {
	SKU          string
	Name         string
	Stock        int
	LeadTimeDays *int
	SafetyStock  *int
}

// UpdateItemInput replaces the editable item fields.
type UpdateItemInput struct {
	SKU          string
	Name         string
	Stock        int
	LeadTimeDays int
	SafetyStock  int
}

// ThresholdInput sets or clears the manual reorder point. A nil SafetyStock keeps the current value.
type ThresholdInput struct {
	ReorderPoint *int
	SafetyStock  *int
}

type reorderCalculator interface {
	ComputeReorderPoint(ctx context.Context, itemID uuid.UUID) (int, error)
}

type eventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// ServiceParams wires the item service collaborators.
type ServiceParams struct {
	Repo       Repository
	Calculator reorderCalculator
	Publisher  eventPublisher
	Logger     *logger.Logger
	Now        func() time.Time
}

type service struct {
	repo       Repository
	calculator reorderCalculator
	publisher  eventPublisher
	logg       *logger.Logger
	now        func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, errors.New("item repository required")
	}
	if params.Calculator == nil {
		return nil, errors.New("reorder calculator required")
	}
	if params.Publisher == nil {
		return nil, errors.New("event publisher required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:       params.Repo,
		calculator: params.Calculator,
		publisher:  params.Publisher,
		logg:       params.Logger,
		now:        now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateItemInput) (*ItemDTO, error) {
	lead := DefaultLeadTimeDays
	if input.LeadTimeDays != nil {
		lead = *input.LeadTimeDays
	}
	safety := DefaultSafetyStock
	if input.SafetyStock != nil {
		safety = *input.SafetyStock
	}
	item := &models.Item{
		SKU:          strings.TrimSpace(input.SKU),
		Name:         strings.TrimSpace(input.Name),
		Stock:        input.Stock,
		LeadTimeDays: lead,
		SafetyStock:  safety,
	}
	if err := validateItem(item.SKU, item.Name, item.LeadTimeDays, item.SafetyStock); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, mapWriteError(err, "db: insert item")
	}
	ctx = s.logg.WithItemID(ctx, item.ID.String())
	s.logg.Info(ctx, "item created")

	if _, err := s.calculator.ComputeReorderPoint(ctx, item.ID); err != nil {
		return nil, err
	}
	return s.Get(ctx, item.ID)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateItemInput) error {
	sku := strings.TrimSpace(input.SKU)
	name := strings.TrimSpace(input.Name)
	if err := validateItem(sku, name, input.LeadTimeDays, input.SafetyStock); err != nil {
		return err
	}

	err := s.repo.Update(ctx, id, map[string]any{
		"sku":            sku,
		"name":           name,
		"stock":          input.Stock,
		"lead_time_days": input.LeadTimeDays,
		"safety_stock":   input.SafetyStock,
	})
	if err != nil {
		return mapWriteError(err, "db: update item")
	}

	_, err = s.calculator.ComputeReorderPoint(ctx, id)
	return err
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ItemDTO, error) {
	item, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewItemDTO(item), nil
}

func (s *service) List(ctx context.Context, nameQuery string) ([]ItemSummaryDTO, error) {
	rows, err := s.repo.List(ctx, nameQuery)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list items")
	}
	out := make([]ItemSummaryDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, NewItemSummaryDTO(row))
	}
	return out, nil
}

// SetReorderThreshold stores the manual override without triggering a recompute.
func (s *service) SetReorderThreshold(ctx context.Context, id uuid.UUID, input ThresholdInput) error {
	if input.ReorderPoint != nil && *input.ReorderPoint < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "reorderPoint must be >= 0")
	}
	if input.SafetyStock != nil && *input.SafetyStock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "safetyStock must be >= 0")
	}

	updates := map[string]any{"manual_reorder_point": input.ReorderPoint}
	if input.SafetyStock != nil {
		updates["safety_stock"] = *input.SafetyStock
	}
	if err := s.repo.Update(ctx, id, updates); err != nil {
		return mapWriteError(err, "db: update reorder threshold")
	}
	return nil
}

func (s *service) Recompute(ctx context.Context, id uuid.UUID) (int, error) {
	return s.calculator.ComputeReorderPoint(ctx, id)
}

// ForceReorder publishes a StockLow with zero stock and threshold so the
// coordinator places the minimum order unless one is already pending.
func (s *service) ForceReorder(ctx context.Context, id uuid.UUID) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	ctx = s.logg.WithItemID(ctx, id.String())
	s.logg.Info(ctx, "manual reorder requested")

	if err := s.publisher.Publish(ctx, events.StockLow{ItemID: id, ObservedAt: s.now().UTC()}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reorder handlers failed")
	}
	return nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load item")
	}
	return item, nil
}

func validateItem(sku, name string, leadTimeDays, safetyStock int) error {
	switch {
	case sku == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	case name == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	case leadTimeDays <= 0:
		return pkgerrors.New(pkgerrors.CodeValidation, "leadTimeDays must be > 0")
	case safetyStock < 0:
		return pkgerrors.New(pkgerrors.CodeValidation, "safetyStock must be >= 0")
	}
	return nil
}

func mapWriteError(err error, msg string) error {
	switch {
	case db.IsNotFound(err):
		return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
	case db.IsUniqueViolation(err, ""):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "sku already exists")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
	}
}
