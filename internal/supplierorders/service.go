package supplierorders

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/inventory-reorder/internal/events"
	"github.com/angelmondragon/inventory-reorder/internal/items"
	"github.com/angelmondragon/inventory-reorder/pkg/db"
	"github.com/angelmondragon/inventory-reorder/pkg/db/models"
	"github.com/angelmondragon/inventory-reorder/pkg/enums"
	pkgerrors "github.com/angelmondragon/inventory-reorder/pkg/errors"
	"github.com/angelmondragon/inventory-reorder/pkg/logger"
	"github.com/angelmondragon/inventory-reorder/pkg/metrics"
)

// ConfirmedStatus is the supplier status string that confirms an order.
const ConfirmedStatus = "Confirmed"

// Service exposes supplier order placement, listing, and confirmation.
type Service interface {
	Place(ctx context.Context, input PlaceOrderInput) (*StatusDTO, error)
	List(ctx context.Context, query ListQuery) ([]OrderDTO, error)
	Confirm(ctx context.Context, input ConfirmationInput) (*StatusDTO, error)
}

// ListQuery carries the raw list filters from the request. Empty values match everything.
type ListQuery struct {
	Status string
	Source string
}

// PlaceOrderInput holds a validated manual order request.
type PlaceOrderInput struct {
	ItemID       uuid.UUID
	Quantity     int
	DeliveryDate *time.Time
}

// ConfirmationInput is the supplier's callback about a pending order.
type ConfirmationInput struct {
	OrderID     uuid.UUID
	Status      string
	SupplierRef *string
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// ServiceParams wires the supplier order service.
type ServiceParams struct {
	DB        txRunner
	Repo      Repository
	Items     items.Repository
	Publisher eventPublisher
	Logger    *logger.Logger
	Metrics   *metrics.ReorderMetrics
}

type service struct {
	db        txRunner
	repo      Repository
	items     items.Repository
	publisher eventPublisher
	logg      *logger.Logger
	metrics   *metrics.ReorderMetrics
}

func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, errors.New("db client required")
	}
	if params.Repo == nil {
		return nil, errors.New("supplier order repository required")
	}
	if params.Items == nil {
		return nil, errors.New("item repository required")
	}
	if params.Publisher == nil {
		return nil, errors.New("event publisher required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger required")
	}
	return &service{
		db:        params.DB,
		repo:      params.Repo,
		items:     params.Items,
		publisher: params.Publisher,
		logg:      params.Logger,
		metrics:   params.Metrics,
	}, nil
}

// Place records a manual pending order and announces it so a supplier
// confirmation can be scheduled.
func (s *service) Place(ctx context.Context, input PlaceOrderInput) (*StatusDTO, error) {
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be > 0")
	}
	if _, err := s.items.FindByID(ctx, input.ItemID); err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load item")
	}

	var deliveryDate *time.Time
	if input.DeliveryDate != nil {
		d := input.DeliveryDate.UTC()
		deliveryDate = &d
	}
	order := &models.SupplierOrder{
		ItemID:                input.ItemID,
		Quantity:              input.Quantity,
		RequestedDeliveryDate: deliveryDate,
		Status:                enums.SupplierOrderStatusPending,
		Source:                enums.OrderSourceManual,
	}
	if err := s.repo.Create(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert supplier order")
	}
	s.metrics.IncOrderCreated(string(enums.OrderSourceManual))

	ctx = s.logg.WithFields(ctx, map[string]any{"order_id": order.ID.String(), "item_id": order.ItemID.String()})
	s.logg.Info(ctx, "manual supplier order placed")

	placed := events.SupplierOrderPlaced{
		OrderID:  order.ID,
		ItemID:   order.ItemID,
		Quantity: order.Quantity,
		Source:   order.Source,
	}
	if err := s.publisher.Publish(ctx, placed); err != nil {
		s.logg.Warn(ctx, "supplier order placed but subscribers failed: "+err.Error())
	}
	return &StatusDTO{ID: order.ID, Status: order.Status}, nil
}

func (s *service) List(ctx context.Context, query ListQuery) ([]OrderDTO, error) {
	var filter ListFilter
	if strings.TrimSpace(query.Status) != "" {
		parsed, err := enums.ParseSupplierOrderStatus(query.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filter.Status = &parsed
	}
	if strings.TrimSpace(query.Source) != "" {
		parsed, err := enums.ParseOrderSource(query.Source)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid source filter")
		}
		filter.Source = &parsed
	}

	orders, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list supplier orders")
	}
	out := make([]OrderDTO, 0, len(orders))
	for _, order := range orders {
		out = append(out, NewOrderDTO(order))
	}
	return out, nil
}

// Confirm applies the supplier's verdict to a pending order. "Confirmed"
// (any case) credits the ordered quantity to stock; any other status fails
// the order and leaves stock untouched. Orders are resolved exactly once.
func (s *service) Confirm(ctx context.Context, input ConfirmationInput) (*StatusDTO, error) {
	next := enums.SupplierOrderStatusFailed
	if strings.EqualFold(strings.TrimSpace(input.Status), ConfirmedStatus) {
		next = enums.SupplierOrderStatusConfirmed
	}
	ref := input.SupplierRef
	if ref != nil {
		trimmed := strings.TrimSpace(*ref)
		ref = &trimmed
	}

	ctx = s.logg.WithOrderID(ctx, input.OrderID.String())
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		orders := s.repo.WithTx(tx)
		order, err := orders.FindByIDForUpdate(ctx, input.OrderID)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "supplier order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load supplier order")
		}
		if order.Status.IsTerminal() {
			return stateConflict(order.Status)
		}

		if err := orders.Resolve(ctx, order.ID, next, ref); err != nil {
			if errors.Is(err, ErrNotPending) {
				return stateConflict(order.Status)
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: resolve supplier order")
		}
		if next == enums.SupplierOrderStatusConfirmed {
			if err := s.items.WithTx(tx).AdjustStock(ctx, order.ItemID, order.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: credit stock")
			}
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirm supplier order")
	}

	s.logg.Info(s.logg.WithField(ctx, "status", string(next)), "supplier order resolved")
	return &StatusDTO{ID: input.OrderID, Status: next}, nil
}

func stateConflict(current enums.SupplierOrderStatus) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, "supplier order already resolved").
		WithDetails(map[string]any{"status": current})
}
