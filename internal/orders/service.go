package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/moralesdev/storeapi-backend/pkg/db/models"
	pkgerrors "github.com/moralesdev/storeapi-backend/pkg/errors"
	"github.com/moralesdev/storeapi-backend/pkg/metrics"
	"gorm.io/gorm"
)

const metricsResource = "orders"

// TxRunner executes a function inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes order operations.
type Service interface {
	List(ctx context.Context) ([]models.Order, error)
	Get(ctx context.Context, id int) (*models.Order, error)
	Create(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	CreateBulk(ctx context.Context, inputs []CreateOrderInput) (*BulkResult, error)
}

type service struct {
	repo    Repository
	tx      TxRunner
	metrics *metrics.BulkMetrics
}

// NewService builds an order service.
func NewService(repo Repository, tx TxRunner, bulkMetrics *metrics.BulkMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx, metrics: bulkMetrics}, nil
}

func (s *service) List(ctx context.Context) ([]models.Order, error) {
	orders, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return orders, nil
}

func (s *service) Get(ctx context.Context, id int) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

// Create records a single order header with a server-assigned creation
// timestamp. Submitted product ids are ignored on this path.
func (s *service) Create(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if input.SystemUserID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "systemUserId is required")
	}
	order := input.toModel(false)
	if err := s.repo.Create(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}
	return order, nil
}

// CreateBulk persists a batch of orders with their line items in one
// transaction, rolling back entirely on any failure.
//
// TODO: validate the submitted product ids against the products table before
// inserting line items; today an unknown id only fails at the foreign key (or
// silently succeeds on engines without FK enforcement).
func (s *service) CreateBulk(ctx context.Context, inputs []CreateOrderInput) (*BulkResult, error) {
	if len(inputs) == 0 {
		s.metrics.IncRejected(metricsResource)
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no orders submitted")
	}
	for _, input := range inputs {
		if input.SystemUserID <= 0 {
			s.metrics.IncRejected(metricsResource)
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "systemUserId is required")
		}
	}

	ids := make([]int, 0, len(inputs))
	txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		for _, input := range inputs {
			order := input.toModel(true)
			if err := txRepo.Create(ctx, order); err != nil {
				return err
			}
			ids = append(ids, order.ID)
		}
		return nil
	})
	if txErr != nil {
		s.metrics.IncRejected(metricsResource)
		if typed := pkgerrors.As(txErr); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, txErr, txErr.Error())
	}

	s.metrics.IncAccepted(metricsResource, len(ids))
	return &BulkResult{
		Message: "orders created",
		Count:   len(ids),
		IDs:     ids,
	}, nil
}
