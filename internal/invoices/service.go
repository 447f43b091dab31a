package invoices

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/moralesdev/storeapi-backend/pkg/db"
	"github.com/moralesdev/storeapi-backend/pkg/db/models"
	pkgerrors "github.com/moralesdev/storeapi-backend/pkg/errors"
	"github.com/moralesdev/storeapi-backend/pkg/metrics"
	"gorm.io/gorm"
)

const metricsResource = "invoices"

// TxRunner executes a function inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes invoice operations.
type Service interface {
	List(ctx context.Context, filter ListFilter) ([]models.Invoice, error)
	Get(ctx context.Context, id int) (*models.Invoice, error)
	Create(ctx context.Context, input CreateInvoiceInput) (*models.Invoice, error)
	CreateBulk(ctx context.Context, inputs []CreateInvoiceInput) (*BulkResult, error)
}

type service struct {
	repo    Repository
	tx      TxRunner
	metrics *metrics.BulkMetrics
}

// NewService builds an invoice service.
func NewService(repo Repository, tx TxRunner, bulkMetrics *metrics.BulkMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("invoice repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx, metrics: bulkMetrics}, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]models.Invoice, error) {
	invoices, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list invoices")
	}
	return invoices, nil
}

func (s *service) Get(ctx context.Context, id int) (*models.Invoice, error) {
	invoice, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice")
	}
	return invoice, nil
}

func (s *service) Create(ctx context.Context, input CreateInvoiceInput) (*models.Invoice, error) {
	if err := validateSubmission(input); err != nil {
		return nil, err
	}

	orders, err := s.resolveOrders(ctx, input.OrderIDs)
	if err != nil {
		return nil, err
	}

	number := trimmedNumber(input.InvoiceNumber)
	existing, err := s.repo.FindExistingNumbers(ctx, []string{number})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check invoice number")
	}
	if len(existing) > 0 {
		return nil, duplicateNumberError(number)
	}

	invoice := input.toModel(orders)
	if err := s.repo.Create(ctx, invoice); err != nil {
		// Lost the race against a concurrent submission of the same number:
		// the unique index rejects the insert.
		if db.IsUniqueViolation(err, "idx_invoices_invoice_number") {
			return nil, duplicateNumberError(number)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create invoice")
	}
	return invoice, nil
}

// CreateBulk persists a batch of invoices all-or-nothing. Phase 1 runs the
// batch-wide integrity checks without touching the transaction; phase 2 opens
// one transaction, re-validates each item, and rolls the whole batch back on
// any failure.
func (s *service) CreateBulk(ctx context.Context, inputs []CreateInvoiceInput) (*BulkResult, error) {
	if len(inputs) == 0 {
		s.metrics.IncRejected(metricsResource)
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no invoices submitted")
	}

	ordersByID, err := s.preflight(ctx, inputs)
	if err != nil {
		s.metrics.IncRejected(metricsResource)
		return nil, err
	}

	ids := make([]int, 0, len(inputs))
	txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		for _, input := range inputs {
			if err := validateSubmission(input); err != nil {
				return err
			}
			orders := make([]models.Order, 0, len(input.OrderIDs))
			for _, id := range distinctOrderIDs(input.OrderIDs) {
				orders = append(orders, ordersByID[id])
			}
			invoice := input.toModel(orders)
			if err := txRepo.Create(ctx, invoice); err != nil {
				return err
			}
			ids = append(ids, invoice.ID)
		}
		return nil
	})
	if txErr != nil {
		s.metrics.IncRejected(metricsResource)
		if typed := pkgerrors.As(txErr); typed != nil {
			return nil, typed
		}
		// Whatever failed mid-transaction (including a unique-index race on
		// the invoice number) surfaces as a bad-input response here.
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, txErr, txErr.Error())
	}

	s.metrics.IncAccepted(metricsResource, len(ids))
	return &BulkResult{
		Message: "invoices created",
		Count:   len(ids),
		IDs:     ids,
	}, nil
}

// preflight runs the phase-1 batch checks: in-batch duplicate numbers, order
// existence (single query for the union of ids), and already-used numbers.
// No writes happen here and no transaction is opened.
func (s *service) preflight(ctx context.Context, inputs []CreateInvoiceInput) (map[int]models.Order, error) {
	if duplicates := duplicateNumbersInBatch(inputs); len(duplicates) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("duplicate invoice numbers in batch: %s", strings.Join(duplicates, ", "))).
			WithDetails(map[string]any{"duplicateNumbers": duplicates})
	}

	union := make([]int, 0)
	for _, in := range inputs {
		union = append(union, in.OrderIDs...)
	}
	union = distinctOrderIDs(union)

	orders, err := s.repo.FindOrdersByIDs(ctx, union)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load referenced orders")
	}
	ordersByID := make(map[int]models.Order, len(orders))
	found := make(map[int]struct{}, len(orders))
	for _, order := range orders {
		ordersByID[order.ID] = order
		found[order.ID] = struct{}{}
	}
	if err := missingOrderIDsError(union, found); err != nil {
		return nil, err
	}

	numbers := make([]string, 0, len(inputs))
	for _, in := range inputs {
		if number := trimmedNumber(in.InvoiceNumber); number != "" {
			numbers = append(numbers, number)
		}
	}
	taken, err := s.repo.FindExistingNumbers(ctx, numbers)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check invoice numbers")
	}
	if len(taken) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("invoice numbers already in use: %s", strings.Join(taken, ", "))).
			WithDetails(map[string]any{"takenNumbers": taken})
	}

	return ordersByID, nil
}

func (s *service) resolveOrders(ctx context.Context, ids []int) ([]models.Order, error) {
	distinct := distinctOrderIDs(ids)
	orders, err := s.repo.FindOrdersByIDs(ctx, distinct)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load referenced orders")
	}
	found := make(map[int]struct{}, len(orders))
	for _, order := range orders {
		found[order.ID] = struct{}{}
	}
	if err := missingOrderIDsError(distinct, found); err != nil {
		return nil, err
	}
	return orders, nil
}

func duplicateNumberError(number string) error {
	return pkgerrors.New(pkgerrors.CodeConflict,
		fmt.Sprintf("invoice number %q already exists", number)).
		WithDetails(map[string]any{"invoiceNumber": number})
}
