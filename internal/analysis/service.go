package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/moralesdev/storeapi-backend/pkg/db/models"
	pkgerrors "github.com/moralesdev/storeapi-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Completer is the text-generation surface this package needs.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Service forwards dataset snapshots to the text-generation service and
// shape-checks what comes back.
type Service interface {
	AnalyzeInvoices(ctx context.Context) (json.RawMessage, error)
	AnalyzeOrders(ctx context.Context) (json.RawMessage, error)
}

type service struct {
	db        *gorm.DB
	completer Completer
}

// NewService builds an analysis service. The completer may be nil when no API
// key is configured; analysis requests then fail with a dependency error
// before any call is attempted.
func NewService(db *gorm.DB, completer Completer) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle required")
	}
	return &service{db: db, completer: completer}, nil
}

type invoiceProjection struct {
	ID            int             `json:"id"`
	InvoiceNumber string          `json:"invoiceNumber"`
	IssueDate     time.Time       `json:"issueDate"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
	Currency      string          `json:"currency"`
	IsPaid        bool            `json:"isPaid"`
}

type orderProjection struct {
	ID        int                   `json:"id"`
	Total     decimal.Decimal       `json:"total"`
	CreatedAt time.Time             `json:"createdAt"`
	Products  []orderLineProjection `json:"products"`
}

type orderLineProjection struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Store string          `json:"store"`
}

func (s *service) AnalyzeInvoices(ctx context.Context) (json.RawMessage, error) {
	if s.completer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "analysis service not configured")
	}

	var invoices []models.Invoice
	if err := s.db.WithContext(ctx).Find(&invoices).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoices")
	}

	projected := make([]invoiceProjection, 0, len(invoices))
	for _, inv := range invoices {
		projected = append(projected, invoiceProjection{
			ID:            inv.ID,
			InvoiceNumber: inv.InvoiceNumber,
			IssueDate:     inv.IssueDate,
			Subtotal:      inv.Subtotal,
			Tax:           inv.Tax,
			Total:         inv.Total,
			Currency:      inv.Currency,
			IsPaid:        inv.IsPaid,
		})
	}

	return s.analyze(ctx, projected, invoicesPrompt, invoiceKeys)
}

func (s *service) AnalyzeOrders(ctx context.Context) (json.RawMessage, error) {
	if s.completer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "analysis service not configured")
	}

	var orders []models.Order
	err := s.db.WithContext(ctx).
		Preload("OrderProducts.Product.Store").
		Find(&orders).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load orders")
	}

	projected := make([]orderProjection, 0, len(orders))
	for _, order := range orders {
		lines := make([]orderLineProjection, 0, len(order.OrderProducts))
		for _, line := range order.OrderProducts {
			if line.Product == nil {
				continue
			}
			projection := orderLineProjection{
				Name:  line.Product.Name,
				Price: line.Product.Price,
			}
			if line.Product.Store != nil {
				projection.Store = line.Product.Store.Description
			}
			lines = append(lines, projection)
		}
		projected = append(projected, orderProjection{
			ID:        order.ID,
			Total:     order.Total,
			CreatedAt: order.CreatedAt,
			Products:  lines,
		})
	}

	return s.analyze(ctx, projected, ordersPrompt, orderKeys)
}

// analyze serializes the projection, runs the prompt and shape-checks the
// reply. A reply that is not a JSON object carrying every expected key is
// returned wrapped as {"error": rawText} rather than failing the request.
func (s *service) analyze(ctx context.Context, data any, prompt func(string) string, expectedKeys []string) (json.RawMessage, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "serialize dataset")
	}

	raw, err := s.completer.Complete(ctx, prompt(string(payload)))
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "analysis request")
	}

	if shaped, ok := checkShape(raw, expectedKeys); ok {
		return shaped, nil
	}
	return softFail(raw), nil
}

func checkShape(raw string, expectedKeys []string) (json.RawMessage, bool) {
	var parsed map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, false
	}
	for _, key := range expectedKeys {
		if _, ok := parsed[key]; !ok {
			return nil, false
		}
	}
	return json.RawMessage(raw), true
}

func softFail(raw string) json.RawMessage {
	wrapped, err := json.Marshal(map[string]string{"error": raw})
	if err != nil {
		return json.RawMessage(`{"error":"unparseable analysis response"}`)
	}
	return json.RawMessage(wrapped)
}
