package invoices

import (
	"time"

	"github.com/moralesdev/storeapi-backend/pkg/db/models"
	"github.com/shopspring/decimal"
)

// CreateInvoiceInput is one invoice submission, used by both the single and
// bulk create paths.
type CreateInvoiceInput struct {
	OrderIDs       []int            `json:"orderIds" validate:"required,min=1,dive,gt=0"`
	InvoiceNumber  string           `json:"invoiceNumber" validate:"required"`
	IssueDate      time.Time        `json:"issueDate" validate:"required"`
	DueDate        *time.Time       `json:"dueDate,omitempty"`
	Subtotal       decimal.Decimal  `json:"subtotal"`
	Tax            decimal.Decimal  `json:"tax"`
	Total          *decimal.Decimal `json:"total,omitempty"`
	Currency       string           `json:"currency" validate:"required"`
	IsPaid         bool             `json:"isPaid"`
	PaymentDate    *time.Time       `json:"paymentDate,omitempty"`
	BillingName    string           `json:"billingName" validate:"required"`
	BillingAddress *string          `json:"billingAddress,omitempty"`
	BillingEmail   *string          `json:"billingEmail,omitempty" validate:"omitempty,email"`
	TaxID          *string          `json:"taxId,omitempty"`
}

// ListFilter narrows the invoice list endpoint.
type ListFilter struct {
	OrderID *int
	IsPaid  *bool
}

// BulkResult summarizes a committed bulk batch.
type BulkResult struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
	IDs     []int  `json:"ids"`
}

func (in CreateInvoiceInput) toModel(orders []models.Order) *models.Invoice {
	total := in.Subtotal.Add(in.Tax)
	if in.Total != nil {
		total = *in.Total
	}
	return &models.Invoice{
		InvoiceNumber:  trimmedNumber(in.InvoiceNumber),
		IssueDate:      in.IssueDate,
		DueDate:        in.DueDate,
		Subtotal:       in.Subtotal,
		Tax:            in.Tax,
		Total:          total,
		Currency:       in.Currency,
		IsPaid:         in.IsPaid,
		PaymentDate:    in.PaymentDate,
		BillingName:    in.BillingName,
		BillingAddress: in.BillingAddress,
		BillingEmail:   in.BillingEmail,
		TaxID:          in.TaxID,
		Orders:         orders,
	}
}
