package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice bills one or more orders. The invoice number carries a unique index
// which is the final backstop against concurrent submissions of the same
// number.
type Invoice struct {
	ID             int             `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	InvoiceNumber  string          `gorm:"column:invoice_number;not null;uniqueIndex:idx_invoices_invoice_number" json:"invoiceNumber"`
	IssueDate      time.Time       `gorm:"column:issue_date;not null" json:"issueDate"`
	DueDate        *time.Time      `gorm:"column:due_date" json:"dueDate,omitempty"`
	Subtotal       decimal.Decimal `gorm:"column:subtotal;type:numeric(12,2);not null" json:"subtotal"`
	Tax            decimal.Decimal `gorm:"column:tax;type:numeric(12,2);not null" json:"tax"`
	Total          decimal.Decimal `gorm:"column:total;type:numeric(12,2);not null" json:"total"`
	Currency       string          `gorm:"column:currency;not null" json:"currency"`
	IsPaid         bool            `gorm:"column:is_paid;not null;default:false" json:"isPaid"`
	PaymentDate    *time.Time      `gorm:"column:payment_date" json:"paymentDate,omitempty"`
	BillingName    string          `gorm:"column:billing_name;not null" json:"billingName"`
	BillingAddress *string         `gorm:"column:billing_address" json:"billingAddress,omitempty"`
	BillingEmail   *string         `gorm:"column:billing_email" json:"billingEmail,omitempty"`
	TaxID          *string         `gorm:"column:tax_id" json:"taxId,omitempty"`
	Orders         []Order         `gorm:"many2many:invoice_orders" json:"orders,omitempty"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
