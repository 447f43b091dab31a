package models

import "gorm.io/gorm"

// InvoiceOrder is the explicit join entity behind the invoice/order
// many-to-many association. Both foreign keys cascade on delete.
type InvoiceOrder struct {
	InvoiceID int `gorm:"column:invoice_id;primaryKey" json:"invoiceId"`
	OrderID   int `gorm:"column:order_id;primaryKey" json:"orderId"`
}

// RegisterJoinTables binds the explicit join entities to their associations.
// Must run before any query that touches the invoice/order association.
func RegisterJoinTables(db *gorm.DB) error {
	if err := db.SetupJoinTable(&Invoice{}, "Orders", &InvoiceOrder{}); err != nil {
		return err
	}
	return db.SetupJoinTable(&Order{}, "Invoices", &InvoiceOrder{})
}
