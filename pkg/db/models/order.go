package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a purchase placed by a system user. Orders are append-only: the
// API exposes no update or delete path for them.
type Order struct {
	ID            int             `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	SystemUserID  int             `gorm:"column:system_user_id;not null" json:"systemUserId"`
	SystemUser    *SystemUser     `gorm:"foreignKey:SystemUserID" json:"systemUser,omitempty"`
	Total         decimal.Decimal `gorm:"column:total;type:numeric(12,2);not null" json:"total"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	OrderProducts []OrderProduct  `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"orderProducts,omitempty"`
	Invoices      []Invoice       `gorm:"many2many:invoice_orders" json:"invoices,omitempty"`
}
