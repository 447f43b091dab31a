package models

import "github.com/shopspring/decimal"

// Product is a sellable item listed by a store.
type Product struct {
	ID          int             `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name        string          `gorm:"column:name;not null" json:"name"`
	Description string          `gorm:"column:description" json:"description"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null" json:"price"`
	StoreID     int             `gorm:"column:store_id;not null" json:"storeId"`
	Store       *Store          `gorm:"foreignKey:StoreID" json:"store,omitempty"`
}
