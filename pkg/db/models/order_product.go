package models

// OrderProduct is the order line item joining orders and products. The
// composite primary key keeps a product from appearing twice on one order.
type OrderProduct struct {
	OrderID   int      `gorm:"column:order_id;primaryKey" json:"orderId"`
	ProductID int      `gorm:"column:product_id;primaryKey" json:"productId"`
	Amount    int      `gorm:"column:amount;not null;default:1" json:"amount"`
	Product   *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}
