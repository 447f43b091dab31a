package orders

import (
	"github.com/moralesdev/storeapi-backend/pkg/db/models"
	"github.com/shopspring/decimal"
)

// CreateOrderInput is one order submission. Products is only honored by the
// bulk path; the single path records the order header alone.
type CreateOrderInput struct {
	SystemUserID int             `json:"systemUserId" validate:"required,gt=0"`
	Total        decimal.Decimal `json:"total"`
	Products     []int           `json:"products" validate:"omitempty,dive,gt=0"`
}

// BulkResult summarizes a committed bulk batch.
type BulkResult struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
	IDs     []int  `json:"ids"`
}

func (in CreateOrderInput) toModel(withProducts bool) *models.Order {
	order := &models.Order{
		SystemUserID: in.SystemUserID,
		Total:        in.Total,
	}
	if !withProducts {
		return order
	}
	lines := make([]models.OrderProduct, 0, len(in.Products))
	for _, productID := range in.Products {
		lines = append(lines, models.OrderProduct{ProductID: productID, Amount: 1})
	}
	order.OrderProducts = lines
	return order
}
