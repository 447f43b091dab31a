package invoices

import (
	"context"

	"github.com/moralesdev/storeapi-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository handles invoice persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	List(ctx context.Context, filter ListFilter) ([]models.Invoice, error)
	FindByID(ctx context.Context, id int) (*models.Invoice, error)
	FindOrdersByIDs(ctx context.Context, ids []int) ([]models.Order, error)
	FindExistingNumbers(ctx context.Context, numbers []string) ([]string, error)
	Create(ctx context.Context, invoice *models.Invoice) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an invoice repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]models.Invoice, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Preload("Orders.SystemUser").
		Order("issue_date DESC")

	if filter.OrderID != nil {
		query = query.
			Joins("JOIN invoice_orders ON invoice_orders.invoice_id = invoices.id").
			Where("invoice_orders.order_id = ?", *filter.OrderID)
	}
	if filter.IsPaid != nil {
		query = query.Where("is_paid = ?", *filter.IsPaid)
	}

	var invoices []models.Invoice
	if err := query.Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repository) FindByID(ctx context.Context, id int) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).
		Preload("Orders").
		Where("id = ?", id).
		First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *repository) FindOrdersByIDs(ctx context.Context, ids []int) ([]models.Order, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var orders []models.Order
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) FindExistingNumbers(ctx context.Context, numbers []string) ([]string, error) {
	if len(numbers) == 0 {
		return nil, nil
	}
	var existing []string
	err := r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Where("invoice_number IN ?", numbers).
		Pluck("invoice_number", &existing).Error
	if err != nil {
		return nil, err
	}
	return existing, nil
}

func (r *repository) Create(ctx context.Context, invoice *models.Invoice) error {
	// Orders already exist; only the invoice row and join rows are written.
	return r.db.WithContext(ctx).Omit("Orders.*").Create(invoice).Error
}
