package stores

import (
	"context"
	"errors"
	"fmt"

	"github.com/moralesdev/storeapi-backend/pkg/db/models"
	pkgerrors "github.com/moralesdev/storeapi-backend/pkg/errors"
	"gorm.io/gorm"
)

// CreateStoreInput is a store submission.
type CreateStoreInput struct {
	Description string  `json:"description" validate:"required"`
	Latitude    float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude   float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

// Repository handles store persistence.
type Repository interface {
	List(ctx context.Context) ([]models.Store, error)
	FindByID(ctx context.Context, id int) (*models.Store, error)
	Create(ctx context.Context, store *models.Store) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a store repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context) ([]models.Store, error) {
	var stores []models.Store
	if err := r.db.WithContext(ctx).Order("id").Find(&stores).Error; err != nil {
		return nil, err
	}
	return stores, nil
}

func (r *repository) FindByID(ctx context.Context, id int) (*models.Store, error) {
	var store models.Store
	err := r.db.WithContext(ctx).
		Preload("Products").
		Where("id = ?", id).
		First(&store).Error
	if err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *repository) Create(ctx context.Context, store *models.Store) error {
	return r.db.WithContext(ctx).Create(store).Error
}

// Service exposes store operations.
type Service interface {
	List(ctx context.Context) ([]models.Store, error)
	Get(ctx context.Context, id int) (*models.Store, error)
	Create(ctx context.Context, input CreateStoreInput) (*models.Store, error)
}

type service struct {
	repo Repository
}

// NewService builds a store service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("store repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context) ([]models.Store, error) {
	stores, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stores")
	}
	return stores, nil
}

func (s *service) Get(ctx context.Context, id int) (*models.Store, error) {
	store, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	return store, nil
}

func (s *service) Create(ctx context.Context, input CreateStoreInput) (*models.Store, error) {
	store := &models.Store{
		Description: input.Description,
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
	}
	if err := s.repo.Create(ctx, store); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create store")
	}
	return store, nil
}
