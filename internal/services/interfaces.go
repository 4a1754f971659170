package services

import (
	"context"
	"time"

	"datalog/internal/actionstore"
	"datalog/internal/models"
	"datalog/internal/pagination"
)

// ProductInput carries the fields of a new product.
type ProductInput struct {
	Name       string
	Category   string
	Price      float64
	Provider   string
	Detail     string
	OnlineTime *time.Time
}

// ProductUpdate carries the fields to change on an existing product. Nil
// fields are left as they are.
type ProductUpdate struct {
	Name       *string
	Category   *string
	Price      *float64
	Provider   *string
	Detail     *string
	OnlineTime *time.Time
}

// ProductServicer defines the contract for product-related business logic.
type ProductServicer interface {
	CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id int64, update ProductUpdate) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	ListProducts(ctx context.Context, page pagination.PageRequest) (*pagination.PageResponse[models.Product], error)
}

// ActionServicer defines the contract for reading the action log.
type ActionServicer interface {
	ListActions(ctx context.Context, filter actionstore.Filter, page pagination.PageRequest) (*pagination.PageResponse[models.Action], error)
	GetActionByID(ctx context.Context, id string) (*models.Action, error)
	GetObjectHistory(ctx context.Context, objectClass string, objectID int64, page pagination.PageRequest) (*pagination.PageResponse[models.Action], error)
}
