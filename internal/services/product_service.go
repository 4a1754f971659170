package services

import (
	"context"
	"errors"
	"strings"

	"datalog/internal/datalog"
	apperrors "datalog/internal/errors"
	"datalog/internal/models"
	"datalog/internal/pagination"
	"datalog/internal/repository"
)

// productService handles product-related business logic. Mutations go through
// an audited repository so that each one lands in the action log.
type productService struct {
	repo repository.Repository[models.Product]
}

// NewProductService creates a new ProductServicer.
func NewProductService(repo repository.Repository[models.Product]) ProductServicer {
	return &productService{repo: repo}
}

// CreateProduct validates input and stores a new product.
func (s *productService) CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "product name is required")
	}
	if input.Price < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "price must not be negative")
	}

	product := &models.Product{
		Name:       name,
		Category:   input.Category,
		Price:      input.Price,
		Provider:   input.Provider,
		Detail:     input.Detail,
		OnlineTime: input.OnlineTime,
	}
	saved, err := s.repo.Save(ctx, product)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return saved, nil
}

// UpdateProduct applies update to a detached copy of the stored product and saves it.
func (s *productService) UpdateProduct(ctx context.Context, id int64, update ProductUpdate) (*models.Product, error) {
	product, err := s.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "product name must not be empty")
		}
		product.Name = name
	}
	if update.Category != nil {
		product.Category = *update.Category
	}
	if update.Price != nil {
		if *update.Price < 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "price must not be negative")
		}
		product.Price = *update.Price
	}
	if update.Provider != nil {
		product.Provider = *update.Provider
	}
	if update.Detail != nil {
		product.Detail = *update.Detail
	}
	if update.OnlineTime != nil {
		product.OnlineTime = update.OnlineTime
	}

	saved, err := s.repo.Save(ctx, product)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return saved, nil
}

// DeleteProduct soft-deletes a product.
func (s *productService) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return productError(err)
	}
	return nil
}

// GetProductByID retrieves a single product.
func (s *productService) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, productError(err)
	}
	return product, nil
}

// ListProducts retrieves a paginated list of products.
func (s *productService) ListProducts(ctx context.Context, page pagination.PageRequest) (*pagination.PageResponse[models.Product], error) {
	page.Defaults()
	items, total, err := s.repo.List(ctx, page)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	resp := pagination.NewPageResponse(items, page.Page, page.PageSize, total)
	return &resp, nil
}

func productError(err error) error {
	if errors.Is(err, datalog.ErrEntityNotFound) {
		return apperrors.ErrProductNotFound
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}
