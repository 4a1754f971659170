package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"datalog/internal/datalog"
	apperrors "datalog/internal/errors"
	"datalog/internal/models"
	"datalog/internal/pagination"
	"datalog/internal/services"
)

// ProductHandler handles product-related requests.
type ProductHandler struct {
	productService services.ProductServicer
	actionService  services.ActionServicer
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(productService services.ProductServicer, actionService services.ActionServicer) *ProductHandler {
	return &ProductHandler{productService: productService, actionService: actionService}
}

// CreateProductRequest represents the request payload for creating a product.
type CreateProductRequest struct {
	Name       string     `json:"name" binding:"required,min=1,max=200"`
	Category   string     `json:"category" binding:"max=100"`
	Price      float64    `json:"price" binding:"gte=0"`
	Provider   string     `json:"provider" binding:"max=200"`
	Detail     string     `json:"detail"`
	OnlineTime *time.Time `json:"online_time,omitempty"`
}

// UpdateProductRequest represents the request payload for updating a product.
// Omitted fields keep their current value.
type UpdateProductRequest struct {
	Name       *string    `json:"name" binding:"omitempty,min=1,max=200"`
	Category   *string    `json:"category" binding:"omitempty,max=100"`
	Price      *float64   `json:"price" binding:"omitempty,gte=0"`
	Provider   *string    `json:"provider" binding:"omitempty,max=200"`
	Detail     *string    `json:"detail"`
	OnlineTime *time.Time `json:"online_time"`
}

// CreateProduct handles creating a new product.
// @Summary     Create product
// @Description Create a new product; an INSERT action is recorded
// @Tags        products
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateProductRequest true "Product details"
// @Success     201 {object} models.Product "Product created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid token"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /products [post]
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), services.ProductInput{
		Name:       req.Name,
		Category:   req.Category,
		Price:      req.Price,
		Provider:   req.Provider,
		Detail:     req.Detail,
		OnlineTime: req.OnlineTime,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"product": product})
}

// ListProducts handles listing products.
// @Summary     List products
// @Description Get a paginated list of products
// @Tags        products
// @Produce     json
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Product] "Paginated products"
// @Failure     400 {object} ErrorResponse "Invalid pagination"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /products [get]
func (h *ProductHandler) ListProducts(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.productService.ListProducts(c.Request.Context(), page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetProduct handles retrieving a specific product.
// @Summary     Get product by ID
// @Tags        products
// @Produce     json
// @Param       id path int true "Product ID"
// @Success     200 {object} models.Product "Product details"
// @Failure     400 {object} ErrorResponse "Invalid product ID"
// @Failure     404 {object} ErrorResponse "Product not found"
// @Router      /products/{id} [get]
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	product, err := h.productService.GetProductByID(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// UpdateProduct handles updating a product.
// @Summary     Update product
// @Description Update selected fields of a product; an UPDATE action lists the fields that changed
// @Tags        products
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                  true "Product ID"
// @Param       request body UpdateProductRequest true "Fields to change"
// @Success     200 {object} models.Product "Updated product"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid token"
// @Failure     404 {object} ErrorResponse "Product not found"
// @Router      /products/{id} [put]
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), id, services.ProductUpdate{
		Name:       req.Name,
		Category:   req.Category,
		Price:      req.Price,
		Provider:   req.Provider,
		Detail:     req.Detail,
		OnlineTime: req.OnlineTime,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// DeleteProduct handles deleting a product.
// @Summary     Delete product
// @Description Delete a product; a DELETE action keeps its last state
// @Tags        products
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Product ID"
// @Success     200 {object} map[string]string "Product deleted"
// @Failure     400 {object} ErrorResponse "Invalid product ID"
// @Failure     401 {object} ErrorResponse "Invalid token"
// @Failure     404 {object} ErrorResponse "Product not found"
// @Router      /products/{id} [delete]
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

// GetProductActions handles listing the recorded history of a product.
// @Summary     Product history
// @Description Get the actions recorded for one product, newest first
// @Tags        products
// @Produce     json
// @Param       id        path  int true  "Product ID"
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Action] "Paginated actions"
// @Failure     400 {object} ErrorResponse "Invalid product ID"
// @Router      /products/{id}/actions [get]
func (h *ProductHandler) GetProductActions(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.actionService.GetObjectHistory(c.Request.Context(), productClass, id, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

var productClass = datalog.ClassName(&models.Product{})
