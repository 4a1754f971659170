package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datalog/internal/actionstore"
	"datalog/internal/models"
	"datalog/internal/pagination"
	"datalog/internal/services"
	"datalog/internal/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result), "body: %s", rec.Body.String())
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	require.True(t, ok, "expected error object in response, got: %v", result)
	assert.Equal(t, code, errObj["code"])
}

// --- mock product service ---

type mockProductService struct {
	createProductFn  func(ctx context.Context, input services.ProductInput) (*models.Product, error)
	updateProductFn  func(ctx context.Context, id int64, update services.ProductUpdate) (*models.Product, error)
	deleteProductFn  func(ctx context.Context, id int64) error
	getProductByIDFn func(ctx context.Context, id int64) (*models.Product, error)
	listProductsFn   func(ctx context.Context, page pagination.PageRequest) (*pagination.PageResponse[models.Product], error)
}

func (m *mockProductService) CreateProduct(ctx context.Context, input services.ProductInput) (*models.Product, error) {
	if m.createProductFn != nil {
		return m.createProductFn(ctx, input)
	}
	return &models.Product{}, nil
}

func (m *mockProductService) UpdateProduct(ctx context.Context, id int64, update services.ProductUpdate) (*models.Product, error) {
	if m.updateProductFn != nil {
		return m.updateProductFn(ctx, id, update)
	}
	return &models.Product{}, nil
}

func (m *mockProductService) DeleteProduct(ctx context.Context, id int64) error {
	if m.deleteProductFn != nil {
		return m.deleteProductFn(ctx, id)
	}
	return nil
}

func (m *mockProductService) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	if m.getProductByIDFn != nil {
		return m.getProductByIDFn(ctx, id)
	}
	return &models.Product{}, nil
}

func (m *mockProductService) ListProducts(ctx context.Context, page pagination.PageRequest) (*pagination.PageResponse[models.Product], error) {
	if m.listProductsFn != nil {
		return m.listProductsFn(ctx, page)
	}
	resp := pagination.NewPageResponse([]models.Product{}, 1, 20, 0)
	return &resp, nil
}

var _ services.ProductServicer = (*mockProductService)(nil)

// --- mock action service ---

type mockActionService struct {
	listActionsFn      func(ctx context.Context, filter actionstore.Filter, page pagination.PageRequest) (*pagination.PageResponse[models.Action], error)
	getActionByIDFn    func(ctx context.Context, id string) (*models.Action, error)
	getObjectHistoryFn func(ctx context.Context, objectClass string, objectID int64, page pagination.PageRequest) (*pagination.PageResponse[models.Action], error)
}

func (m *mockActionService) ListActions(ctx context.Context, filter actionstore.Filter, page pagination.PageRequest) (*pagination.PageResponse[models.Action], error) {
	if m.listActionsFn != nil {
		return m.listActionsFn(ctx, filter, page)
	}
	resp := pagination.NewPageResponse([]models.Action{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockActionService) GetActionByID(ctx context.Context, id string) (*models.Action, error) {
	if m.getActionByIDFn != nil {
		return m.getActionByIDFn(ctx, id)
	}
	return &models.Action{}, nil
}

func (m *mockActionService) GetObjectHistory(ctx context.Context, objectClass string, objectID int64, page pagination.PageRequest) (*pagination.PageResponse[models.Action], error) {
	if m.getObjectHistoryFn != nil {
		return m.getObjectHistoryFn(ctx, objectClass, objectID, page)
	}
	resp := pagination.NewPageResponse([]models.Action{}, 1, 20, 0)
	return &resp, nil
}

var _ services.ActionServicer = (*mockActionService)(nil)
