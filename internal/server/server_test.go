package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
	"gorm.io/gorm"

	"datalog/internal/actionstore"
	"datalog/internal/datalog"
	"datalog/internal/handlers"
	"datalog/internal/logger"
	"datalog/internal/middleware"
	"datalog/internal/models"
	"datalog/internal/repository"
	"datalog/internal/services"
	"datalog/internal/testutil"
	"datalog/internal/validator"
)

const testSecret = "integration-secret"

var pathParams = regexp.MustCompile(`:(\w+)`)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupApp creates a full application stack backed by an isolated in-memory
// SQLite database that also holds the action log.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	store := actionstore.NewGormStore(db)
	interceptor := datalog.NewInterceptor(datalog.Config{
		Store:    store,
		Operator: datalog.ContextOperator("admin"),
	})
	repo := repository.NewAudited(repository.NewGormRepository[models.Product](db), interceptor)

	productService := services.NewProductService(repo)
	actionService := services.NewActionService(store)

	router := NewRouter(Handlers{
		Products: handlers.NewProductHandler(productService, actionService),
		Actions:  handlers.NewActionHandler(actionService),
	}, testSecret)

	return &testApp{DB: db, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result), "body: %s", rec.Body.String())
	return result
}

func operatorToken(t *testing.T, name string) string {
	t.Helper()
	token, err := middleware.GenerateOperatorToken(testSecret, name, time.Hour)
	require.NoError(t, err)
	return token
}

// changesByField indexes the change items of an action JSON object.
func changesByField(action map[string]interface{}) map[string]map[string]interface{} {
	out := map[string]map[string]interface{}{}
	for _, raw := range action["changes"].([]interface{}) {
		change := raw.(map[string]interface{})
		out[change["field_name"].(string)] = change
	}
	return out
}

func TestHealth(t *testing.T) {
	app := setupApp(t)

	rec := app.request("GET", "/api/health", "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestProductLifecycle_RecordsActions(t *testing.T) {
	app := setupApp(t)
	alice := operatorToken(t, "alice")
	bob := operatorToken(t, "bob")

	// Step 1: Create a product as alice
	rec := app.request("POST", "/api/v1/products",
		`{"name":"Widget","category":"tools","price":10,"provider":"Acme"}`, alice)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	product := parseJSON(t, rec)["product"].(map[string]interface{})
	productID := product["id"].(float64)

	// Step 2: Change the price as bob
	rec = app.request("PUT", fmt.Sprintf("/api/v1/products/%.0f", productID), `{"price":12}`, bob)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Step 3: Delete anonymously
	rec = app.request("DELETE", fmt.Sprintf("/api/v1/products/%.0f", productID), "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Step 4: Read the history, newest first
	rec = app.request("GET", fmt.Sprintf("/api/v1/products/%.0f/actions", productID), "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := parseJSON(t, rec)
	require.Equal(t, float64(3), result["total_items"])

	byType := map[string]map[string]interface{}{}
	for _, raw := range result["data"].([]interface{}) {
		action := raw.(map[string]interface{})
		byType[action["action_type"].(string)] = action
		assert.Equal(t, "models.Product", action["object_class"])
		assert.Equal(t, productID, action["object_id"])
	}

	insert := byType["INSERT"]
	require.NotNil(t, insert)
	assert.Equal(t, "alice", insert["operator"])
	name := changesByField(insert)["name"]
	assert.Equal(t, "Widget", name["new_value"])
	assert.Nil(t, name["old_value"])

	update := byType["UPDATE"]
	require.NotNil(t, update)
	assert.Equal(t, "bob", update["operator"])
	updateChanges := changesByField(update)
	assert.Len(t, updateChanges, 1, "only price should change")
	assert.Equal(t, "10", updateChanges["price"]["old_value"])
	assert.Equal(t, "12", updateChanges["price"]["new_value"])

	del := byType["DELETE"]
	require.NotNil(t, del)
	assert.Equal(t, "admin", del["operator"], "anonymous deletes fall back to the default operator")
	price := changesByField(del)["price"]
	assert.Equal(t, "12", price["old_value"])
	assert.Nil(t, price["new_value"])

	// Step 5: Fetch one action by id
	rec = app.request("GET", "/api/v1/actions/"+update["id"].(string), "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestActionFilters(t *testing.T) {
	app := setupApp(t)
	alice := operatorToken(t, "alice")

	for _, name := range []string{"A", "B"} {
		rec := app.request("POST", "/api/v1/products", fmt.Sprintf(`{"name":%q}`, name), alice)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
	rec := app.request("POST", "/api/v1/products", `{"name":"C"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = app.request("GET", "/api/v1/actions?operator=alice&action_type=INSERT", "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, float64(2), parseJSON(t, rec)["total_items"])

	rec = app.request("GET", "/api/v1/actions?action_type=MERGE", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
}

func TestInvalidToken_Rejected(t *testing.T) {
	app := setupApp(t)

	rec := app.request("POST", "/api/v1/products", `{"name":"Widget"}`, "forged")
	require.Equal(t, http.StatusUnauthorized, rec.Code, rec.Body.String())

	var count int64
	app.DB.Model(&models.Action{}).Count(&count)
	assert.Zero(t, count, "a rejected request records nothing")
}

func TestFailedMutation_RecordsNothing(t *testing.T) {
	app := setupApp(t)

	rec := app.request("DELETE", "/api/v1/products/999", "", "")
	require.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())

	rec = app.request("GET", "/api/v1/actions", "", "")
	assert.Equal(t, float64(0), parseJSON(t, rec)["total_items"])
}

// TestSwaggerDocMatchesRoutes keeps the generated API description in step
// with the router: every /api/v1 route is documented and nothing else is.
func TestSwaggerDocMatchesRoutes(t *testing.T) {
	app := setupApp(t)

	raw, err := swag.ReadDoc()
	require.NoError(t, err)
	var doc struct {
		BasePath string                                `json:"basePath"`
		Paths    map[string]map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	documented := map[string]bool{}
	for path, ops := range doc.Paths {
		for method := range ops {
			documented[strings.ToUpper(method)+" "+doc.BasePath+path] = true
		}
	}

	served := map[string]bool{}
	for _, route := range app.Router.Routes() {
		if !strings.HasPrefix(route.Path, doc.BasePath+"/") {
			continue
		}
		served[route.Method+" "+pathParams.ReplaceAllString(route.Path, "{$1}")] = true
	}

	require.NotEmpty(t, served)
	assert.Equal(t, served, documented)
}
