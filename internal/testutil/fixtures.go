package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"datalog/internal/models"

	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestProduct creates a product directly in the database, bypassing the action log.
func CreateTestProduct(t *testing.T, db *gorm.DB) *models.Product {
	t.Helper()
	return CreateTestProductWithParams(t, db, fmt.Sprintf("Test Product %d", nextID()), "general", 10)
}

// CreateTestProductWithParams creates a product with the given name, category and price.
func CreateTestProductWithParams(t *testing.T, db *gorm.DB, name, category string, price float64) *models.Product {
	t.Helper()

	product := &models.Product{
		Name:     name,
		Category: category,
		Price:    price,
		Provider: "Test Provider",
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("failed to create test product: %v", err)
	}
	return product
}

// CreateTestAction stores an action with a single change item.
func CreateTestAction(t *testing.T, db *gorm.DB, objectClass string, objectID int64, actionType models.ActionType, operateTime time.Time) *models.Action {
	t.Helper()

	newValue := fmt.Sprintf("value %d", nextID())
	action := &models.Action{
		ObjectID:    &objectID,
		ObjectClass: objectClass,
		ActionType:  actionType,
		Operator:    "admin",
		OperateTime: operateTime,
		Changes:     []models.ChangeItem{models.NewChangeItem("name", nil, &newValue)},
	}
	if err := db.Create(action).Error; err != nil {
		t.Fatalf("failed to create test action: %v", err)
	}
	return action
}
