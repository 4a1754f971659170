package services

import (
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"datalog/internal/actionstore"
	"datalog/internal/datalog"
	"datalog/internal/models"
	"datalog/internal/repository"
	"datalog/internal/testutil"
)

// setupProductService wires a ProductServicer over an in-memory database whose
// actions are collected in a MemoryStore.
func setupProductService(t *testing.T) (ProductServicer, *actionstore.MemoryStore, *gorm.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	store := actionstore.NewMemoryStore()
	interceptor := datalog.NewInterceptor(datalog.Config{
		Store:  store,
		Logger: zap.NewNop().Sugar(),
		Clock:  func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) },
	})
	repo := repository.NewAudited(repository.NewGormRepository[models.Product](db), interceptor)
	return NewProductService(repo), store, db
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }
