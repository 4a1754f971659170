package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"datalog/internal/actionstore"
	"datalog/internal/datalog"
	"datalog/internal/models"
	"datalog/internal/pagination"
	"datalog/internal/testutil"
)

var fixedTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newInterceptor(store datalog.Store, routes datalog.Routes) *datalog.Interceptor {
	return datalog.NewInterceptor(datalog.Config{
		Store:    store,
		Routes:   routes,
		Operator: datalog.ContextOperator("admin"),
		Logger:   zap.NewNop().Sugar(),
		Clock:    func() time.Time { return fixedTime },
	})
}

func changeMap(items []models.ChangeItem) map[string]models.ChangeItem {
	out := make(map[string]models.ChangeItem, len(items))
	for _, it := range items {
		out[it.FieldName] = it
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return *s
}

func TestGormRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("save_find_list", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		repo := NewGormRepository[models.Product](db)

		p, err := repo.Save(ctx, &models.Product{Name: "Lamp", Category: "home", Price: 20})
		testutil.AssertNoError(t, err)
		require.NotZero(t, p.ID)
		testutil.CreateTestProduct(t, db)

		got, err := repo.FindByID(ctx, p.ID)
		testutil.AssertNoError(t, err)
		assert.Equal(t, "Lamp", got.Name)

		items, total, err := repo.List(ctx, pagination.PageRequest{Page: 1, PageSize: 1})
		testutil.AssertNoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, items, 1)
		assert.Equal(t, p.ID, items[0].ID)
	})

	t.Run("missing_rows_are_not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		repo := NewGormRepository[models.Product](db)

		_, err := repo.FindByID(ctx, 404)
		assert.ErrorIs(t, err, datalog.ErrEntityNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, 404), datalog.ErrEntityNotFound)
	})

	t.Run("delete_is_soft", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		repo := NewGormRepository[models.Product](db)
		p := testutil.CreateTestProduct(t, db)

		testutil.AssertNoError(t, repo.Delete(ctx, p.ID))
		_, err := repo.FindByID(ctx, p.ID)
		assert.ErrorIs(t, err, datalog.ErrEntityNotFound, "deleted product should be hidden")

		var count int64
		db.Unscoped().Model(&models.Product{}).Where("id = ?", p.ID).Count(&count)
		assert.Equal(t, int64(1), count, "row should remain for soft delete")
	})
}

func TestAuditedRepository(t *testing.T) {
	t.Run("insert_records_generated_id", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		store := actionstore.NewMemoryStore()
		repo := NewAudited(NewGormRepository[models.Product](db), newInterceptor(store, nil))

		p, err := repo.Save(context.Background(), &models.Product{Name: "Lamp", Category: "home", Price: 20})
		testutil.AssertNoError(t, err)

		actions := store.Actions()
		require.Len(t, actions, 1)
		a := actions[0]
		assert.Equal(t, models.ActionTypeInsert, a.ActionType)
		require.NotNil(t, a.ObjectID)
		assert.Equal(t, p.ID, *a.ObjectID)
		assert.Equal(t, "models.Product", a.ObjectClass)
		assert.Equal(t, "admin", a.Operator)
		assert.True(t, a.OperateTime.Equal(fixedTime))

		require.Len(t, a.Changes, 6)
		assert.Equal(t, "name", a.Changes[0].FieldName)
		assert.Equal(t, "Lamp", deref(a.Changes[0].NewValue))
		for _, c := range a.Changes {
			assert.NotEqual(t, "id", c.FieldName, "identifier must not appear in changes")
			assert.Nil(t, c.OldValue, "insert change %s should have no old value", c.FieldName)
		}
	})

	t.Run("update_records_only_changed_fields", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		store := actionstore.NewMemoryStore()
		repo := NewAudited(NewGormRepository[models.Product](db), newInterceptor(store, nil))
		existing := testutil.CreateTestProductWithParams(t, db, "Lamp", "home", 10)

		edited := *existing
		edited.Price = 12.5
		edited.Detail = "LED"
		ctx := datalog.WithOperator(context.Background(), "carol")
		_, err := repo.Save(ctx, &edited)
		testutil.AssertNoError(t, err)

		actions := store.Actions()
		require.Len(t, actions, 1)
		a := actions[0]
		assert.Equal(t, models.ActionTypeUpdate, a.ActionType)
		assert.Equal(t, "carol", a.Operator)
		require.Len(t, a.Changes, 2)

		changes := changeMap(a.Changes)
		assert.Equal(t, "10", deref(changes["price"].OldValue))
		assert.Equal(t, "12.5", deref(changes["price"].NewValue))
		assert.Equal(t, "", deref(changes["detail"].OldValue))
		assert.Equal(t, "LED", deref(changes["detail"].NewValue))
	})

	t.Run("delete_records_previous_state", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		store := actionstore.NewMemoryStore()
		repo := NewAudited(NewGormRepository[models.Product](db), newInterceptor(store, nil))
		existing := testutil.CreateTestProductWithParams(t, db, "Lamp", "home", 10)

		testutil.AssertNoError(t, repo.Delete(context.Background(), existing.ID))

		actions := store.Actions()
		require.Len(t, actions, 1)
		a := actions[0]
		assert.Equal(t, models.ActionTypeDelete, a.ActionType)
		require.NotNil(t, a.ObjectID)
		assert.Equal(t, existing.ID, *a.ObjectID)

		name := changeMap(a.Changes)["name"]
		assert.Equal(t, "Lamp", deref(name.OldValue))
		assert.Nil(t, name.NewValue)
	})

	t.Run("failed_delete_propagates_without_action", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		store := actionstore.NewMemoryStore()
		repo := NewAudited(NewGormRepository[models.Product](db), newInterceptor(store, nil))

		err := repo.Delete(context.Background(), 404)
		assert.ErrorIs(t, err, datalog.ErrEntityNotFound)
		assert.Empty(t, store.Actions())
	})

	t.Run("unrouted_methods_pass_through", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		store := actionstore.NewMemoryStore()
		routes := datalog.Routes{MethodSave: datalog.OperationSave}
		repo := NewAudited(NewGormRepository[models.Product](db), newInterceptor(store, routes))
		existing := testutil.CreateTestProduct(t, db)

		testutil.AssertNoError(t, repo.Delete(context.Background(), existing.ID))
		assert.Empty(t, store.Actions(), "unrouted delete should not be recorded")
	})

	t.Run("actions_persist_in_database", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		store := actionstore.NewGormStore(db)
		repo := NewAudited(NewGormRepository[models.Product](db), newInterceptor(store, nil))

		p, err := repo.Save(context.Background(), &models.Product{Name: "Desk", Price: 99})
		testutil.AssertNoError(t, err)

		actions, total, err := store.List(context.Background(), actionstore.Filter{ObjectID: &p.ID}, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, actions, 1)
		assert.Equal(t, models.ActionTypeInsert, actions[0].ActionType)
	})
}

func TestShippedAuditTable(t *testing.T) {
	table, err := datalog.LoadTable("../../configs/audit.yaml")
	require.NoError(t, err)
	assert.NoError(t, table.Check(Methods(), &models.Product{}))

	unknown, err := datalog.ParseTable([]byte("save: [Save, SaveAll]\n"))
	require.NoError(t, err)
	assert.Error(t, unknown.Check(Methods(), &models.Product{}), "SaveAll is never presented by an audited repository")

	badID, err := datalog.ParseTable([]byte("save: [Save]\nid_field: key\n"))
	require.NoError(t, err)
	assert.Error(t, badID.Check(Methods(), &models.Product{}), "products have no key field")
}
