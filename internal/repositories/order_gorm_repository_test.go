package repositories_test

import (
	"fmt"
	"testing"

	"nictech/internal/models"
	"nictech/internal/repositories"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupDB opens a fresh in-memory SQLite database and migrates the models
// under test. Each call gets its own database.
func setupDB(t *testing.T, tables ...interface{}) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(tables...))
	return db
}

func TestGORMOrderRepository_UpsertIsIdempotent(t *testing.T) {
	db := setupDB(t, &models.Order{})
	repo := repositories.NewGORMOrderRepository(db)

	first := &models.Order{
		PaymentID: "pay-1",
		Status:    "pending",
		Total:     1000,
		Items:     models.OrderItems{{ProductID: "P1", Quantity: 1}},
		Payer:     models.OrderPayer{Email: "ana@example.com"},
	}
	assert.NoError(t, repo.Upsert(first))

	second := &models.Order{
		PaymentID: "pay-1",
		Status:    "approved",
		Total:     1000,
		Items:     models.OrderItems{{ProductID: "P1", Quantity: 1}},
		Payer:     models.OrderPayer{Email: "ana@example.com"},
	}
	assert.NoError(t, repo.Upsert(second))

	orders, err := repo.GetAll()
	assert.NoError(t, err)
	assert.Len(t, orders, 1, "two upserts for one payment id must yield one row")
	assert.Equal(t, "approved", orders[0].Status, "second delivery's status is the stored value")
	assert.Len(t, orders[0].Items, 1)
	assert.Equal(t, "P1", orders[0].Items[0].ProductID)
	assert.Equal(t, "ana@example.com", orders[0].Payer.Email)
}

func TestGORMOrderRepository_GetByPaymentID(t *testing.T) {
	db := setupDB(t, &models.Order{})
	repo := repositories.NewGORMOrderRepository(db)

	assert.NoError(t, repo.Upsert(&models.Order{PaymentID: "pay-2", Status: "rejected", Total: 500}))

	order, err := repo.GetByPaymentID("pay-2")
	assert.NoError(t, err)
	assert.Equal(t, "rejected", order.Status)

	_, err = repo.GetByPaymentID("pay-unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
