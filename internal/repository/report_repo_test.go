package repository

import (
	"testing"
	"time"

	"cafe-pos/internal/model"
	"cafe-pos/pkg/database"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenMemory(uuid.NewString(), model.All()...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func seedSale(t *testing.T, db *gorm.DB, status model.SaleStatus, source model.SaleSource, method model.PaymentMethod, total int64) {
	t.Helper()
	sale := &model.Sale{
		SaleDate:      time.Now(),
		Subtotal:      decimal.NewFromInt(total),
		Total:         decimal.NewFromInt(total),
		Status:        status,
		Source:        source,
		PaymentMethod: method,
		PaymentStatus: model.PaymentPaid,
	}
	require.NoError(t, db.Create(sale).Error)
}

func TestSalesSummaryExcludesCancelledAndRejected(t *testing.T) {
	db := openTestDB(t)
	seedSale(t, db, model.SaleStatusCompleted, model.SourcePOS, model.PaymentCash, 10)
	seedSale(t, db, model.SaleStatusPending, model.SourceOnline, model.PaymentMobilePayment, 20)
	seedSale(t, db, model.SaleStatusCancelled, model.SourceOnline, model.PaymentCash, 100)
	seedSale(t, db, model.SaleStatusRejected, model.SourceOnline, model.PaymentCash, 100)

	repo := NewReportRepo(db)
	from := time.Now().AddDate(0, 0, -1)
	to := time.Now().AddDate(0, 0, 1)

	summary, err := repo.GetSalesSummary(from, to)
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.SaleCount)
	assert.True(t, summary.Net.Equal(decimal.NewFromInt(30)), summary.Net.String())
	assert.Equal(t, int64(1), summary.OnlineCount)
	assert.Equal(t, int64(1), summary.POSCount)
	assert.True(t, summary.AverageTicket.Equal(decimal.NewFromInt(15)))

	breakdown, err := repo.GetPaymentBreakdown(from, to)
	require.NoError(t, err)
	require.Len(t, breakdown, 2)
	assert.Equal(t, model.PaymentCash, breakdown[0].PaymentMethod)
	assert.Equal(t, int64(1), breakdown[0].SaleCount)
}

func TestSalesSummaryEmptyRange(t *testing.T) {
	db := openTestDB(t)
	seedSale(t, db, model.SaleStatusCompleted, model.SourcePOS, model.PaymentCash, 10)

	summary, err := NewReportRepo(db).GetSalesSummary(time.Now().AddDate(0, 0, -10), time.Now().AddDate(0, 0, -9))
	require.NoError(t, err)
	assert.Zero(t, summary.SaleCount)
	assert.True(t, summary.AverageTicket.IsZero())
}

func TestDashboardStats(t *testing.T) {
	db := openTestDB(t)
	seedSale(t, db, model.SaleStatusPending, model.SourceOnline, model.PaymentCash, 5)
	seedSale(t, db, model.SaleStatusCompleted, model.SourcePOS, model.PaymentCash, 5)
	require.NoError(t, db.Create(&model.Product{Name: "Mocha", Price: decimal.NewFromInt(4), Stock: 3, IsActive: true}).Error)
	require.NoError(t, db.Create(&model.Notification{Type: model.NotificationSystem, Title: "hi"}).Error)

	stats, err := NewReportRepo(db).GetDashboardStats()
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.PendingOrders)
	assert.Equal(t, int64(1), stats.TotalProducts)
	assert.Equal(t, int64(1), stats.LowStockCount)
	assert.Equal(t, int64(1), stats.UnreadNotifications)
}
