package repository

import (
	"time"

	"cafe-pos/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ReportRepository interface {
	GetSalesSummary(startDate, endDate time.Time) (*SalesSummary, error)
	GetDailySales(startDate, endDate time.Time) ([]DailySales, error)
	GetTopProducts(startDate, endDate time.Time, limit int) ([]TopProduct, error)
	GetPaymentBreakdown(startDate, endDate time.Time) ([]PaymentBreakdown, error)
	GetDashboardStats() (*DashboardStats, error)
	FindSalesForExport(startDate, endDate time.Time) ([]model.Sale, error)
}

// SalesSummary aggregates revenue for a period
type SalesSummary struct {
	SaleCount     int64           `json:"sale_count"`
	Gross         decimal.Decimal `json:"gross"`
	Tax           decimal.Decimal `json:"tax"`
	Discount      decimal.Decimal `json:"discount"`
	Net           decimal.Decimal `json:"net"`
	OnlineCount   int64           `json:"online_count"`
	POSCount      int64           `json:"pos_count"`
	AverageTicket decimal.Decimal `json:"average_ticket"`
}

// DailySales is one point of the sales chart
type DailySales struct {
	Date      string          `json:"date"`
	SaleCount int64           `json:"sale_count"`
	Total     decimal.Decimal `json:"total"`
}

type TopProduct struct {
	ProductID     uint            `json:"product_id"`
	ProductName   string          `json:"product_name"`
	TotalQuantity int64           `json:"total_quantity"`
	Revenue       decimal.Decimal `json:"revenue"`
}

type PaymentBreakdown struct {
	PaymentMethod model.PaymentMethod `json:"payment_method"`
	SaleCount     int64               `json:"sale_count"`
	Total         decimal.Decimal     `json:"total"`
}

// DashboardStats untuk overview stats
type DashboardStats struct {
	TotalProducts       int64 `json:"total_products"`
	LowStockCount       int64 `json:"low_stock_count"`
	TotalCustomers      int64 `json:"total_customers"`
	PendingOrders       int64 `json:"pending_orders"`
	UnreadNotifications int64 `json:"unread_notifications"`
}

// Sales in these statuses never count as revenue
var excludedStatuses = []model.SaleStatus{model.SaleStatusCancelled, model.SaleStatusRejected}

type reportRepo struct {
	db *gorm.DB
}

func NewReportRepo(db *gorm.DB) ReportRepository {
	return &reportRepo{db}
}

func (r *reportRepo) revenue(startDate, endDate time.Time) *gorm.DB {
	return r.db.Model(&model.Sale{}).
		Where("status NOT IN ?", excludedStatuses).
		Where("sale_date BETWEEN ? AND ?", startDate, endDate)
}

func (r *reportRepo) GetSalesSummary(startDate, endDate time.Time) (*SalesSummary, error) {
	var summary SalesSummary
	err := r.revenue(startDate, endDate).
		Select(`
			COUNT(*) as sale_count,
			COALESCE(SUM(subtotal), 0) as gross,
			COALESCE(SUM(tax), 0) as tax,
			COALESCE(SUM(discount), 0) as discount,
			COALESCE(SUM(total), 0) as net,
			COALESCE(SUM(CASE WHEN source = 'online' THEN 1 ELSE 0 END), 0) as online_count,
			COALESCE(SUM(CASE WHEN source = 'pos' THEN 1 ELSE 0 END), 0) as pos_count
		`).
		Scan(&summary).Error
	if err != nil {
		return nil, err
	}
	if summary.SaleCount > 0 {
		summary.AverageTicket = summary.Net.Div(decimal.NewFromInt(summary.SaleCount)).Round(2)
	}
	return &summary, nil
}

func (r *reportRepo) GetDailySales(startDate, endDate time.Time) ([]DailySales, error) {
	var results []DailySales
	err := r.revenue(startDate, endDate).
		Select(`
			CAST(DATE(sale_date) AS TEXT) as date,
			COUNT(*) as sale_count,
			COALESCE(SUM(total), 0) as total
		`).
		Group("DATE(sale_date)").
		Order("date ASC").
		Scan(&results).Error
	return results, err
}

func (r *reportRepo) GetTopProducts(startDate, endDate time.Time, limit int) ([]TopProduct, error) {
	if limit <= 0 {
		limit = 10
	}
	var results []TopProduct
	err := r.db.Table("sale_items").
		Select(`
			sale_items.product_id as product_id,
			COALESCE(products.name, '') as product_name,
			SUM(sale_items.quantity) as total_quantity,
			COALESCE(SUM(sale_items.total_price), 0) as revenue
		`).
		Joins("JOIN sales ON sales.id = sale_items.sale_id").
		Joins("LEFT JOIN products ON products.id = sale_items.product_id").
		Where("sales.deleted_at IS NULL").
		Where("sales.status NOT IN ?", excludedStatuses).
		Where("sales.sale_date BETWEEN ? AND ?", startDate, endDate).
		Group("sale_items.product_id, products.name").
		Order("total_quantity DESC").
		Limit(limit).
		Scan(&results).Error
	return results, err
}

func (r *reportRepo) GetPaymentBreakdown(startDate, endDate time.Time) ([]PaymentBreakdown, error) {
	var results []PaymentBreakdown
	err := r.revenue(startDate, endDate).
		Select("payment_method, COUNT(*) as sale_count, COALESCE(SUM(total), 0) as total").
		Group("payment_method").
		Order("payment_method ASC").
		Scan(&results).Error
	return results, err
}

func (r *reportRepo) GetDashboardStats() (*DashboardStats, error) {
	var stats DashboardStats

	if err := r.db.Model(&model.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}
	// Low stock threshold (stock < 10)
	if err := r.db.Model(&model.Product{}).Where("stock < ?", 10).Count(&stats.LowStockCount).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.Customer{}).Count(&stats.TotalCustomers).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.Sale{}).Where("status = ?", model.SaleStatusPending).Count(&stats.PendingOrders).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.Notification{}).Where("is_read = ?", false).Count(&stats.UnreadNotifications).Error; err != nil {
		return nil, err
	}

	return &stats, nil
}

func (r *reportRepo) FindSalesForExport(startDate, endDate time.Time) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.Where("sale_date BETWEEN ? AND ?", startDate, endDate).
		Order("sale_date ASC").
		Find(&sales).Error
	return sales, err
}
