package repository

import (
	"time"

	"cafe-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SaleFilter narrows sale listings; zero values mean "any".
type SaleFilter struct {
	Status        model.SaleStatus
	Source        model.SaleSource
	PaymentStatus model.PaymentStatus
	CustomerID    *uint
	From          *time.Time
	To            *time.Time
}

type SaleRepository interface {
	Create(tx *gorm.DB, sale *model.Sale) error
	CreateItems(tx *gorm.DB, items []model.SaleItem) error
	FindByID(id uuid.UUID) (*model.Sale, error)
	FindForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Sale, error)
	FindAll(filter SaleFilter, page Page) ([]model.Sale, int64, error)
	UpdateStatus(tx *gorm.DB, id uuid.UUID, from, to model.SaleStatus, updatedBy string) (bool, error)
	UpdatePaymentStatus(tx *gorm.DB, id uuid.UUID, status model.PaymentStatus, updatedBy string) error
	SetReceiptNumber(id uuid.UUID, number string) error
	Delete(id uuid.UUID, deletedBy string) error
	CountItems(tx *gorm.DB, saleID uuid.UUID) (int64, error)
}

type saleRepo struct {
	db *gorm.DB
}

func NewSaleRepo(db *gorm.DB) SaleRepository {
	return &saleRepo{db}
}

// Create inserts the sale header only; items go through CreateItems.
func (r *saleRepo) Create(tx *gorm.DB, sale *model.Sale) error {
	return conn(r.db, tx).Omit("Items", "Customer", "User").Create(sale).Error
}

// CreateItems bulk-inserts sale lines in one statement.
func (r *saleRepo) CreateItems(tx *gorm.DB, items []model.SaleItem) error {
	if len(items) == 0 {
		return nil
	}
	return conn(r.db, tx).Omit("Product").Create(&items).Error
}

func (r *saleRepo) FindByID(id uuid.UUID) (*model.Sale, error) {
	var sale model.Sale
	err := r.db.Preload("Items").Preload("Items.Product").Preload("Customer").Preload("User").
		First(&sale, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *saleRepo) FindForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Sale, error) {
	var sale model.Sale
	if err := conn(r.db, tx).First(&sale, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *saleRepo) FindAll(filter SaleFilter, page Page) ([]model.Sale, int64, error) {
	page = page.Normalize()
	query := r.db.Model(&model.Sale{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Source != "" {
		query = query.Where("source = ?", filter.Source)
	}
	if filter.PaymentStatus != "" {
		query = query.Where("payment_status = ?", filter.PaymentStatus)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.From != nil {
		query = query.Where("sale_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("sale_date <= ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var sales []model.Sale
	err := query.Preload("Items").Preload("Customer").
		Order("sale_date DESC").
		Offset(page.Offset()).Limit(page.PerPage).
		Find(&sales).Error
	return sales, total, err
}

// UpdateStatus moves a sale from one status to another. The WHERE on the current
// status makes concurrent transitions race-safe; false means the row was not in
// the expected status anymore.
func (r *saleRepo) UpdateStatus(tx *gorm.DB, id uuid.UUID, from, to model.SaleStatus, updatedBy string) (bool, error) {
	res := conn(r.db, tx).Model(&model.Sale{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_by": updatedBy,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *saleRepo) UpdatePaymentStatus(tx *gorm.DB, id uuid.UUID, status model.PaymentStatus, updatedBy string) error {
	return conn(r.db, tx).Model(&model.Sale{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"payment_status": status,
			"updated_by":     updatedBy,
		}).Error
}

func (r *saleRepo) SetReceiptNumber(id uuid.UUID, number string) error {
	return r.db.Model(&model.Sale{}).Where("id = ?", id).Update("receipt_number", number).Error
}

func (r *saleRepo) Delete(id uuid.UUID, deletedBy string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Sale{}).Where("id = ?", id).Update("deleted_by", deletedBy).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Sale{}, "id = ?", id).Error
	})
}

func (r *saleRepo) CountItems(tx *gorm.DB, saleID uuid.UUID) (int64, error) {
	var count int64
	err := conn(r.db, tx).Model(&model.SaleItem{}).Where("sale_id = ?", saleID).Count(&count).Error
	return count, err
}
