package repository

import (
	"strings"

	"cafe-pos/internal/model"

	"gorm.io/gorm"
)

type CustomerRepository interface {
	Create(tx *gorm.DB, customer *model.Customer) error
	FindByPhone(tx *gorm.DB, phone string) (*model.Customer, error)
	FindByIDUnscoped(tx *gorm.DB, id uint) (*model.Customer, error)
	FindByID(id uint) (*model.Customer, error)
	FindByEmail(tx *gorm.DB, email string) (*model.Customer, error)
	FindAll(query string, page Page) ([]model.Customer, int64, error)
	Update(customer *model.Customer) error
	Delete(id uint) error
}

type customerRepo struct {
	db *gorm.DB
}

func NewCustomerRepo(db *gorm.DB) CustomerRepository {
	return &customerRepo{db}
}

func (r *customerRepo) Create(tx *gorm.DB, customer *model.Customer) error {
	return conn(r.db, tx).Omit("Sales").Create(customer).Error
}

// FindByPhone matches the phone exactly; soft-deleted customers are skipped.
func (r *customerRepo) FindByPhone(tx *gorm.DB, phone string) (*model.Customer, error) {
	var customer model.Customer
	if err := conn(r.db, tx).Where("phone = ?", phone).Order("id ASC").First(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepo) FindByIDUnscoped(tx *gorm.DB, id uint) (*model.Customer, error) {
	var customer model.Customer
	if err := conn(r.db, tx).Unscoped().First(&customer, id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepo) FindByID(id uint) (*model.Customer, error) {
	var customer model.Customer
	err := r.db.Preload("Sales", func(db *gorm.DB) *gorm.DB {
		return db.Order("sale_date DESC").Limit(20)
	}).First(&customer, id).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// FindByEmail includes soft-deleted customers; they still hold the unique
// email index.
func (r *customerRepo) FindByEmail(tx *gorm.DB, email string) (*model.Customer, error) {
	var customer model.Customer
	if err := conn(r.db, tx).Unscoped().Where("email = ?", email).First(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepo) FindAll(query string, page Page) ([]model.Customer, int64, error) {
	page = page.Normalize()
	db := r.db.Model(&model.Customer{})
	if q := strings.TrimSpace(query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		db = db.Where("LOWER(name) LIKE ? OR phone LIKE ? OR LOWER(email) LIKE ?", like, "%"+q+"%", like)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var customers []model.Customer
	err := db.Order("created_at DESC").Offset(page.Offset()).Limit(page.PerPage).Find(&customers).Error
	return customers, total, err
}

func (r *customerRepo) Update(customer *model.Customer) error {
	return r.db.Omit("Sales").Save(customer).Error
}

func (r *customerRepo) Delete(id uint) error {
	return r.db.Delete(&model.Customer{}, id).Error
}
