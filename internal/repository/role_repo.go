package repository

import (
	"cafe-pos/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RoleRepository interface {
	FindAll() ([]model.Role, error)
	FindByID(id uint) (*model.Role, error)
	FindByCode(code string) (*model.Role, error)
	SeedDefaults() error
	GrantIfEmpty(code string, privileges []model.Privilege) (bool, error)
}

type roleRepo struct {
	db *gorm.DB
}

func NewRoleRepo(db *gorm.DB) RoleRepository {
	return &roleRepo{db: db}
}

func (r *roleRepo) FindAll() ([]model.Role, error) {
	var roles []model.Role
	err := r.db.Preload("Privileges", func(db *gorm.DB) *gorm.DB {
		return db.Order("privileges.code ASC")
	}).Order("id ASC").Find(&roles).Error
	return roles, err
}

func (r *roleRepo) FindByID(id uint) (*model.Role, error) {
	return r.first("id = ?", id)
}

func (r *roleRepo) FindByCode(code string) (*model.Role, error) {
	return r.first("code = ?", code)
}

func (r *roleRepo) first(query string, arg interface{}) (*model.Role, error) {
	var role model.Role
	if err := r.db.Preload("Privileges").Where(query, arg).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

// SeedDefaults inserts the built-in roles, leaving existing rows untouched.
func (r *roleRepo) SeedDefaults() error {
	roles := make([]model.Role, len(model.DefaultRoles))
	copy(roles, model.DefaultRoles)
	return r.db.Omit("Privileges").Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoNothing: true,
	}).Create(&roles).Error
}

// GrantIfEmpty attaches privileges to a role that has none yet. Roles an
// admin already configured are left alone; the bool reports whether a grant
// happened.
func (r *roleRepo) GrantIfEmpty(code string, privileges []model.Privilege) (bool, error) {
	role, err := r.FindByCode(code)
	if err != nil {
		return false, err
	}
	if len(role.Privileges) > 0 || len(privileges) == 0 {
		return false, nil
	}
	if err := r.db.Model(role).Association("Privileges").Replace(privileges); err != nil {
		return false, err
	}
	return true, nil
}
