package repository

import (
	"strings"
	"time"

	"cafe-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	FindByEmail(email string) (*model.User, error)
	FindByID(id uuid.UUID) (*model.User, error)
	FindAll() ([]model.User, error)
	Create(user *model.User) error
	Update(user *model.User) error
	Delete(id uuid.UUID) error
	UpdatePassword(userID uuid.UUID, hashedPassword string) error
	UpdatePrivileges(userID uuid.UUID, privileges []model.Privilege, updatedBy string) error
	UpdateTokenVersion(userID uuid.UUID, version string) error
	UpdateLastSeen(userID uuid.UUID) error
	ClearLastSeen(userID uuid.UUID) error
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db}
}

// withAccess loads what the auth layer needs to build claims.
func withAccess(db *gorm.DB) *gorm.DB {
	return db.Preload("Role").Preload("Privileges", func(db *gorm.DB) *gorm.DB {
		return db.Order("privileges.code ASC")
	})
}

// FindByEmail matches case-insensitively; emails are stored lowercased.
func (r *userRepo) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.db.Scopes(withAccess).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) FindByID(id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.Scopes(withAccess).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) FindAll() ([]model.User, error) {
	var users []model.User
	err := r.db.Scopes(withAccess).Order("full_name ASC").Find(&users).Error
	return users, err
}

// Create inserts the user together with its initial privilege set.
func (r *userRepo) Create(user *model.User) error {
	return r.db.Omit("Role").Create(user).Error
}

// Update saves the user's own columns. Privileges change only through
// UpdatePrivileges.
func (r *userRepo) Update(user *model.User) error {
	return r.db.Omit("Role", "Privileges", "LoginHistory").Save(user).Error
}

func (r *userRepo) Delete(id uuid.UUID) error {
	return r.db.Delete(&model.User{}, "id = ?", id).Error
}

func (r *userRepo) UpdatePassword(userID uuid.UUID, hashedPassword string) error {
	return r.updateColumn(userID, "password", hashedPassword)
}

// UpdatePrivileges replaces the user's privilege set and stamps updated_by
// in one transaction.
func (r *userRepo) UpdatePrivileges(userID uuid.UUID, privileges []model.Privilege, updatedBy string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		user := model.User{BaseModel: model.BaseModel{ID: userID}}
		if err := tx.Model(&user).Association("Privileges").Replace(privileges); err != nil {
			return err
		}
		return tx.Model(&model.User{}).Where("id = ?", userID).Update("updated_by", updatedBy).Error
	})
}

func (r *userRepo) UpdateTokenVersion(userID uuid.UUID, version string) error {
	return r.updateColumn(userID, "token_version", version)
}

func (r *userRepo) UpdateLastSeen(userID uuid.UUID) error {
	return r.updateColumn(userID, "last_seen_at", time.Now())
}

func (r *userRepo) ClearLastSeen(userID uuid.UUID) error {
	return r.updateColumn(userID, "last_seen_at", nil)
}

func (r *userRepo) updateColumn(userID uuid.UUID, column string, value interface{}) error {
	res := r.db.Model(&model.User{}).Where("id = ?", userID).Update(column, value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
