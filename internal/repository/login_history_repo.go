package repository

import (
	"time"

	"cafe-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LoginHistoryRepository interface {
	Create(entry *model.LoginHistory) error
	FindByUserID(userID uuid.UUID, limit int) ([]model.LoginHistory, error)
	DeleteBefore(cutoff time.Time) (int64, error)
}

type loginHistoryRepo struct {
	db *gorm.DB
}

func NewLoginHistoryRepo(db *gorm.DB) LoginHistoryRepository {
	return &loginHistoryRepo{db}
}

func (r *loginHistoryRepo) Create(entry *model.LoginHistory) error {
	if entry.LoggedAt.IsZero() {
		entry.LoggedAt = time.Now()
	}
	return r.db.Omit("User").Create(entry).Error
}

func (r *loginHistoryRepo) FindByUserID(userID uuid.UUID, limit int) ([]model.LoginHistory, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	var entries []model.LoginHistory
	err := r.db.Where("user_id = ?", userID).Order("logged_at DESC").Limit(limit).Find(&entries).Error
	return entries, err
}

func (r *loginHistoryRepo) DeleteBefore(cutoff time.Time) (int64, error) {
	res := r.db.Where("logged_at < ?", cutoff).Delete(&model.LoginHistory{})
	return res.RowsAffected, res.Error
}
