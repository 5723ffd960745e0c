package repository

import (
	"time"

	"cafe-pos/internal/model"

	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(tx *gorm.DB, notification *model.Notification) error
	FindAll(unreadOnly bool, limit int) ([]model.Notification, error)
	CountUnread() (int64, error)
	MarkRead(id uint) error
	MarkAllRead() (int64, error)
	DeleteReadBefore(cutoff time.Time) (int64, error)
}

type notificationRepo struct {
	db *gorm.DB
}

func NewNotificationRepo(db *gorm.DB) NotificationRepository {
	return &notificationRepo{db}
}

func (r *notificationRepo) Create(tx *gorm.DB, notification *model.Notification) error {
	return conn(r.db, tx).Create(notification).Error
}

func (r *notificationRepo) FindAll(unreadOnly bool, limit int) ([]model.Notification, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	var notifications []model.Notification
	query := r.db.Order("created_at DESC, id DESC").Limit(limit)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}
	err := query.Find(&notifications).Error
	return notifications, err
}

func (r *notificationRepo) CountUnread() (int64, error) {
	var count int64
	err := r.db.Model(&model.Notification{}).Where("is_read = ?", false).Count(&count).Error
	return count, err
}

func (r *notificationRepo) MarkRead(id uint) error {
	res := r.db.Model(&model.Notification{}).Where("id = ?", id).Updates(map[string]interface{}{
		"is_read": true,
		"read_at": time.Now(),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *notificationRepo) MarkAllRead() (int64, error) {
	res := r.db.Model(&model.Notification{}).Where("is_read = ?", false).Updates(map[string]interface{}{
		"is_read": true,
		"read_at": time.Now(),
	})
	return res.RowsAffected, res.Error
}

func (r *notificationRepo) DeleteReadBefore(cutoff time.Time) (int64, error) {
	res := r.db.Where("is_read = ? AND created_at < ?", true, cutoff).Delete(&model.Notification{})
	return res.RowsAffected, res.Error
}
