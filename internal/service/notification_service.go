package service

import (
	"context"
	"errors"
	"time"

	"cafe-pos/internal/events"
	"cafe-pos/internal/model"
	"cafe-pos/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrNotificationNotFound = errors.New("notification not found")

// Broadcaster pushes a JSON payload to every connected staff client.
type Broadcaster interface {
	BroadcastJSON(payload interface{})
}

type NotificationService interface {
	CreateSystemNotification(tx *gorm.DB, kind model.NotificationType, title, message, relatedID, relatedType string) (*model.Notification, error)
	Dispatch(ctx context.Context, n *model.Notification, eventType string, data interface{})
	List(unreadOnly bool, limit int) ([]model.Notification, error)
	CountUnread() (int64, error)
	MarkRead(id uint) error
	MarkAllRead() (int64, error)
	PurgeRead(olderThan time.Duration) (int64, error)
}

type notificationService struct {
	repo      repository.NotificationRepository
	hub       Broadcaster
	publisher events.Publisher
}

func NewNotificationService(repo repository.NotificationRepository, hub Broadcaster, publisher events.Publisher) NotificationService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &notificationService{repo: repo, hub: hub, publisher: publisher}
}

// CreateSystemNotification writes a notification on the caller's transaction
// so it commits or rolls back together with the business rows.
func (s *notificationService) CreateSystemNotification(tx *gorm.DB, kind model.NotificationType, title, message, relatedID, relatedType string) (*model.Notification, error) {
	n := &model.Notification{
		Type:        kind,
		Title:       title,
		Message:     message,
		RelatedID:   relatedID,
		RelatedType: relatedType,
	}
	if err := s.repo.Create(tx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// Dispatch fans a committed notification out to WebSocket clients and the
// event bus. Failures are logged only.
func (s *notificationService) Dispatch(ctx context.Context, n *model.Notification, eventType string, data interface{}) {
	if n == nil {
		return
	}
	if s.hub != nil {
		s.hub.BroadcastJSON(map[string]interface{}{
			"type":         "notification",
			"event":        eventType,
			"notification": n,
			"data":         data,
		})
	}
	if eventType == "" {
		return
	}
	if err := s.publisher.Publish(ctx, eventType, data); err != nil {
		zap.L().Warn("event publish failed",
			zap.String("event", eventType),
			zap.String("related_id", n.RelatedID),
			zap.Error(err))
	}
}

func (s *notificationService) List(unreadOnly bool, limit int) ([]model.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.FindAll(unreadOnly, limit)
}

func (s *notificationService) CountUnread() (int64, error) {
	return s.repo.CountUnread()
}

func (s *notificationService) MarkRead(id uint) error {
	if err := s.repo.MarkRead(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}
	return nil
}

func (s *notificationService) MarkAllRead() (int64, error) {
	return s.repo.MarkAllRead()
}

func (s *notificationService) PurgeRead(olderThan time.Duration) (int64, error) {
	return s.repo.DeleteReadBefore(time.Now().Add(-olderThan))
}
