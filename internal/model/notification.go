package model

import "time"

type NotificationType string

const (
	NotificationNewOrder      NotificationType = "new_order"
	NotificationOrderStatus   NotificationType = "order_status"
	NotificationPaymentStatus NotificationType = "payment_status"
	NotificationPOSSale       NotificationType = "pos_sale"
	NotificationSystem        NotificationType = "system"
)

// Notification is a staff-facing system event.
type Notification struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	Type        NotificationType `gorm:"type:varchar(30);not null;index" json:"type"`
	Title       string           `gorm:"type:varchar(255);not null" json:"title"`
	Message     string           `gorm:"type:text" json:"message"`
	RelatedID   string           `gorm:"type:varchar(64);index" json:"related_id,omitempty"`
	RelatedType string           `gorm:"type:varchar(30)" json:"related_type,omitempty"`
	IsRead      bool             `gorm:"default:false;index" json:"is_read"`
	ReadAt      *time.Time       `json:"read_at,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}
