package model

import (
	"time"

	"github.com/google/uuid"
)

// LoginHistory records one login attempt for a known user.
type LoginHistory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	IPAddress string    `gorm:"type:varchar(64)" json:"ip_address"`
	UserAgent string    `gorm:"type:varchar(500)" json:"user_agent"`
	Success   bool      `gorm:"not null" json:"success"`
	Reason    string    `gorm:"type:varchar(100)" json:"reason,omitempty"`
	LoggedAt  time.Time `gorm:"not null;index" json:"logged_at"`
}

// TableName keeps the singular table name used by the reporting queries.
func (LoginHistory) TableName() string {
	return "login_history"
}
