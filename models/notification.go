package models

import (
	"time"
)

// Notification is one delivered lifecycle event for one recipient. EventID
// groups the fan-out of a single event across recipients.
type Notification struct {
	ID      uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID string `gorm:"size:36;index" json:"event_id"`
	UserID  uint   `gorm:"not null;index" json:"user_id"`
	User    User   `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`

	Type      string `gorm:"size:40;not null" json:"type"`
	CommentID *uint  `gorm:"index" json:"comment_id,omitempty"`
	Message   string `gorm:"type:text" json:"message"`

	IsRead    bool      `gorm:"default:false;index" json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
