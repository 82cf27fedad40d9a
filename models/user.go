package models

import (
	"time"
)

const (
	RoleMember    = "member"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// User is the identity collaborator's view of an account. Credentials and
// login flows are handled upstream; the comment subsystem only reads these
// fields.
type User struct {
	ID     uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name   string `gorm:"size:120;not null" json:"name"`
	Email  string `gorm:"size:254;uniqueIndex;not null" json:"email"`
	Avatar string `json:"avatar,omitempty"`
	Role   string `gorm:"size:20;default:'member';index" json:"role"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
