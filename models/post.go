package models

import (
	"time"
)

// Post carries only the fields the comment subsystem reads and the aggregate
// counters it maintains. Page content, SEO fields etc. live with the CMS
// collaborators.
type Post struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Slug     string `gorm:"size:200;uniqueIndex;not null" json:"slug"`
	Title    string `gorm:"size:300" json:"title"`
	AuthorID uint   `gorm:"not null;index" json:"author_id"`
	Author   User   `gorm:"foreignKey:AuthorID" json:"-"`

	AllowComments bool `gorm:"default:true" json:"allow_comments"`

	CommentCount         int `gorm:"default:0" json:"comment_count"`
	ApprovedCommentCount int `gorm:"default:0" json:"approved_comment_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
