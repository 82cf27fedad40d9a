package models

import (
	"time"

	"github.com/lib/pq"
)

type CommentStatus string

const (
	CommentPending  CommentStatus = "pending"
	CommentApproved CommentStatus = "approved"
	CommentRejected CommentStatus = "rejected"
	CommentSpam     CommentStatus = "spam"
	CommentHidden   CommentStatus = "hidden"
)

// MaxCommentLevel is the deepest reply nesting allowed. A reply to a comment
// at this level is rejected.
const MaxCommentLevel = 5

// RedactedContent replaces the body of a soft-deleted comment so replies keep
// a valid parent.
const RedactedContent = "[comment removed]"

type VoteType string

const (
	VoteLike    VoteType = "like"
	VoteDislike VoteType = "dislike"
)

func (v VoteType) Valid() bool {
	return v == VoteLike || v == VoteDislike
}

type ModerationFlag struct {
	Type       string  `json:"type"`
	Severity   string  `json:"severity"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
}

// ModerationResult is the engine verdict stored on the comment. AutoAction is
// advisory; the comment service owns the actual status transition.
type ModerationResult struct {
	Score      int              `json:"score"`
	Flags      []ModerationFlag `json:"flags,omitempty"`
	AutoAction CommentStatus    `json:"auto_action,omitempty"`
	Notes      string           `json:"notes,omitempty"`
}

type Comment struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	PostID   uint   `gorm:"not null;index:idx_comment_post" json:"post_id"`
	Post     Post   `gorm:"foreignKey:PostID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	ParentID *uint  `gorm:"index:idx_comment_parent" json:"parent_id,omitempty"`
	Level    int    `gorm:"default:0" json:"level"`

	// Author variant: registered (UserID set) or guest (name/email captured here).
	UserID        *uint  `gorm:"index" json:"user_id,omitempty"`
	AuthorName    string `gorm:"size:120;not null" json:"author_name"`
	AuthorEmail   string `gorm:"size:254;not null" json:"-"`
	AuthorWebsite string `gorm:"size:254" json:"author_website,omitempty"`
	AuthorAvatar  string `json:"author_avatar,omitempty"`
	IsGuest       bool   `gorm:"default:false" json:"is_guest"`

	Content string        `gorm:"type:text;not null" json:"content"`
	Status  CommentStatus `gorm:"type:varchar(10);default:'pending';index" json:"status"`

	// Vote counters. Score is always likes - dislikes; VoterIDs mirrors the
	// keys of VoteSlots for queryability.
	Likes     int                 `gorm:"default:0" json:"likes"`
	Dislikes  int                 `gorm:"default:0" json:"dislikes"`
	Score     int                 `gorm:"default:0" json:"score"`
	VoterIDs  pq.StringArray      `gorm:"type:text[]" json:"-"`
	VoteSlots map[string]VoteType `gorm:"serializer:json" json:"-"`

	RepliesCount int `gorm:"default:0" json:"replies_count"`

	Moderation ModerationResult `gorm:"serializer:json" json:"moderation"`

	Pinned   bool       `gorm:"default:false;index" json:"pinned"`
	PinnedBy *uint      `json:"pinned_by,omitempty"`
	PinnedAt *time.Time `json:"pinned_at,omitempty"`

	// Request provenance, never rendered.
	IPAddress string `gorm:"size:45" json:"-"`
	UserAgent string `gorm:"size:512" json:"-"`
	Referrer  string `gorm:"size:512" json:"-"`

	CreatedAt time.Time  `json:"created_at"`
	EditedAt  *time.Time `json:"edited_at,omitempty"`
}
