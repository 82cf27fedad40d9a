package models

import (
	"time"
)

type ReportReason string

const (
	ReasonSpam           ReportReason = "spam"
	ReasonOffensive      ReportReason = "offensive"
	ReasonInappropriate  ReportReason = "inappropriate"
	ReasonHarassment     ReportReason = "harassment"
	ReasonMisinformation ReportReason = "misinformation"
	ReasonCopyright      ReportReason = "copyright"
	ReasonOther          ReportReason = "other"
)

func (r ReportReason) Valid() bool {
	switch r {
	case ReasonSpam, ReasonOffensive, ReasonInappropriate, ReasonHarassment,
		ReasonMisinformation, ReasonCopyright, ReasonOther:
		return true
	}
	return false
}

type ReportStatus string

const (
	ReportPending   ReportStatus = "pending"
	ReportResolved  ReportStatus = "resolved"
	ReportDismissed ReportStatus = "dismissed"
)

type ResolutionAction string

const (
	ActionCommentRemoved  ResolutionAction = "comment_removed"
	ActionCommentEdited   ResolutionAction = "comment_edited"
	ActionCommentApproved ResolutionAction = "comment_approved"
	ActionReportDismissed ResolutionAction = "report_dismissed"
	ActionUserWarned      ResolutionAction = "user_warned"
	ActionUserBanned      ResolutionAction = "user_banned"
)

func (a ResolutionAction) Valid() bool {
	switch a {
	case ActionCommentRemoved, ActionCommentEdited, ActionCommentApproved,
		ActionReportDismissed, ActionUserWarned, ActionUserBanned:
		return true
	}
	return false
}

// Report is an abuse report against a comment. The unique index on
// (comment_id, reporter_email) enforces one report per reporter per comment.
type Report struct {
	ID        uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	CommentID uint    `gorm:"not null;uniqueIndex:idx_report_dedup;index" json:"comment_id"`
	Comment   Comment `gorm:"foreignKey:CommentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`

	ReporterUserID *uint  `gorm:"index" json:"reporter_user_id,omitempty"`
	ReporterEmail  string `gorm:"size:254;not null;uniqueIndex:idx_report_dedup" json:"-"`
	ReporterIP     string `gorm:"size:45" json:"-"`

	Reason      ReportReason `gorm:"type:varchar(20);not null" json:"reason"`
	Description string       `gorm:"type:text" json:"description,omitempty"`

	Status           ReportStatus      `gorm:"type:varchar(10);default:'pending';index" json:"status"`
	ResolutionAction *ResolutionAction `gorm:"type:varchar(20)" json:"resolution_action,omitempty"`
	ResolutionNotes  string            `gorm:"type:text" json:"resolution_notes,omitempty"`
	ResolvedBy       *uint             `json:"resolved_by,omitempty"`
	ResolvedAt       *time.Time        `json:"resolved_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
