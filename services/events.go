package services

import (
	"github.com/anvilworks/cms-api/models"
	"github.com/google/uuid"
)

type EventType string

const (
	EventCommentCreated   EventType = "comment.created"
	EventCommentApproved  EventType = "comment.approved"
	EventCommentRejected  EventType = "comment.rejected"
	EventModerationNeeded EventType = "comment.moderation_needed"
	EventCommentReported  EventType = "comment.reported"
)

// Event is a comment lifecycle event. Concrete event types carry the data
// recipients need; the dispatcher switches on Type via its handler map.
type Event interface {
	Type() EventType
	EventID() string
}

type baseEvent struct {
	id string
}

func newBaseEvent() baseEvent {
	return baseEvent{id: uuid.New().String()}
}

func (b baseEvent) EventID() string { return b.id }

type CommentCreatedEvent struct {
	baseEvent
	Comment *models.Comment
	Post    *models.Post
	Parent  *models.Comment
}

func (CommentCreatedEvent) Type() EventType { return EventCommentCreated }

func NewCommentCreatedEvent(c *models.Comment, p *models.Post, parent *models.Comment) CommentCreatedEvent {
	return CommentCreatedEvent{baseEvent: newBaseEvent(), Comment: c, Post: p, Parent: parent}
}

type CommentApprovedEvent struct {
	baseEvent
	Comment *models.Comment
}

func (CommentApprovedEvent) Type() EventType { return EventCommentApproved }

func NewCommentApprovedEvent(c *models.Comment) CommentApprovedEvent {
	return CommentApprovedEvent{baseEvent: newBaseEvent(), Comment: c}
}

type CommentRejectedEvent struct {
	baseEvent
	Comment *models.Comment
}

func (CommentRejectedEvent) Type() EventType { return EventCommentRejected }

func NewCommentRejectedEvent(c *models.Comment) CommentRejectedEvent {
	return CommentRejectedEvent{baseEvent: newBaseEvent(), Comment: c}
}

type ModerationNeededEvent struct {
	baseEvent
	Comment *models.Comment
	Post    *models.Post
}

func (ModerationNeededEvent) Type() EventType { return EventModerationNeeded }

func NewModerationNeededEvent(c *models.Comment, p *models.Post) ModerationNeededEvent {
	return ModerationNeededEvent{baseEvent: newBaseEvent(), Comment: c, Post: p}
}

type CommentReportedEvent struct {
	baseEvent
	Comment *models.Comment
	Report  *models.Report
}

func (CommentReportedEvent) Type() EventType { return EventCommentReported }

func NewCommentReportedEvent(c *models.Comment, r *models.Report) CommentReportedEvent {
	return CommentReportedEvent{baseEvent: newBaseEvent(), Comment: c, Report: r}
}

// Publisher decouples the services from notification dispatch. Publishing is
// fire-and-forget: implementations must never fail the triggering operation.
type Publisher interface {
	Publish(e Event)
}

// NopPublisher drops all events. Used when dispatch is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(Event) {}
