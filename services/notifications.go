package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/anvilworks/cms-api/models"
	"github.com/anvilworks/cms-api/repository"
)

// DispatcherConfig is injected at construction. Enabled=false turns all
// dispatch off without touching call sites.
type DispatcherConfig struct {
	Enabled          bool
	RecipientTimeout time.Duration
}

func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		Enabled:          true,
		RecipientTimeout: 5 * time.Second,
	}
}

type recipient struct {
	userID  uint
	message string
}

type eventHandler func(ctx context.Context, e Event) ([]recipient, error)

// NotificationDispatcher fans lifecycle events out to interested parties.
// Delivery is best-effort: it runs after the primary mutation committed, each
// recipient is attempted independently, and no failure propagates back to
// the operation that emitted the event.
type NotificationDispatcher struct {
	cfg      DispatcherConfig
	users    repository.UserStore
	store    repository.NotificationStore
	handlers map[EventType]eventHandler
}

func NewNotificationDispatcher(cfg DispatcherConfig, users repository.UserStore, store repository.NotificationStore) *NotificationDispatcher {
	d := &NotificationDispatcher{cfg: cfg, users: users, store: store}
	d.handlers = map[EventType]eventHandler{
		EventCommentCreated:   d.resolveCreated,
		EventCommentApproved:  d.resolveApproved,
		EventCommentRejected:  d.resolveRejected,
		EventModerationNeeded: d.resolveModerationNeeded,
		EventCommentReported:  d.resolveReported,
	}
	return d
}

// Publish implements Publisher. The caller's request never waits on
// delivery.
func (d *NotificationDispatcher) Publish(e Event) {
	if !d.cfg.Enabled {
		return
	}
	go d.Deliver(context.Background(), e)
}

// Deliver resolves recipients and attempts delivery one by one. Exported so
// tests can run dispatch synchronously.
func (d *NotificationDispatcher) Deliver(ctx context.Context, e Event) {
	handler, ok := d.handlers[e.Type()]
	if !ok {
		log.Printf("notifications: no handler for event %s", e.Type())
		return
	}

	recipients, err := handler(ctx, e)
	if err != nil {
		log.Printf("notifications: resolving recipients for %s failed: %v", e.Type(), err)
		return
	}

	for _, rcpt := range recipients {
		n := &models.Notification{
			EventID: e.EventID(),
			UserID:  rcpt.userID,
			Type:    string(e.Type()),
			Message: rcpt.message,
		}
		if c := eventComment(e); c != nil {
			id := c.ID
			n.CommentID = &id
		}

		rctx, cancel := context.WithTimeout(ctx, d.cfg.RecipientTimeout)
		err := d.store.Create(rctx, n)
		cancel()
		if err != nil {
			// One bounced recipient must not starve the rest.
			log.Printf("notifications: delivery to user %d failed for %s: %v", rcpt.userID, e.Type(), err)
		}
	}
}

func eventComment(e Event) *models.Comment {
	switch ev := e.(type) {
	case CommentCreatedEvent:
		return ev.Comment
	case CommentApprovedEvent:
		return ev.Comment
	case CommentRejectedEvent:
		return ev.Comment
	case ModerationNeededEvent:
		return ev.Comment
	case CommentReportedEvent:
		return ev.Comment
	}
	return nil
}

// resolveCreated notifies the post author and, for replies, the parent
// comment's author. Nobody is notified about their own comment.
func (d *NotificationDispatcher) resolveCreated(ctx context.Context, e Event) ([]recipient, error) {
	ev, ok := e.(CommentCreatedEvent)
	if !ok {
		return nil, fmt.Errorf("unexpected payload %T", e)
	}

	c, post := ev.Comment, ev.Post
	seen := map[uint]bool{}
	var out []recipient

	if c.UserID == nil || *c.UserID != post.AuthorID {
		seen[post.AuthorID] = true
		out = append(out, recipient{
			userID:  post.AuthorID,
			message: fmt.Sprintf("%s commented on your post %q", c.AuthorName, post.Title),
		})
	}

	if ev.Parent != nil && ev.Parent.UserID != nil {
		parentAuthor := *ev.Parent.UserID
		sameAuthor := c.UserID != nil && *c.UserID == parentAuthor
		if !sameAuthor && !seen[parentAuthor] {
			out = append(out, recipient{
				userID:  parentAuthor,
				message: fmt.Sprintf("%s replied to your comment", c.AuthorName),
			})
		}
	}
	return out, nil
}

func (d *NotificationDispatcher) resolveApproved(ctx context.Context, e Event) ([]recipient, error) {
	ev, ok := e.(CommentApprovedEvent)
	if !ok {
		return nil, fmt.Errorf("unexpected payload %T", e)
	}
	return authorOnly(ev.Comment, "Your comment has been approved"), nil
}

func (d *NotificationDispatcher) resolveRejected(ctx context.Context, e Event) ([]recipient, error) {
	ev, ok := e.(CommentRejectedEvent)
	if !ok {
		return nil, fmt.Errorf("unexpected payload %T", e)
	}
	return authorOnly(ev.Comment, "Your comment was not approved"), nil
}

// authorOnly targets the comment's own author. Guest authors have no account
// to notify; their delivery belongs to the upstream email layer.
func authorOnly(c *models.Comment, message string) []recipient {
	if c.UserID == nil {
		return nil
	}
	return []recipient{{userID: *c.UserID, message: message}}
}

func (d *NotificationDispatcher) resolveModerationNeeded(ctx context.Context, e Event) ([]recipient, error) {
	ev, ok := e.(ModerationNeededEvent)
	if !ok {
		return nil, fmt.Errorf("unexpected payload %T", e)
	}
	return d.allModerators(ctx, fmt.Sprintf("A comment on %q is awaiting review", ev.Post.Title))
}

func (d *NotificationDispatcher) resolveReported(ctx context.Context, e Event) ([]recipient, error) {
	ev, ok := e.(CommentReportedEvent)
	if !ok {
		return nil, fmt.Errorf("unexpected payload %T", e)
	}
	return d.allModerators(ctx, fmt.Sprintf("A comment was reported for %s", ev.Report.Reason))
}

func (d *NotificationDispatcher) allModerators(ctx context.Context, message string) ([]recipient, error) {
	mods, err := d.users.ListModerators(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]recipient, 0, len(mods))
	for _, m := range mods {
		out = append(out, recipient{userID: m.ID, message: message})
	}
	return out, nil
}
