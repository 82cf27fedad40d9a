package services_test

import (
	"context"
	"testing"

	"github.com/anvilworks/cms-api/models"
	"github.com/anvilworks/cms-api/repository"
	"github.com/anvilworks/cms-api/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDispatcher(t *testing.T) (*services.NotificationDispatcher, *repository.InMemStores) {
	t.Helper()
	stores := repository.NewInMemStores()
	stores.Users.Add(&models.User{ID: 1, Name: "Ada", Email: "ada@example.com", Role: models.RoleAdmin})
	stores.Users.Add(&models.User{ID: 2, Name: "Mira", Email: "mira@example.com", Role: models.RoleMember})
	stores.Users.Add(&models.User{ID: 5, Name: "Noor", Email: "noor@example.com", Role: models.RoleModerator})
	d := services.NewNotificationDispatcher(services.DefaultDispatcherConfig(), stores.Users, stores.Notifications)
	return d, stores
}

func uintPtr(v uint) *uint { return &v }

func TestDeliverCreatedNotifiesPostAndParentAuthors(t *testing.T) {
	d, stores := newDispatcher(t)

	post := &models.Post{ID: 10, Title: "Launch Notes", AuthorID: 1}
	parent := &models.Comment{ID: 20, PostID: 10, UserID: uintPtr(2)}
	reply := &models.Comment{ID: 21, PostID: 10, ParentID: uintPtr(20), UserID: uintPtr(5), AuthorName: "Noor"}

	d.Deliver(context.Background(), services.NewCommentCreatedEvent(reply, post, parent))

	got := stores.Notifications.All()
	require.Len(t, got, 2)
	assert.Equal(t, uint(1), got[0].UserID)
	assert.Equal(t, uint(2), got[1].UserID)
	for _, n := range got {
		assert.Equal(t, string(services.EventCommentCreated), n.Type)
		require.NotNil(t, n.CommentID)
		assert.Equal(t, uint(21), *n.CommentID)
		assert.NotEmpty(t, n.EventID)
	}
}

func TestDeliverCreatedSkipsSelfNotification(t *testing.T) {
	d, stores := newDispatcher(t)

	post := &models.Post{ID: 10, Title: "Launch Notes", AuthorID: 1}
	// The post author replies to their own commenter.
	parent := &models.Comment{ID: 20, PostID: 10, UserID: uintPtr(2)}
	reply := &models.Comment{ID: 21, PostID: 10, ParentID: uintPtr(20), UserID: uintPtr(1), AuthorName: "Ada"}

	d.Deliver(context.Background(), services.NewCommentCreatedEvent(reply, post, parent))

	got := stores.Notifications.All()
	require.Len(t, got, 1)
	assert.Equal(t, uint(2), got[0].UserID)
}

func TestDeliverCreatedDedupesPostAuthorAsParentAuthor(t *testing.T) {
	d, stores := newDispatcher(t)

	post := &models.Post{ID: 10, Title: "Launch Notes", AuthorID: 1}
	parent := &models.Comment{ID: 20, PostID: 10, UserID: uintPtr(1)}
	reply := &models.Comment{ID: 21, PostID: 10, ParentID: uintPtr(20), UserID: uintPtr(2), AuthorName: "Mira"}

	d.Deliver(context.Background(), services.NewCommentCreatedEvent(reply, post, parent))

	got := stores.Notifications.All()
	require.Len(t, got, 1, "one person, one notification")
	assert.Equal(t, uint(1), got[0].UserID)
}

func TestDeliverApprovedTargetsAuthorOnly(t *testing.T) {
	d, stores := newDispatcher(t)

	c := &models.Comment{ID: 21, PostID: 10, UserID: uintPtr(2)}
	d.Deliver(context.Background(), services.NewCommentApprovedEvent(c))

	got := stores.Notifications.All()
	require.Len(t, got, 1)
	assert.Equal(t, uint(2), got[0].UserID)
	assert.Equal(t, string(services.EventCommentApproved), got[0].Type)
}

func TestDeliverRejectedSkipsGuestAuthors(t *testing.T) {
	d, stores := newDispatcher(t)

	guest := &models.Comment{ID: 21, PostID: 10, IsGuest: true, AuthorName: "Visitor", AuthorEmail: "visitor@example.com"}
	d.Deliver(context.Background(), services.NewCommentRejectedEvent(guest))

	assert.Empty(t, stores.Notifications.All(), "guests have no account to notify")
}

func TestDeliverModerationNeededFansOutToModerators(t *testing.T) {
	d, stores := newDispatcher(t)

	post := &models.Post{ID: 10, Title: "Launch Notes", AuthorID: 1}
	c := &models.Comment{ID: 21, PostID: 10, UserID: uintPtr(2)}
	d.Deliver(context.Background(), services.NewModerationNeededEvent(c, post))

	got := stores.Notifications.All()
	require.Len(t, got, 2)
	assert.Equal(t, uint(1), got[0].UserID)
	assert.Equal(t, uint(5), got[1].UserID)
}

func TestDeliverReportedFansOutToModerators(t *testing.T) {
	d, stores := newDispatcher(t)

	c := &models.Comment{ID: 21, PostID: 10, UserID: uintPtr(2)}
	r := &models.Report{ID: 3, CommentID: 21, Reason: models.ReasonHarassment}
	d.Deliver(context.Background(), services.NewCommentReportedEvent(c, r))

	got := stores.Notifications.All()
	require.Len(t, got, 2)
	for _, n := range got {
		assert.Contains(t, n.Message, "harassment")
	}
}

type failingNotificationStore struct {
	inner    repository.NotificationStore
	failFor  uint
	attempts int
}

func (s *failingNotificationStore) Create(ctx context.Context, n *models.Notification) error {
	s.attempts++
	if n.UserID == s.failFor {
		return assert.AnError
	}
	return s.inner.Create(ctx, n)
}

func TestDeliverContinuesPastFailedRecipient(t *testing.T) {
	stores := repository.NewInMemStores()
	stores.Users.Add(&models.User{ID: 1, Name: "Ada", Email: "ada@example.com", Role: models.RoleModerator})
	stores.Users.Add(&models.User{ID: 5, Name: "Noor", Email: "noor@example.com", Role: models.RoleModerator})

	failing := &failingNotificationStore{inner: stores.Notifications, failFor: 1}
	d := services.NewNotificationDispatcher(services.DefaultDispatcherConfig(), stores.Users, failing)

	post := &models.Post{ID: 10, Title: "Launch Notes", AuthorID: 9}
	c := &models.Comment{ID: 21, PostID: 10}
	d.Deliver(context.Background(), services.NewModerationNeededEvent(c, post))

	assert.Equal(t, 2, failing.attempts, "both recipients must be attempted")
	got := stores.Notifications.All()
	require.Len(t, got, 1)
	assert.Equal(t, uint(5), got[0].UserID)
}

func TestPublishDisabledDropsEvents(t *testing.T) {
	stores := repository.NewInMemStores()
	stores.Users.Add(&models.User{ID: 1, Name: "Ada", Email: "ada@example.com", Role: models.RoleModerator})

	cfg := services.DefaultDispatcherConfig()
	cfg.Enabled = false
	d := services.NewNotificationDispatcher(cfg, stores.Users, stores.Notifications)

	post := &models.Post{ID: 10, Title: "Launch Notes", AuthorID: 9}
	d.Publish(services.NewModerationNeededEvent(&models.Comment{ID: 21, PostID: 10}, post))

	assert.Empty(t, stores.Notifications.All())
}
