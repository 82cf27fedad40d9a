package services

import (
	"context"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/anvilworks/cms-api/models"
	"github.com/anvilworks/cms-api/repository"
)

// CommentService owns the comment lifecycle state machine: status
// transitions, reply bookkeeping and event emission all go through here.
type CommentService struct {
	comments repository.CommentStore
	posts    repository.PostStore
	engine   Analyzer
	events   Publisher
	cfg      ModerationConfig
}

func NewCommentService(comments repository.CommentStore, posts repository.PostStore, engine Analyzer, events Publisher, cfg ModerationConfig) *CommentService {
	return &CommentService{
		comments: comments,
		posts:    posts,
		engine:   engine,
		events:   events,
		cfg:      cfg,
	}
}

type RequestMetadata struct {
	IPAddress string
	UserAgent string
	Referrer  string
}

type CreateCommentInput struct {
	PostSlug string
	ParentID *uint
	Content  string

	// Actor is nil for guest submissions; guests must supply name and email.
	Actor        *Actor
	GuestName    string
	GuestEmail   string
	GuestWebsite string

	Metadata RequestMetadata
}

func (s *CommentService) Create(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, Validationf("comment content is required")
	}

	post, err := s.posts.GetBySlug(ctx, in.PostSlug)
	if err != nil {
		return nil, storeErr(err, "post not found")
	}
	if !post.AllowComments {
		return nil, Forbiddenf("comments are disabled for this post")
	}

	var parent *models.Comment
	level := 0
	if in.ParentID != nil {
		parent, err = s.comments.GetByID(ctx, *in.ParentID)
		if err != nil {
			return nil, storeErr(err, "parent comment not found")
		}
		if parent.PostID != post.ID {
			return nil, Validationf("parent comment belongs to a different post")
		}
		if parent.Level >= models.MaxCommentLevel {
			return nil, InvalidStatef("maximum reply depth of %d reached", models.MaxCommentLevel)
		}
		level = parent.Level + 1
	}

	c := &models.Comment{
		PostID:    post.ID,
		ParentID:  in.ParentID,
		Level:     level,
		Content:   in.Content,
		IPAddress: in.Metadata.IPAddress,
		UserAgent: in.Metadata.UserAgent,
		Referrer:  in.Metadata.Referrer,
	}

	if in.Actor != nil {
		uid := in.Actor.ID
		c.UserID = &uid
		c.AuthorName = in.Actor.Name
		c.AuthorEmail = in.Actor.Email
		c.AuthorAvatar = in.Actor.Avatar
	} else {
		if strings.TrimSpace(in.GuestName) == "" || strings.TrimSpace(in.GuestEmail) == "" {
			return nil, Validationf("name and email are required for guest comments")
		}
		if !strings.Contains(in.GuestEmail, "@") {
			return nil, Validationf("a valid email address is required")
		}
		c.IsGuest = true
		c.AuthorName = in.GuestName
		c.AuthorEmail = in.GuestEmail
		c.AuthorWebsite = in.GuestWebsite
	}

	c.Moderation, c.Status = s.analyze(ctx, c)

	if err := s.comments.Create(ctx, c); err != nil {
		return nil, Internal(err)
	}

	s.events.Publish(NewCommentCreatedEvent(c, post, parent))
	if c.Status == models.CommentPending {
		s.events.Publish(NewModerationNeededEvent(c, post))
	}
	return c, nil
}

// analyze runs the moderation engine and derives the initial status. Engine
// failure must not block submission: the comment falls back to the manual
// queue.
func (s *CommentService) analyze(ctx context.Context, c *models.Comment) (models.ModerationResult, models.CommentStatus) {
	res, err := s.engine.Analyze(ctx, AnalysisInput{
		Content:     c.Content,
		AuthorName:  c.AuthorName,
		AuthorEmail: c.AuthorEmail,
		IsGuest:     c.IsGuest,
		IPAddress:   c.IPAddress,
	})
	if err != nil {
		log.Printf("moderation engine failed for post %d, queueing comment: %v", c.PostID, err)
		return models.ModerationResult{AutoAction: models.CommentPending}, models.CommentPending
	}
	status := res.AutoAction
	if status == "" {
		status = models.CommentPending
	}
	return res, status
}

func (s *CommentService) Edit(ctx context.Context, id uint, newContent string, actor *Actor) (*models.Comment, error) {
	if strings.TrimSpace(newContent) == "" {
		return nil, Validationf("comment content is required")
	}
	if actor == nil {
		return nil, Forbiddenf("authentication required")
	}

	var prevStatus models.CommentStatus
	updated, err := s.comments.Mutate(ctx, id, func(c *models.Comment) error {
		isAuthor := actor.IsAuthor(c)
		isMod := actor.IsModerator()
		if !isAuthor && !isMod {
			return Forbiddenf("only the author or a moderator can edit this comment")
		}
		// Deletion is final: a hidden comment keeps its redaction marker.
		if c.Status == models.CommentHidden {
			return InvalidStatef("a deleted comment cannot be edited")
		}
		if (c.Status == models.CommentRejected || c.Status == models.CommentSpam) && !isMod {
			return InvalidStatef("a %s comment can only be edited by a moderator", c.Status)
		}

		prevStatus = c.Status
		c.Content = newContent
		now := time.Now()
		c.EditedAt = &now

		// Author edits on an approved comment are re-scored; moderator edits
		// keep the current status.
		if isAuthor && !isMod && prevStatus == models.CommentApproved {
			c.Moderation, c.Status = s.analyze(ctx, c)
		}
		return nil
	})
	if err != nil {
		return nil, storeErr(err, "comment not found")
	}

	if prevStatus == models.CommentApproved && updated.Status != models.CommentApproved {
		s.adjustApprovedCounter(ctx, updated.PostID, -1)
		if updated.Status == models.CommentPending {
			if post, perr := s.posts.GetByID(ctx, updated.PostID); perr == nil {
				s.events.Publish(NewModerationNeededEvent(updated, post))
			}
		}
	}
	return updated, nil
}

// Delete hides the comment when replies depend on it and removes it
// permanently otherwise.
func (s *CommentService) Delete(ctx context.Context, id uint, actor *Actor) error {
	if actor == nil {
		return Forbiddenf("authentication required")
	}

	c, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return storeErr(err, "comment not found")
	}
	if !actor.IsAuthor(c) && !actor.IsModerator() {
		return Forbiddenf("only the author or a moderator can delete this comment")
	}

	if c.RepliesCount > 0 {
		wasApproved := false
		_, err = s.comments.Mutate(ctx, id, func(c *models.Comment) error {
			wasApproved = c.Status == models.CommentApproved
			c.Content = models.RedactedContent
			c.Status = models.CommentHidden
			return nil
		})
		if err != nil {
			return storeErr(err, "comment not found")
		}
		if wasApproved {
			s.adjustApprovedCounter(ctx, c.PostID, -1)
		}
		return nil
	}

	if err := s.comments.Delete(ctx, c); err != nil {
		return storeErr(err, "comment not found")
	}
	return nil
}

type ModerationAction string

const (
	ModerationApprove ModerationAction = "approve"
	ModerationReject  ModerationAction = "reject"
	ModerationSpam    ModerationAction = "spam"
)

func (a ModerationAction) target() (models.CommentStatus, bool) {
	switch a {
	case ModerationApprove:
		return models.CommentApproved, true
	case ModerationReject:
		return models.CommentRejected, true
	case ModerationSpam:
		return models.CommentSpam, true
	}
	return "", false
}

// canTransition encodes the manual moderation state machine: pending fans out
// to any verdict, rejected and spam can be overridden back to approved.
// Approved comments leave the machine through delete/hide only.
func canTransition(from, to models.CommentStatus) bool {
	switch from {
	case models.CommentPending:
		return to == models.CommentApproved || to == models.CommentRejected || to == models.CommentSpam
	case models.CommentRejected, models.CommentSpam:
		return to == models.CommentApproved
	}
	return false
}

func (s *CommentService) Moderate(ctx context.Context, id uint, action ModerationAction, actor *Actor, notes string) (*models.Comment, error) {
	if !actor.IsModerator() {
		return nil, Forbiddenf("moderator permission required")
	}
	target, ok := action.target()
	if !ok {
		return nil, Validationf("unknown moderation action %q", action)
	}

	var prev models.CommentStatus
	noop := false
	updated, err := s.comments.Mutate(ctx, id, func(c *models.Comment) error {
		prev = c.Status
		if c.Status == target {
			noop = true
			return nil
		}
		if !canTransition(c.Status, target) {
			return InvalidStatef("cannot %s a comment in status %q", action, c.Status)
		}
		c.Status = target
		if notes != "" {
			c.Moderation.Notes = notes
		}
		return nil
	})
	if err != nil {
		return nil, storeErr(err, "comment not found")
	}
	if noop {
		return updated, nil
	}

	if target == models.CommentApproved {
		s.adjustApprovedCounter(ctx, updated.PostID, 1)
		s.events.Publish(NewCommentApprovedEvent(updated))
	} else {
		if prev == models.CommentApproved {
			s.adjustApprovedCounter(ctx, updated.PostID, -1)
		}
		s.events.Publish(NewCommentRejectedEvent(updated))
	}
	return updated, nil
}

type BulkOutcome struct {
	ID    uint   `json:"id"`
	Error string `json:"error"`
}

type BulkResult struct {
	Succeeded []uint        `json:"succeeded"`
	Failed    []BulkOutcome `json:"failed"`
}

// BulkModerate processes each id independently; one failure never aborts the
// batch and partial completion is reported, not raised.
func (s *CommentService) BulkModerate(ctx context.Context, ids []uint, action ModerationAction, actor *Actor, notes string) (*BulkResult, error) {
	if !actor.IsModerator() {
		return nil, Forbiddenf("moderator permission required")
	}
	if len(ids) == 0 {
		return nil, Validationf("comment_ids must not be empty")
	}
	if _, ok := action.target(); !ok {
		return nil, Validationf("unknown moderation action %q", action)
	}

	res := &BulkResult{Succeeded: []uint{}, Failed: []BulkOutcome{}}
	for _, id := range ids {
		if _, err := s.Moderate(ctx, id, action, actor, notes); err != nil {
			res.Failed = append(res.Failed, BulkOutcome{ID: id, Error: err.Error()})
			continue
		}
		res.Succeeded = append(res.Succeeded, id)
	}
	return res, nil
}

func (s *CommentService) Pin(ctx context.Context, id uint, actor *Actor) (*models.Comment, error) {
	if !actor.Can(PermPinComments) {
		return nil, Forbiddenf("moderator permission required")
	}
	updated, err := s.comments.Mutate(ctx, id, func(c *models.Comment) error {
		now := time.Now()
		uid := actor.ID
		c.Pinned = true
		c.PinnedBy = &uid
		c.PinnedAt = &now
		return nil
	})
	if err != nil {
		return nil, storeErr(err, "comment not found")
	}
	return updated, nil
}

func (s *CommentService) Unpin(ctx context.Context, id uint, actor *Actor) (*models.Comment, error) {
	if !actor.Can(PermPinComments) {
		return nil, Forbiddenf("moderator permission required")
	}
	updated, err := s.comments.Mutate(ctx, id, func(c *models.Comment) error {
		c.Pinned = false
		c.PinnedBy = nil
		c.PinnedAt = nil
		return nil
	})
	if err != nil {
		return nil, storeErr(err, "comment not found")
	}
	return updated, nil
}

// ThreadNode is one comment with its nested replies.
type ThreadNode struct {
	models.Comment
	Replies []*ThreadNode `json:"replies"`
}

type ThreadPage struct {
	Comments   []*ThreadNode `json:"comments"`
	TotalRoots int64         `json:"total_roots"`
}

// GetThread returns the public thread for a post: approved comments plus
// hidden placeholders that keep reply chains attached. Pagination applies to
// root comments; each root carries its full subtree.
func (s *CommentService) GetThread(ctx context.Context, slug string, opts repository.ListOptions) (*ThreadPage, error) {
	post, err := s.posts.GetBySlug(ctx, slug)
	if err != nil {
		return nil, storeErr(err, "post not found")
	}

	all, err := s.comments.ListByPost(ctx, post.ID, []models.CommentStatus{models.CommentApproved, models.CommentHidden})
	if err != nil {
		return nil, Internal(err)
	}
	return assembleThread(all, opts.Normalize()), nil
}

// GetComment returns a single comment with its visible reply subtree.
// Non-approved comments are only visible to their author or a moderator;
// everyone else gets a not-found, never a hint that the comment exists.
func (s *CommentService) GetComment(ctx context.Context, id uint, actor *Actor) (*ThreadNode, error) {
	c, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "comment not found")
	}
	if c.Status != models.CommentApproved && c.Status != models.CommentHidden {
		if !actor.IsAuthor(c) && !actor.IsModerator() {
			return nil, NotFoundf("comment not found")
		}
	}

	all, err := s.comments.ListByPost(ctx, c.PostID, []models.CommentStatus{models.CommentApproved, models.CommentHidden})
	if err != nil {
		return nil, Internal(err)
	}

	node := &ThreadNode{Comment: *c}
	attachReplies(node, buildChildIndex(all))
	return node, nil
}

// PendingQueue lists comments awaiting manual review.
func (s *CommentService) PendingQueue(ctx context.Context, opts repository.ListOptions, actor *Actor) ([]models.Comment, int64, error) {
	if !actor.IsModerator() {
		return nil, 0, Forbiddenf("moderator permission required")
	}
	comments, total, err := s.comments.ListPending(ctx, 0, opts)
	if err != nil {
		return nil, 0, Internal(err)
	}
	return comments, total, nil
}

type ReanalyzeResult struct {
	Processed    int `json:"processed"`
	Approved     int `json:"approved"`
	StillPending int `json:"still_pending"`
	Spam         int `json:"spam"`
}

// ReanalyzePending reruns the engine over a bounded batch of queued comments.
// It never re-emits comment.created; transitions to approved notify the
// author exactly like a manual approval.
func (s *CommentService) ReanalyzePending(ctx context.Context, limit int, actor *Actor) (*ReanalyzeResult, error) {
	if !actor.IsModerator() {
		return nil, Forbiddenf("moderator permission required")
	}
	if limit <= 0 || limit > s.cfg.ReanalyzeLimit {
		limit = s.cfg.ReanalyzeLimit
	}

	pending, _, err := s.comments.ListPending(ctx, limit, repository.ListOptions{Page: 1, Limit: limit, SortOrder: "asc"})
	if err != nil {
		return nil, Internal(err)
	}

	res := &ReanalyzeResult{}
	for i := range pending {
		id := pending[i].ID
		var newStatus models.CommentStatus
		updated, err := s.comments.Mutate(ctx, id, func(c *models.Comment) error {
			if c.Status != models.CommentPending {
				newStatus = c.Status
				return nil
			}
			c.Moderation, newStatus = s.analyze(ctx, c)
			c.Status = newStatus
			return nil
		})
		if err != nil {
			log.Printf("reanalyze: comment %d skipped: %v", id, err)
			continue
		}
		res.Processed++
		switch newStatus {
		case models.CommentApproved:
			res.Approved++
			s.adjustApprovedCounter(ctx, updated.PostID, 1)
			s.events.Publish(NewCommentApprovedEvent(updated))
		case models.CommentSpam:
			res.Spam++
		default:
			res.StillPending++
		}
	}
	return res, nil
}

// adjustApprovedCounter is a best-effort secondary effect; a stale counter is
// tolerated, a failed primary write is not.
func (s *CommentService) adjustApprovedCounter(ctx context.Context, postID uint, delta int) {
	if err := s.posts.IncrementCounters(ctx, postID, 0, delta); err != nil {
		log.Printf("failed to adjust approved counter for post %d: %v", postID, err)
	}
}

func buildChildIndex(comments []models.Comment) map[uint][]*ThreadNode {
	children := make(map[uint][]*ThreadNode)
	for i := range comments {
		c := comments[i]
		if c.ParentID == nil {
			continue
		}
		children[*c.ParentID] = append(children[*c.ParentID], &ThreadNode{Comment: c})
	}
	return children
}

func attachReplies(node *ThreadNode, children map[uint][]*ThreadNode) {
	node.Replies = children[node.ID]
	if node.Replies == nil {
		node.Replies = []*ThreadNode{}
	}
	for _, child := range node.Replies {
		attachReplies(child, children)
	}
}

// assembleThread nests comments under their parents and orders roots with
// pinned comments first. Replies stay chronological. Subtrees whose parent is
// not visible are dropped with it.
func assembleThread(comments []models.Comment, opts repository.ListOptions) *ThreadPage {
	children := buildChildIndex(comments)

	var roots []*ThreadNode
	for i := range comments {
		if comments[i].ParentID == nil {
			roots = append(roots, &ThreadNode{Comment: comments[i]})
		}
	}
	for _, root := range roots {
		attachReplies(root, children)
	}

	sort.SliceStable(roots, func(i, j int) bool {
		if roots[i].Pinned != roots[j].Pinned {
			return roots[i].Pinned
		}
		var less bool
		switch opts.SortBy {
		case "score":
			less = roots[i].Score < roots[j].Score
		default:
			less = roots[i].CreatedAt.Before(roots[j].CreatedAt)
		}
		if opts.SortOrder == "desc" {
			return !less && !nodeEqual(roots[i], roots[j], opts.SortBy)
		}
		return less
	})

	page := &ThreadPage{TotalRoots: int64(len(roots)), Comments: []*ThreadNode{}}
	start := opts.Offset()
	if start >= len(roots) {
		return page
	}
	end := start + opts.Limit
	if end > len(roots) {
		end = len(roots)
	}
	page.Comments = roots[start:end]
	return page
}

func nodeEqual(a, b *ThreadNode, sortBy string) bool {
	switch sortBy {
	case "score":
		return a.Score == b.Score
	default:
		return a.CreatedAt.Equal(b.CreatedAt)
	}
}
