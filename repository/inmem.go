package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/anvilworks/cms-api/models"
)

// In-memory implementations of the store interfaces. They back the service
// test suites and local development without a database; mutation goes through
// the same Mutate contract as the gorm repositories, with a store-wide lock
// standing in for the row lock.

type InMemStores struct {
	Comments      *InMemCommentStore
	Posts         *InMemPostStore
	Reports       *InMemReportStore
	Users         *InMemUserStore
	Notifications *InMemNotificationStore
}

func NewInMemStores() *InMemStores {
	posts := &InMemPostStore{items: map[uint]*models.Post{}}
	return &InMemStores{
		Comments:      &InMemCommentStore{items: map[uint]*models.Comment{}, posts: posts},
		Posts:         posts,
		Reports:       &InMemReportStore{items: map[uint]*models.Report{}},
		Users:         &InMemUserStore{items: map[uint]*models.User{}},
		Notifications: &InMemNotificationStore{},
	}
}

type InMemCommentStore struct {
	mu    sync.Mutex
	seq   uint
	items map[uint]*models.Comment
	posts *InMemPostStore
}

func copyComment(c *models.Comment) *models.Comment {
	cp := *c
	if c.VoteSlots != nil {
		cp.VoteSlots = make(map[string]models.VoteType, len(c.VoteSlots))
		for k, v := range c.VoteSlots {
			cp.VoteSlots[k] = v
		}
	}
	cp.VoterIDs = append([]string(nil), c.VoterIDs...)
	cp.Moderation.Flags = append([]models.ModerationFlag(nil), c.Moderation.Flags...)
	return &cp
}

func (s *InMemCommentStore) Create(ctx context.Context, c *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	c.ID = s.seq
	s.items[c.ID] = copyComment(c)

	if c.ParentID != nil {
		if parent, ok := s.items[*c.ParentID]; ok {
			parent.RepliesCount++
		}
	}

	approved := 0
	if c.Status == models.CommentApproved {
		approved = 1
	}
	s.posts.bump(c.PostID, 1, approved)
	return nil
}

func (s *InMemCommentStore) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyComment(c), nil
}

func (s *InMemCommentStore) Mutate(ctx context.Context, id uint, fn func(*models.Comment) error) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	work := copyComment(c)
	if err := fn(work); err != nil {
		return nil, err
	}
	s.items[id] = work
	return copyComment(work), nil
}

func (s *InMemCommentStore) Delete(ctx context.Context, c *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.items[c.ID]
	if !ok {
		return ErrNotFound
	}
	delete(s.items, c.ID)

	if stored.ParentID != nil {
		if parent, ok := s.items[*stored.ParentID]; ok && parent.RepliesCount > 0 {
			parent.RepliesCount--
		}
	}

	approved := 0
	if stored.Status == models.CommentApproved {
		approved = -1
	}
	s.posts.bump(stored.PostID, -1, approved)
	return nil
}

func (s *InMemCommentStore) ListByPost(ctx context.Context, postID uint, statuses []models.CommentStatus) ([]models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	allowed := map[models.CommentStatus]bool{}
	for _, st := range statuses {
		allowed[st] = true
	}

	var out []models.Comment
	for _, c := range s.items {
		if c.PostID != postID {
			continue
		}
		if len(statuses) > 0 && !allowed[c.Status] {
			continue
		}
		out = append(out, *copyComment(c))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemCommentStore) ListPending(ctx context.Context, limit int, opts ListOptions) ([]models.Comment, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	opts = opts.Normalize()
	if limit > 0 && limit < opts.Limit {
		opts.Limit = limit
	}

	var pending []models.Comment
	for _, c := range s.items {
		if c.Status == models.CommentPending {
			pending = append(pending, *copyComment(c))
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		if opts.SortOrder == "asc" {
			return pending[i].ID < pending[j].ID
		}
		return pending[i].ID > pending[j].ID
	})

	total := int64(len(pending))
	start := opts.Offset()
	if start >= len(pending) {
		return nil, total, nil
	}
	end := start + opts.Limit
	if end > len(pending) {
		end = len(pending)
	}
	return pending[start:end], total, nil
}

type InMemPostStore struct {
	mu    sync.Mutex
	seq   uint
	items map[uint]*models.Post
}

func (s *InMemPostStore) Add(p *models.Post) *models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		s.seq++
		p.ID = s.seq
	} else if p.ID > s.seq {
		s.seq = p.ID
	}
	cp := *p
	s.items[p.ID] = &cp
	return p
}

func (s *InMemPostStore) bump(postID uint, total, approved int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.items[postID]; ok {
		p.CommentCount += total
		p.ApprovedCommentCount += approved
	}
}

func (s *InMemPostStore) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *InMemPostStore) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.items {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *InMemPostStore) IncrementCounters(ctx context.Context, postID uint, totalDelta, approvedDelta int) error {
	s.bump(postID, totalDelta, approvedDelta)
	return nil
}

type InMemReportStore struct {
	mu    sync.Mutex
	seq   uint
	items map[uint]*models.Report
}

func (s *InMemReportStore) Create(ctx context.Context, r *models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.items {
		if existing.CommentID == r.CommentID && existing.ReporterEmail == r.ReporterEmail {
			return ErrDuplicate
		}
	}
	s.seq++
	r.ID = s.seq
	cp := *r
	s.items[r.ID] = &cp
	return nil
}

func (s *InMemReportStore) GetByID(ctx context.Context, id uint) (*models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *InMemReportStore) Save(ctx context.Context, r *models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[r.ID]; !ok {
		return ErrNotFound
	}
	cp := *r
	s.items[r.ID] = &cp
	return nil
}

func (s *InMemReportStore) ExistsFor(ctx context.Context, commentID uint, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.items {
		if r.CommentID == commentID && r.ReporterEmail == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemReportStore) ListByStatus(ctx context.Context, status models.ReportStatus, opts ListOptions) ([]models.Report, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	opts = opts.Normalize()

	var matched []models.Report
	for _, r := range s.items {
		if status == "" || r.Status == status {
			matched = append(matched, *r)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if opts.SortOrder == "asc" {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].ID > matched[j].ID
	})

	total := int64(len(matched))
	start := opts.Offset()
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + opts.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (s *InMemReportStore) CountForComments(ctx context.Context, commentIDs []uint) (map[uint]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wanted := map[uint]bool{}
	for _, id := range commentIDs {
		wanted[id] = true
	}
	counts := map[uint]int64{}
	for _, r := range s.items {
		if wanted[r.CommentID] {
			counts[r.CommentID]++
		}
	}
	return counts, nil
}

type InMemUserStore struct {
	mu    sync.Mutex
	seq   uint
	items map[uint]*models.User
}

func (s *InMemUserStore) Add(u *models.User) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == 0 {
		s.seq++
		u.ID = s.seq
	} else if u.ID > s.seq {
		s.seq = u.ID
	}
	cp := *u
	s.items[u.ID] = &cp
	return u
}

func (s *InMemUserStore) GetByID(ctx context.Context, id uint) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *InMemUserStore) ListModerators(ctx context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var mods []models.User
	for _, u := range s.items {
		if u.Role == models.RoleModerator || u.Role == models.RoleAdmin {
			mods = append(mods, *u)
		}
	}
	sort.Slice(mods, func(i, j int) bool { return mods[i].ID < mods[j].ID })
	return mods, nil
}

type InMemNotificationStore struct {
	mu    sync.Mutex
	seq   uint
	Items []models.Notification
}

func (s *InMemNotificationStore) Create(ctx context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	n.ID = s.seq
	s.Items = append(s.Items, *n)
	return nil
}

func (s *InMemNotificationStore) All() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Notification(nil), s.Items...)
}
