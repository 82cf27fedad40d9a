package services

import (
	"context"
	"sort"
	"strings"

	"github.com/anvilworks/cms-api/models"
	"github.com/anvilworks/cms-api/repository"
)

// VotingLedger keeps per-comment, per-voter vote state. A voter key holds at
// most one slot per comment: repeating a vote is a no-op, the opposite vote
// switches buckets atomically. All mutation goes through the comment store's
// row-locked Mutate, so concurrent votes from the same key cannot
// double-count.
type VotingLedger struct {
	comments repository.CommentStore
}

func NewVotingLedger(comments repository.CommentStore) *VotingLedger {
	return &VotingLedger{comments: comments}
}

// Vote casts or switches a vote. voterKey is an opaque dedup key: an
// authenticated user id or a request-origin IP, the ledger cannot tell them
// apart.
func (l *VotingLedger) Vote(ctx context.Context, commentID uint, voterKey string, t models.VoteType) (*models.Comment, error) {
	if strings.TrimSpace(voterKey) == "" {
		return nil, Validationf("voter identity is required")
	}
	if !t.Valid() {
		return nil, Validationf("vote type must be %q or %q", models.VoteLike, models.VoteDislike)
	}

	updated, err := l.comments.Mutate(ctx, commentID, func(c *models.Comment) error {
		if c.Status != models.CommentApproved {
			return InvalidStatef("only approved comments can be voted on")
		}

		current, voted := c.VoteSlots[voterKey]
		if voted && current == t {
			return nil
		}
		if voted {
			decrement(c, current)
		}
		increment(c, t)
		if c.VoteSlots == nil {
			c.VoteSlots = map[string]models.VoteType{}
		}
		c.VoteSlots[voterKey] = t
		recompute(c)
		return nil
	})
	if err != nil {
		return nil, storeErr(err, "comment not found")
	}
	return updated, nil
}

// Unvote clears the voter's slot, decrementing whichever bucket it occupied.
// Unvoting without a prior vote is a no-op.
func (l *VotingLedger) Unvote(ctx context.Context, commentID uint, voterKey string) (*models.Comment, error) {
	if strings.TrimSpace(voterKey) == "" {
		return nil, Validationf("voter identity is required")
	}

	updated, err := l.comments.Mutate(ctx, commentID, func(c *models.Comment) error {
		if c.Status != models.CommentApproved {
			return InvalidStatef("only approved comments can be voted on")
		}
		current, voted := c.VoteSlots[voterKey]
		if !voted {
			return nil
		}
		decrement(c, current)
		delete(c.VoteSlots, voterKey)
		recompute(c)
		return nil
	})
	if err != nil {
		return nil, storeErr(err, "comment not found")
	}
	return updated, nil
}

func increment(c *models.Comment, t models.VoteType) {
	if t == models.VoteLike {
		c.Likes++
	} else {
		c.Dislikes++
	}
}

func decrement(c *models.Comment, t models.VoteType) {
	if t == models.VoteLike && c.Likes > 0 {
		c.Likes--
	} else if t == models.VoteDislike && c.Dislikes > 0 {
		c.Dislikes--
	}
}

// recompute re-derives score from the counters and rebuilds the voter-id
// mirror. Score is never stored independently of likes/dislikes.
func recompute(c *models.Comment) {
	c.Score = c.Likes - c.Dislikes
	ids := make([]string, 0, len(c.VoteSlots))
	for k := range c.VoteSlots {
		ids = append(ids, k)
	}
	sort.Strings(ids)
	c.VoterIDs = ids
}
