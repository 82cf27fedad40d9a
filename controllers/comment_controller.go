package controllers

import (
	"fmt"
	"net/http"

	"github.com/anvilworks/cms-api/models"
	"github.com/anvilworks/cms-api/services"
	"github.com/anvilworks/cms-api/utils"
	"github.com/gin-gonic/gin"
)

type CommentController struct {
	Comments *services.CommentService
	Votes    *services.VotingLedger
	Reports  *services.ReportRegistry
	Cache    *utils.Cache
}

func NewCommentController(comments *services.CommentService, votes *services.VotingLedger, reports *services.ReportRegistry, cache *utils.Cache) *CommentController {
	return &CommentController{Comments: comments, Votes: votes, Reports: reports, Cache: cache}
}

// ListComments returns the approved thread for a post, paginated over root
// comments. Pages are cached with a short TTL.
func (cc *CommentController) ListComments(c *gin.Context) {
	slug := c.Param("slug")

	var query ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondValidation(c, err)
		return
	}
	opts := query.Options()

	cacheKey := fmt.Sprintf("thread:%s:%d:%d:%s:%s", slug, opts.Page, opts.Limit, opts.SortBy, opts.SortOrder)
	if cc.Cache != nil {
		if cached := cc.Cache.Get(cacheKey); cached != nil {
			if resp, ok := cached.(StandardResponse); ok {
				c.JSON(http.StatusOK, resp)
				return
			}
		}
	}

	page, err := cc.Comments.GetThread(c.Request.Context(), slug, opts)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := StandardResponse{
		Success:    true,
		Data:       page.Comments,
		Pagination: newPagination(opts, page.TotalRoots),
	}
	if cc.Cache != nil {
		cc.Cache.Set(cacheKey, resp)
	}
	c.JSON(http.StatusOK, resp)
}

type createCommentRequest struct {
	ParentID      *uint  `json:"parent_id"`
	Content       string `json:"content" binding:"required"`
	AuthorName    string `json:"author_name"`
	AuthorEmail   string `json:"author_email" binding:"omitempty,email"`
	AuthorWebsite string `json:"author_website"`
}

func (cc *CommentController) CreateComment(c *gin.Context) {
	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	comment, err := cc.Comments.Create(c.Request.Context(), services.CreateCommentInput{
		PostSlug:     c.Param("slug"),
		ParentID:     req.ParentID,
		Content:      utils.SanitizeContent(req.Content),
		Actor:        utils.GetActor(c),
		GuestName:    req.AuthorName,
		GuestEmail:   req.AuthorEmail,
		GuestWebsite: req.AuthorWebsite,
		Metadata: services.RequestMetadata{
			IPAddress: c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			Referrer:  c.Request.Referer(),
		},
	})
	if err != nil {
		respondError(c, err)
		return
	}

	message := "Comment published"
	if comment.Status == models.CommentPending {
		message = "Comment submitted and awaiting review"
	}
	c.JSON(http.StatusCreated, StandardResponse{Success: true, Data: comment, Message: message})
}

func (cc *CommentController) GetComment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	node, err := cc.Comments.GetComment(c.Request.Context(), id, utils.GetActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: node})
}

type updateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

func (cc *CommentController) UpdateComment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req updateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	comment, err := cc.Comments.Edit(c.Request.Context(), id, utils.SanitizeContent(req.Content), utils.GetActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: comment, Message: "Comment updated"})
}

func (cc *CommentController) DeleteComment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := cc.Comments.Delete(c.Request.Context(), id, utils.GetActor(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Message: "Comment deleted"})
}

type voteRequest struct {
	Type models.VoteType `json:"type" binding:"required"`
}

func (cc *CommentController) Vote(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	comment, err := cc.Votes.Vote(c.Request.Context(), id, utils.VoterKey(c), req.Type)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: voteCounts(comment)})
}

func (cc *CommentController) Unvote(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	comment, err := cc.Votes.Unvote(c.Request.Context(), id, utils.VoterKey(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: voteCounts(comment)})
}

func voteCounts(c *models.Comment) gin.H {
	return gin.H{"likes": c.Likes, "dislikes": c.Dislikes, "score": c.Score}
}

type reportRequest struct {
	Reason      models.ReportReason `json:"reason" binding:"required"`
	Description string              `json:"description"`
	Email       string              `json:"email" binding:"omitempty,email"`
}

func (cc *CommentController) Report(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	report, err := cc.Reports.Report(c.Request.Context(), id, services.ReportInput{
		Actor:       utils.GetActor(c),
		Email:       req.Email,
		IPAddress:   c.ClientIP(),
		Reason:      req.Reason,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, StandardResponse{Success: true, Data: report, Message: "Report received"})
}

func (cc *CommentController) Pin(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	comment, err := cc.Comments.Pin(c.Request.Context(), id, utils.GetActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: comment, Message: "Comment pinned"})
}

func (cc *CommentController) Unpin(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	comment, err := cc.Comments.Unpin(c.Request.Context(), id, utils.GetActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: comment, Message: "Comment unpinned"})
}
