package controllers

import (
	"net/http"

	"github.com/anvilworks/cms-api/models"
	"github.com/anvilworks/cms-api/services"
	"github.com/anvilworks/cms-api/utils"
	"github.com/gin-gonic/gin"
)

// AdminController is the moderator surface: the moderation queue, single and
// bulk transitions, the report queue and administrative re-triage.
type AdminController struct {
	Comments *services.CommentService
	Reports  *services.ReportRegistry
}

func NewAdminController(comments *services.CommentService, reports *services.ReportRegistry) *AdminController {
	return &AdminController{Comments: comments, Reports: reports}
}

type queueItem struct {
	models.Comment
	ReportCount int64 `json:"report_count"`
}

func (ac *AdminController) ModerationQueue(c *gin.Context) {
	var query ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondValidation(c, err)
		return
	}
	opts := query.Options()

	comments, total, err := ac.Comments.PendingQueue(c.Request.Context(), opts, utils.GetActor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	ids := make([]uint, len(comments))
	for i, cm := range comments {
		ids[i] = cm.ID
	}
	counts, err := ac.Reports.ReportCounts(c.Request.Context(), ids)
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]queueItem, len(comments))
	for i, cm := range comments {
		items[i] = queueItem{Comment: cm, ReportCount: counts[cm.ID]}
	}
	c.JSON(http.StatusOK, StandardResponse{
		Success:    true,
		Data:       items,
		Pagination: newPagination(opts, total),
	})
}

type moderateRequest struct {
	Notes string `json:"notes"`
}

func (ac *AdminController) moderate(c *gin.Context, action services.ModerationAction) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req moderateRequest
	// Notes are optional; an empty body is fine.
	_ = c.ShouldBindJSON(&req)

	comment, err := ac.Comments.Moderate(c.Request.Context(), id, action, utils.GetActor(c), req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: comment})
}

func (ac *AdminController) Approve(c *gin.Context) { ac.moderate(c, services.ModerationApprove) }
func (ac *AdminController) Reject(c *gin.Context)  { ac.moderate(c, services.ModerationReject) }
func (ac *AdminController) Spam(c *gin.Context)    { ac.moderate(c, services.ModerationSpam) }

type bulkModerateRequest struct {
	CommentIDs []uint `json:"commentIds" binding:"required,min=1"`
	Notes      string `json:"notes"`
}

func (ac *AdminController) bulkModerate(c *gin.Context, action services.ModerationAction) {
	var req bulkModerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	result, err := ac.Comments.BulkModerate(c.Request.Context(), req.CommentIDs, action, utils.GetActor(c), req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: result})
}

func (ac *AdminController) BulkApprove(c *gin.Context) { ac.bulkModerate(c, services.ModerationApprove) }
func (ac *AdminController) BulkReject(c *gin.Context)  { ac.bulkModerate(c, services.ModerationReject) }
func (ac *AdminController) BulkSpam(c *gin.Context)    { ac.bulkModerate(c, services.ModerationSpam) }

func (ac *AdminController) ListReports(c *gin.Context) {
	var query ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondValidation(c, err)
		return
	}
	opts := query.Options()

	status := models.ReportStatus(c.DefaultQuery("status", string(models.ReportPending)))
	reports, total, err := ac.Reports.Queue(c.Request.Context(), status, opts, utils.GetActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{
		Success:    true,
		Data:       reports,
		Pagination: newPagination(opts, total),
	})
}

type resolveReportRequest struct {
	Action models.ResolutionAction `json:"action" binding:"required"`
	Notes  string                  `json:"notes"`
}

func (ac *AdminController) ResolveReport(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req resolveReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	report, err := ac.Reports.Resolve(c.Request.Context(), id, req.Action, req.Notes, utils.GetActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: report, Message: "Report resolved"})
}

func (ac *AdminController) DismissReport(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req moderateRequest
	_ = c.ShouldBindJSON(&req)

	report, err := ac.Reports.Dismiss(c.Request.Context(), id, req.Notes, utils.GetActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: report, Message: "Report dismissed"})
}

type reanalyzeRequest struct {
	Limit int `json:"limit"`
}

func (ac *AdminController) Reanalyze(c *gin.Context) {
	var req reanalyzeRequest
	_ = c.ShouldBindJSON(&req)

	result, err := ac.Comments.ReanalyzePending(c.Request.Context(), req.Limit, utils.GetActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: result})
}
