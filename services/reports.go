package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/anvilworks/cms-api/models"
	"github.com/anvilworks/cms-api/repository"
)

// ReportRegistry stores deduplicated abuse reports and runs their resolution
// workflow. It never mutates comment state directly: resolutions that affect
// the comment call back into the CommentService.
type ReportRegistry struct {
	reports  repository.ReportStore
	comments repository.CommentStore
	service  *CommentService
	events   Publisher
}

func NewReportRegistry(reports repository.ReportStore, comments repository.CommentStore, service *CommentService, events Publisher) *ReportRegistry {
	return &ReportRegistry{
		reports:  reports,
		comments: comments,
		service:  service,
		events:   events,
	}
}

type ReportInput struct {
	// Actor is nil for anonymous reporters, who must then supply Email.
	Actor       *Actor
	Email       string
	IPAddress   string
	Reason      models.ReportReason
	Description string
}

func (r *ReportRegistry) Report(ctx context.Context, commentID uint, in ReportInput) (*models.Report, error) {
	if !in.Reason.Valid() {
		return nil, Validationf("unknown report reason %q", in.Reason)
	}

	email := in.Email
	var reporterID *uint
	if in.Actor != nil {
		email = in.Actor.Email
		uid := in.Actor.ID
		reporterID = &uid
	}
	if strings.TrimSpace(email) == "" {
		return nil, Validationf("an email address is required to report a comment")
	}

	comment, err := r.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, storeErr(err, "comment not found")
	}

	// Dedup check before insert; the unique index catches the race.
	exists, err := r.reports.ExistsFor(ctx, commentID, email)
	if err != nil {
		return nil, Internal(err)
	}
	if exists {
		return nil, Conflictf("you have already reported this comment")
	}

	report := &models.Report{
		CommentID:      commentID,
		ReporterUserID: reporterID,
		ReporterEmail:  email,
		ReporterIP:     in.IPAddress,
		Reason:         in.Reason,
		Description:    in.Description,
		Status:         models.ReportPending,
	}
	if err := r.reports.Create(ctx, report); err != nil {
		// The unique index catches the race the ExistsFor pre-check missed.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, Conflictf("you have already reported this comment")
		}
		return nil, Internal(err)
	}

	r.events.Publish(NewCommentReportedEvent(comment, report))
	return report, nil
}

// Resolve closes a pending report with an action. Actions that change the
// comment go through the comment service first; if that fails, the report
// stays pending.
func (r *ReportRegistry) Resolve(ctx context.Context, reportID uint, action models.ResolutionAction, notes string, actor *Actor) (*models.Report, error) {
	if !actor.Can(PermResolveReports) {
		return nil, Forbiddenf("moderator permission required")
	}
	if !action.Valid() {
		return nil, Validationf("unknown resolution action %q", action)
	}

	report, err := r.reports.GetByID(ctx, reportID)
	if err != nil {
		return nil, storeErr(err, "report not found")
	}
	if report.Status != models.ReportPending {
		return nil, InvalidStatef("report is already %s", report.Status)
	}

	switch action {
	case models.ActionCommentRemoved:
		if err := r.service.Delete(ctx, report.CommentID, actor); err != nil {
			return nil, err
		}
	case models.ActionCommentApproved:
		if _, err := r.service.Moderate(ctx, report.CommentID, ModerationApprove, actor, notes); err != nil {
			return nil, err
		}
	}

	r.close(report, models.ReportResolved, action, notes, actor)
	if err := r.reports.Save(ctx, report); err != nil {
		return nil, Internal(err)
	}
	return report, nil
}

func (r *ReportRegistry) Dismiss(ctx context.Context, reportID uint, notes string, actor *Actor) (*models.Report, error) {
	if !actor.Can(PermResolveReports) {
		return nil, Forbiddenf("moderator permission required")
	}

	report, err := r.reports.GetByID(ctx, reportID)
	if err != nil {
		return nil, storeErr(err, "report not found")
	}
	if report.Status != models.ReportPending {
		return nil, InvalidStatef("report is already %s", report.Status)
	}

	r.close(report, models.ReportDismissed, models.ActionReportDismissed, notes, actor)
	if err := r.reports.Save(ctx, report); err != nil {
		return nil, Internal(err)
	}
	return report, nil
}

func (r *ReportRegistry) close(report *models.Report, status models.ReportStatus, action models.ResolutionAction, notes string, actor *Actor) {
	now := time.Now()
	uid := actor.ID
	report.Status = status
	report.ResolutionAction = &action
	report.ResolutionNotes = notes
	report.ResolvedBy = &uid
	report.ResolvedAt = &now
}

// Queue lists reports for moderators, pending first by default.
func (r *ReportRegistry) Queue(ctx context.Context, status models.ReportStatus, opts repository.ListOptions, actor *Actor) ([]models.Report, int64, error) {
	if !actor.Can(PermResolveReports) {
		return nil, 0, Forbiddenf("moderator permission required")
	}
	if status != "" && status != models.ReportPending && status != models.ReportResolved && status != models.ReportDismissed {
		return nil, 0, Validationf("unknown report status %q", status)
	}
	reports, total, err := r.reports.ListByStatus(ctx, status, opts)
	if err != nil {
		return nil, 0, Internal(err)
	}
	return reports, total, nil
}

// ReportCounts returns per-comment report totals for the moderation queue.
func (r *ReportRegistry) ReportCounts(ctx context.Context, commentIDs []uint) (map[uint]int64, error) {
	counts, err := r.reports.CountForComments(ctx, commentIDs)
	if err != nil {
		return nil, Internal(err)
	}
	return counts, nil
}
