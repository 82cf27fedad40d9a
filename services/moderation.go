package services

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"github.com/anvilworks/cms-api/models"
)

// ModerationConfig carries the tunables of the scoring policy. Thresholds are
// injected, never hard-coded at call sites.
type ModerationConfig struct {
	// ApproveThreshold: score >= threshold auto-approves, below goes to the
	// moderation queue.
	ApproveThreshold int
	// SpamConfidence: any flag at or above this confidence forces spam
	// regardless of score.
	SpamConfidence float64
	// ReanalyzeLimit bounds an administrative re-triage batch.
	ReanalyzeLimit int
}

func DefaultModerationConfig() ModerationConfig {
	return ModerationConfig{
		ApproveThreshold: 60,
		SpamConfidence:   0.95,
		ReanalyzeLimit:   100,
	}
}

// AnalysisInput is everything the analyzer may look at. Content arrives
// already sanitized; the engine treats it as opaque text.
type AnalysisInput struct {
	Content     string
	AuthorName  string
	AuthorEmail string
	IsGuest     bool
	IPAddress   string
}

// Analyzer scores a candidate comment. Implementations must be pure: no side
// effects, same verdict for the same input.
type Analyzer interface {
	Analyze(ctx context.Context, in AnalysisInput) (models.ModerationResult, error)
}

var linkPattern = regexp.MustCompile(`https?://[^\s]+`)

// HeuristicAnalyzer is the default scoring policy: link density, a phrase
// blocklist, shouting and length checks. It exists so the subsystem works out
// of the box; deployments swap in their own Analyzer.
type HeuristicAnalyzer struct {
	cfg       ModerationConfig
	blocklist []string
}

func NewHeuristicAnalyzer(cfg ModerationConfig, blocklist []string) *HeuristicAnalyzer {
	if len(blocklist) == 0 {
		blocklist = []string{
			"free money",
			"buy now",
			"click here",
			"casino",
			"viagra",
		}
	}
	return &HeuristicAnalyzer{cfg: cfg, blocklist: blocklist}
}

func (a *HeuristicAnalyzer) Analyze(ctx context.Context, in AnalysisInput) (models.ModerationResult, error) {
	res := models.ModerationResult{Score: 100}
	lower := strings.ToLower(in.Content)

	for _, phrase := range a.blocklist {
		if strings.Contains(lower, phrase) {
			res.Score -= 40
			res.Flags = append(res.Flags, models.ModerationFlag{
				Type:       "banned_phrase",
				Severity:   "high",
				Reason:     "content matches blocklisted phrase: " + phrase,
				Confidence: 0.97,
			})
		}
	}

	if links := len(linkPattern.FindAllString(in.Content, -1)); links > 2 {
		res.Score -= 15 * (links - 2)
		res.Flags = append(res.Flags, models.ModerationFlag{
			Type:       "excessive_links",
			Severity:   "medium",
			Reason:     "comment contains too many links",
			Confidence: 0.6,
		})
	}

	if ratio, letters := capsRatio(in.Content); letters > 20 && ratio > 0.7 {
		res.Score -= 20
		res.Flags = append(res.Flags, models.ModerationFlag{
			Type:       "shouting",
			Severity:   "low",
			Reason:     "content is mostly upper case",
			Confidence: 0.4,
		})
	}

	if len(strings.TrimSpace(in.Content)) < 3 {
		res.Score -= 30
		res.Flags = append(res.Flags, models.ModerationFlag{
			Type:       "too_short",
			Severity:   "low",
			Reason:     "content is too short to be meaningful",
			Confidence: 0.3,
		})
	}

	if res.Score < 0 {
		res.Score = 0
	}
	res.AutoAction = a.deriveAction(res)
	return res, nil
}

func (a *HeuristicAnalyzer) deriveAction(res models.ModerationResult) models.CommentStatus {
	for _, f := range res.Flags {
		if f.Confidence >= a.cfg.SpamConfidence {
			return models.CommentSpam
		}
	}
	if res.Score >= a.cfg.ApproveThreshold {
		return models.CommentApproved
	}
	return models.CommentPending
}

func capsRatio(s string) (float64, int) {
	letters, upper := 0, 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	if letters == 0 {
		return 0, 0
	}
	return float64(upper) / float64(letters), letters
}
