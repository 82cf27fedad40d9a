package services_test

import (
	"context"
	"strings"
	"testing"

	"github.com/anvilworks/cms-api/models"
	"github.com/anvilworks/cms-api/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyze(t *testing.T, content string) models.ModerationResult {
	t.Helper()
	a := services.NewHeuristicAnalyzer(services.DefaultModerationConfig(), nil)
	res, err := a.Analyze(context.Background(), services.AnalysisInput{Content: content})
	require.NoError(t, err)
	return res
}

func TestAnalyzeCleanContentApproves(t *testing.T) {
	res := analyze(t, "Great write-up, the section on indexes finally made it click for me.")
	assert.Equal(t, models.CommentApproved, res.AutoAction)
	assert.Empty(t, res.Flags)
	assert.Equal(t, 100, res.Score)
}

func TestAnalyzeBlocklistedPhraseForcesSpam(t *testing.T) {
	res := analyze(t, "Click here for FREE MONEY and more")
	assert.Equal(t, models.CommentSpam, res.AutoAction)

	var types []string
	for _, f := range res.Flags {
		types = append(types, f.Type)
	}
	assert.Contains(t, types, "banned_phrase")
}

func TestAnalyzeExcessiveLinksQueues(t *testing.T) {
	content := "check these: https://a.example https://b.example https://c.example https://d.example https://e.example"
	res := analyze(t, content)
	assert.Equal(t, models.CommentPending, res.AutoAction)
	assert.Less(t, res.Score, 60)
}

func TestAnalyzeShoutingLowersScore(t *testing.T) {
	res := analyze(t, strings.Repeat("THIS IS ALL WRONG ", 4))
	assert.Equal(t, 80, res.Score)
	require.Len(t, res.Flags, 1)
	assert.Equal(t, "shouting", res.Flags[0].Type)
	// One low-confidence flag alone does not drop below the threshold.
	assert.Equal(t, models.CommentApproved, res.AutoAction)
}

func TestAnalyzeTooShortFlagged(t *testing.T) {
	res := analyze(t, "ok")
	require.Len(t, res.Flags, 1)
	assert.Equal(t, "too_short", res.Flags[0].Type)
}

func TestAnalyzeScoreNeverNegative(t *testing.T) {
	res := analyze(t, "free money casino viagra buy now click here")
	assert.Equal(t, 0, res.Score)
}

func TestAnalyzeCustomThreshold(t *testing.T) {
	cfg := services.DefaultModerationConfig()
	cfg.ApproveThreshold = 90

	a := services.NewHeuristicAnalyzer(cfg, nil)
	res, err := a.Analyze(context.Background(), services.AnalysisInput{
		Content: strings.Repeat("WHY WOULD ANYONE DO THIS ", 3),
	})
	require.NoError(t, err)
	assert.Equal(t, models.CommentPending, res.AutoAction)
}

func TestAnalyzeCustomBlocklist(t *testing.T) {
	a := services.NewHeuristicAnalyzer(services.DefaultModerationConfig(), []string{"proprietary leak"})

	res, err := a.Analyze(context.Background(), services.AnalysisInput{Content: "this proprietary leak is wild"})
	require.NoError(t, err)
	assert.Equal(t, models.CommentSpam, res.AutoAction)

	res, err = a.Analyze(context.Background(), services.AnalysisInput{Content: "free money for everyone today"})
	require.NoError(t, err)
	assert.Equal(t, models.CommentApproved, res.AutoAction, "default blocklist must be replaced, not extended")
}
