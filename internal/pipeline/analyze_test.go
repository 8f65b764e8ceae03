package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/JahirJmnz/marketpulse/internal/model"
)

func newsItems(n int) []model.NewsItem {
	items := make([]model.NewsItem, n)
	for i := range items {
		items[i] = model.NewsItem{
			Title:         "headline",
			Snippet:       "something happened",
			URL:           "https://news.example/item",
			PublishedDate: "2026-08-01",
		}
	}
	return items
}

func TestAnalyzeCompetitorNoNewsSkipsCompletion(t *testing.T) {
	ai := &mockAI{}
	competitor := model.Competitor{Name: "Quiet Corp", Type: model.CompetitorDirect}

	analysis := AnalyzeCompetitor(context.Background(), ai, competitor, nil)

	assert.Equal(t, "Quiet Corp", analysis.CompetitorName)
	assert.Equal(t, model.SentimentNeutral, analysis.Sentiment)
	assert.Equal(t, model.ImpactLow, analysis.ThreatLevel)
	assert.Equal(t, "No recent activity found for this competitor.", analysis.Summary)
	assert.Empty(t, analysis.KeyMovements)
	ai.AssertNotCalled(t, "Complete")
}

func TestAnalyzeCompetitorParsesCompletion(t *testing.T) {
	ai := &mockAI{}
	ai.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return(`{
		"key_movements": [
			{"type": "launch", "description": "Shipped a new product line", "impact": "high", "date": "2026-08-01", "source_url": "https://news.example/item"}
		],
		"sentiment": "positive",
		"threat_level": "high",
		"summary": "Aggressive expansion quarter."
	}`, nil)

	competitor := model.Competitor{Name: "Busy Corp"}
	analysis := AnalyzeCompetitor(context.Background(), ai, competitor, newsItems(2))

	assert.Equal(t, "Busy Corp", analysis.CompetitorName)
	assert.Equal(t, model.SentimentPositive, analysis.Sentiment)
	assert.Equal(t, model.ImpactHigh, analysis.ThreatLevel)
	require.Len(t, analysis.KeyMovements, 1)
	assert.Equal(t, model.MovementLaunch, analysis.KeyMovements[0].Type)
	ai.AssertExpectations(t)
}

func TestAnalyzeCompetitorCapsNewsInPrompt(t *testing.T) {
	ai := &mockAI{}
	ai.On("Complete", mock.Anything, mock.MatchedBy(func(prompt string) bool {
		// The prompt numbers its items, so a sixth item would show as "\n6. ".
		return strings.Contains(prompt, "\n5. ") && !strings.Contains(prompt, "\n6. ")
	}), mock.Anything).Return(`{"key_movements": [], "sentiment": "neutral", "threat_level": "low", "summary": "Steady."}`, nil)

	AnalyzeCompetitor(context.Background(), ai, model.Competitor{Name: "Busy Corp"}, newsItems(9))
	ai.AssertExpectations(t)
}

func TestAnalyzeCompetitorDegradesOnCompletionError(t *testing.T) {
	ai := &mockAI{}
	ai.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Return("", eris.New("model overloaded"))

	analysis := AnalyzeCompetitor(context.Background(), ai, model.Competitor{Name: "Flaky Corp"}, newsItems(1))

	assert.Equal(t, "Flaky Corp", analysis.CompetitorName)
	assert.Equal(t, model.SentimentNeutral, analysis.Sentiment)
	assert.Equal(t, model.ImpactLow, analysis.ThreatLevel)
	assert.Contains(t, analysis.Summary, "Flaky Corp")
	assert.Empty(t, analysis.KeyMovements)
}

func TestAnalyzeCompetitorDegradesOnUnparsableCompletion(t *testing.T) {
	ai := &mockAI{}
	ai.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Return("I'm not able to analyze that right now.", nil)

	analysis := AnalyzeCompetitor(context.Background(), ai, model.Competitor{Name: "Garbled Corp"}, newsItems(1))

	assert.Equal(t, model.SentimentNeutral, analysis.Sentiment)
	assert.Contains(t, analysis.Summary, "Garbled Corp")
}

func TestAnalyzeAllPreservesOrder(t *testing.T) {
	ai := &mockAI{}
	ai.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Return(`{"key_movements": [], "sentiment": "positive", "threat_level": "medium", "summary": "Active."}`, nil)

	results := []model.ResearchResult{
		{Competitor: model.Competitor{Name: "Alpha"}, News: newsItems(1), HasActivity: true},
		{Competitor: model.Competitor{Name: "Beta"}},
		{Competitor: model.Competitor{Name: "Gamma"}, News: newsItems(1), HasActivity: true},
	}

	analyzed := AnalyzeAll(context.Background(), ai, results, 2)

	require.Len(t, analyzed, 3)
	assert.Equal(t, "Alpha", analyzed[0].Competitor.Name)
	assert.Equal(t, "Beta", analyzed[1].Competitor.Name)
	assert.Equal(t, "Gamma", analyzed[2].Competitor.Name)

	// The quiet competitor got the placeholder without a model call.
	assert.Equal(t, model.SentimentNeutral, analyzed[1].Analysis.Sentiment)
	assert.Equal(t, model.SentimentPositive, analyzed[0].Analysis.Sentiment)
	ai.AssertNumberOfCalls(t, "Complete", 2)
}
