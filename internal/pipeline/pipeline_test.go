package pipeline

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/JahirJmnz/marketpulse/internal/config"
	"github.com/JahirJmnz/marketpulse/pkg/tavily"
)

func testPipelineConfig() config.PipelineConfig {
	return config.PipelineConfig{
		Days:                30,
		MaxResults:          10,
		MinScore:            0.4,
		ResearchConcurrency: 3,
	}
}

func identificationJSON(names ...string) string {
	entries := make([]string, 0, len(names))
	for _, n := range names {
		entries = append(entries, fmt.Sprintf(
			`{"name": "%s", "type": "direct", "reason": "overlapping market", "website": "https://%s.example"}`,
			n, strings.ToLower(n)))
	}
	return fmt.Sprintf(`{"competitors": [%s]}`, strings.Join(entries, ","))
}

const analysisJSON = `{
	"key_movements": [
		{"type": "launch", "description": "New product", "impact": "high", "date": "2026-08-01", "source_url": "https://news.example"}
	],
	"sentiment": "positive",
	"threat_level": "high",
	"summary": "Moving fast."
}`

// isIdentification distinguishes the identification call from analysis and
// synthesis calls by the prompt's request shape.
func isIdentification(prompt string) bool {
	return strings.Contains(prompt, "most relevant competitors")
}

func isAnalysis(prompt string) bool {
	return strings.Contains(prompt, "Analyze the recent activity")
}

func isSynthesis(prompt string) bool {
	return strings.Contains(prompt, "competitive intelligence report in Markdown")
}

func TestPipelineRunFullFlow(t *testing.T) {
	ai := &mockAI{}
	search := &mockSearch{}

	ai.On("Complete", mock.Anything, mock.MatchedBy(isIdentification), mock.Anything).
		Return(identificationJSON("Alpha", "Beta", "Gamma", "Delta", "Epsilon"), nil)

	// Two competitors have news, three come back empty.
	for _, name := range []string{"Alpha", "Beta"} {
		search.On("SearchCompetitor", mock.Anything, name, mock.Anything).
			Return([]tavily.SearchResult{
				hit(name+" launch", "https://news.example/"+name+"/1", 0.9, "2026-08-10"),
				hit(name+" funding", "https://news.example/"+name+"/2", 0.8, "2026-08-05"),
			}, nil)
	}
	for _, name := range []string{"Gamma", "Delta", "Epsilon"} {
		search.On("SearchCompetitor", mock.Anything, name, mock.Anything).
			Return([]tavily.SearchResult{}, nil)
	}

	ai.On("Complete", mock.Anything, mock.MatchedBy(isAnalysis), mock.Anything).
		Return(analysisJSON, nil)
	ai.On("Complete", mock.Anything, mock.MatchedBy(isSynthesis), mock.Anything).
		Return("# Report\n\nFindings here.", nil)

	p := New(ai, search, testPipelineConfig())
	result := p.Run(context.Background(), testProfile())

	assert.True(t, result.Success)
	assert.Empty(t, result.Error)
	assert.Contains(t, result.Report, "Findings here.")
	assert.Contains(t, result.Report, "Competitors analyzed: 2")

	assert.Equal(t, 5, result.Metrics.CompetitorsIdentified)
	assert.Equal(t, 2, result.Metrics.CompetitorsWithNews)
	assert.Equal(t, 4, result.Metrics.TotalNews)
	assert.Greater(t, result.Metrics.Duration.Nanoseconds(), int64(0))

	// Analysis ran only for the two competitors with news.
	analysisCalls := 0
	for _, call := range ai.Calls {
		if prompt, ok := call.Arguments.Get(1).(string); ok && isAnalysis(prompt) {
			analysisCalls++
		}
	}
	assert.Equal(t, 2, analysisCalls)
}

func TestPipelineRunIdentificationFailure(t *testing.T) {
	ai := &mockAI{}
	search := &mockSearch{}

	ai.On("Complete", mock.Anything, mock.MatchedBy(isIdentification), mock.Anything).
		Return("", eris.New("model overloaded"))

	p := New(ai, search, testPipelineConfig())
	result := p.Run(context.Background(), testProfile())

	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
	assert.Empty(t, result.Report)

	assert.Equal(t, 0, result.Metrics.CompetitorsIdentified)
	assert.Equal(t, 0, result.Metrics.CompetitorsWithNews)
	assert.Equal(t, 0, result.Metrics.TotalNews)
	assert.Greater(t, result.Metrics.Duration.Nanoseconds(), int64(0))

	search.AssertNotCalled(t, "SearchCompetitor")
}

func TestPipelineRunSynthesisFailure(t *testing.T) {
	ai := &mockAI{}
	search := &mockSearch{}

	ai.On("Complete", mock.Anything, mock.MatchedBy(isIdentification), mock.Anything).
		Return(identificationJSON("Alpha"), nil)
	search.On("SearchCompetitor", mock.Anything, "Alpha", mock.Anything).
		Return([]tavily.SearchResult{hit("alpha news", "https://news.example/a", 0.9, "2026-08-01")}, nil)
	ai.On("Complete", mock.Anything, mock.MatchedBy(isAnalysis), mock.Anything).
		Return(analysisJSON, nil)
	ai.On("Complete", mock.Anything, mock.MatchedBy(isSynthesis), mock.Anything).
		Return("", eris.New("model overloaded"))

	p := New(ai, search, testPipelineConfig())
	result := p.Run(context.Background(), testProfile())

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "report synthesis failed")
	assert.Equal(t, 1, result.Metrics.CompetitorsIdentified)
	assert.Equal(t, 1, result.Metrics.CompetitorsWithNews)
}

func TestPipelineRunQuietPeriod(t *testing.T) {
	ai := &mockAI{}
	search := &mockSearch{}

	ai.On("Complete", mock.Anything, mock.MatchedBy(isIdentification), mock.Anything).
		Return(identificationJSON("Alpha", "Beta"), nil)
	for _, name := range []string{"Alpha", "Beta"} {
		search.On("SearchCompetitor", mock.Anything, name, mock.Anything).
			Return([]tavily.SearchResult{}, nil)
	}

	p := New(ai, search, testPipelineConfig())
	result := p.Run(context.Background(), testProfile())

	require.True(t, result.Success)
	assert.Contains(t, result.Report, "No significant competitor activity")
	assert.Equal(t, 2, result.Metrics.CompetitorsIdentified)
	assert.Equal(t, 0, result.Metrics.CompetitorsWithNews)

	// Identification was the only completion spent.
	ai.AssertNumberOfCalls(t, "Complete", 1)
}
