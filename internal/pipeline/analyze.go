package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/JahirJmnz/marketpulse/internal/model"
	"github.com/JahirJmnz/marketpulse/pkg/saptiva"
)

// maxNewsPerAnalysis caps how many items reach the analysis prompt. The
// normalizer orders items newest first, so the cap keeps the most recent.
const maxNewsPerAnalysis = 5

const noActivitySummary = "No recent activity found for this competitor."

func failedAnalysisSummary(name string) string {
	return fmt.Sprintf("Recent news for %s could not be analyzed.", name)
}

// neutralAnalysis is the stand-in used when a competitor has nothing to
// analyze or its analysis call failed.
func neutralAnalysis(name, summary string) model.CompetitorAnalysis {
	return model.CompetitorAnalysis{
		CompetitorName: name,
		Sentiment:      model.SentimentNeutral,
		ThreatLevel:    model.ImpactLow,
		Summary:        summary,
	}
}

// AnalyzeCompetitor produces an analysis for one competitor. It never fails:
// competitors without news get a neutral placeholder without spending a
// completion call, and completion or parse errors degrade to a neutral
// placeholder that names the competitor.
func AnalyzeCompetitor(ctx context.Context, ai saptiva.Client, competitor model.Competitor, news []model.NewsItem) model.CompetitorAnalysis {
	if len(news) == 0 {
		return neutralAnalysis(competitor.Name, noActivitySummary)
	}
	if len(news) > maxNewsPerAnalysis {
		news = news[:maxNewsPerAnalysis]
	}

	raw, err := ai.Complete(ctx, analysisPrompt(competitor, news), saptiva.CompletionOptions{
		Tier:         saptiva.TierReasoning,
		Temperature:  saptiva.Float(0.4),
		MaxTokens:    saptiva.Int(3000),
		SystemPrompt: analysisSystemPrompt,
	})
	if err != nil {
		zap.L().Warn("competitor analysis failed, using neutral placeholder",
			zap.String("competitor", competitor.Name),
			zap.Error(err))
		return neutralAnalysis(competitor.Name, failedAnalysisSummary(competitor.Name))
	}

	var analysis model.CompetitorAnalysis
	if err := ExtractJSON(raw, &analysis); err != nil {
		zap.L().Warn("competitor analysis unparsable, using neutral placeholder",
			zap.String("competitor", competitor.Name),
			zap.Error(err))
		return neutralAnalysis(competitor.Name, failedAnalysisSummary(competitor.Name))
	}

	analysis.CompetitorName = competitor.Name
	return analysis
}

// AnalyzeAll runs the analysis stage over the research output. Entry i of the
// returned slice always describes results[i].
func AnalyzeAll(ctx context.Context, ai saptiva.Client, results []model.ResearchResult, concurrency int) []model.AnalyzedCompetitor {
	if concurrency <= 0 {
		concurrency = defaultResearchConcurrency
	}

	analyzed := make([]model.AnalyzedCompetitor, len(results))

	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, result := range results {
		g.Go(func() error {
			analyzed[i] = model.AnalyzedCompetitor{
				Competitor: result.Competitor,
				Analysis:   AnalyzeCompetitor(ctx, ai, result.Competitor, result.News),
				News:       result.News,
			}
			return nil
		})
	}
	g.Wait() //nolint:errcheck // workers never return errors

	return analyzed
}
