package pipeline

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/JahirJmnz/marketpulse/internal/model"
	"github.com/JahirJmnz/marketpulse/pkg/tavily"
)

const defaultResearchConcurrency = 5

// ResearchOptions tunes the news-gathering fan-out.
type ResearchOptions struct {
	Days        int
	MaxResults  int
	MinScore    float64
	Concurrency int
}

// ResearchAll fetches recent news for every competitor concurrently. The
// returned slice is index-aligned with the input: entry i always describes
// competitors[i], regardless of which searches finished first. A failed
// search degrades its entry to one without news rather than failing the
// batch.
func ResearchAll(ctx context.Context, search tavily.Client, competitors []model.Competitor, opts ResearchOptions) []model.ResearchResult {
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultResearchConcurrency
	}

	results := make([]model.ResearchResult, len(competitors))

	var g errgroup.Group
	g.SetLimit(opts.Concurrency)
	for i, competitor := range competitors {
		g.Go(func() error {
			results[i] = researchOne(ctx, search, competitor, opts)
			return nil
		})
	}
	g.Wait() //nolint:errcheck // workers never return errors

	return results
}

func researchOne(ctx context.Context, search tavily.Client, competitor model.Competitor, opts ResearchOptions) model.ResearchResult {
	raw, err := search.SearchCompetitor(ctx, competitor.Name, tavily.CompetitorSearchOptions{
		Days:       opts.Days,
		MaxResults: opts.MaxResults,
	})
	if err != nil {
		zap.L().Warn("competitor search failed, continuing without news",
			zap.String("competitor", competitor.Name),
			zap.Error(err))
		return model.ResearchResult{Competitor: competitor}
	}

	news := NormalizeResults(raw, opts.MinScore)
	return model.ResearchResult{
		Competitor:  competitor,
		News:        news,
		HasActivity: len(news) > 0,
	}
}
