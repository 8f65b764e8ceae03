// Package pipeline implements the four-stage report generation flow:
// competitor identification, news research, per-competitor analysis, and
// report synthesis. Identification and synthesis failures abort a run;
// research and analysis failures degrade to placeholders so one bad
// competitor never sinks the batch.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/JahirJmnz/marketpulse/internal/config"
	"github.com/JahirJmnz/marketpulse/internal/model"
	"github.com/JahirJmnz/marketpulse/pkg/saptiva"
	"github.com/JahirJmnz/marketpulse/pkg/tavily"
)

// Pipeline wires the AI and search clients into the report generation flow.
type Pipeline struct {
	ai     saptiva.Client
	search tavily.Client
	cfg    config.PipelineConfig
}

func New(ai saptiva.Client, search tavily.Client, cfg config.PipelineConfig) *Pipeline {
	return &Pipeline{ai: ai, search: search, cfg: cfg}
}

// Run executes the full pipeline for one profile. It never returns an error:
// the outcome, fatal or not, is captured in the result, and the metrics are
// populated either way with zeros for stages that were not reached.
func (p *Pipeline) Run(ctx context.Context, profile *model.Profile) (result model.PipelineResult) {
	start := time.Now()

	defer func() {
		result.Metrics.Duration = time.Since(start)
	}()

	log := zap.L().With(zap.String("company", profile.CompanyName))
	log.Info("pipeline started")

	competitors, err := IdentifyCompetitors(ctx, p.ai, profile)
	if err != nil {
		log.Error("pipeline aborted at identification", zap.Error(err))
		result.Error = err.Error()
		return result
	}
	result.Metrics.CompetitorsIdentified = len(competitors)

	researched := ResearchAll(ctx, p.search, competitors, ResearchOptions{
		Days:        p.cfg.Days,
		MaxResults:  p.cfg.MaxResults,
		MinScore:    p.cfg.MinScore,
		Concurrency: p.cfg.ResearchConcurrency,
	})
	for _, r := range researched {
		if r.HasActivity {
			result.Metrics.CompetitorsWithNews++
		}
		result.Metrics.TotalNews += len(r.News)
	}
	log.Info("research complete",
		zap.Int("competitors", len(researched)),
		zap.Int("with_news", result.Metrics.CompetitorsWithNews),
		zap.Int("total_news", result.Metrics.TotalNews))

	analyzed := AnalyzeAll(ctx, p.ai, researched, p.cfg.ResearchConcurrency)

	report, err := SynthesizeReport(ctx, p.ai, profile, analyzed)
	if err != nil {
		log.Error("pipeline aborted at synthesis", zap.Error(err))
		result.Error = err.Error()
		return result
	}

	result.Success = true
	result.Report = report
	log.Info("pipeline finished", zap.Duration("elapsed", time.Since(start)))
	return result
}
