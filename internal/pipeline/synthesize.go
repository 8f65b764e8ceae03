package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/JahirJmnz/marketpulse/internal/model"
	"github.com/JahirJmnz/marketpulse/pkg/saptiva"
)

// SynthesizeReport writes the final Markdown report from the per-competitor
// analyses. Placeholder analyses carry no signal and are excluded; when
// nothing of substance remains, a fixed quiet-period report is returned
// without spending a completion call. A failed synthesis call is fatal.
func SynthesizeReport(ctx context.Context, ai saptiva.Client, profile *model.Profile, analyses []model.AnalyzedCompetitor) (string, error) {
	substantive := make([]model.AnalyzedCompetitor, 0, len(analyses))
	for _, a := range analyses {
		if isSubstantive(a.Analysis) {
			substantive = append(substantive, a)
		}
	}
	if len(substantive) == 0 {
		return quietPeriodReport(profile), nil
	}

	report, err := ai.Complete(ctx, reportPrompt(profile, substantive), saptiva.CompletionOptions{
		Tier:        saptiva.TierAdvanced,
		Temperature: saptiva.Float(0.6),
		MaxTokens:   saptiva.Int(4000),
	})
	if err != nil {
		return "", eris.Wrapf(ErrSynthesis, "completion for %s: %v", profile.CompanyName, err)
	}

	return report + reportFooter(profile, len(substantive)), nil
}

// isSubstantive reports whether an analysis carries real findings rather
// than a no-activity or failure placeholder.
func isSubstantive(a model.CompetitorAnalysis) bool {
	return len(a.KeyMovements) > 0 || (a.Summary != "" && a.Summary != noActivitySummary)
}

func quietPeriodReport(profile *model.Profile) string {
	return fmt.Sprintf(`# Competitive Intelligence Report: %s

## Executive Summary

No significant competitor activity was detected during the reporting period. This can indicate a quiet stretch in the market or competitors operating below the radar of public news coverage.

## Recommendation

Continue monitoring. A follow-up report after the next cycle will show whether this is a trend or a lull.
%s`, profile.CompanyName, reportFooter(profile, 0))
}

func reportFooter(profile *model.Profile, analyzed int) string {
	var b strings.Builder
	b.WriteString("\n\n---\n\n")
	fmt.Fprintf(&b, "*Generated by MarketPulse on %s*\n\n", time.Now().UTC().Format("January 2, 2006 15:04 UTC"))
	fmt.Fprintf(&b, "*Company: %s*\n\n", profile.CompanyName)
	fmt.Fprintf(&b, "*Competitors analyzed: %d*\n", analyzed)
	return b.String()
}
