package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/JahirJmnz/marketpulse/internal/model"
	"github.com/JahirJmnz/marketpulse/pkg/saptiva"
)

type competitorList struct {
	Competitors []model.Competitor `json:"competitors"`
}

// IdentifyCompetitors asks the fast model tier for the competitors most
// relevant to the profile. Any failure here is fatal to the run.
func IdentifyCompetitors(ctx context.Context, ai saptiva.Client, profile *model.Profile) ([]model.Competitor, error) {
	raw, err := ai.Complete(ctx, identificationPrompt(profile), saptiva.CompletionOptions{
		Tier:         saptiva.TierFast,
		Temperature:  saptiva.Float(0.2),
		MaxTokens:    saptiva.Int(1500),
		SystemPrompt: analysisSystemPrompt,
	})
	if err != nil {
		return nil, eris.Wrapf(ErrIdentification, "completion for %s: %v", profile.CompanyName, err)
	}

	var list competitorList
	if err := ExtractJSON(raw, &list); err != nil {
		return nil, eris.Wrapf(ErrIdentification, "parse competitor list for %s: %v", profile.CompanyName, err)
	}
	if len(list.Competitors) == 0 {
		return nil, eris.Wrapf(ErrIdentification, "empty competitor list for %s", profile.CompanyName)
	}

	zap.L().Info("identified competitors",
		zap.String("company", profile.CompanyName),
		zap.Int("count", len(list.Competitors)))
	return list.Competitors, nil
}
