package pipeline

import (
	"fmt"
	"strings"

	"github.com/JahirJmnz/marketpulse/internal/model"
)

const identificationTarget = 5

const analysisSystemPrompt = "You are a competitive intelligence analyst. " +
	"You respond only with valid JSON matching the requested schema, with no " +
	"commentary before or after it."

func identificationPrompt(profile *model.Profile) string {
	var b strings.Builder
	fmt.Fprintf(&b, `Identify the %d most relevant competitors for the following company.

Company: %s
Description: %s

For each competitor classify the relationship as one of: "direct", "indirect", "emerging", "potential".

Respond with a JSON object in exactly this shape:
{
  "competitors": [
    {
      "name": "Company name",
      "type": "direct",
      "reason": "One sentence on why this company competes with the one above",
      "website": "https://example.com"
    }
  ]
}

Only include real companies you are confident exist. Respond with the JSON object and nothing else.`,
		identificationTarget, profile.CompanyName, profile.CompanyDescription)
	return b.String()
}

func analysisPrompt(competitor model.Competitor, news []model.NewsItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze the recent activity of %s (%s competitor).\n\nRecent news:\n",
		competitor.Name, competitor.Type)
	for i, item := range news {
		fmt.Fprintf(&b, "%d. %s (%s)\n   %s\n   Source: %s\n",
			i+1, item.Title, item.PublishedDate, item.Snippet, item.URL)
	}
	b.WriteString(`
Respond with a JSON object in exactly this shape:
{
  "key_movements": [
    {
      "type": "launch",
      "description": "What happened",
      "impact": "high",
      "date": "when it happened, or the date shown above",
      "source_url": "https://..."
    }
  ],
  "sentiment": "positive",
  "threat_level": "medium",
  "summary": "Two or three sentences summarizing this competitor's recent trajectory"
}

Allowed values: type is one of "launch", "acquisition", "partnership", "financial", "strategy"; impact and threat_level are one of "high", "medium", "low"; sentiment is one of "positive", "neutral", "negative".

Respond with the JSON object and nothing else.`)
	return b.String()
}

func reportPrompt(profile *model.Profile, analyses []model.AnalyzedCompetitor) string {
	var b strings.Builder
	fmt.Fprintf(&b, `Write a competitive intelligence report in Markdown for %s.

Company description: %s

Competitor findings:
`, profile.CompanyName, profile.CompanyDescription)

	for _, a := range analyses {
		fmt.Fprintf(&b, "\n## %s (%s competitor, threat level: %s, sentiment: %s)\n%s\n",
			a.Competitor.Name, a.Competitor.Type, a.Analysis.ThreatLevel,
			a.Analysis.Sentiment, a.Analysis.Summary)
		for _, m := range a.Analysis.KeyMovements {
			fmt.Fprintf(&b, "- [%s, %s impact] %s (%s)\n", m.Type, m.Impact, m.Description, m.Date)
		}
	}

	b.WriteString(`
Structure the report with these sections:
1. Executive Summary
2. Competitor Activity (one subsection per competitor above)
3. Market Trends
4. Opportunities
5. Threats
6. Strategic Recommendations

Write for an executive audience. Be specific: cite the movements above rather than generalities. Respond with the Markdown report and nothing else.`)
	return b.String()
}
