package model

// CompetitorType classifies how a competitor relates to the profile's market.
type CompetitorType string

const (
	CompetitorDirect    CompetitorType = "direct"
	CompetitorIndirect  CompetitorType = "indirect"
	CompetitorEmerging  CompetitorType = "emerging"
	CompetitorPotential CompetitorType = "potential"
)

// Competitor is one entity identified by the identification stage. Competitors
// live in memory for the duration of a single job and are never persisted on
// their own.
type Competitor struct {
	Name    string         `json:"name"`
	Type    CompetitorType `json:"type"`
	Reason  string         `json:"reason"`
	Website string         `json:"website,omitempty"`
}

// NewsItem is a single normalized news result for a competitor.
type NewsItem struct {
	Title         string `json:"title"`
	Snippet       string `json:"snippet"`
	URL           string `json:"url"`
	PublishedDate string `json:"published_date"`
}

// ResearchResult is the per-competitor output of the research fan-out.
type ResearchResult struct {
	Competitor  Competitor `json:"competitor"`
	News        []NewsItem `json:"news"`
	HasActivity bool       `json:"has_activity"`
}

// Sentiment is the overall tone of a competitor's recent activity.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// ImpactLevel grades movement impact and competitor threat.
type ImpactLevel string

const (
	ImpactHigh   ImpactLevel = "high"
	ImpactMedium ImpactLevel = "medium"
	ImpactLow    ImpactLevel = "low"
)

// MovementType classifies a strategic movement.
type MovementType string

const (
	MovementLaunch      MovementType = "launch"
	MovementAcquisition MovementType = "acquisition"
	MovementPartnership MovementType = "partnership"
	MovementFinancial   MovementType = "financial"
	MovementStrategy    MovementType = "strategy"
)

// KeyMovement is one strategic move extracted from a competitor's news.
type KeyMovement struct {
	Type        MovementType `json:"type"`
	Description string       `json:"description"`
	Impact      ImpactLevel  `json:"impact"`
	Date        string       `json:"date"`
	SourceURL   string       `json:"source_url,omitempty"`
}

// CompetitorAnalysis is the structured analysis for one competitor that had
// research activity.
type CompetitorAnalysis struct {
	CompetitorName string        `json:"competitor_name"`
	KeyMovements   []KeyMovement `json:"key_movements"`
	Sentiment      Sentiment     `json:"sentiment"`
	ThreatLevel    ImpactLevel   `json:"threat_level"`
	Summary        string        `json:"summary"`
}

// AnalyzedCompetitor pairs a competitor's analysis with the news it was
// derived from, for the synthesis stage.
type AnalyzedCompetitor struct {
	Competitor Competitor         `json:"competitor"`
	Analysis   CompetitorAnalysis `json:"analysis"`
	News       []NewsItem         `json:"news"`
}
