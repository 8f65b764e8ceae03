package model

import "time"

// ReportStatus is the lifecycle state of a report job.
type ReportStatus string

const (
	StatusPending    ReportStatus = "PENDING"
	StatusProcessing ReportStatus = "PROCESSING"
	StatusCompleted  ReportStatus = "COMPLETED"
	StatusFailed     ReportStatus = "FAILED"
)

// Terminal reports whether no further transition is possible from s.
func (s ReportStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// ReportJob is the persisted record of one report generation request.
// Invariants maintained by the store: CompletedAt is set iff the status is
// terminal; Content is set iff COMPLETED; ErrorMessage is set iff FAILED.
type ReportJob struct {
	ID           string         `json:"id"`
	ProfileID    string         `json:"profile_id"`
	Status       ReportStatus   `json:"status"`
	Content      *string        `json:"content,omitempty"`
	ErrorMessage *string        `json:"error_message,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// HasContent reports whether the job carries a generated report.
func (j *ReportJob) HasContent() bool {
	return j.Content != nil && *j.Content != ""
}

// PipelineMetrics summarizes one pipeline run. Recorded regardless of where
// the run succeeded or failed.
type PipelineMetrics struct {
	CompetitorsIdentified int           `json:"competitors_identified"`
	CompetitorsWithNews   int           `json:"competitors_with_news"`
	TotalNews             int           `json:"total_news"`
	Duration              time.Duration `json:"duration"`
}

// PipelineResult is the transient return value of an orchestrator run. Its
// fields are folded into the ReportJob by the lifecycle manager and it is
// never persisted as its own entity.
type PipelineResult struct {
	Success bool            `json:"success"`
	Report  string          `json:"report,omitempty"`
	Error   string          `json:"error,omitempty"`
	Metrics PipelineMetrics `json:"metrics"`
}
