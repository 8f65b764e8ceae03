package report

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/JahirJmnz/marketpulse/internal/model"
	"github.com/JahirJmnz/marketpulse/internal/store"
)

// Polling defaults for clients waiting on a job. Sixty attempts at five
// seconds bounds the wait at five minutes.
const (
	DefaultPollInterval = 5 * time.Second
	DefaultPollAttempts = 60
)

// ErrPollTimeout is returned when a job is still in flight after the poll
// budget is exhausted. The job itself keeps running.
var ErrPollTimeout = eris.New("report not ready after polling timeout")

// ErrJobNotFound is returned when the polled job does not exist.
var ErrJobNotFound = eris.New("report job not found")

// StatusView is the polling projection of a job. It deliberately withholds
// the report content; HasContent tells the caller when a follow-up fetch
// will pay off.
type StatusView struct {
	ID           string             `json:"id"`
	ProfileID    string             `json:"profile_id"`
	Status       model.ReportStatus `json:"status"`
	CreatedAt    time.Time          `json:"created_at"`
	CompletedAt  *time.Time         `json:"completed_at,omitempty"`
	ErrorMessage *string            `json:"error_message,omitempty"`
	HasContent   bool               `json:"has_content"`
}

// NewStatusView projects a job into its polling shape.
func NewStatusView(job *model.ReportJob) *StatusView {
	return &StatusView{
		ID:           job.ID,
		ProfileID:    job.ProfileID,
		Status:       job.Status,
		CreatedAt:    job.CreatedAt,
		CompletedAt:  job.CompletedAt,
		ErrorMessage: job.ErrorMessage,
		HasContent:   job.HasContent(),
	}
}

// PollOption overrides the polling defaults.
type PollOption func(*pollConfig)

type pollConfig struct {
	interval time.Duration
	attempts int
}

func WithPollInterval(d time.Duration) PollOption {
	return func(c *pollConfig) { c.interval = d }
}

func WithPollAttempts(n int) PollOption {
	return func(c *pollConfig) { c.attempts = n }
}

// WaitForCompletion polls a job until it reaches a terminal state or the
// attempt budget runs out. It returns the terminal job; a FAILED job is a
// successful poll, not an error.
func WaitForCompletion(ctx context.Context, st store.Store, jobID string, opts ...PollOption) (*model.ReportJob, error) {
	cfg := pollConfig{interval: DefaultPollInterval, attempts: DefaultPollAttempts}
	for _, opt := range opts {
		opt(&cfg)
	}

	for attempt := 0; attempt < cfg.attempts; attempt++ {
		job, err := st.GetJob(ctx, jobID)
		if err != nil {
			return nil, eris.Wrap(err, "poll: load job")
		}
		if job == nil {
			return nil, ErrJobNotFound
		}
		if job.Status.Terminal() {
			return job, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(cfg.interval):
		}
	}
	return nil, ErrPollTimeout
}
