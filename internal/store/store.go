package store

import (
	"context"

	"github.com/JahirJmnz/marketpulse/internal/model"
)

// Store defines the persistence interface for profiles and report jobs.
// Lookups return (nil, nil) when the record does not exist.
type Store interface {
	// Profiles
	CreateProfile(ctx context.Context, companyName, companyDescription string) (*model.Profile, error)
	GetProfile(ctx context.Context, id string) (*model.Profile, error)
	UpdateProfile(ctx context.Context, id string, companyName, companyDescription *string) (*model.Profile, error)

	// Report jobs
	CreateJob(ctx context.Context, profileID string) (*model.ReportJob, error)
	UpdateJobStatus(ctx context.Context, jobID string, status model.ReportStatus, content, errorMessage *string) error
	SetJobMetadata(ctx context.Context, jobID string, metadata map[string]any) error
	GetJob(ctx context.Context, jobID string) (*model.ReportJob, error)
	ListJobs(ctx context.Context, profileID string, limit int) ([]model.ReportJob, error)
	LatestJob(ctx context.Context, profileID string) (*model.ReportJob, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
