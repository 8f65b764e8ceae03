// Package report manages the lifecycle of report jobs: creation, the
// fire-and-forget handoff to the pipeline, and the persisted state
// transitions that callers poll.
package report

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/JahirJmnz/marketpulse/internal/model"
	"github.com/JahirJmnz/marketpulse/internal/store"
)

// ErrProfileNotFound is returned by Generate when the requested profile does
// not exist before any job is created.
var ErrProfileNotFound = eris.New("profile not found")

const profileNotFoundMessage = "profile not found"

// Runner is the slice of the pipeline the manager depends on.
type Runner interface {
	Run(ctx context.Context, profile *model.Profile) model.PipelineResult
}

// Manager owns report job state transitions. All status writes go through
// the store's UpdateJobStatus, which enforces that terminal states never
// revert.
type Manager struct {
	store  store.Store
	runner Runner

	wg sync.WaitGroup
}

func NewManager(st store.Store, runner Runner) *Manager {
	return &Manager{store: st, runner: runner}
}

// Generate creates a PENDING job for the profile and starts the pipeline in
// the background. It returns as soon as the job row exists; callers follow
// up by polling.
func (m *Manager) Generate(ctx context.Context, profileID string) (*model.ReportJob, error) {
	profile, err := m.store.GetProfile(ctx, profileID)
	if err != nil {
		return nil, eris.Wrap(err, "manager: look up profile")
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}

	job, err := m.store.CreateJob(ctx, profileID)
	if err != nil {
		return nil, eris.Wrap(err, "manager: create job")
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		// Detached from the request context: the job outlives the HTTP
		// request that created it.
		m.run(context.Background(), job.ID, profileID)
	}()

	return job, nil
}

// Wait blocks until all in-flight jobs have finished. Used on shutdown and
// in tests.
func (m *Manager) Wait() {
	m.wg.Wait()
}

func (m *Manager) run(ctx context.Context, jobID, profileID string) {
	log := zap.L().With(zap.String("job_id", jobID), zap.String("profile_id", profileID))

	if err := m.store.UpdateJobStatus(ctx, jobID, model.StatusProcessing, nil, nil); err != nil {
		log.Error("mark job processing", zap.Error(err))
		return
	}

	profile, err := m.store.GetProfile(ctx, profileID)
	if err != nil {
		m.fail(ctx, jobID, "load profile: "+err.Error())
		return
	}
	if profile == nil {
		// Deleted between Generate and here.
		m.fail(ctx, jobID, profileNotFoundMessage)
		return
	}

	result := m.runner.Run(ctx, profile)

	if err := m.store.SetJobMetadata(ctx, jobID, metricsMetadata(result.Metrics)); err != nil {
		log.Warn("record job metadata", zap.Error(err))
	}

	if !result.Success {
		m.fail(ctx, jobID, result.Error)
		return
	}

	if err := m.store.UpdateJobStatus(ctx, jobID, model.StatusCompleted, &result.Report, nil); err != nil {
		log.Error("mark job completed", zap.Error(err))
		return
	}
	log.Info("job completed",
		zap.Int("competitors", result.Metrics.CompetitorsIdentified),
		zap.Duration("elapsed", result.Metrics.Duration))
}

func (m *Manager) fail(ctx context.Context, jobID, message string) {
	if message == "" {
		message = "report generation failed"
	}
	if err := m.store.UpdateJobStatus(ctx, jobID, model.StatusFailed, nil, &message); err != nil {
		zap.L().Error("mark job failed", zap.String("job_id", jobID), zap.Error(err))
		return
	}
	zap.L().Warn("job failed", zap.String("job_id", jobID), zap.String("reason", message))
}

func metricsMetadata(m model.PipelineMetrics) map[string]any {
	return map[string]any{
		"competitors_identified": m.CompetitorsIdentified,
		"competitors_with_news":  m.CompetitorsWithNews,
		"total_news":             m.TotalNews,
		"duration_ms":            m.Duration.Milliseconds(),
	}
}
