package report

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/JahirJmnz/marketpulse/internal/model"
	"github.com/JahirJmnz/marketpulse/internal/store"
)

// memStore is an in-memory Store for manager and polling tests. It enforces
// the same lifecycle rules as the real backends, including the terminal
// guard on status updates.
type memStore struct {
	mu       sync.Mutex
	profiles map[string]model.Profile
	jobs     map[string]model.ReportJob
}

var _ store.Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{
		profiles: make(map[string]model.Profile),
		jobs:     make(map[string]model.ReportJob),
	}
}

func (s *memStore) CreateProfile(ctx context.Context, name, desc string) (*model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	p := model.Profile{
		ID:                 uuid.NewString(),
		CompanyName:        name,
		CompanyDescription: desc,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	s.profiles[p.ID] = p
	return &p, nil
}

func (s *memStore) GetProfile(ctx context.Context, id string) (*model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *memStore) UpdateProfile(ctx context.Context, id string, name, desc *string) (*model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, nil
	}
	if name != nil {
		p.CompanyName = *name
	}
	if desc != nil {
		p.CompanyDescription = *desc
	}
	p.UpdatedAt = time.Now().UTC()
	s.profiles[id] = p
	return &p, nil
}

func (s *memStore) CreateJob(ctx context.Context, profileID string) (*model.ReportJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j := model.ReportJob{
		ID:        uuid.NewString(),
		ProfileID: profileID,
		Status:    model.StatusPending,
		CreatedAt: time.Now().UTC(),
		Metadata:  map[string]any{},
	}
	s.jobs[j.ID] = j
	return &j, nil
}

func (s *memStore) UpdateJobStatus(ctx context.Context, jobID string, status model.ReportStatus, content, errorMessage *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[jobID]
	if !ok || j.Status.Terminal() {
		return eris.Errorf("report job not found or already terminal: %s", jobID)
	}
	j.Status = status
	j.Content = content
	j.ErrorMessage = errorMessage
	if status.Terminal() {
		now := time.Now().UTC()
		j.CompletedAt = &now
	}
	s.jobs[jobID] = j
	return nil
}

func (s *memStore) SetJobMetadata(ctx context.Context, jobID string, metadata map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[jobID]
	if !ok {
		return eris.Errorf("report job not found: %s", jobID)
	}
	j.Metadata = metadata
	s.jobs[jobID] = j
	return nil
}

func (s *memStore) GetJob(ctx context.Context, jobID string) (*model.ReportJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[jobID]
	if !ok {
		return nil, nil
	}
	return &j, nil
}

func (s *memStore) ListJobs(ctx context.Context, profileID string, limit int) ([]model.ReportJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var jobs []model.ReportJob
	for _, j := range s.jobs {
		if j.ProfileID == profileID {
			jobs = append(jobs, j)
		}
	}
	sort.Slice(jobs, func(i, k int) bool { return jobs[i].CreatedAt.After(jobs[k].CreatedAt) })
	if limit > 0 && len(jobs) > limit {
		jobs = jobs[:limit]
	}
	return jobs, nil
}

func (s *memStore) LatestJob(ctx context.Context, profileID string) (*model.ReportJob, error) {
	jobs, err := s.ListJobs(ctx, profileID, 1)
	if err != nil || len(jobs) == 0 {
		return nil, err
	}
	return &jobs[0], nil
}

func (s *memStore) Migrate(ctx context.Context) error { return nil }
func (s *memStore) Close() error                      { return nil }
