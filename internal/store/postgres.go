package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/JahirJmnz/marketpulse/internal/config"
	"github.com/JahirJmnz/marketpulse/internal/db"
	"github.com/JahirJmnz/marketpulse/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// preparedStatements lists queries to prepare on each new connection; job
// reads dominate traffic because of status polling.
var preparedStatements = map[string]string{
	"get_profile":       `SELECT id, company_name, company_description, created_at, updated_at FROM profiles WHERE id = $1`,
	"insert_job":        `INSERT INTO reports (id, profile_id, status, metadata, created_at) VALUES ($1, $2, $3, $4, $5)`,
	"get_job":           `SELECT id, profile_id, status, content, error_message, metadata, created_at, completed_at FROM reports WHERE id = $1`,
	"update_job_status": `UPDATE reports SET status = $1, content = $2, error_message = $3, completed_at = $4 WHERE id = $5 AND status NOT IN ('COMPLETED', 'FAILED')`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg config.PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg.MaxConns > 0 {
		maxConns = poolCfg.MaxConns
	}
	if poolCfg.MinConns > 0 {
		minConns = poolCfg.MinConns
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS profiles (
	id                  TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	company_name        TEXT NOT NULL,
	company_description TEXT NOT NULL,
	created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS reports (
	id            TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	profile_id    TEXT NOT NULL REFERENCES profiles(id),
	status        TEXT NOT NULL DEFAULT 'PENDING',
	content       TEXT,
	error_message TEXT,
	metadata      JSONB NOT NULL DEFAULT '{}',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	completed_at  TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_reports_profile_id ON reports(profile_id);
CREATE INDEX IF NOT EXISTS idx_reports_status ON reports(status);
CREATE INDEX IF NOT EXISTS idx_reports_profile_created ON reports(profile_id, created_at DESC);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateProfile(ctx context.Context, companyName, companyDescription string) (*model.Profile, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO profiles (id, company_name, company_description, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		id, companyName, companyDescription, now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert profile")
	}

	return &model.Profile{
		ID:                 id,
		CompanyName:        companyName,
		CompanyDescription: companyDescription,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

func (s *PostgresStore) GetProfile(ctx context.Context, id string) (*model.Profile, error) {
	var p model.Profile
	err := s.pool.QueryRow(ctx,
		`SELECT id, company_name, company_description, created_at, updated_at FROM profiles WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.CompanyName, &p.CompanyDescription, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get profile %s", id)
	}
	return &p, nil
}

func (s *PostgresStore) UpdateProfile(ctx context.Context, id string, companyName, companyDescription *string) (*model.Profile, error) {
	var p model.Profile
	err := s.pool.QueryRow(ctx,
		`UPDATE profiles
		 SET company_name = COALESCE($1, company_name),
		     company_description = COALESCE($2, company_description),
		     updated_at = $3
		 WHERE id = $4
		 RETURNING id, company_name, company_description, created_at, updated_at`,
		companyName, companyDescription, time.Now().UTC(), id,
	).Scan(&p.ID, &p.CompanyName, &p.CompanyDescription, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: update profile %s", id)
	}
	return &p, nil
}

func (s *PostgresStore) CreateJob(ctx context.Context, profileID string) (*model.ReportJob, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO reports (id, profile_id, status, metadata, created_at) VALUES ($1, $2, $3, $4, $5)`,
		id, profileID, string(model.StatusPending), []byte(`{}`), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert report job")
	}

	return &model.ReportJob{
		ID:        id,
		ProfileID: profileID,
		Status:    model.StatusPending,
		Metadata:  map[string]any{},
		CreatedAt: now,
	}, nil
}

// UpdateJobStatus is the single mutation point for job state. It stamps
// completed_at when the new status is terminal and refuses to touch jobs that
// already reached a terminal state.
func (s *PostgresStore) UpdateJobStatus(ctx context.Context, jobID string, status model.ReportStatus, content, errorMessage *string) error {
	var completedAt *time.Time
	if status.Terminal() {
		now := time.Now().UTC()
		completedAt = &now
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE reports SET status = $1, content = $2, error_message = $3, completed_at = $4
		 WHERE id = $5 AND status NOT IN ('COMPLETED', 'FAILED')`,
		string(status), content, errorMessage, completedAt, jobID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update job status %s", jobID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("report job not found or already terminal: %s", jobID)
	}
	return nil
}

func (s *PostgresStore) SetJobMetadata(ctx context.Context, jobID string, metadata map[string]any) error {
	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal metadata")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE reports SET metadata = $1 WHERE id = $2`,
		metaJSON, jobID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: set job metadata %s", jobID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("report job not found: %s", jobID)
	}
	return nil
}

func (s *PostgresStore) GetJob(ctx context.Context, jobID string) (*model.ReportJob, error) {
	j, err := scanJob(s.pool.QueryRow(ctx,
		`SELECT id, profile_id, status, content, error_message, metadata, created_at, completed_at FROM reports WHERE id = $1`,
		jobID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get job %s", jobID)
	}
	return j, nil
}

func (s *PostgresStore) ListJobs(ctx context.Context, profileID string, limit int) ([]model.ReportJob, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, profile_id, status, content, error_message, metadata, created_at, completed_at FROM reports
		 WHERE profile_id = $1 ORDER BY created_at DESC LIMIT $2`,
		profileID, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list jobs")
	}
	defer rows.Close()

	var jobs []model.ReportJob
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan job")
		}
		jobs = append(jobs, *j)
	}
	return jobs, eris.Wrap(rows.Err(), "postgres: list jobs iterate")
}

func (s *PostgresStore) LatestJob(ctx context.Context, profileID string) (*model.ReportJob, error) {
	j, err := scanJob(s.pool.QueryRow(ctx,
		`SELECT id, profile_id, status, content, error_message, metadata, created_at, completed_at FROM reports
		 WHERE profile_id = $1 ORDER BY created_at DESC LIMIT 1`,
		profileID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: latest job for profile %s", profileID)
	}
	return j, nil
}

// scanJob reads one reports row. Works for both pgx.Row and pgx.Rows.
func scanJob(row pgx.Row) (*model.ReportJob, error) {
	var j model.ReportJob
	var metaJSON []byte
	if err := row.Scan(&j.ID, &j.ProfileID, &j.Status, &j.Content, &j.ErrorMessage, &metaJSON, &j.CreatedAt, &j.CompletedAt); err != nil {
		return nil, err
	}
	if len(metaJSON) > 0 {
		if err := json.Unmarshal(metaJSON, &j.Metadata); err != nil {
			return nil, eris.Wrap(err, "unmarshal metadata")
		}
	}
	return &j, nil
}
