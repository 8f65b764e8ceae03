package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/JahirJmnz/marketpulse/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. Useful for local
// development and the CLI without a Postgres instance.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := sqlDB.Exec(pragma); err != nil {
			sqlDB.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: sqlDB}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS profiles (
	id                  TEXT PRIMARY KEY,
	company_name        TEXT NOT NULL,
	company_description TEXT NOT NULL,
	created_at          DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at          DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS reports (
	id            TEXT PRIMARY KEY,
	profile_id    TEXT NOT NULL REFERENCES profiles(id),
	status        TEXT NOT NULL DEFAULT 'PENDING',
	content       TEXT,
	error_message TEXT,
	metadata      TEXT NOT NULL DEFAULT '{}',
	created_at    DATETIME NOT NULL DEFAULT (datetime('now')),
	completed_at  DATETIME
);

CREATE INDEX IF NOT EXISTS idx_reports_profile_id ON reports(profile_id);
CREATE INDEX IF NOT EXISTS idx_reports_status ON reports(status);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateProfile(ctx context.Context, companyName, companyDescription string) (*model.Profile, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO profiles (id, company_name, company_description, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, companyName, companyDescription, now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert profile")
	}

	return &model.Profile{
		ID:                 id,
		CompanyName:        companyName,
		CompanyDescription: companyDescription,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

func (s *SQLiteStore) GetProfile(ctx context.Context, id string) (*model.Profile, error) {
	var p model.Profile
	err := s.db.QueryRowContext(ctx,
		`SELECT id, company_name, company_description, created_at, updated_at FROM profiles WHERE id = ?`,
		id,
	).Scan(&p.ID, &p.CompanyName, &p.CompanyDescription, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "sqlite: get profile %s", id)
	}
	return &p, nil
}

func (s *SQLiteStore) UpdateProfile(ctx context.Context, id string, companyName, companyDescription *string) (*model.Profile, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE profiles
		 SET company_name = COALESCE(?, company_name),
		     company_description = COALESCE(?, company_description),
		     updated_at = ?
		 WHERE id = ?`,
		companyName, companyDescription, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: update profile %s", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return nil, nil
	}
	return s.GetProfile(ctx, id)
}

func (s *SQLiteStore) CreateJob(ctx context.Context, profileID string) (*model.ReportJob, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reports (id, profile_id, status, metadata, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, profileID, string(model.StatusPending), `{}`, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert report job")
	}

	return &model.ReportJob{
		ID:        id,
		ProfileID: profileID,
		Status:    model.StatusPending,
		Metadata:  map[string]any{},
		CreatedAt: now,
	}, nil
}

func (s *SQLiteStore) UpdateJobStatus(ctx context.Context, jobID string, status model.ReportStatus, content, errorMessage *string) error {
	var completedAt *time.Time
	if status.Terminal() {
		now := time.Now().UTC()
		completedAt = &now
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE reports SET status = ?, content = ?, error_message = ?, completed_at = ?
		 WHERE id = ? AND status NOT IN ('COMPLETED', 'FAILED')`,
		string(status), content, errorMessage, completedAt, jobID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update job status %s", jobID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Errorf("report job not found or already terminal: %s", jobID)
	}
	return nil
}

func (s *SQLiteStore) SetJobMetadata(ctx context.Context, jobID string, metadata map[string]any) error {
	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal metadata")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE reports SET metadata = ? WHERE id = ?`,
		string(metaJSON), jobID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: set job metadata %s", jobID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Errorf("report job not found: %s", jobID)
	}
	return nil
}

func (s *SQLiteStore) GetJob(ctx context.Context, jobID string) (*model.ReportJob, error) {
	j, err := scanSQLiteJob(s.db.QueryRowContext(ctx,
		`SELECT id, profile_id, status, content, error_message, metadata, created_at, completed_at FROM reports WHERE id = ?`,
		jobID,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "sqlite: get job %s", jobID)
	}
	return j, nil
}

func (s *SQLiteStore) ListJobs(ctx context.Context, profileID string, limit int) ([]model.ReportJob, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, profile_id, status, content, error_message, metadata, created_at, completed_at FROM reports
		 WHERE profile_id = ? ORDER BY created_at DESC LIMIT ?`,
		profileID, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list jobs")
	}
	defer rows.Close()

	var jobs []model.ReportJob
	for rows.Next() {
		j, err := scanSQLiteJob(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan job")
		}
		jobs = append(jobs, *j)
	}
	return jobs, eris.Wrap(rows.Err(), "sqlite: list jobs iterate")
}

func (s *SQLiteStore) LatestJob(ctx context.Context, profileID string) (*model.ReportJob, error) {
	j, err := scanSQLiteJob(s.db.QueryRowContext(ctx,
		`SELECT id, profile_id, status, content, error_message, metadata, created_at, completed_at FROM reports
		 WHERE profile_id = ? ORDER BY created_at DESC LIMIT 1`,
		profileID,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "sqlite: latest job for profile %s", profileID)
	}
	return j, nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteJob(row rowScanner) (*model.ReportJob, error) {
	var j model.ReportJob
	var metaJSON string
	if err := row.Scan(&j.ID, &j.ProfileID, &j.Status, &j.Content, &j.ErrorMessage, &metaJSON, &j.CreatedAt, &j.CompletedAt); err != nil {
		return nil, err
	}
	if metaJSON != "" {
		if err := json.Unmarshal([]byte(metaJSON), &j.Metadata); err != nil {
			return nil, eris.Wrap(err, "unmarshal metadata")
		}
	}
	return &j, nil
}
