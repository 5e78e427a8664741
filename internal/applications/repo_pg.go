package applications

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"trackjob-backend/internal/jobs"
	"trackjob-backend/internal/shared/storage/db"
)

type PGRepo struct {
	DB *sql.DB
}

const appColumns = `a.id, a.user_id, a.job_id, a.status, a.applied_date, a.cover_letter, a.resume, a.notes, a.created_at, a.updated_at`

var selectWithJob = `SELECT ` + appColumns + `, ` + jobs.QualifiedColumns("j") + `
FROM applications a
JOIN jobs j ON j.id = a.job_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (Application, error) {
	var app Application
	var job jobs.Job
	var status string
	var coverLetter, resume, notes sql.NullString
	jobDest, finishJob := jobs.Dest(&job)
	dest := append([]any{
		&app.ID,
		&app.UserID,
		&app.JobID,
		&status,
		&app.AppliedDate,
		&coverLetter,
		&resume,
		&notes,
		&app.CreatedAt,
		&app.UpdatedAt,
	}, jobDest...)
	if err := row.Scan(dest...); err != nil {
		return Application{}, err
	}
	finishJob()
	app.Status = jobs.Status(status)
	app.CoverLetter = coverLetter.String
	app.Resume = resume.String
	app.Notes = notes.String
	app.Job = &job
	return app, nil
}

func (r *PGRepo) query(ctx context.Context, tail string, args ...any) ([]Application, error) {
	rows, err := r.DB.QueryContext(ctx, selectWithJob+"\n"+tail, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, app)
	}
	return out, rows.Err()
}

func (r *PGRepo) List(ctx context.Context) ([]Application, error) {
	return r.query(ctx, "ORDER BY a.id")
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Application, error) {
	return r.query(ctx, "WHERE a.user_id = $1 ORDER BY a.applied_date DESC, a.id DESC", userID)
}

func (r *PGRepo) ListByJob(ctx context.Context, jobID int64) ([]Application, error) {
	return r.query(ctx, "WHERE a.job_id = $1 ORDER BY a.id", jobID)
}

func (r *PGRepo) GetByID(ctx context.Context, id int64) (Application, error) {
	app, err := scanApplication(r.DB.QueryRowContext(ctx, selectWithJob+"\nWHERE a.id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return Application{}, ErrNotFound
	}
	return app, err
}

func insert(ctx context.Context, q db.Querier, app Application) (int64, error) {
	const query = `
INSERT INTO applications (user_id, job_id, status, applied_date, cover_letter, resume, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id`
	var id int64
	err := q.QueryRowContext(ctx, query,
		app.UserID,
		app.JobID,
		string(app.Status),
		app.AppliedDate,
		db.NullString(app.CoverLetter),
		db.NullString(app.Resume),
		db.NullString(app.Notes),
	).Scan(&id)
	if err != nil && db.IsForeignKeyViolation(err) {
		return 0, fmt.Errorf("%w: userId or jobId does not exist", ErrInvalidInput)
	}
	return id, err
}

func (r *PGRepo) Create(ctx context.Context, app Application) (Application, error) {
	id, err := insert(ctx, r.DB, app)
	if err != nil {
		return Application{}, err
	}
	return r.GetByID(ctx, id)
}

func (r *PGRepo) CreateWithJob(ctx context.Context, job jobs.Job, app Application) (Application, error) {
	var id int64
	err := db.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		created, err := jobs.Insert(ctx, tx, job)
		if err != nil {
			if db.IsForeignKeyViolation(err) {
				return fmt.Errorf("%w: userId does not exist", ErrInvalidInput)
			}
			return fmt.Errorf("insert job: %w", err)
		}
		app.JobID = created.ID
		id, err = insert(ctx, tx, app)
		return err
	})
	if err != nil {
		return Application{}, err
	}
	return r.GetByID(ctx, id)
}

func (r *PGRepo) Update(ctx context.Context, id int64, patch Patch) (Application, error) {
	const query = `
UPDATE applications SET
  status = COALESCE($2, status),
  applied_date = COALESCE($3, applied_date),
  cover_letter = COALESCE($4, cover_letter),
  resume = COALESCE($5, resume),
  notes = COALESCE($6, notes),
  updated_at = now()
WHERE id = $1`
	var status, applied any
	if patch.Status != nil {
		status = string(*patch.Status)
	}
	if patch.AppliedDate != nil {
		applied = *patch.AppliedDate
	}
	res, err := r.DB.ExecContext(ctx, query, id, status, applied,
		optional(patch.CoverLetter), optional(patch.Resume), optional(patch.Notes))
	if err != nil {
		return Application{}, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return Application{}, err
	} else if n == 0 {
		return Application{}, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *PGRepo) Delete(ctx context.Context, id int64) (Application, error) {
	app, err := r.GetByID(ctx, id)
	if err != nil {
		return Application{}, err
	}
	res, err := r.DB.ExecContext(ctx, `DELETE FROM applications WHERE id = $1`, id)
	if err != nil {
		return Application{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return Application{}, ErrNotFound
	}
	return app, nil
}

func (r *PGRepo) CountByStatus(ctx context.Context, userID string) (map[jobs.Status]int, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT status, COUNT(*) FROM applications WHERE user_id = $1 GROUP BY status`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[jobs.Status]int{}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		out[jobs.Status(status)] = count
	}
	return out, rows.Err()
}

func optional(value *string) any {
	if value == nil || *value == "" {
		return nil
	}
	return *value
}

var _ Repo = (*PGRepo)(nil)
