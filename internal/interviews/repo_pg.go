package interviews

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"trackjob-backend/internal/shared/storage/db"
)

type PGRepo struct {
	DB *sql.DB
}

const columns = `id, user_id, job_id, interview_date, interview_type, interviewer, notes, feedback, status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInterview(row rowScanner) (Interview, error) {
	var iv Interview
	var jobID sql.NullInt64
	var ivType, interviewer, notes, feedback sql.NullString
	if err := row.Scan(
		&iv.ID,
		&iv.UserID,
		&jobID,
		&iv.InterviewDate,
		&ivType,
		&interviewer,
		&notes,
		&feedback,
		&iv.Status,
		&iv.CreatedAt,
		&iv.UpdatedAt,
	); err != nil {
		return Interview{}, err
	}
	if jobID.Valid {
		id := jobID.Int64
		iv.JobID = &id
	}
	iv.InterviewType = ivType.String
	iv.Interviewer = interviewer.String
	iv.Notes = notes.String
	iv.Feedback = feedback.String
	return iv, nil
}

func (r *PGRepo) query(ctx context.Context, tail string, args ...any) ([]Interview, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+columns+` FROM interviews `+tail, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Interview{}
	for rows.Next() {
		iv, err := scanInterview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, iv)
	}
	return out, rows.Err()
}

func (r *PGRepo) List(ctx context.Context) ([]Interview, error) {
	return r.query(ctx, "ORDER BY interview_date, id")
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Interview, error) {
	return r.query(ctx, "WHERE user_id = $1 ORDER BY interview_date, id", userID)
}

func (r *PGRepo) ListByJob(ctx context.Context, jobID int64) ([]Interview, error) {
	return r.query(ctx, "WHERE job_id = $1 ORDER BY interview_date, id", jobID)
}

func (r *PGRepo) GetByID(ctx context.Context, id int64) (Interview, error) {
	iv, err := scanInterview(r.DB.QueryRowContext(ctx, `SELECT `+columns+` FROM interviews WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Interview{}, ErrNotFound
	}
	return iv, err
}

func (r *PGRepo) Create(ctx context.Context, iv Interview) (Interview, error) {
	query := `
INSERT INTO interviews (user_id, job_id, interview_date, interview_type, interviewer, notes, feedback, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + columns
	created, err := scanInterview(r.DB.QueryRowContext(ctx, query,
		iv.UserID,
		db.NullInt64(iv.JobID),
		iv.InterviewDate,
		db.NullString(iv.InterviewType),
		db.NullString(iv.Interviewer),
		db.NullString(iv.Notes),
		db.NullString(iv.Feedback),
		iv.Status,
	))
	if err != nil && db.IsForeignKeyViolation(err) {
		return Interview{}, fmt.Errorf("%w: userId or jobId does not exist", ErrInvalidInput)
	}
	return created, err
}

func (r *PGRepo) Update(ctx context.Context, id int64, patch Patch) (Interview, error) {
	query := `
UPDATE interviews SET
  interview_date = COALESCE($2, interview_date),
  interview_type = COALESCE($3, interview_type),
  interviewer = COALESCE($4, interviewer),
  notes = COALESCE($5, notes),
  feedback = COALESCE($6, feedback),
  status = COALESCE($7, status),
  updated_at = now()
WHERE id = $1
RETURNING ` + columns
	var date any
	if patch.InterviewDate != nil {
		date = *patch.InterviewDate
	}
	iv, err := scanInterview(r.DB.QueryRowContext(ctx, query, id, date,
		optional(patch.InterviewType),
		optional(patch.Interviewer),
		optional(patch.Notes),
		optional(patch.Feedback),
		optional(patch.Status),
	))
	if errors.Is(err, sql.ErrNoRows) {
		return Interview{}, ErrNotFound
	}
	return iv, err
}

func (r *PGRepo) Delete(ctx context.Context, id int64) (Interview, error) {
	iv, err := scanInterview(r.DB.QueryRowContext(ctx, `DELETE FROM interviews WHERE id = $1 RETURNING `+columns, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Interview{}, ErrNotFound
	}
	return iv, err
}

func (r *PGRepo) CountUpcoming(ctx context.Context, userID string, since time.Time) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM interviews WHERE user_id = $1 AND interview_date >= $2 AND status = $3`,
		userID, since, DefaultStatus,
	).Scan(&count)
	return count, err
}

func optional(value *string) any {
	if value == nil || *value == "" {
		return nil
	}
	return *value
}

var _ Repo = (*PGRepo)(nil)
