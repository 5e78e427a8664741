package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"trackjob-backend/internal/shared/storage/db"
)

type PGRepo struct {
	DB *sql.DB
}

const columns = `id, user_id, job_id, title, content, category, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (Note, error) {
	var n Note
	var jobID sql.NullInt64
	var category string
	if err := row.Scan(&n.ID, &n.UserID, &jobID, &n.Title, &n.Content, &category, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return Note{}, err
	}
	if jobID.Valid {
		id := jobID.Int64
		n.JobID = &id
	}
	n.Category = Category(category)
	return n, nil
}

func (r *PGRepo) query(ctx context.Context, tail string, args ...any) ([]Note, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+columns+` FROM notes `+tail, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *PGRepo) List(ctx context.Context) ([]Note, error) {
	return r.query(ctx, "ORDER BY created_at DESC, id DESC")
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Note, error) {
	return r.query(ctx, "WHERE user_id = $1 ORDER BY created_at DESC, id DESC", userID)
}

func (r *PGRepo) ListByJob(ctx context.Context, jobID int64) ([]Note, error) {
	return r.query(ctx, "WHERE job_id = $1 ORDER BY created_at DESC, id DESC", jobID)
}

func (r *PGRepo) GetByID(ctx context.Context, id int64) (Note, error) {
	n, err := scanNote(r.DB.QueryRowContext(ctx, `SELECT `+columns+` FROM notes WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Note{}, ErrNotFound
	}
	return n, err
}

func (r *PGRepo) Create(ctx context.Context, note Note) (Note, error) {
	query := `
INSERT INTO notes (user_id, job_id, title, content, category)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + columns
	created, err := scanNote(r.DB.QueryRowContext(ctx, query,
		note.UserID, db.NullInt64(note.JobID), note.Title, note.Content, string(note.Category)))
	if err != nil && db.IsForeignKeyViolation(err) {
		return Note{}, fmt.Errorf("%w: userId or jobId does not exist", ErrInvalidInput)
	}
	return created, err
}

func (r *PGRepo) Update(ctx context.Context, id int64, patch Patch) (Note, error) {
	query := `
UPDATE notes SET
  title = COALESCE($2, title),
  content = COALESCE($3, content),
  category = COALESCE($4, category),
  updated_at = now()
WHERE id = $1
RETURNING ` + columns
	var category any
	if patch.Category != nil && *patch.Category != "" {
		category = string(*patch.Category)
	}
	n, err := scanNote(r.DB.QueryRowContext(ctx, query, id, optional(patch.Title), optional(patch.Content), category))
	if errors.Is(err, sql.ErrNoRows) {
		return Note{}, ErrNotFound
	}
	return n, err
}

func (r *PGRepo) Delete(ctx context.Context, id int64) (Note, error) {
	n, err := scanNote(r.DB.QueryRowContext(ctx, `DELETE FROM notes WHERE id = $1 RETURNING `+columns, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Note{}, ErrNotFound
	}
	return n, err
}

func (r *PGRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM notes WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}

func optional(value *string) any {
	if value == nil || *value == "" {
		return nil
	}
	return *value
}

var _ Repo = (*PGRepo)(nil)
