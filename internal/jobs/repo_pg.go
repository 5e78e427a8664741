package jobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"trackjob-backend/internal/shared/storage/db"
)

type PGRepo struct {
	DB *sql.DB
}

// Columns is the select list ScanJob expects.
const Columns = `id, companyname, jobtitle, joblink, status, comments, published, author_id, created_at, updated_at`

// QualifiedColumns returns Columns with every name prefixed by alias.
func QualifiedColumns(alias string) string {
	names := strings.Split(Columns, ", ")
	for i, name := range names {
		names[i] = alias + "." + name
	}
	return strings.Join(names, ", ")
}

type rowScanner interface {
	Scan(dest ...any) error
}

// Dest returns scan destinations matching Columns and a func that copies
// nullable values into job once the scan succeeded.
func Dest(job *Job) ([]any, func()) {
	var status string
	var comments, authorID sql.NullString
	dest := []any{
		&job.ID,
		&job.CompanyName,
		&job.JobTitle,
		&job.JobLink,
		&status,
		&comments,
		&job.Published,
		&authorID,
		&job.CreatedAt,
		&job.UpdatedAt,
	}
	return dest, func() {
		job.Status = Status(status)
		job.Comments = comments.String
		job.AuthorID = nil
		if authorID.Valid {
			id := authorID.String
			job.AuthorID = &id
		}
	}
}

// ScanJob reads a row selected with Columns.
func ScanJob(row rowScanner) (Job, error) {
	var job Job
	dest, finish := Dest(&job)
	if err := row.Scan(dest...); err != nil {
		return Job{}, err
	}
	finish()
	return job, nil
}

// Insert writes job through q, which may be a transaction.
func Insert(ctx context.Context, q db.Querier, job Job) (Job, error) {
	query := `
INSERT INTO jobs (companyname, jobtitle, joblink, status, comments, published, author_id)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + Columns
	var author any
	if job.AuthorID != nil {
		author = *job.AuthorID
	}
	return ScanJob(q.QueryRowContext(ctx, query,
		job.CompanyName,
		job.JobTitle,
		job.JobLink,
		string(job.Status),
		db.NullString(job.Comments),
		job.Published,
		author,
	))
}

func (r *PGRepo) list(ctx context.Context, where string, args ...any) ([]Job, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+Columns+` FROM jobs `+where+` ORDER BY created_at DESC, id DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Job{}
	for rows.Next() {
		job, err := ScanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

func (r *PGRepo) List(ctx context.Context) ([]Job, error) {
	return r.list(ctx, "")
}

func (r *PGRepo) ListByAuthor(ctx context.Context, authorID string) ([]Job, error) {
	return r.list(ctx, "WHERE author_id = $1", authorID)
}

func (r *PGRepo) GetByID(ctx context.Context, id int64) (Job, error) {
	job, err := ScanJob(r.DB.QueryRowContext(ctx, `SELECT `+Columns+` FROM jobs WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Job{}, ErrNotFound
	}
	return job, err
}

func (r *PGRepo) Create(ctx context.Context, job Job) (Job, error) {
	created, err := Insert(ctx, r.DB, job)
	if err != nil && db.IsForeignKeyViolation(err) {
		return Job{}, fmt.Errorf("%w: authorId does not reference a user", ErrInvalidInput)
	}
	return created, err
}

func (r *PGRepo) Update(ctx context.Context, id int64, patch Patch) (Job, error) {
	query := `
UPDATE jobs SET
  companyname = COALESCE($2, companyname),
  jobtitle = COALESCE($3, jobtitle),
  joblink = COALESCE($4, joblink),
  status = COALESCE($5, status),
  comments = COALESCE($6, comments),
  published = COALESCE($7, published),
  updated_at = now()
WHERE id = $1
RETURNING ` + Columns
	var status, published any
	if patch.Status != nil {
		status = string(*patch.Status)
	}
	if patch.Published != nil {
		published = *patch.Published
	}
	job, err := ScanJob(r.DB.QueryRowContext(ctx, query, id,
		optional(patch.CompanyName),
		optional(patch.JobTitle),
		optional(patch.JobLink),
		status,
		optional(patch.Comments),
		published,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return Job{}, ErrNotFound
	}
	return job, err
}

func (r *PGRepo) Delete(ctx context.Context, id int64) (Job, error) {
	job, err := ScanJob(r.DB.QueryRowContext(ctx, `DELETE FROM jobs WHERE id = $1 RETURNING `+Columns, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Job{}, ErrNotFound
	}
	return job, err
}

func optional(value *string) any {
	if value == nil || *value == "" {
		return nil
	}
	return *value
}

var _ Repo = (*PGRepo)(nil)
