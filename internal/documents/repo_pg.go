package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"trackjob-backend/internal/shared/storage/db"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const documentColumns = `id, user_id, name, type, url, s3_key, size, uploaded_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var category string
	if err := row.Scan(
		&doc.ID,
		&doc.UserID,
		&doc.Name,
		&category,
		&doc.URL,
		&doc.StorageKey,
		&doc.SizeBytes,
		&doc.UploadedAt,
	); err != nil {
		return Document{}, err
	}
	doc.Type = Category(category)
	return doc, nil
}

// Create inserts a new document and returns it with its assigned id.
func (r *PGRepo) Create(ctx context.Context, doc Document) (Document, error) {
	const query = `
INSERT INTO documents (user_id, name, type, url, s3_key, size, uploaded_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id`

	err := r.DB.QueryRowContext(
		ctx,
		query,
		doc.UserID,
		doc.Name,
		string(doc.Type),
		doc.URL,
		doc.StorageKey,
		doc.SizeBytes,
		doc.UploadedAt,
	).Scan(&doc.ID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Document{}, fmt.Errorf("%w: %s", ErrConflict, doc.StorageKey)
		}
		return Document{}, err
	}
	return doc, nil
}

// GetByID fetches a single document.
func (r *PGRepo) GetByID(ctx context.Context, id int64) (Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

// ListByUser lists documents ordered newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE user_id = $1 ORDER BY uploaded_at DESC, id DESC`

	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// Delete removes the row. A missing row yields ErrNotFound.
func (r *PGRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ExistsByKey reports whether a confirmed row references storageKey.
func (r *PGRepo) ExistsByKey(ctx context.Context, storageKey string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM documents WHERE s3_key = $1)`, storageKey).Scan(&exists)
	return exists, err
}

// CountByUser returns how many documents a user owns.
func (r *PGRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}

var _ Repo = (*PGRepo)(nil)
