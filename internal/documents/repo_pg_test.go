package documents

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	return &PGRepo{DB: db}, mock, func() { db.Close() }
}

var docColumns = []string{"id", "user_id", "name", "type", "url", "s3_key", "size", "uploaded_at"}

func TestPGRepoCreateReturnsID(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	uploadedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO documents (user_id, name, type, url, s3_key, size, uploaded_at)")).
		WithArgs("u1", "cv.pdf", "resume", "https://x/u1/resume/1-cv.pdf", "u1/resume/1-cv.pdf", int64(12345), uploadedAt).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	doc, err := repo.Create(context.Background(), Document{
		UserID:     "u1",
		Name:       "cv.pdf",
		Type:       CategoryResume,
		URL:        "https://x/u1/resume/1-cv.pdf",
		StorageKey: "u1/resume/1-cv.pdf",
		SizeBytes:  12345,
		UploadedAt: uploadedAt,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if doc.ID != 7 {
		t.Fatalf("expected id 7, got %d", doc.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoCreateMapsUniqueViolation(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	mock.ExpectQuery("INSERT INTO documents").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "documents_s3_key_unique"})

	_, err := repo.Create(context.Background(), Document{UserID: "u1", StorageKey: "u1/resume/1-cv.pdf"})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	mock.ExpectQuery("SELECT id, user_id, name, type, url, s3_key, size, uploaded_at FROM documents WHERE id = \\$1").
		WithArgs(int64(9)).
		WillReturnError(sql.ErrNoRows)

	if _, err := repo.GetByID(context.Background(), 9); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoListByUserOrdersNewestFirst(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	newer := time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC)
	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE user_id = $1 ORDER BY uploaded_at DESC, id DESC")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(docColumns).
			AddRow(int64(2), "u1", "b.pdf", "coverLetter", "u2", "u1/coverLetter/2-b.pdf", int64(20), newer).
			AddRow(int64(1), "u1", "a.pdf", "resume", "u1", "u1/resume/1-a.pdf", int64(10), older))

	docs, err := repo.ListByUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != 2 || docs[0].ID != 2 || docs[0].Type != CategoryCoverLetter || docs[1].StorageKey != "u1/resume/1-a.pdf" {
		t.Fatalf("unexpected docs %+v", docs)
	}
}

func TestPGRepoDeleteMissing(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM documents WHERE id = $1")).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), 3); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoExistsByKey(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM documents WHERE s3_key = $1)")).
		WithArgs("u1/resume/1-a.pdf").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.ExistsByKey(context.Background(), "u1/resume/1-a.pdf")
	if err != nil || !ok {
		t.Fatalf("expected exists, got %v %v", ok, err)
	}
}
