package documents

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"trackjob-backend/internal/queue"
	"trackjob-backend/internal/shared/metrics"
	"trackjob-backend/internal/shared/storage/object"
	"trackjob-backend/internal/shared/telemetry"
)

// Service implements the presigned upload and confirm handshake.
type Service struct {
	Gateway object.Gateway
	Repo    Repo
	// Queue receives an upload.ticketed event per ticket when set.
	Queue         queue.Client
	TicketTTL     time.Duration
	VerifyUploads bool
	// ConfirmWindow bounds how long after issue a key may be confirmed. It must
	// stay below the sweeper's grace period. Zero means TicketTTL plus
	// DefaultConfirmMargin.
	ConfirmWindow time.Duration
	Now           func() time.Time
}

const (
	// DefaultConfirmMargin covers a PUT that starts just before the ticket expires.
	DefaultConfirmMargin = 2 * time.Minute
	// maxIssueSkew tolerates clock drift between API replicas.
	maxIssueSkew = time.Minute
)

// UploadRequest asks for a signed PUT URL.
type UploadRequest struct {
	FileName     string
	FileType     string
	DocumentType string
	UserID       string
	FileSize     int64
	RequestID    string
}

// ConfirmRequest records an upload that the client reports as finished.
type ConfirmRequest struct {
	UserID       string
	FileKey      string
	FileName     string
	FileSize     int64
	DocumentType string
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) ttl() time.Duration {
	return object.TTLOrDefault(s.TicketTTL)
}

func (s *Service) confirmWindow() time.Duration {
	if s.ConfirmWindow > 0 {
		return s.ConfirmWindow
	}
	return s.ttl() + DefaultConfirmMargin
}

// RequestUpload validates the request, derives the storage key and asks the
// gateway for a signed PUT URL. Nothing is persisted.
func (s *Service) RequestUpload(ctx context.Context, req UploadRequest) (UploadTicket, error) {
	req.FileName = strings.TrimSpace(req.FileName)
	req.FileType = strings.TrimSpace(req.FileType)
	req.UserID = strings.TrimSpace(req.UserID)

	if req.FileName == "" || req.FileType == "" || req.DocumentType == "" || req.UserID == "" {
		return UploadTicket{}, fmt.Errorf("%w: fileName, fileType, documentType, and userId are required", ErrInvalidInput)
	}
	category := Category(req.DocumentType)
	if !category.Valid() {
		return UploadTicket{}, fmt.Errorf(`%w: documentType must be either "resume" or "coverLetter"`, ErrInvalidInput)
	}
	if req.FileSize < 0 {
		return UploadTicket{}, fmt.Errorf("%w: fileSize must not be negative", ErrInvalidInput)
	}

	key := BuildStorageKey(req.UserID, category, req.FileName, s.now())
	metadata := map[string]string{
		"userId":       req.UserID,
		"documentType": string(category),
		"originalName": url.PathEscape(req.FileName),
	}

	ttl := s.ttl()
	ticket, err := s.Gateway.PresignUpload(ctx, key, req.FileType, metadata, ttl)
	if err != nil {
		metrics.StorageErrors.WithLabelValues("presign_upload").Inc()
		telemetry.Error("documents.upload_url.failed", map[string]any{
			"file_key":   key,
			"user_id":    req.UserID,
			"request_id": req.RequestID,
			"error":      err.Error(),
		})
		return UploadTicket{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	metrics.TicketsIssued.WithLabelValues("upload").Inc()

	s.publishTicketed(ctx, key, req)

	return UploadTicket{
		UploadURL: ticket.URL,
		FileKey:   key,
		ExpiresIn: ttl,
		Method:    ticket.Method,
		Headers:   ticket.Headers,
	}, nil
}

func (s *Service) publishTicketed(ctx context.Context, key string, req UploadRequest) {
	if s.Queue == nil {
		return
	}
	err := s.Queue.Send(ctx, queue.Message{
		Type:         queue.TypeUploadTicketed,
		FileKey:      key,
		UserID:       req.UserID,
		DocumentType: req.DocumentType,
		RequestID:    req.RequestID,
		EnqueuedAt:   s.now().Format(time.RFC3339),
	})
	if err != nil {
		telemetry.Warn("documents.ticketed.enqueue_failed", map[string]any{
			"file_key":   key,
			"request_id": req.RequestID,
			"error":      err.Error(),
		})
	}
}

// Confirm records the metadata row for an uploaded object.
func (s *Service) Confirm(ctx context.Context, req ConfirmRequest) (Document, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	req.FileKey = strings.TrimSpace(req.FileKey)
	req.FileName = strings.TrimSpace(req.FileName)

	if req.UserID == "" || req.FileKey == "" || req.FileName == "" || req.FileSize == 0 || req.DocumentType == "" {
		return Document{}, fmt.Errorf("%w: userId, fileKey, fileName, fileSize, and documentType are required", ErrInvalidInput)
	}
	if req.FileSize < 0 {
		return Document{}, fmt.Errorf("%w: fileSize must be positive", ErrInvalidInput)
	}
	category := Category(req.DocumentType)
	if !category.Valid() {
		return Document{}, fmt.Errorf(`%w: documentType must be either "resume" or "coverLetter"`, ErrInvalidInput)
	}
	if !strings.HasPrefix(req.FileKey, keyPrefix(req.UserID, category)) {
		return Document{}, fmt.Errorf("%w: fileKey does not belong to this user and documentType", ErrInvalidInput)
	}
	if err := object.ValidateKey(req.FileKey); err != nil {
		return Document{}, fmt.Errorf("%w: fileKey is malformed", ErrInvalidInput)
	}
	issued, ok := IssuedAt(req.FileKey)
	if !ok {
		return Document{}, fmt.Errorf("%w: fileKey is malformed", ErrInvalidInput)
	}
	// Past the window the orphan sweeper may already own the object.
	now := s.now()
	if age := now.Sub(issued); age > s.confirmWindow() || age < -maxIssueSkew {
		telemetry.Warn("documents.confirm.expired", map[string]any{
			"file_key": req.FileKey,
			"user_id":  req.UserID,
			"age_ms":   age.Milliseconds(),
		})
		return Document{}, ErrUploadExpired
	}

	if s.VerifyUploads {
		info, err := s.Gateway.Stat(ctx, req.FileKey)
		switch {
		case errors.Is(err, object.ErrObjectNotFound):
			return Document{}, ErrUploadMissing
		case err != nil:
			metrics.StorageErrors.WithLabelValues("stat").Inc()
			return Document{}, fmt.Errorf("%w: %w", ErrStorage, err)
		case info.Size != req.FileSize:
			return Document{}, fmt.Errorf("%w: stored %d bytes, reported %d", ErrSizeMismatch, info.Size, req.FileSize)
		}
	}

	doc, err := s.Repo.Create(ctx, Document{
		UserID:     req.UserID,
		Name:       req.FileName,
		Type:       category,
		URL:        s.Gateway.PublicURL(req.FileKey),
		StorageKey: req.FileKey,
		SizeBytes:  req.FileSize,
		UploadedAt: now,
	})
	if err != nil {
		return Document{}, err
	}
	metrics.UploadsConfirmed.Inc()
	telemetry.Info("documents.confirmed", map[string]any{
		"document_id": doc.ID,
		"user_id":     doc.UserID,
		"file_key":    doc.StorageKey,
		"size":        doc.SizeBytes,
	})
	return doc, nil
}

// List returns a user's documents, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]Document, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	return s.Repo.ListByUser(ctx, userID)
}

// Download issues a signed GET URL for a document. A non-empty requester must own it.
func (s *Service) Download(ctx context.Context, id int64, requester string) (DownloadTicket, error) {
	doc, err := s.lookup(ctx, id, requester)
	if err != nil {
		return DownloadTicket{}, err
	}

	ttl := s.ttl()
	ticket, err := s.Gateway.PresignDownload(ctx, doc.StorageKey, ttl)
	if err != nil {
		metrics.StorageErrors.WithLabelValues("presign_download").Inc()
		return DownloadTicket{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	metrics.TicketsIssued.WithLabelValues("download").Inc()
	return DownloadTicket{
		DownloadURL: ticket.URL,
		FileName:    doc.Name,
		ExpiresIn:   ttl,
	}, nil
}

// Delete removes the stored object and then the row. When the object cannot
// be removed the row is kept so the caller can retry.
func (s *Service) Delete(ctx context.Context, id int64, requester string) error {
	doc, err := s.lookup(ctx, id, requester)
	if err != nil {
		return err
	}

	if err := s.Gateway.Delete(ctx, doc.StorageKey); err != nil {
		metrics.StorageErrors.WithLabelValues("delete").Inc()
		telemetry.Error("documents.delete.storage_failed", map[string]any{
			"document_id": doc.ID,
			"file_key":    doc.StorageKey,
			"error":       err.Error(),
		})
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if err := s.Repo.Delete(ctx, doc.ID); err != nil {
		return err
	}
	metrics.DocumentsDeleted.Inc()
	return nil
}

func (s *Service) lookup(ctx context.Context, id int64, requester string) (Document, error) {
	if id <= 0 {
		return Document{}, fmt.Errorf("%w: invalid document id", ErrInvalidInput)
	}
	doc, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return Document{}, err
	}
	if requester != "" && doc.UserID != requester {
		return Document{}, ErrForbidden
	}
	return doc, nil
}
