package documents

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// FileSize accepts a JSON number or a numeric string. Strings are read up to
// the first non-digit and fractional numbers are truncated. Unparseable input
// decodes to zero.
type FileSize int64

func (f *FileSize) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*f = 0
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		n, _ := parseLeadingInt(s)
		*f = FileSize(n)
	default:
		n, err := strconv.ParseFloat(string(b), 64)
		if err != nil {
			return fmt.Errorf("fileSize must be a number: %w", err)
		}
		if math.IsInf(n, 0) || math.IsNaN(n) || math.Abs(n) > math.MaxInt64 {
			*f = 0
			return nil
		}
		*f = FileSize(int64(n))
	}
	return nil
}

func parseLeadingInt(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0, false
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

type uploadURLRequest struct {
	FileName     string   `json:"fileName"`
	FileType     string   `json:"fileType"`
	DocumentType string   `json:"documentType"`
	UserID       string   `json:"userId"`
	FileSize     FileSize `json:"fileSize"`
}

type confirmRequest struct {
	UserID       string   `json:"userId"`
	FileKey      string   `json:"fileKey"`
	FileName     string   `json:"fileName"`
	FileSize     FileSize `json:"fileSize"`
	DocumentType string   `json:"documentType"`
}

// UploadURLResponse is returned by POST /documents/upload-url.
type UploadURLResponse struct {
	UploadURL string            `json:"uploadUrl"`
	FileKey   string            `json:"fileKey"`
	ExpiresIn int64             `json:"expiresIn"`
	Method    string            `json:"method"`
	Headers   map[string]string `json:"headers"`
}

// DocumentResponse is the outward-facing representation of a document.
type DocumentResponse struct {
	ID         int64     `json:"id"`
	UserID     string    `json:"userId"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	URL        string    `json:"url"`
	S3Key      string    `json:"s3Key"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// DownloadResponse is returned by GET /documents/download/:id.
type DownloadResponse struct {
	DownloadURL string `json:"downloadUrl"`
	FileName    string `json:"fileName"`
	ExpiresIn   int64  `json:"expiresIn"`
}

func toResponse(doc Document) DocumentResponse {
	return DocumentResponse{
		ID:         doc.ID,
		UserID:     doc.UserID,
		Name:       doc.Name,
		Type:       string(doc.Type),
		URL:        doc.URL,
		S3Key:      doc.StorageKey,
		Size:       doc.SizeBytes,
		UploadedAt: doc.UploadedAt,
	}
}

func toUploadURLResponse(t UploadTicket) UploadURLResponse {
	headers := t.Headers
	if headers == nil {
		headers = map[string]string{}
	}
	return UploadURLResponse{
		UploadURL: t.UploadURL,
		FileKey:   t.FileKey,
		ExpiresIn: int64(t.ExpiresIn / time.Second),
		Method:    t.Method,
		Headers:   headers,
	}
}

func toDownloadResponse(t DownloadTicket) DownloadResponse {
	return DownloadResponse{
		DownloadURL: t.DownloadURL,
		FileName:    t.FileName,
		ExpiresIn:   int64(t.ExpiresIn / time.Second),
	}
}
