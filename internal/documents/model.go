package documents

import "time"

// Category is the logical document type.
type Category string

const (
	CategoryResume      Category = "resume"
	CategoryCoverLetter Category = "coverLetter"
)

// Valid reports whether c is one of the supported categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryResume, CategoryCoverLetter:
		return true
	default:
		return false
	}
}

// Document is the metadata row recorded once an upload is confirmed.
type Document struct {
	ID         int64
	UserID     string
	Name       string
	Type       Category
	URL        string
	StorageKey string
	SizeBytes  int64
	UploadedAt time.Time
}

// UploadTicket is what a client needs to PUT bytes straight to storage.
type UploadTicket struct {
	UploadURL string
	FileKey   string
	ExpiresIn time.Duration
	Method    string
	Headers   map[string]string
}

// DownloadTicket is a signed GET URL for a stored document.
type DownloadTicket struct {
	DownloadURL string
	FileName    string
	ExpiresIn   time.Duration
}
