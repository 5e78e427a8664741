package object

import (
	"context"
	"errors"
	"strings"
	"time"
)

// DefaultTicketTTL bounds how long a signed upload or download URL stays valid.
const DefaultTicketTTL = 5 * time.Minute

var (
	ErrTicketIssuance = errors.New("object: ticket issuance failed")
	ErrObjectNotFound = errors.New("object: not found")
	ErrInvalidKey     = errors.New("object: invalid key")
)

// Ticket is a time-limited signed URL plus what the client must send with it.
type Ticket struct {
	URL       string
	Method    string
	Headers   map[string]string
	ExpiresIn time.Duration
}

// ObjectInfo is the subset of object metadata the API cares about.
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
}

// Gateway wraps an object store that can hand out signed URLs.
type Gateway interface {
	PresignUpload(ctx context.Context, key, contentType string, metadata map[string]string, ttl time.Duration) (Ticket, error)
	PresignDownload(ctx context.Context, key string, ttl time.Duration) (Ticket, error)
	Delete(ctx context.Context, key string) error
	Stat(ctx context.Context, key string) (ObjectInfo, error)
	PublicURL(key string) string
}

// ValidateKey rejects empty keys and keys that could escape their namespace.
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" || strings.HasPrefix(key, "/") {
		return ErrInvalidKey
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return ErrInvalidKey
		}
	}
	return nil
}

// TTLOrDefault returns ttl, or DefaultTicketTTL when ttl is not positive.
func TTLOrDefault(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultTicketTTL
	}
	return ttl
}

// JoinURL appends an object key to a base URL without doubling slashes.
func JoinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
