package local

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"trackjob-backend/internal/shared/storage/object"
)

var (
	ErrSignatureExpired = errors.New("local: signature expired")
	ErrSignatureInvalid = errors.New("local: signature invalid")
)

// Store implements object.Gateway on the local filesystem. Signed URLs point
// back at the API, which serves them through Handler.
type Store struct {
	baseDir string
	secret  []byte
	baseURL string
	now     func() time.Time
}

// New creates a local gateway rooted at baseDir. baseURL is the API's public origin.
func New(baseDir, secret, baseURL string) (*Store, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("local object store secret is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}
	return &Store{
		baseDir: baseDir,
		secret:  []byte(secret),
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}, nil
}

// WithClock replaces the time source, for tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) PresignUpload(ctx context.Context, key, contentType string, metadata map[string]string, ttl time.Duration) (object.Ticket, error) {
	if err := object.ValidateKey(key); err != nil {
		return object.Ticket{}, err
	}
	if err := ctx.Err(); err != nil {
		return object.Ticket{}, fmt.Errorf("%w: %w", object.ErrTicketIssuance, err)
	}
	ttl = object.TTLOrDefault(ttl)
	headers := map[string]string{}
	if contentType != "" {
		headers["Content-Type"] = contentType
	}
	return object.Ticket{
		URL:       s.signedURL(http.MethodPut, key, ttl),
		Method:    http.MethodPut,
		Headers:   headers,
		ExpiresIn: ttl,
	}, nil
}

func (s *Store) PresignDownload(ctx context.Context, key string, ttl time.Duration) (object.Ticket, error) {
	if err := object.ValidateKey(key); err != nil {
		return object.Ticket{}, err
	}
	if err := ctx.Err(); err != nil {
		return object.Ticket{}, fmt.Errorf("%w: %w", object.ErrTicketIssuance, err)
	}
	ttl = object.TTLOrDefault(ttl)
	return object.Ticket{
		URL:       s.signedURL(http.MethodGet, key, ttl),
		Method:    http.MethodGet,
		Headers:   map[string]string{},
		ExpiresIn: ttl,
	}, nil
}

// Delete removes the file. Missing files are not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

func (s *Store) Stat(ctx context.Context, key string) (object.ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return object.ObjectInfo{}, err
	}
	full, err := s.path(key)
	if err != nil {
		return object.ObjectInfo{}, err
	}
	info, err := os.Stat(full)
	if err != nil {
		if os.IsNotExist(err) {
			return object.ObjectInfo{}, object.ErrObjectNotFound
		}
		return object.ObjectInfo{}, fmt.Errorf("stat %s: %w", key, err)
	}
	return object.ObjectInfo{
		Key:          key,
		Size:         info.Size(),
		ContentType:  contentTypeFor(key),
		LastModified: info.ModTime(),
	}, nil
}

func (s *Store) PublicURL(key string) string {
	return object.JoinURL(s.baseURL+"/objects", key)
}

// Put writes r to key, replacing any existing object.
func (s *Store) Put(ctx context.Context, key string, r io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	full, err := s.path(key)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return 0, fmt.Errorf("mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return 0, fmt.Errorf("create temp: %w", err)
	}
	written, err := io.Copy(tmp, r)
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return 0, fmt.Errorf("write body: %w", err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		_ = os.Remove(tmp.Name())
		return 0, fmt.Errorf("rename: %w", err)
	}
	return written, nil
}

// Open opens a stored object for reading.
func (s *Store) Open(ctx context.Context, key string) (*os.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := s.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, object.ErrObjectNotFound
		}
		return nil, err
	}
	return f, nil
}

// Verify checks a signature produced by PresignUpload or PresignDownload.
func (s *Store) Verify(method, key, expires, signature string) error {
	exp, err := strconv.ParseInt(expires, 10, 64)
	if err != nil {
		return ErrSignatureInvalid
	}
	want := s.sign(method, key, exp)
	got, err := hex.DecodeString(signature)
	if err != nil || !hmac.Equal(want, got) {
		return ErrSignatureInvalid
	}
	if s.now().Unix() > exp {
		return ErrSignatureExpired
	}
	return nil
}

func (s *Store) signedURL(method, key string, ttl time.Duration) string {
	exp := s.now().Add(ttl).Unix()
	q := url.Values{}
	q.Set("expires", strconv.FormatInt(exp, 10))
	q.Set("signature", hex.EncodeToString(s.sign(method, key, exp)))
	return s.PublicURL(key) + "?" + q.Encode()
}

func (s *Store) sign(method, key string, expires int64) []byte {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s\n%s\n%d", method, key, expires)
	return mac.Sum(nil)
}

func (s *Store) path(key string) (string, error) {
	if err := object.ValidateKey(key); err != nil {
		return "", err
	}
	clean := filepath.Clean(filepath.FromSlash(key))
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", object.ErrInvalidKey
	}
	return filepath.Join(s.baseDir, clean), nil
}

func contentTypeFor(key string) string {
	if ct := mime.TypeByExtension(filepath.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

var _ object.Gateway = (*Store)(nil)
