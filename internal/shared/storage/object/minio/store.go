package minio

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"trackjob-backend/internal/shared/storage/object"
	"trackjob-backend/internal/shared/telemetry"
)

// Config points the gateway at any S3-compatible endpoint.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// Store implements object.Gateway on top of minio-go.
type Store struct {
	client     *minio.Client
	bucket     string
	publicBase string
}

// New creates the client without touching the network. Region is fixed so presigning stays offline.
func New(cfg Config) (*Store, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("minio bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return &Store{
		client:     client,
		bucket:     bucket,
		publicBase: fmt.Sprintf("%s://%s/%s", scheme, endpoint, bucket),
	}, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %q: %w", s.bucket, err)
	}
	telemetry.Info("storage.bucket.created", map[string]any{"bucket": s.bucket})
	return nil
}

func (s *Store) PresignUpload(ctx context.Context, key, contentType string, metadata map[string]string, ttl time.Duration) (object.Ticket, error) {
	if err := object.ValidateKey(key); err != nil {
		return object.Ticket{}, err
	}
	ttl = object.TTLOrDefault(ttl)

	headers := http.Header{}
	if contentType != "" {
		headers.Set("Content-Type", contentType)
	}
	for k, v := range metadata {
		headers.Set("X-Amz-Meta-"+k, v)
	}

	u, err := s.client.PresignHeader(ctx, http.MethodPut, s.bucket, key, ttl, nil, headers)
	if err != nil {
		return object.Ticket{}, fmt.Errorf("%w: minio presign put key=%s: %w", object.ErrTicketIssuance, key, err)
	}

	out := make(map[string]string, len(headers))
	for name := range headers {
		out[name] = headers.Get(name)
	}
	return object.Ticket{URL: u.String(), Method: http.MethodPut, Headers: out, ExpiresIn: ttl}, nil
}

func (s *Store) PresignDownload(ctx context.Context, key string, ttl time.Duration) (object.Ticket, error) {
	if err := object.ValidateKey(key); err != nil {
		return object.Ticket{}, err
	}
	ttl = object.TTLOrDefault(ttl)

	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, ttl, nil)
	if err != nil {
		return object.Ticket{}, fmt.Errorf("%w: minio presign get key=%s: %w", object.ErrTicketIssuance, key, err)
	}
	return object.Ticket{URL: u.String(), Method: http.MethodGet, Headers: map[string]string{}, ExpiresIn: ttl}, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := object.ValidateKey(key); err != nil {
		return err
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %q: %w", key, err)
	}
	return nil
}

func (s *Store) Stat(ctx context.Context, key string) (object.ObjectInfo, error) {
	if err := object.ValidateKey(key); err != nil {
		return object.ObjectInfo{}, err
	}
	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return object.ObjectInfo{}, object.ErrObjectNotFound
		}
		return object.ObjectInfo{}, fmt.Errorf("stat object %q: %w", key, err)
	}
	return object.ObjectInfo{
		Key:          key,
		Size:         info.Size,
		ContentType:  info.ContentType,
		LastModified: info.LastModified,
	}, nil
}

// PublicURL returns {scheme}://{endpoint}/{bucket}/{key}.
func (s *Store) PublicURL(key string) string {
	return object.JoinURL(s.publicBase, key)
}

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound
}

var _ object.Gateway = (*Store)(nil)
