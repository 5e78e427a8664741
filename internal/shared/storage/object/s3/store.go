package s3

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/aws/smithy-go/middleware"
	smithyhttp "github.com/aws/smithy-go/transport/http"

	"trackjob-backend/internal/shared/storage/object"
)

const (
	DefaultRegion = "us-east-1"
	DefaultBucket = "trackjob"
)

// Config selects the bucket and credentials. Empty keys fall back to the default credential chain.
type Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
}

// Store implements object.Gateway using Amazon S3.
type Store struct {
	client   *s3.Client
	presign  *s3.PresignClient
	bucket   string
	region   string
	endpoint string
}

// New creates an S3-backed gateway. Missing credentials surface at the first provider call.
func New(ctx context.Context, cfg Config) (*Store, error) {
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = DefaultRegion
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if strings.TrimSpace(cfg.AccessKeyID) != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewWithConfig(awsCfg, cfg.Bucket, cfg.Endpoint), nil
}

// NewWithConfig builds the gateway from an already loaded aws.Config.
func NewWithConfig(awsCfg aws.Config, bucket, endpoint string) *Store {
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		bucket = DefaultBucket
	}
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	region := awsCfg.Region
	if region == "" {
		region = DefaultRegion
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
	return &Store{
		client:   client,
		presign:  s3.NewPresignClient(client),
		bucket:   bucket,
		region:   region,
		endpoint: endpoint,
	}
}

// PresignUpload returns a signed PUT URL. Metadata and content type become signed headers.
func (s *Store) PresignUpload(ctx context.Context, key, contentType string, metadata map[string]string, ttl time.Duration) (object.Ticket, error) {
	if err := object.ValidateKey(key); err != nil {
		return object.Ticket{}, err
	}
	ttl = object.TTLOrDefault(ttl)

	opts := []func(*s3.PresignOptions){s3.WithPresignExpires(ttl)}
	if contentType != "" {
		opts = append(opts, withSignedContentType(contentType))
	}
	out, err := s.presign.PresignPutObject(ctx, putInput(s.bucket, key, contentType, metadata), opts...)
	if err != nil {
		return object.Ticket{}, fmt.Errorf("%w: s3 presign put bucket=%s key=%s: %w", object.ErrTicketIssuance, s.bucket, key, err)
	}
	headers := clientHeaders(out.SignedHeader)
	if contentType != "" {
		headers["Content-Type"] = contentType
	}
	return object.Ticket{
		URL:       out.URL,
		Method:    out.Method,
		Headers:   headers,
		ExpiresIn: ttl,
	}, nil
}

// withSignedContentType restores Content-Type ahead of the presigner. The SDK
// strips it from bodiless PUTs during the build step, which would leave the
// URL valid for any content type.
func withSignedContentType(contentType string) func(*s3.PresignOptions) {
	return func(po *s3.PresignOptions) {
		po.ClientOptions = append(po.ClientOptions, func(o *s3.Options) {
			o.APIOptions = append(o.APIOptions, func(stack *middleware.Stack) error {
				return stack.Finalize.Add(middleware.FinalizeMiddlewareFunc("SignContentType",
					func(ctx context.Context, in middleware.FinalizeInput, next middleware.FinalizeHandler) (middleware.FinalizeOutput, middleware.Metadata, error) {
						if req, ok := in.Request.(*smithyhttp.Request); ok {
							req.Header.Set("Content-Type", contentType)
						}
						return next.HandleFinalize(ctx, in)
					}), middleware.Before)
			})
		})
	}
}

// PresignDownload returns a signed GET URL.
func (s *Store) PresignDownload(ctx context.Context, key string, ttl time.Duration) (object.Ticket, error) {
	if err := object.ValidateKey(key); err != nil {
		return object.Ticket{}, err
	}
	ttl = object.TTLOrDefault(ttl)

	out, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return object.Ticket{}, fmt.Errorf("%w: s3 presign get bucket=%s key=%s: %w", object.ErrTicketIssuance, s.bucket, key, err)
	}
	return object.Ticket{
		URL:       out.URL,
		Method:    out.Method,
		Headers:   clientHeaders(out.SignedHeader),
		ExpiresIn: ttl,
	}, nil
}

// Delete removes the object. S3 reports success for keys that do not exist.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := object.ValidateKey(key); err != nil {
		return err
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("s3 delete object bucket=%s key=%s: %w", s.bucket, key, err)
	}
	return nil
}

// Stat issues a HEAD request for key.
func (s *Store) Stat(ctx context.Context, key string) (object.ObjectInfo, error) {
	if err := object.ValidateKey(key); err != nil {
		return object.ObjectInfo{}, err
	}
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return object.ObjectInfo{}, object.ErrObjectNotFound
		}
		return object.ObjectInfo{}, fmt.Errorf("s3 head object bucket=%s key=%s: %w", s.bucket, key, err)
	}
	return object.ObjectInfo{
		Key:          key,
		Size:         aws.ToInt64(out.ContentLength),
		ContentType:  aws.ToString(out.ContentType),
		LastModified: aws.ToTime(out.LastModified),
	}, nil
}

// PublicURL is the canonical object URL. It is not fetchable unless the bucket is public.
func (s *Store) PublicURL(key string) string {
	if s.endpoint != "" {
		return object.JoinURL(s.endpoint+"/"+s.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

func putInput(bucket, key, contentType string, metadata map[string]string) *s3.PutObjectInput {
	input := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if len(metadata) > 0 {
		input.Metadata = metadata
	}
	return input
}

func clientHeaders(signed http.Header) map[string]string {
	headers := make(map[string]string, len(signed))
	for name, values := range signed {
		if strings.EqualFold(name, "Host") || len(values) == 0 {
			continue
		}
		headers[http.CanonicalHeaderKey(name)] = values[0]
	}
	return headers
}

func isNotFound(err error) bool {
	var nf *s3types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var nsk *s3types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}

var _ object.Gateway = (*Store)(nil)
