package s3

import (
	"context"
	"errors"
	"net/url"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"trackjob-backend/internal/shared/storage/object"
)

func newTestStore(endpoint string) *Store {
	cfg := aws.Config{
		Region:      "us-east-1",
		Credentials: aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider("AKID", "SECRET", "")),
	}
	return NewWithConfig(cfg, "trackjob", endpoint)
}

func TestPresignUploadSignsMetadataAndExcludesContentLength(t *testing.T) {
	store := newTestStore("")

	ticket, err := store.PresignUpload(context.Background(), "u1/resume/1700000000000-cv.pdf", "application/pdf", map[string]string{
		"userid":       "u1",
		"documenttype": "resume",
		"originalname": "cv.pdf",
	}, 0)
	if err != nil {
		t.Fatalf("presign: %v", err)
	}

	if ticket.Method != "PUT" {
		t.Fatalf("expected PUT, got %s", ticket.Method)
	}
	if ticket.ExpiresIn != 300*time.Second {
		t.Fatalf("expected default ttl 300s, got %s", ticket.ExpiresIn)
	}

	parsed, err := url.Parse(ticket.URL)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	if !strings.HasPrefix(parsed.Host, "trackjob.s3.") {
		t.Fatalf("unexpected host %s", parsed.Host)
	}
	if parsed.Path != "/u1/resume/1700000000000-cv.pdf" {
		t.Fatalf("unexpected path %s", parsed.Path)
	}
	if got := parsed.Query().Get("X-Amz-Expires"); got != "300" {
		t.Fatalf("expected X-Amz-Expires=300, got %q", got)
	}

	signed := parsed.Query().Get("X-Amz-SignedHeaders")
	if signed == "" {
		t.Fatalf("expected X-Amz-SignedHeaders")
	}
	if strings.Contains(signed, "content-length") {
		t.Fatalf("unexpected content-length in signed headers: %s", signed)
	}
	if !strings.Contains(signed, "host") {
		t.Fatalf("expected host in signed headers: %s", signed)
	}
	if !strings.Contains(signed, "content-type") {
		t.Fatalf("expected content-type in signed headers: %s", signed)
	}
	if ticket.Headers["Content-Type"] != "application/pdf" {
		t.Fatalf("expected Content-Type header in ticket, got %v", ticket.Headers)
	}
	if _, ok := ticket.Headers["Host"]; ok {
		t.Fatalf("host must not be returned to clients")
	}
}

func TestPresignUploadBindsRequestedContentType(t *testing.T) {
	store := newTestStore("")

	ticket, err := store.PresignUpload(context.Background(), "u1/resume/1700000000000-cv.pdf", "application/pdf", map[string]string{"userid": "u1"}, 0)
	if err != nil {
		t.Fatalf("presign: %v", err)
	}
	parsed, err := url.Parse(ticket.URL)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	signed := strings.Split(parsed.Query().Get("X-Amz-SignedHeaders"), ";")
	if !slices.Contains(signed, "content-type") || !slices.Contains(signed, "x-amz-meta-userid") {
		t.Fatalf("expected content-type and metadata signed, got %v", signed)
	}
	if ticket.Headers["Content-Type"] != "application/pdf" || ticket.Headers["X-Amz-Meta-Userid"] != "u1" {
		t.Fatalf("unexpected ticket headers %v", ticket.Headers)
	}

	other, err := store.PresignUpload(context.Background(), "u1/resume/1700000000000-cv.pdf", "image/png", map[string]string{"userid": "u1"}, 0)
	if err != nil {
		t.Fatalf("presign: %v", err)
	}
	otherURL, _ := url.Parse(other.URL)
	if parsed.Query().Get("X-Amz-Signature") == otherURL.Query().Get("X-Amz-Signature") {
		t.Fatalf("signature must depend on the content type")
	}
}

func TestPresignDownload(t *testing.T) {
	store := newTestStore("")

	ticket, err := store.PresignDownload(context.Background(), "u1/resume/1-cv.pdf", time.Minute)
	if err != nil {
		t.Fatalf("presign: %v", err)
	}
	if ticket.Method != "GET" {
		t.Fatalf("expected GET, got %s", ticket.Method)
	}
	parsed, err := url.Parse(ticket.URL)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	if got := parsed.Query().Get("X-Amz-Expires"); got != "60" {
		t.Fatalf("expected X-Amz-Expires=60, got %q", got)
	}
}

func TestPresignRejectsInvalidKey(t *testing.T) {
	store := newTestStore("")
	if _, err := store.PresignUpload(context.Background(), "../etc/passwd", "", nil, 0); !errors.Is(err, object.ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}

func TestPublicURL(t *testing.T) {
	store := newTestStore("")
	if got := store.PublicURL("u1/resume/1-cv.pdf"); got != "https://trackjob.s3.us-east-1.amazonaws.com/u1/resume/1-cv.pdf" {
		t.Fatalf("unexpected public url %q", got)
	}

	custom := newTestStore("http://localhost:4566/")
	if got := custom.PublicURL("u1/resume/1-cv.pdf"); got != "http://localhost:4566/trackjob/u1/resume/1-cv.pdf" {
		t.Fatalf("unexpected endpoint public url %q", got)
	}
}

func TestIsNotFound(t *testing.T) {
	if !isNotFound(&s3types.NotFound{}) {
		t.Fatalf("expected NotFound to match")
	}
	if !isNotFound(&smithy.GenericAPIError{Code: "NoSuchKey"}) {
		t.Fatalf("expected NoSuchKey api error to match")
	}
	if isNotFound(&smithy.GenericAPIError{Code: "AccessDenied"}) {
		t.Fatalf("AccessDenied must not match")
	}
}
