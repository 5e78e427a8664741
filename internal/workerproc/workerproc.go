package workerproc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"trackjob-backend/internal/documents"
	"trackjob-backend/internal/queue"
	"trackjob-backend/internal/shared/metrics"
	"trackjob-backend/internal/shared/storage/object"
	"trackjob-backend/internal/shared/util"
)

// MessageMeta captures details useful for logging and diagnostics.
type MessageMeta struct {
	BodyLen int
	BodySHA string
}

// ComputeMeta returns the body length and SHA-256 hash.
func ComputeMeta(body string) MessageMeta {
	if body == "" {
		return MessageMeta{BodyLen: 0, BodySHA: ""}
	}
	return MessageMeta{BodyLen: len(body), BodySHA: util.SHA256Hex(body)}
}

// ErrEmptyBody indicates an empty queue payload.
type ErrEmptyBody struct {
	Meta MessageMeta
}

func (e ErrEmptyBody) Error() string { return "empty message body" }

// ErrDecode indicates a JSON decode failure.
type ErrDecode struct {
	Meta MessageMeta
	Err  error
}

func (e ErrDecode) Error() string {
	if e.Err == nil {
		return "decode message"
	}
	return "decode message: " + e.Err.Error()
}

// ErrInvalidMessage indicates a message that can never be processed.
type ErrInvalidMessage struct {
	Meta      MessageMeta
	RequestID string
	Reason    string
}

func (e ErrInvalidMessage) Error() string { return "invalid message: " + e.Reason }

// ErrProcess indicates the sweep failed after successful parsing. It is retryable.
type ErrProcess struct {
	FileKey   string
	RequestID string
	Err       error
}

func (e ErrProcess) Error() string {
	if e.Err == nil {
		return "sweep upload"
	}
	return "sweep upload: " + e.Err.Error()
}

func (e ErrProcess) Unwrap() error { return e.Err }

// ParseMessage validates and decodes the queue payload.
func ParseMessage(body string) (queue.Message, MessageMeta, error) {
	meta := ComputeMeta(body)
	if strings.TrimSpace(body) == "" {
		return queue.Message{}, meta, ErrEmptyBody{Meta: meta}
	}

	msg, err := queue.DecodeMessage([]byte(body))
	if err != nil {
		return queue.Message{}, meta, ErrDecode{Meta: meta, Err: err}
	}
	if msg.Type != queue.TypeUploadTicketed {
		return msg, meta, ErrInvalidMessage{Meta: meta, RequestID: msg.RequestID, Reason: fmt.Sprintf("unsupported type %q", msg.Type)}
	}
	if err := object.ValidateKey(msg.FileKey); err != nil {
		return msg, meta, ErrInvalidMessage{Meta: meta, RequestID: msg.RequestID, Reason: "missing or malformed fileKey"}
	}
	return msg, meta, nil
}

// Outcome describes what a sweep did.
type Outcome string

const (
	OutcomeConfirmed Outcome = "confirmed"
	OutcomeAbsent    Outcome = "absent"
	OutcomeDeleted   Outcome = "deleted"
)

// KeyLookup answers whether a storage key has a confirmed metadata row.
type KeyLookup interface {
	ExistsByKey(ctx context.Context, storageKey string) (bool, error)
}

// Processor handles one decoded upload.ticketed message.
type Processor interface {
	Sweep(ctx context.Context, msg queue.Message) (Outcome, error)
}

// ErrTooEarly means the key is still inside its grace period. The message is retried.
var ErrTooEarly = errors.New("upload still within grace period")

// Sweeper removes objects whose upload ticket was never confirmed.
type Sweeper struct {
	Keys    KeyLookup
	Gateway object.Gateway
	// Grace is the minimum key age before deletion. Confirms are only
	// accepted for younger keys, so the lookup below cannot race one.
	Grace time.Duration
	Now   func() time.Time
}

// Sweep keeps confirmed uploads and deletes unconfirmed objects.
func (s *Sweeper) Sweep(ctx context.Context, msg queue.Message) (Outcome, error) {
	if s.Grace > 0 {
		if issued, ok := documents.IssuedAt(msg.FileKey); ok {
			now := time.Now()
			if s.Now != nil {
				now = s.Now()
			}
			if age := now.Sub(issued); age < s.Grace {
				return "", fmt.Errorf("%w: age %s", ErrTooEarly, age.Round(time.Second))
			}
		}
	}

	confirmed, err := s.Keys.ExistsByKey(ctx, msg.FileKey)
	if err != nil {
		return "", fmt.Errorf("lookup key: %w", err)
	}
	if confirmed {
		return OutcomeConfirmed, nil
	}

	if _, err := s.Gateway.Stat(ctx, msg.FileKey); err != nil {
		if errors.Is(err, object.ErrObjectNotFound) {
			return OutcomeAbsent, nil
		}
		metrics.StorageErrors.WithLabelValues("stat").Inc()
		return "", fmt.Errorf("stat object: %w", err)
	}
	if err := s.Gateway.Delete(ctx, msg.FileKey); err != nil {
		metrics.StorageErrors.WithLabelValues("delete").Inc()
		return "", fmt.Errorf("delete object: %w", err)
	}
	return OutcomeDeleted, nil
}

type parsedMessageKey struct{}

// WithParsedMessage stores a decoded message in the context for reuse.
func WithParsedMessage(ctx context.Context, msg queue.Message) context.Context {
	return context.WithValue(ctx, parsedMessageKey{}, msg)
}

func parsedMessageFromContext(ctx context.Context) (queue.Message, bool) {
	if ctx == nil {
		return queue.Message{}, false
	}
	msg, ok := ctx.Value(parsedMessageKey{}).(queue.Message)
	return msg, ok
}

// HandleMessage parses, validates, and sweeps a message payload.
func HandleMessage(ctx context.Context, processor Processor, body string) (Outcome, error) {
	if processor == nil {
		return "", errors.New("sweeper not configured")
	}

	msg, ok := parsedMessageFromContext(ctx)
	if !ok {
		var err error
		msg, _, err = ParseMessage(body)
		if err != nil {
			return "", err
		}
	}

	outcome, err := processor.Sweep(ctx, msg)
	if err != nil {
		metrics.OrphansSwept.WithLabelValues("failed").Inc()
		return "", ErrProcess{FileKey: msg.FileKey, RequestID: msg.RequestID, Err: err}
	}
	metrics.OrphansSwept.WithLabelValues(string(outcome)).Inc()
	return outcome, nil
}

// Unrecoverable reports whether err means the message should be dropped rather than retried.
func Unrecoverable(err error) bool {
	switch err.(type) {
	case ErrEmptyBody, ErrDecode, ErrInvalidMessage:
		return true
	default:
		return false
	}
}
