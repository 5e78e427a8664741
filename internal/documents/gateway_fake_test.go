package documents

import (
	"context"
	"errors"
	"sync"
	"time"

	"trackjob-backend/internal/shared/storage/object"
)

type fakeGateway struct {
	mu         sync.Mutex
	presignErr error
	deleteErr  error
	statInfo   *object.ObjectInfo
	statErr    error
	uploads    []presignCall
	downloads  []string
	deletes    []string
	stats      []string
}

type presignCall struct {
	key         string
	contentType string
	metadata    map[string]string
	ttl         time.Duration
}

func (g *fakeGateway) PresignUpload(ctx context.Context, key, contentType string, metadata map[string]string, ttl time.Duration) (object.Ticket, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.uploads = append(g.uploads, presignCall{key: key, contentType: contentType, metadata: metadata, ttl: ttl})
	if g.presignErr != nil {
		return object.Ticket{}, g.presignErr
	}
	return object.Ticket{
		URL:       "https://storage.test/" + key + "?sig=up",
		Method:    "PUT",
		Headers:   map[string]string{"Content-Type": contentType},
		ExpiresIn: ttl,
	}, nil
}

func (g *fakeGateway) PresignDownload(ctx context.Context, key string, ttl time.Duration) (object.Ticket, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.downloads = append(g.downloads, key)
	if g.presignErr != nil {
		return object.Ticket{}, g.presignErr
	}
	return object.Ticket{URL: "https://storage.test/" + key + "?sig=down", Method: "GET", ExpiresIn: ttl}, nil
}

func (g *fakeGateway) Delete(ctx context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deletes = append(g.deletes, key)
	return g.deleteErr
}

func (g *fakeGateway) Stat(ctx context.Context, key string) (object.ObjectInfo, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stats = append(g.stats, key)
	if g.statErr != nil {
		return object.ObjectInfo{}, g.statErr
	}
	if g.statInfo == nil {
		return object.ObjectInfo{}, object.ErrObjectNotFound
	}
	return *g.statInfo, nil
}

func (g *fakeGateway) PublicURL(key string) string {
	return "https://trackjob.s3.us-east-1.amazonaws.com/" + key
}

func (g *fakeGateway) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.uploads) + len(g.downloads) + len(g.deletes) + len(g.stats)
}

var errProvider = errors.New("AccessDenied: credentials rejected")
