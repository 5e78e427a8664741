package workerproc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"trackjob-backend/internal/queue"
	"trackjob-backend/internal/shared/storage/object"
)

type fakeKeys struct {
	confirmed map[string]bool
	err       error
}

func (f fakeKeys) ExistsByKey(ctx context.Context, key string) (bool, error) {
	return f.confirmed[key], f.err
}

type fakeGateway struct {
	object.Gateway
	objects   map[string]int64
	statErr   error
	deleteErr error
	deleted   []string
}

func (g *fakeGateway) Stat(ctx context.Context, key string) (object.ObjectInfo, error) {
	if g.statErr != nil {
		return object.ObjectInfo{}, g.statErr
	}
	size, ok := g.objects[key]
	if !ok {
		return object.ObjectInfo{}, object.ErrObjectNotFound
	}
	return object.ObjectInfo{Key: key, Size: size, LastModified: time.Now()}, nil
}

func (g *fakeGateway) Delete(ctx context.Context, key string) error {
	if g.deleteErr != nil {
		return g.deleteErr
	}
	g.deleted = append(g.deleted, key)
	delete(g.objects, key)
	return nil
}

func body(t *testing.T, msg queue.Message) string {
	t.Helper()
	payload, err := queue.EncodeMessage(msg)
	require.NoError(t, err)
	return string(payload)
}

func TestParseMessageErrors(t *testing.T) {
	_, _, err := ParseMessage("  ")
	require.IsType(t, ErrEmptyBody{}, err)

	_, meta, err := ParseMessage("{not json")
	require.IsType(t, ErrDecode{}, err)
	require.Equal(t, 9, meta.BodyLen)
	require.Len(t, meta.BodySHA, 64)

	_, _, err = ParseMessage(body(t, queue.Message{Type: "analysis.requested", FileKey: "u1/resume/1-a.pdf"}))
	require.IsType(t, ErrInvalidMessage{}, err)

	_, _, err = ParseMessage(body(t, queue.Message{Type: queue.TypeUploadTicketed, FileKey: "../x"}))
	require.IsType(t, ErrInvalidMessage{}, err)
	require.True(t, Unrecoverable(err))
}

func TestSweepKeepsConfirmedUploads(t *testing.T) {
	gw := &fakeGateway{objects: map[string]int64{"u1/resume/1-a.pdf": 10}}
	sweeper := &Sweeper{Keys: fakeKeys{confirmed: map[string]bool{"u1/resume/1-a.pdf": true}}, Gateway: gw}

	outcome, err := HandleMessage(context.Background(), sweeper, body(t, queue.Message{Type: queue.TypeUploadTicketed, FileKey: "u1/resume/1-a.pdf"}))
	require.NoError(t, err)
	require.Equal(t, OutcomeConfirmed, outcome)
	require.Empty(t, gw.deleted)
}

func TestSweepDeletesUnconfirmedObject(t *testing.T) {
	gw := &fakeGateway{objects: map[string]int64{"u1/resume/1-a.pdf": 10}}
	sweeper := &Sweeper{Keys: fakeKeys{}, Gateway: gw}

	outcome, err := HandleMessage(context.Background(), sweeper, body(t, queue.Message{Type: queue.TypeUploadTicketed, FileKey: "u1/resume/1-a.pdf"}))
	require.NoError(t, err)
	require.Equal(t, OutcomeDeleted, outcome)
	require.Equal(t, []string{"u1/resume/1-a.pdf"}, gw.deleted)
}

func TestSweepAbsentObject(t *testing.T) {
	gw := &fakeGateway{objects: map[string]int64{}}
	sweeper := &Sweeper{Keys: fakeKeys{}, Gateway: gw}

	outcome, err := HandleMessage(context.Background(), sweeper, body(t, queue.Message{Type: queue.TypeUploadTicketed, FileKey: "u1/resume/1-a.pdf"}))
	require.NoError(t, err)
	require.Equal(t, OutcomeAbsent, outcome)
}

func TestSweepFailuresAreRetryable(t *testing.T) {
	boom := errors.New("boom")
	cases := []*Sweeper{
		{Keys: fakeKeys{err: boom}, Gateway: &fakeGateway{}},
		{Keys: fakeKeys{}, Gateway: &fakeGateway{statErr: boom}},
		{Keys: fakeKeys{}, Gateway: &fakeGateway{objects: map[string]int64{"u1/resume/1-a.pdf": 1}, deleteErr: boom}},
	}
	for _, sweeper := range cases {
		_, err := HandleMessage(context.Background(), sweeper, body(t, queue.Message{Type: queue.TypeUploadTicketed, FileKey: "u1/resume/1-a.pdf"}))
		var procErr ErrProcess
		require.ErrorAs(t, err, &procErr)
		require.ErrorIs(t, err, boom)
		require.False(t, Unrecoverable(err))
	}
}

func TestHandleMessageUsesParsedMessageFromContext(t *testing.T) {
	gw := &fakeGateway{objects: map[string]int64{}}
	sweeper := &Sweeper{Keys: fakeKeys{}, Gateway: gw}
	ctx := WithParsedMessage(context.Background(), queue.Message{Type: queue.TypeUploadTicketed, FileKey: "u1/resume/1-a.pdf"})

	outcome, err := HandleMessage(ctx, sweeper, "")
	require.NoError(t, err)
	require.Equal(t, OutcomeAbsent, outcome)
}

func TestSweepWaitsOutGracePeriod(t *testing.T) {
	issued := time.UnixMilli(1770112800000)
	key := "u1/resume/1770112800000-cv.pdf"
	now := issued.Add(5 * time.Minute)
	gw := &fakeGateway{objects: map[string]int64{key: 10}}
	sweeper := &Sweeper{
		Keys:    fakeKeys{},
		Gateway: gw,
		Grace:   15 * time.Minute,
		Now:     func() time.Time { return now },
	}
	msg := body(t, queue.Message{Type: queue.TypeUploadTicketed, FileKey: key})

	_, err := HandleMessage(context.Background(), sweeper, msg)
	require.ErrorIs(t, err, ErrTooEarly)
	require.False(t, Unrecoverable(err))
	require.Empty(t, gw.deleted)

	now = issued.Add(15 * time.Minute)
	outcome, err := HandleMessage(context.Background(), sweeper, msg)
	require.NoError(t, err)
	require.Equal(t, OutcomeDeleted, outcome)
	require.Equal(t, []string{key}, gw.deleted)
}
