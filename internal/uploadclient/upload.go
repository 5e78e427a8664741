package uploadclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/gabriel-vasile/mimetype"
)

// File is the document picked for upload.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// FileFromPath stats path and sniffs its content type.
func FileFromPath(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, err
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("%s is a directory", path)
	}
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return File{}, fmt.Errorf("detect content type: %w", err)
	}
	return File{
		Name:        filepath.Base(path),
		ContentType: mt.String(),
		Size:        info.Size(),
		Open:        func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

// FileFromBytes wraps in-memory content.
func FileFromBytes(name string, data []byte) File {
	return File{
		Name:        name,
		ContentType: mimetype.Detect(data).String(),
		Size:        int64(len(data)),
		Open:        func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}

// Upload drives one document through Idle, FileChosen, TicketReady,
// Uploading and finally Done or Failed.
type Upload struct {
	client   *Client
	userID   string
	category string

	mu       sync.Mutex
	state    State
	file     File
	ticket   Ticket
	document Document
	err      error
	onChange func(from, to State)
}

// NewUpload starts an upload in the Idle state.
func NewUpload(client *Client, userID, category string) *Upload {
	return &Upload{client: client, userID: userID, category: category, state: StateIdle}
}

// OnChange registers a callback invoked on every transition.
func (u *Upload) OnChange(fn func(from, to State)) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.onChange = fn
}

func (u *Upload) State() State {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state
}

// Err is the failure that moved the upload to Failed.
func (u *Upload) Err() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.err
}

// Document is the confirmed row, valid once Done.
func (u *Upload) Document() Document {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.document
}

func (u *Upload) transition(to State) error {
	u.mu.Lock()
	from := u.state
	if !canTransition(from, to) {
		u.mu.Unlock()
		return &TransitionError{From: from, To: to}
	}
	u.state = to
	cb := u.onChange
	u.mu.Unlock()
	if cb != nil {
		cb(from, to)
	}
	return nil
}

func (u *Upload) fail(err error) error {
	u.mu.Lock()
	u.err = err
	u.mu.Unlock()
	if tErr := u.transition(StateFailed); tErr != nil {
		return tErr
	}
	return err
}

// Choose selects the file to upload.
func (u *Upload) Choose(f File) error {
	if f.Name == "" || f.Size <= 0 || f.Open == nil {
		return fmt.Errorf("upload: file must have a name, a positive size and content")
	}
	if err := u.transition(StateFileChosen); err != nil {
		return err
	}
	u.mu.Lock()
	u.file = f
	u.ticket = Ticket{}
	u.document = Document{}
	u.err = nil
	u.mu.Unlock()
	return nil
}

// RequestTicket asks the API for a signed upload URL.
func (u *Upload) RequestTicket(ctx context.Context) error {
	if s := u.State(); s != StateFileChosen {
		return &TransitionError{From: s, To: StateTicketReady}
	}
	u.mu.Lock()
	f := u.file
	u.mu.Unlock()

	ticket, err := u.client.RequestTicket(ctx, u.userID, u.category, f.Name, f.ContentType, f.Size)
	if err != nil {
		return u.fail(err)
	}
	u.mu.Lock()
	u.ticket = ticket
	u.mu.Unlock()
	return u.transition(StateTicketReady)
}

// Send uploads the bytes to storage and confirms the upload with the API.
func (u *Upload) Send(ctx context.Context) error {
	if err := u.transition(StateUploading); err != nil {
		return err
	}
	u.mu.Lock()
	f, ticket := u.file, u.ticket
	u.mu.Unlock()

	body, err := f.Open()
	if err != nil {
		return u.fail(fmt.Errorf("open file: %w", err))
	}
	defer body.Close()

	if err := u.client.Put(ctx, ticket, body, f.Size); err != nil {
		return u.fail(err)
	}
	doc, err := u.client.Confirm(ctx, u.userID, u.category, ticket.FileKey, f.Name, f.Size)
	if err != nil {
		return u.fail(err)
	}
	u.mu.Lock()
	u.document = doc
	u.mu.Unlock()
	return u.transition(StateDone)
}

// Run chooses f and drives the upload to completion.
func (u *Upload) Run(ctx context.Context, f File) (Document, error) {
	if err := u.Choose(f); err != nil {
		return Document{}, err
	}
	if err := u.RequestTicket(ctx); err != nil {
		return Document{}, err
	}
	if err := u.Send(ctx); err != nil {
		return Document{}, err
	}
	return u.Document(), nil
}
