// Package transcript records outgoing messages as JSON lines.
package transcript

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rogpeppe/go-internal/lockedfile"

	"github.com/jingkaihe/skillq/pkg/hooks"
	"github.com/jingkaihe/skillq/pkg/logger"
)

// Entry is one line of the transcript
type Entry struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Text      string          `json:"text"`
	Segments  []hooks.Segment `json:"segments,omitempty"`
}

// Writer appends each sent message to an underlying writer, or to a file
// that is locked and reopened for every entry
type Writer struct {
	mu     sync.Mutex
	out    io.Writer
	closer io.Closer
	path   string
	now    func() time.Time
}

// NewWriter writes entries to w. Close is a no-op unless w is an io.Closer.
func NewWriter(w io.Writer) *Writer {
	closer, _ := w.(io.Closer)
	return &Writer{
		out:    w,
		closer: closer,
		now:    time.Now,
	}
}

// Open appends to the transcript file at path, creating it and its
// parent directory when missing. An empty path discards all entries.
// Each append takes the file lock, so processes sharing a transcript never
// interleave lines.
func Open(path string) (*Writer, error) {
	if path == "" {
		return NewWriter(io.Discard), nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create transcript directory for %s", path)
	}
	f, err := openLocked(path)
	if err != nil {
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, errors.Wrapf(err, "failed to close transcript %s", path)
	}
	return &Writer{path: path, now: time.Now}, nil
}

func openLocked(path string) (*lockedfile.File, error) {
	f, err := lockedfile.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open transcript %s", path)
	}
	return f, nil
}

// Send records msg
func (w *Writer) Send(ctx context.Context, msg hooks.Message) error {
	entry := Entry{
		ID:        uuid.NewString(),
		Timestamp: w.now().UTC(),
		Text:      msg.Text,
		Segments:  msg.Segments,
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.append(entry); err != nil {
		return err
	}

	logger.G(ctx).WithField("message_id", entry.ID).WithField("segments", len(entry.Segments)).Debug("message sent")
	return nil
}

func (w *Writer) append(entry Entry) error {
	if w.path == "" {
		return errors.Wrap(json.NewEncoder(w.out).Encode(entry), "failed to write transcript entry")
	}

	f, err := openLocked(w.path)
	if err != nil {
		return err
	}
	if err := json.NewEncoder(f).Encode(entry); err != nil {
		f.Close()
		return errors.Wrap(err, "failed to write transcript entry")
	}
	return errors.Wrap(f.Close(), "failed to close transcript")
}

// Close closes the underlying writer. File transcripts hold no open handle
// between entries.
func (w *Writer) Close() error {
	if w.closer == nil {
		return nil
	}
	return w.closer.Close()
}
