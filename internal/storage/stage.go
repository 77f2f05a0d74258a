package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrTooManyFiles is returned when a submission exceeds the per-submission cap.
var ErrTooManyFiles = errors.New("too many files in submission")

// RawFile is one uploaded file before staging.
type RawFile struct {
	Name     string
	MimeType string
	Size     int64
	Content  io.Reader
}

// StagedFile is a raw file persisted to durable storage.
type StagedFile struct {
	Name     string
	MimeType string
	Path     string
}

// Stager writes uploaded files to durable storage before the submission
// transaction runs.
type Stager struct {
	store    Store
	maxFiles int
	logger   *slog.Logger
}

func NewStager(store Store, maxFiles int, logger *slog.Logger) *Stager {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	if maxFiles <= 0 {
		maxFiles = 5
	}
	return &Stager{store: store, maxFiles: maxFiles, logger: logger}
}

// Stage persists every file and returns a batch guard. If any individual
// write fails, files staged so far in this call are deleted before the error
// is surfaced; the stage never leaves orphaned blobs from its own partial
// failure. Keys are freshly generated on every call, so a retry must discard
// the prior batch first.
func (s *Stager) Stage(ctx context.Context, files []RawFile) (*StagedBatch, error) {
	if len(files) == 0 {
		return nil, errors.New("no files to stage")
	}
	if len(files) > s.maxFiles {
		return nil, fmt.Errorf("%w: got %d, max %d", ErrTooManyFiles, len(files), s.maxFiles)
	}

	batch := &StagedBatch{store: s.store, logger: s.logger}
	for _, f := range files {
		key := uuid.NewString() + "-" + sanitizeName(f.Name)
		path, err := s.store.Write(ctx, key, f.Content)
		if err != nil {
			batch.Discard(ctx)
			return nil, fmt.Errorf("stage %q: %w", f.Name, err)
		}

		batch.staged = append(batch.staged, StagedFile{Name: f.Name, MimeType: f.MimeType, Path: path})
	}

	return batch, nil
}

// StagedBatch is a scoped guard over one call's staged files. Callers defer
// Discard and call Commit only after the repository transaction succeeds;
// Discard after Commit is a no-op.
type StagedBatch struct {
	store     Store
	logger    *slog.Logger
	staged    []StagedFile
	committed bool
}

// Files returns the staged file records in staging order.
func (b *StagedBatch) Files() []StagedFile {
	return b.staged
}

// Commit disarms the guard: the staged blobs are now owned by committed
// document rows.
func (b *StagedBatch) Commit() {
	b.committed = true
}

// Discard deletes every staged blob unless the batch was committed.
func (b *StagedBatch) Discard(ctx context.Context) {
	if b.committed {
		return
	}

	for _, f := range b.staged {
		if err := b.store.Delete(ctx, f.Path); err != nil {
			// nothing the caller can do; the blob is orphaned and logged
			b.logger.Error("failed to delete staged file", slog.String("path", f.Path), slog.Any("err", err))
		}
	}
	b.staged = nil
}

// sanitizeName strips any path components and characters that do not survive
// a URL path segment.
func sanitizeName(name string) string {
	name = filepath.Base(name)
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		}
		return '_'
	}, name)
	if name == "" || name == "." {
		name = "file"
	}
	return name
}
