package submission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/garnizeh/empanel/internal/storage"
	"github.com/garnizeh/empanel/pkg/models"
	"github.com/garnizeh/empanel/pkg/repository"
	"github.com/qri-io/jsonschema"
)

var (
	// ErrValidation covers every precondition failure detected before any
	// write: unknown department, malformed payload, missing documents.
	ErrValidation = errors.New("invalid submission")

	// ErrStage means document staging failed; no repository transaction was
	// opened.
	ErrStage = errors.New("document staging failed")

	// ErrPersist means the repository transaction failed after staging; the
	// staged files were deleted before this error surfaced.
	ErrPersist = errors.New("submission persistence failed")
)

// Service coordinates the document stage and the application repository into
// one all-or-nothing submission.
type Service struct {
	apps    repository.ApplicationRepo
	stager  *storage.Stager
	schemas map[models.Department]*jsonschema.Schema
	logger  *slog.Logger
}

func NewService(apps repository.ApplicationRepo, stager *storage.Stager, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}

	schemas, err := loadSchemas()
	if err != nil {
		return nil, err
	}

	return &Service{apps: apps, stager: stager, schemas: schemas, logger: logger}, nil
}

// Submit validates the payload, stages the files, and persists the
// application with its document rows in a single transaction. After it
// returns, either the application exists with every document row and blob,
// or nothing was written at all.
func (s *Service) Submit(ctx context.Context, accountID int64, department models.Department, payload json.RawMessage, files []storage.RawFile) (int64, error) {
	if err := s.validate(ctx, department, payload, files); err != nil {
		return 0, err
	}

	batch, err := s.stager.Stage(ctx, files)
	if err != nil {
		if errors.Is(err, storage.ErrTooManyFiles) {
			return 0, fmt.Errorf("%w: %v", ErrValidation, err)
		}

		return 0, fmt.Errorf("%w: %v", ErrStage, err)
	}

	// A client disconnect must not leave a half-written submission: the
	// persist step and any compensating cleanup run to completion.
	persistCtx := context.WithoutCancel(ctx)
	defer batch.Discard(persistCtx)

	docs := make([]models.Document, 0, len(batch.Files()))
	for _, f := range batch.Files() {
		docs = append(docs, models.Document{FileName: f.Name, FilePath: f.Path, MimeType: f.MimeType})
	}

	app := &models.Application{
		AccountID:  accountID,
		Department: department,
		FormData:   string(payload),
		Status:     models.StatusPendingVerification,
	}

	id, err := s.apps.CreateWithDocuments(persistCtx, app, docs)
	if err != nil {
		// the deferred Discard deletes the staged blobs
		s.logger.Error("submission transaction failed", slog.Int64("account_id", accountID), slog.Any("err", err))
		return 0, fmt.Errorf("%w: %v", ErrPersist, err)
	}

	batch.Commit()

	s.logger.Info("application submitted",
		slog.Int64("application_id", id),
		slog.Int64("account_id", accountID),
		slog.String("department", string(department)),
		slog.Int("documents", len(docs)),
	)

	return id, nil
}

func (s *Service) validate(ctx context.Context, department models.Department, payload json.RawMessage, files []storage.RawFile) error {
	if !models.ValidDepartment(department) {
		return fmt.Errorf("%w: unknown department %q", ErrValidation, department)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: at least one document is required", ErrValidation)
	}
	if len(payload) == 0 {
		return fmt.Errorf("%w: form data is required", ErrValidation)
	}

	schema := s.schemas[department]
	keyErrs, err := schema.ValidateBytes(ctx, payload)
	if err != nil {
		return fmt.Errorf("%w: malformed form data: %v", ErrValidation, err)
	}
	if len(keyErrs) > 0 {
		return fmt.Errorf("%w: form data: %s", ErrValidation, keyErrs[0].Message)
	}

	return nil
}
