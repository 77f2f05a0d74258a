package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/garnizeh/empanel/pkg/models"
	"github.com/garnizeh/empanel/pkg/repository"
)

var (
	// ErrForbidden is returned for any actor that is not an official.
	ErrForbidden = errors.New("status changes require an official account")

	// ErrInvalidStatus is returned when the target is not one of the four
	// known statuses; the stored status is left untouched.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrReasonRequired is returned when a rejection carries no reason.
	ErrReasonRequired = errors.New("rejection reason is required")

	// ErrNotFound is returned for an unknown application id.
	ErrNotFound = errors.New("application not found")
)

// Engine validates and applies status changes. Any prior status may
// transition to any of the four known statuses; the only gates are the
// official role and the mandatory rejection reason.
type Engine struct {
	apps   repository.ApplicationRepo
	logger *slog.Logger
}

func NewEngine(apps repository.ApplicationRepo, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return &Engine{apps: apps, logger: logger}
}

// ChangeStatus applies newStatus to the application in a single row update.
// The rejection reason is stored only for Rejected and cleared for every
// other target. Concurrent updates to the same application are not ordered
// beyond last-write-wins at the storage layer.
func (e *Engine) ChangeStatus(ctx context.Context, actorIsOfficial bool, applicationID int64, newStatus models.Status, reason string) error {
	if !actorIsOfficial {
		return ErrForbidden
	}
	if !models.ValidStatus(newStatus) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, newStatus)
	}

	reason = strings.TrimSpace(reason)
	if newStatus == models.StatusRejected {
		if reason == "" {
			return ErrReasonRequired
		}
	} else {
		reason = ""
	}

	if err := e.apps.UpdateStatus(ctx, applicationID, newStatus, reason); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}

		return fmt.Errorf("update status: %w", err)
	}

	e.logger.Info("status transition applied",
		slog.Int64("application_id", applicationID),
		slog.String("status", string(newStatus)),
	)

	return nil
}
