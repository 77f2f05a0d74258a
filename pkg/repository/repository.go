package repository

import (
	"context"
	"errors"

	"github.com/garnizeh/empanel/pkg/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.

// ErrDuplicate is returned when an insert violates a uniqueness constraint
// (email, mobile, PAN or GSTIN on accounts).
var ErrDuplicate = errors.New("duplicate unique field")

// ErrNotFound is returned by single-row updates targeting a missing row.
var ErrNotFound = errors.New("not found")

type AccountRepo interface {
	CreateAccount(ctx context.Context, a *models.Account) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
}

type ApplicationRepo interface {
	// CreateWithDocuments inserts the application row and one document row
	// per entry of docs inside a single transaction. Either every row is
	// committed or none is; a reader never observes an application without
	// its documents.
	CreateWithDocuments(ctx context.Context, app *models.Application, docs []models.Document) (int64, error)

	// ListByAccount returns summaries owned by accountID, newest first.
	ListByAccount(ctx context.Context, accountID int64) ([]models.ApplicationSummary, error)

	// ListAll returns every application across all accounts, newest first,
	// each joined with the owner's company name and public identifier.
	ListAll(ctx context.Context) ([]models.ApplicationSummary, error)

	// GetDetail returns the application joined with its owner summary plus
	// its raw document rows, or nil when the id is unknown.
	GetDetail(ctx context.Context, id int64) (*models.ApplicationDetail, []models.Document, error)

	// UpdateStatus sets status and rejection reason on a single row. The
	// reason is cleared for non-Rejected targets. Returns ErrNotFound when
	// the application does not exist.
	UpdateStatus(ctx context.Context, id int64, status models.Status, reason string) error
}
