package mock

import (
	"context"

	"github.com/garnizeh/empanel/pkg/models"
	"github.com/garnizeh/empanel/pkg/repository"
)

// Test helpers and mocks
type Mocks struct {
	AccRepo *AccountRepo
	AppRepo *ApplicationRepo
}

func NewMocks() *Mocks {
	return &Mocks{
		AccRepo: &AccountRepo{},
		AppRepo: &ApplicationRepo{NextID: 1},
	}
}

type AccountRepo struct {
	Stored    *models.Account
	CreateErr error
}

var _ repository.AccountRepo = (*AccountRepo)(nil)

func (m *AccountRepo) CreateAccount(ctx context.Context, a *models.Account) (int64, error) {
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	stored := *a
	stored.ID = 1
	m.Stored = &stored
	return 1, nil
}

func (m *AccountRepo) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	if m.Stored != nil && m.Stored.ID == id {
		return m.Stored, nil
	}
	return nil, nil
}

func (m *AccountRepo) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	if m.Stored != nil && m.Stored.Email == email {
		return m.Stored, nil
	}
	return nil, nil
}

type ApplicationRepo struct {
	NextID      int64
	CreateErr   error
	CreatedApp  *models.Application
	CreatedDocs []models.Document

	Summaries    []models.ApplicationSummary
	AllSummaries []models.ApplicationSummary
	ListErr      error

	Detail    *models.ApplicationDetail
	Docs      []models.Document
	DetailErr error

	UpdateErr  error
	LastID     int64
	LastStatus models.Status
	LastReason string
}

var _ repository.ApplicationRepo = (*ApplicationRepo)(nil)

func (m *ApplicationRepo) CreateWithDocuments(ctx context.Context, app *models.Application, docs []models.Document) (int64, error) {
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	m.CreatedApp = app
	m.CreatedDocs = docs
	return m.NextID, nil
}

func (m *ApplicationRepo) ListByAccount(ctx context.Context, accountID int64) ([]models.ApplicationSummary, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.Summaries, nil
}

func (m *ApplicationRepo) ListAll(ctx context.Context) ([]models.ApplicationSummary, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.AllSummaries, nil
}

func (m *ApplicationRepo) GetDetail(ctx context.Context, id int64) (*models.ApplicationDetail, []models.Document, error) {
	if m.DetailErr != nil {
		return nil, nil, m.DetailErr
	}
	if m.Detail == nil || m.Detail.ID != id {
		return nil, nil, nil
	}
	return m.Detail, m.Docs, nil
}

func (m *ApplicationRepo) UpdateStatus(ctx context.Context, id int64, status models.Status, reason string) error {
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	m.LastID = id
	m.LastStatus = status
	m.LastReason = reason
	return nil
}
