package sqlite_test

import (
	"context"
	"testing"

	dbfs "github.com/garnizeh/empanel/db"
	dbpkg "github.com/garnizeh/empanel/internal/db"
	sqlite "github.com/garnizeh/empanel/internal/repository/sqlite"
	"github.com/garnizeh/empanel/pkg/models"
	"github.com/garnizeh/empanel/pkg/repository"
)

func setupRepo(t *testing.T) (*sqlite.SQLiteRepo, *dbpkg.DB, func()) {
	t.Helper()
	ctx := context.Background()
	d, err := dbpkg.New(ctx, "file::memory:?cache=shared", nil)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}

	if err := dbpkg.Migrate(ctx, d, dbfs.Migrations); err != nil {
		d.Close()
		t.Fatalf("migrate failed: %v", err)
	}

	// start from a clean slate; the shared-cache in-memory db survives
	// between tests in the same process
	for _, tbl := range []string{"documents", "applications", "accounts"} {
		if _, err := d.Exec(ctx, "DELETE FROM "+tbl); err != nil {
			d.Close()
			t.Fatalf("failed to clear %s: %v", tbl, err)
		}
	}

	repo := sqlite.New(d, nil)
	return repo, d, func() { d.Close() }
}

func createAccount(t *testing.T, repo *sqlite.SQLiteRepo, publicID, email, mobile string, official bool) int64 {
	t.Helper()
	id, err := repo.CreateAccount(context.Background(), &models.Account{
		PublicID:     publicID,
		Email:        email,
		Mobile:       mobile,
		PasswordHash: "hash",
		CompanyName:  "Acme Constructions",
		IsOfficial:   official,
	})
	if err != nil {
		t.Fatalf("CreateAccount error: %v", err)
	}
	return id
}

func TestAccountCreateAndUniqueness(t *testing.T) {
	repo, d, cleanup := setupRepo(t)
	defer cleanup()
	ctx := context.Background()

	// nil account should error
	if _, err := repo.CreateAccount(ctx, nil); err == nil {
		t.Fatalf("expected error when creating nil account")
	}

	id := createAccount(t, repo, "VEN-1", "alice@example.com", "9990001111", false)
	if id == 0 {
		t.Fatalf("expected non-zero id")
	}

	// duplicate email
	_, err := repo.CreateAccount(ctx, &models.Account{
		PublicID: "VEN-2", Email: "alice@example.com", Mobile: "9990002222",
		PasswordHash: "h", CompanyName: "Other Co",
	})
	if err != repository.ErrDuplicate {
		t.Fatalf("expected ErrDuplicate for email, got %v", err)
	}

	// duplicate mobile
	_, err = repo.CreateAccount(ctx, &models.Account{
		PublicID: "VEN-3", Email: "bob@example.com", Mobile: "9990001111",
		PasswordHash: "h", CompanyName: "Other Co",
	})
	if err != repository.ErrDuplicate {
		t.Fatalf("expected ErrDuplicate for mobile, got %v", err)
	}

	// no second row was created
	var count int
	row := d.QueryRow(ctx, `SELECT COUNT(*) FROM accounts`)
	if err := row.Scan(&count); err != nil {
		t.Fatalf("count accounts: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 account row, got %d", count)
	}

	// empty PAN/GSTIN on several accounts must not collide
	if _, err := repo.CreateAccount(ctx, &models.Account{
		PublicID: "VEN-4", Email: "carol@example.com", Mobile: "9990003333",
		PasswordHash: "h", CompanyName: "Third Co",
	}); err != nil {
		t.Fatalf("expected second account without PAN to succeed, got %v", err)
	}

	got, err := repo.GetByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetByEmail error: %v", err)
	}
	if got == nil || got.ID != id || got.IsOfficial {
		t.Fatalf("GetByEmail wrong result: %#v", got)
	}

	byID, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if byID == nil || byID.Email != "alice@example.com" {
		t.Fatalf("GetByID wrong result: %#v", byID)
	}

	// missing rows return nil, nil
	missing, err := repo.GetByID(ctx, 99999)
	if err != nil || missing != nil {
		t.Fatalf("expected nil,nil for missing id, got %#v, %v", missing, err)
	}
}

func TestCreateWithDocumentsAtomicity(t *testing.T) {
	repo, d, cleanup := setupRepo(t)
	defer cleanup()
	ctx := context.Background()

	accID := createAccount(t, repo, "VEN-10", "vendor@example.com", "8880001111", false)

	// zero documents is rejected before any write
	if _, err := repo.CreateWithDocuments(ctx, &models.Application{AccountID: accID, Department: models.DepartmentCivil, FormData: "{}"}, nil); err == nil {
		t.Fatalf("expected error for zero documents")
	}

	docs := []models.Document{
		{FileName: "experience.pdf", FilePath: "k1-experience.pdf", MimeType: "application/pdf"},
		{FileName: "license.pdf", FilePath: "k2-license.pdf", MimeType: "application/pdf"},
	}
	appID, err := repo.CreateWithDocuments(ctx, &models.Application{
		AccountID:  accID,
		Department: models.DepartmentCivil,
		FormData:   `{"projectName":"Metro Line Ext","companyExperience":"5 years"}`,
	}, docs)
	if err != nil {
		t.Fatalf("CreateWithDocuments error: %v", err)
	}

	detail, gotDocs, err := repo.GetDetail(ctx, appID)
	if err != nil {
		t.Fatalf("GetDetail error: %v", err)
	}
	if detail == nil || detail.Status != models.StatusPendingVerification {
		t.Fatalf("unexpected detail: %#v", detail)
	}
	if len(gotDocs) != 2 {
		t.Fatalf("expected 2 document rows, got %d", len(gotDocs))
	}
	if detail.CompanyName != "Acme Constructions" || detail.VendorPublicID != "VEN-10" {
		t.Fatalf("owner join missing: %#v", detail)
	}

	// force a failure mid-transaction: drop the documents table so the
	// second insert fails, then assert the application row rolled back
	if _, err := d.Exec(ctx, `DROP TABLE documents`); err != nil {
		t.Fatalf("drop documents: %v", err)
	}

	var before int
	if err := d.QueryRow(ctx, `SELECT COUNT(*) FROM applications`).Scan(&before); err != nil {
		t.Fatalf("count applications: %v", err)
	}

	_, err = repo.CreateWithDocuments(ctx, &models.Application{
		AccountID: accID, Department: models.DepartmentCivil, FormData: "{}",
	}, docs[:1])
	if err == nil {
		t.Fatalf("expected failure after documents table dropped")
	}

	var after int
	if err := d.QueryRow(ctx, `SELECT COUNT(*) FROM applications`).Scan(&after); err != nil {
		t.Fatalf("count applications: %v", err)
	}
	if after != before {
		t.Fatalf("application insert not rolled back: before=%d after=%d", before, after)
	}
}

func TestListVisibilityAndOrdering(t *testing.T) {
	repo, _, cleanup := setupRepo(t)
	defer cleanup()
	ctx := context.Background()

	aID := createAccount(t, repo, "VEN-20", "a@example.com", "7770001111", false)
	bID := createAccount(t, repo, "VEN-21", "b@example.com", "7770002222", false)

	docs := []models.Document{{FileName: "f.pdf", FilePath: "k-f.pdf", MimeType: "application/pdf"}}
	var aApps []int64
	for range 2 {
		id, err := repo.CreateWithDocuments(ctx, &models.Application{AccountID: aID, Department: models.DepartmentCivil, FormData: "{}"}, docs)
		if err != nil {
			t.Fatalf("CreateWithDocuments error: %v", err)
		}
		aApps = append(aApps, id)
	}
	if _, err := repo.CreateWithDocuments(ctx, &models.Application{AccountID: bID, Department: models.DepartmentElectrical, FormData: "{}"}, docs); err != nil {
		t.Fatalf("CreateWithDocuments error: %v", err)
	}

	own, err := repo.ListByAccount(ctx, aID)
	if err != nil {
		t.Fatalf("ListByAccount error: %v", err)
	}
	if len(own) != 2 {
		t.Fatalf("expected 2 applications for account A, got %d", len(own))
	}
	// newest first
	if own[0].ID != aApps[1] || own[1].ID != aApps[0] {
		t.Fatalf("expected newest-first ordering, got %v then %v", own[0].ID, own[1].ID)
	}
	for _, s := range own {
		if s.VendorPublicID != "" || s.CompanyName != "" {
			t.Fatalf("vendor listing should not carry owner join fields: %#v", s)
		}
	}

	all, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 applications in listAll, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Created < all[i].Created {
			t.Fatalf("listAll not newest-first at index %d", i)
		}
	}
	if all[0].VendorPublicID == "" || all[0].CompanyName == "" {
		t.Fatalf("listAll missing owner join: %#v", all[0])
	}
}

func TestUpdateStatus(t *testing.T) {
	repo, _, cleanup := setupRepo(t)
	defer cleanup()
	ctx := context.Background()

	accID := createAccount(t, repo, "VEN-30", "v30@example.com", "6660001111", false)
	docs := []models.Document{{FileName: "f.pdf", FilePath: "k30-f.pdf", MimeType: "application/pdf"}}
	appID, err := repo.CreateWithDocuments(ctx, &models.Application{AccountID: accID, Department: models.DepartmentMechanical, FormData: "{}"}, docs)
	if err != nil {
		t.Fatalf("CreateWithDocuments error: %v", err)
	}

	if err := repo.UpdateStatus(ctx, appID, models.StatusRejected, "Incomplete documents"); err != nil {
		t.Fatalf("UpdateStatus error: %v", err)
	}

	detail, _, err := repo.GetDetail(ctx, appID)
	if err != nil {
		t.Fatalf("GetDetail error: %v", err)
	}
	if detail.Status != models.StatusRejected || detail.RejectionReason != "Incomplete documents" {
		t.Fatalf("unexpected state after rejection: %#v", detail)
	}

	// non-Rejected target clears the stored reason
	if err := repo.UpdateStatus(ctx, appID, models.StatusApproved, ""); err != nil {
		t.Fatalf("UpdateStatus error: %v", err)
	}
	detail, _, err = repo.GetDetail(ctx, appID)
	if err != nil {
		t.Fatalf("GetDetail error: %v", err)
	}
	if detail.Status != models.StatusApproved || detail.RejectionReason != "" {
		t.Fatalf("expected cleared reason, got %#v", detail)
	}

	// unknown application id
	if err := repo.UpdateStatus(ctx, 99999, models.StatusApproved, ""); err != repository.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetDetailMissing(t *testing.T) {
	repo, _, cleanup := setupRepo(t)
	defer cleanup()

	detail, docs, err := repo.GetDetail(context.Background(), 424242)
	if err != nil {
		t.Fatalf("GetDetail error: %v", err)
	}
	if detail != nil || docs != nil {
		t.Fatalf("expected nil detail for missing id, got %#v", detail)
	}
}
