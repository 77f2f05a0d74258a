package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/garnizeh/empanel/pkg/models"
	"github.com/garnizeh/empanel/pkg/repository"
)

// CreateWithDocuments inserts the application and its document rows in one
// transaction. The commit is the single visibility point: no reader ever
// observes the application without its documents.
func (r *SQLiteRepo) CreateWithDocuments(ctx context.Context, app *models.Application, docs []models.Document) (int64, error) {
	if app == nil {
		return 0, fmt.Errorf("application is nil")
	}
	if len(docs) == 0 {
		return 0, fmt.Errorf("at least one document is required")
	}

	tx, err := r.conn.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}

	ts := now()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO applications (account_id, department, form_data, status, created) VALUES (?, ?, ?, ?, ?)`,
		app.AccountID, string(app.Department), app.FormData, string(models.StatusPendingVerification), ts)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("insert application: %w", err)
	}

	appID, err := res.LastInsertId()
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}

	for _, d := range docs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO documents (application_id, file_name, file_path, mime_type, created) VALUES (?, ?, ?, ?, ?)`,
			appID, d.FileName, d.FilePath, d.MimeType, ts); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("insert document %q: %w", d.FileName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit submission: %w", err)
	}

	return appID, nil
}

func (r *SQLiteRepo) ListByAccount(ctx context.Context, accountID int64) ([]models.ApplicationSummary, error) {
	rows, err := r.conn.QueryRows(ctx,
		`SELECT id, department, status, created FROM applications WHERE account_id = ? ORDER BY created DESC, id DESC`,
		accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ApplicationSummary
	for rows.Next() {
		var s models.ApplicationSummary
		if err := rows.Scan(&s.ID, &s.Department, &s.Status, &s.Created); err != nil {
			return nil, err
		}

		out = append(out, s)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) ListAll(ctx context.Context) ([]models.ApplicationSummary, error) {
	rows, err := r.conn.QueryRows(ctx,
		`SELECT a.id, a.department, a.status, a.created, u.public_id, u.company_name
		 FROM applications a JOIN accounts u ON a.account_id = u.id
		 ORDER BY a.created DESC, a.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ApplicationSummary
	for rows.Next() {
		var s models.ApplicationSummary
		if err := rows.Scan(&s.ID, &s.Department, &s.Status, &s.Created, &s.VendorPublicID, &s.CompanyName); err != nil {
			return nil, err
		}

		out = append(out, s)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) GetDetail(ctx context.Context, id int64) (*models.ApplicationDetail, []models.Document, error) {
	row := r.conn.QueryRow(ctx,
		`SELECT a.id, a.account_id, a.department, a.form_data, a.status, a.rejection_reason, a.created, u.public_id, u.company_name
		 FROM applications a JOIN accounts u ON a.account_id = u.id
		 WHERE a.id = ?`, id)

	var d models.ApplicationDetail
	var reason sql.NullString
	if err := row.Scan(&d.ID, &d.AccountID, &d.Department, &d.FormData, &d.Status, &reason, &d.Created, &d.VendorPublicID, &d.CompanyName); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, nil
		}

		return nil, nil, err
	}
	d.RejectionReason = reason.String

	rows, err := r.conn.QueryRows(ctx,
		`SELECT id, application_id, file_name, file_path, mime_type, created FROM documents WHERE application_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		var doc models.Document
		if err := rows.Scan(&doc.ID, &doc.ApplicationID, &doc.FileName, &doc.FilePath, &doc.MimeType, &doc.Created); err != nil {
			return nil, nil, err
		}

		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	return &d, docs, nil
}

func (r *SQLiteRepo) UpdateStatus(ctx context.Context, id int64, status models.Status, reason string) error {
	res, err := r.conn.Exec(ctx,
		`UPDATE applications SET status = ?, rejection_reason = ? WHERE id = ?`,
		string(status), nullable(reason), id)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}

	r.logger.Info("application status updated",
		slog.Int64("application_id", id),
		slog.String("status", string(status)),
	)

	return nil
}
