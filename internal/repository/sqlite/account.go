package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/garnizeh/empanel/pkg/models"
	"github.com/garnizeh/empanel/pkg/repository"
)

func (r *SQLiteRepo) CreateAccount(ctx context.Context, a *models.Account) (int64, error) {
	if a == nil {
		return 0, fmt.Errorf("account is nil")
	}

	res, err := r.conn.Exec(ctx,
		`INSERT INTO accounts (public_id, email, mobile, password_hash, company_name, company_address, legal_structure, pan_number, gstin, is_official, created)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.PublicID, a.Email, a.Mobile, a.PasswordHash, a.CompanyName, a.CompanyAddress, a.LegalStructure,
		nullable(a.PANNumber), nullable(a.GSTIN), boolToInt(a.IsOfficial), now())
	if err != nil {
		if isUniqueViolation(err) {
			return 0, repository.ErrDuplicate
		}

		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+accountCols+` FROM accounts WHERE id = ?`, id)
	return scanAccount(row)
}

func (r *SQLiteRepo) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+accountCols+` FROM accounts WHERE email = ?`, email)
	return scanAccount(row)
}

const accountCols = `id, public_id, email, mobile, password_hash, company_name, company_address, legal_structure, pan_number, gstin, is_official, created`

func scanAccount(row *sql.Row) (*models.Account, error) {
	var a models.Account
	var addr, legal, pan, gstin sql.NullString
	var official int64
	if err := row.Scan(&a.ID, &a.PublicID, &a.Email, &a.Mobile, &a.PasswordHash, &a.CompanyName, &addr, &legal, &pan, &gstin, &official, &a.Created); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	a.CompanyAddress = addr.String
	a.LegalStructure = legal.String
	a.PANNumber = pan.String
	a.GSTIN = gstin.String
	a.IsOfficial = official != 0

	return &a, nil
}

// nullable maps empty strings to NULL so optional unique columns (PAN, GSTIN)
// do not collide on "".
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
