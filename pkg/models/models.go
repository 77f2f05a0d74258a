package models

// Domain models matching the database schema in db/migrations/0001_init.sql

// Status is the lifecycle stage of an application. The four values are a
// stable wire contract; anything else is rejected before any write.
type Status string

const (
	StatusPendingVerification    Status = "PendingVerification"
	StatusClarificationRequested Status = "ClarificationRequested"
	StatusApproved               Status = "Approved"
	StatusRejected               Status = "Rejected"
)

// ValidStatus reports whether s is one of the four known statuses.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPendingVerification, StatusClarificationRequested, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Department tags an application with the reviewing department.
type Department string

const (
	DepartmentCivil      Department = "civil"
	DepartmentElectrical Department = "electrical"
	DepartmentMechanical Department = "mechanical"
)

func ValidDepartment(d Department) bool {
	switch d {
	case DepartmentCivil, DepartmentElectrical, DepartmentMechanical:
		return true
	}
	return false
}

type Account struct {
	ID             int64  `json:"id" db:"id"`
	PublicID       string `json:"public_id" db:"public_id"`
	Email          string `json:"email" db:"email" validate:"required,email"`
	Mobile         string `json:"mobile" db:"mobile" validate:"required"`
	PasswordHash   string `json:"-" db:"password_hash"`
	CompanyName    string `json:"company_name" db:"company_name"`
	CompanyAddress string `json:"company_address,omitempty" db:"company_address"`
	LegalStructure string `json:"legal_structure,omitempty" db:"legal_structure"`
	PANNumber      string `json:"pan_number,omitempty" db:"pan_number"`
	GSTIN          string `json:"gstin,omitempty" db:"gstin"`
	IsOfficial     bool   `json:"is_official" db:"is_official"`
	Created        int64  `json:"created" db:"created"`
}

type Application struct {
	ID              int64      `json:"id" db:"id"`
	AccountID       int64      `json:"account_id" db:"account_id"`
	Department      Department `json:"department" db:"department"`
	FormData        string     `json:"form_data" db:"form_data"`
	Status          Status     `json:"status" db:"status"`
	RejectionReason string     `json:"rejection_reason,omitempty" db:"rejection_reason"`
	Created         int64      `json:"created" db:"created"`
}

type Document struct {
	ID            int64  `json:"id" db:"id"`
	ApplicationID int64  `json:"application_id" db:"application_id"`
	FileName      string `json:"file_name" db:"file_name"`
	FilePath      string `json:"-" db:"file_path"`
	MimeType      string `json:"mime_type" db:"mime_type"`
	Created       int64  `json:"created" db:"created"`
}

// ApplicationSummary is the list-view projection. Owner fields are populated
// only on official-wide listings; vendor-scoped listings leave them empty.
type ApplicationSummary struct {
	ID             int64      `json:"id"`
	Department     Department `json:"department"`
	Status         Status     `json:"status"`
	Created        int64      `json:"created"`
	VendorPublicID string     `json:"vendor_public_id,omitempty"`
	CompanyName    string     `json:"company_name,omitempty"`
}

// DocumentRef is a document resolved to an externally fetchable URL.
type DocumentRef struct {
	ID       int64  `json:"id"`
	FileName string `json:"file_name"`
	MimeType string `json:"mime_type"`
	FileURL  string `json:"file_url"`
}

// ApplicationDetail joins the application with its owner summary and its
// full document list.
type ApplicationDetail struct {
	Application
	VendorPublicID string        `json:"vendor_public_id"`
	CompanyName    string        `json:"company_name"`
	Documents      []DocumentRef `json:"documents"`
}
