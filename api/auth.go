package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/garnizeh/empanel/pkg/models"
	"github.com/garnizeh/empanel/pkg/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	accountRepo   repository.AccountRepo
	jwtSecret     string
	tokenDuration time.Duration
}

// NewAuthHandler creates a new AuthHandler with required dependencies.
func NewAuthHandler(ar repository.AccountRepo, jwtSecret string, tokenDuration time.Duration) *AuthHandler {
	return &AuthHandler{accountRepo: ar, jwtSecret: jwtSecret, tokenDuration: tokenDuration}
}

type registerRequest struct {
	Email          string `json:"email"`
	Mobile         string `json:"mobile"`
	Password       string `json:"password"`
	CompanyName    string `json:"company_name"`
	CompanyAddress string `json:"company_address"`
	LegalStructure string `json:"legal_structure"`
	PANNumber      string `json:"pan_number"`
	GSTIN          string `json:"gstin"`
}

type registerResponse struct {
	AccountID int64  `json:"account_id"`
	PublicID  string `json:"public_id"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token      string `json:"token"`
	AccountID  int64  `json:"account_id"`
	PublicID   string `json:"public_id"`
	IsOfficial bool   `json:"is_official"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, kindValidation, "invalid request", http.StatusBadRequest)
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	req.Mobile = strings.TrimSpace(req.Mobile)
	if req.Email == "" || req.Mobile == "" || req.Password == "" || req.CompanyName == "" {
		writeError(w, kindValidation, "email, mobile, password and company_name are required", http.StatusBadRequest)
		return
	}

	// Hash password
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, kindInternal, "error hashing password", http.StatusInternalServerError)
		return
	}

	account := models.Account{
		PublicID:       "VEN-" + uuid.NewString(),
		Email:          req.Email,
		Mobile:         req.Mobile,
		PasswordHash:   string(hash),
		CompanyName:    req.CompanyName,
		CompanyAddress: req.CompanyAddress,
		LegalStructure: req.LegalStructure,
		PANNumber:      strings.TrimSpace(req.PANNumber),
		GSTIN:          strings.TrimSpace(req.GSTIN),
	}

	id, err := h.accountRepo.CreateAccount(r.Context(), &account)
	if err != nil {
		if err == repository.ErrDuplicate {
			writeError(w, kindConflict, "email, mobile, PAN or GSTIN already registered", http.StatusConflict)
			return
		}

		writeError(w, kindInternal, "error creating account", http.StatusInternalServerError)
		return
	}

	writeJSON(w, registerResponse{AccountID: id, PublicID: account.PublicID}, http.StatusCreated)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, kindValidation, "invalid request", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, kindValidation, "email and password are required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	account, err := h.accountRepo.GetByEmail(ctx, req.Email)
	if err != nil || account == nil {
		writeError(w, kindAuth, "invalid credentials", http.StatusUnauthorized)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)) != nil {
		writeError(w, kindAuth, "invalid credentials", http.StatusUnauthorized)
		return
	}

	tokenStr, err := h.issueToken(account)
	if err != nil {
		writeError(w, kindInternal, "error signing token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, loginResponse{
		Token:      tokenStr,
		AccountID:  account.ID,
		PublicID:   account.PublicID,
		IsOfficial: account.IsOfficial,
	}, http.StatusOK)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	// For stateless JWT, logout is client-side (just delete token)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, `{"message":"logged out"}`)
}

func (h *AuthHandler) issueToken(account *models.Account) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"account_id":  account.ID,
		"is_official": account.IsOfficial,
		"email":       account.Email,
		"exp":         time.Now().Add(h.tokenDuration).Unix(),
	})

	return token.SignedString([]byte(h.jwtSecret))
}
