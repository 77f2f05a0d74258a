package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"log/slog"

	"github.com/garnizeh/empanel/internal/storage"
	"github.com/garnizeh/empanel/internal/submission"
	"github.com/garnizeh/empanel/internal/workflow"
	"github.com/garnizeh/empanel/pkg/models"
	"github.com/garnizeh/empanel/pkg/repository"
	"github.com/gorilla/mux"
)

type ApplicationsHandler struct {
	submitter      *submission.Service
	appRepo        repository.ApplicationRepo
	engine         *workflow.Engine
	store          storage.Store
	maxUploadBytes int64
}

func NewApplicationsHandler(
	submitter *submission.Service,
	appRepo repository.ApplicationRepo,
	engine *workflow.Engine,
	store storage.Store,
	maxUploadBytes int64,
) *ApplicationsHandler {
	return &ApplicationsHandler{
		submitter:      submitter,
		appRepo:        appRepo,
		engine:         engine,
		store:          store,
		maxUploadBytes: maxUploadBytes,
	}
}

type submitResponse struct {
	ApplicationID int64 `json:"application_id"`
}

// Submit accepts a multipart form with fields `department`, `form_data`
// (a JSON document) and one or more `documents` file parts.
func (h *ApplicationsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	accountID, _, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, kindAuth, "missing identity", http.StatusUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		writeError(w, kindValidation, "invalid multipart form", http.StatusBadRequest)
		return
	}

	department := models.Department(r.FormValue("department"))
	formData := r.FormValue("form_data")

	headers := r.MultipartForm.File["documents"]
	files := make([]storage.RawFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			writeError(w, kindValidation, "unreadable file part", http.StatusBadRequest)
			return
		}
		defer f.Close()

		files = append(files, storage.RawFile{
			Name:     fh.Filename,
			MimeType: fh.Header.Get("Content-Type"),
			Size:     fh.Size,
			Content:  f,
		})
	}

	id, err := h.submitter.Submit(r.Context(), accountID, department, json.RawMessage(formData), files)
	if err != nil {
		switch {
		case errors.Is(err, submission.ErrValidation):
			writeError(w, kindValidation, err.Error(), http.StatusBadRequest)
		case errors.Is(err, submission.ErrStage):
			writeError(w, kindStage, "failed to store documents", http.StatusInternalServerError)
		default:
			writeError(w, kindPersistence, "failed to persist application", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, submitResponse{ApplicationID: id}, http.StatusCreated)
}

// ListOwn returns the authenticated account's applications, newest first.
func (h *ApplicationsHandler) ListOwn(w http.ResponseWriter, r *http.Request) {
	accountID, _, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, kindAuth, "missing identity", http.StatusUnauthorized)
		return
	}

	items, err := h.appRepo.ListByAccount(r.Context(), accountID)
	if err != nil {
		writeError(w, kindInternal, "failed to list applications", http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []models.ApplicationSummary{}
	}

	writeJSON(w, items, http.StatusOK)
}

// Get returns one application with its owner summary and resolved document
// references. A requester who is neither the owner nor an official gets the
// same not-found response as a nonexistent id.
func (h *ApplicationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	accountID, isOfficial, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, kindAuth, "missing identity", http.StatusUnauthorized)
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeError(w, kindValidation, "invalid application id", http.StatusBadRequest)
		return
	}

	detail, docs, err := h.appRepo.GetDetail(r.Context(), id)
	if err != nil {
		writeError(w, kindInternal, "failed to fetch application", http.StatusInternalServerError)
		return
	}
	if detail == nil || (detail.AccountID != accountID && !isOfficial) {
		writeError(w, kindNotFound, "application not found", http.StatusNotFound)
		return
	}

	detail.Documents = make([]models.DocumentRef, 0, len(docs))
	for _, d := range docs {
		detail.Documents = append(detail.Documents, models.DocumentRef{
			ID:       d.ID,
			FileName: d.FileName,
			MimeType: d.MimeType,
			FileURL:  h.store.ResolveURL(d.FilePath),
		})
	}

	writeJSON(w, detail, http.StatusOK)
}

// ListAll returns every application across all accounts. Officials only.
func (h *ApplicationsHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	_, isOfficial, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, kindAuth, "missing identity", http.StatusUnauthorized)
		return
	}
	if !isOfficial {
		writeError(w, kindForbidden, "official privilege required", http.StatusForbidden)
		return
	}

	items, err := h.appRepo.ListAll(r.Context())
	if err != nil {
		writeError(w, kindInternal, "failed to list applications", http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []models.ApplicationSummary{}
	}

	writeJSON(w, items, http.StatusOK)
}

type changeStatusRequest struct {
	Status          models.Status `json:"status"`
	RejectionReason string        `json:"rejection_reason"`
}

type changeStatusResponse struct {
	ApplicationID int64         `json:"application_id"`
	Status        models.Status `json:"status"`
}

// ChangeStatus applies a status transition. Officials only; rejection
// requires a reason.
func (h *ApplicationsHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	_, isOfficial, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, kindAuth, "missing identity", http.StatusUnauthorized)
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeError(w, kindValidation, "invalid application id", http.StatusBadRequest)
		return
	}

	var req changeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, kindValidation, "invalid request", http.StatusBadRequest)
		return
	}

	if err := h.engine.ChangeStatus(r.Context(), isOfficial, id, req.Status, req.RejectionReason); err != nil {
		switch {
		case errors.Is(err, workflow.ErrForbidden):
			writeError(w, kindForbidden, "official privilege required", http.StatusForbidden)
		case errors.Is(err, workflow.ErrInvalidStatus), errors.Is(err, workflow.ErrReasonRequired):
			writeError(w, kindValidation, err.Error(), http.StatusBadRequest)
		case errors.Is(err, workflow.ErrNotFound):
			writeError(w, kindNotFound, "application not found", http.StatusNotFound)
		default:
			logger.Error("status change failed", slog.Int64("application_id", id), slog.Any("err", err))
			writeError(w, kindPersistence, "failed to update status", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, changeStatusResponse{ApplicationID: id, Status: req.Status}, http.StatusOK)
}

func pathID(r *http.Request) (int64, error) {
	idStr := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}
