package api

import (
	"net/http"

	"github.com/garnizeh/empanel/pkg/repository"
)

type AccountsHandler struct {
	accountRepo repository.AccountRepo
}

func NewAccountsHandler(ar repository.AccountRepo) *AccountsHandler {
	return &AccountsHandler{accountRepo: ar}
}

// Me returns the authenticated account's own profile. The password hash is
// excluded by the model's JSON tags.
func (h *AccountsHandler) Me(w http.ResponseWriter, r *http.Request) {
	accountID, _, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, kindAuth, "missing identity", http.StatusUnauthorized)
		return
	}

	account, err := h.accountRepo.GetByID(r.Context(), accountID)
	if err != nil {
		writeError(w, kindInternal, "error fetching profile", http.StatusInternalServerError)
		return
	}
	if account == nil {
		writeError(w, kindNotFound, "account not found", http.StatusNotFound)
		return
	}

	writeJSON(w, account, http.StatusOK)
}
