package ampacity

import (
	"encoding/json"
	"log"
	"net/http"

	auth "github.com/chedy028/amapcity/internal/auth"
	repo "github.com/chedy028/amapcity/internal/repo"
)

// Handler serves the single-scenario solve. Repo is optional; when present
// each authenticated solve is persisted as a calculation run.
type Handler struct {
	Repo repo.Repository
}

type calcResponse struct {
	Result
	Error string `json:"error,omitempty"`
}

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := Calculate(input)
	if err != nil && !Degraded(err) {
		http.Error(w, "Calculation error: "+err.Error(), http.StatusBadRequest)
		return
	}
	resp := calcResponse{Result: res}
	if err != nil {
		resp.Error = err.Error()
	}

	h.persist(r, input, res)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *Handler) persist(r *http.Request, input Input, res Result) {
	if h.Repo == nil {
		return
	}
	userID, ok := auth.UserID(r.Context())
	if !ok {
		return
	}
	raw, err := json.Marshal(input)
	if err != nil {
		return
	}
	label := input.Installation.Type
	if _, err := h.Repo.SaveRun(r.Context(), userID, label, string(raw), res.AmpacityA, res.DesignStatus); err != nil {
		log.Printf("SaveRun error: %v", err)
	}
}
