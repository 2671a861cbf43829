package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vidyalaya/hpc-service/internal/hpc"
)

// writeErr maps pipeline errors onto HTTP statuses: validation 422,
// conflicts 409, missing rows 404, everything else 500.
func writeErr(w http.ResponseWriter, err error) {
	var verr *hpc.ValidationError
	switch {
	case errors.As(err, &verr):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error":    verr.Msg,
			"problems": verr.Problems,
		})
	case errors.Is(err, hpc.ErrStepResolved), errors.Is(err, hpc.ErrNotDraft), errors.Is(err, hpc.ErrReportPublished):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, hpc.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
