package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vidyalaya/hpc-service/internal/hpc"
)

// GET /students/{studentID}/analytics?term=
func StudentAnalyticsHandler(svc *hpc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID := strings.TrimSpace(chi.URLParam(r, "studentID"))
		if studentID == "" {
			http.Error(w, "studentID required", http.StatusBadRequest)
			return
		}
		termID := strings.TrimSpace(r.URL.Query().Get("term"))
		recs, err := svc.StudentAnalytics(r.Context(), studentID, termID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, recs)
	}
}
