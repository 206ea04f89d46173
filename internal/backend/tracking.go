package backend

import (
	"encoding/json"
	"net/http"
	"strings"
)

// PackageStatus is the tracking response.
type PackageStatus struct {
	ID        string `json:"id"`
	Src       string `json:"src"`
	Dest      string `json:"dest"`
	Status    string `json:"status"`
	ReachedAt string `json:"reachedAt"`
	UpdatedAt string `json:"updatedAt"`
}

func (s *Server) handleTrack(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" && r.Method == http.MethodPost {
		var body struct {
			PackageID string `json:"packageId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON in request body")
			return
		}
		id = strings.TrimSpace(body.PackageID)
	}
	if id == "" {
		writeError(w, http.StatusBadRequest, "Missing package id")
		return
	}

	s.logger.Info("backend.track", "package_id", id)
	writeJSON(w, http.StatusOK, PackageStatus{
		ID:        id,
		Src:       "Bangalore",
		Dest:      "Mumbai",
		Status:    "In Progress",
		ReachedAt: "Bangalore Office",
		UpdatedAt: s.timestamp(),
	})
}
