package handlers

import (
	"net/http"

	middlewarex "listconsole/internal/http/middleware"
	"listconsole/internal/listing"
	"listconsole/internal/services/views"

	"github.com/go-chi/chi/v5"
)

// InstanceResponse is a mounted view and what it currently shows.
type InstanceResponse struct {
	ID       string           `json:"id"`
	View     string           `json:"view"`
	Snapshot listing.Snapshot `json:"snapshot"`
}

func instanceResponse(r *http.Request, inst *views.Instance) InstanceResponse {
	return InstanceResponse{
		ID:       inst.ID,
		View:     inst.ViewName,
		Snapshot: inst.View.Snapshot(r.Context()),
	}
}

// ListViews returns the view catalog
func ListViews(m *views.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"views": m.Views()})
	}
}

// MountView starts a new instance of a catalog view for the caller
func MountView(m *views.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middlewarex.UserID(r.Context())
		if !ok {
			http.Error(w, "user not found", http.StatusUnauthorized)
			return
		}

		inst, err := m.Mount(r.Context(), chi.URLParam(r, "view"), userID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, instanceResponse(r, inst))
	}
}

// EntityChanged refreshes every mounted view of an entity
func EntityChanged(m *views.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := m.EntityChanged(chi.URLParam(r, "entity"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"refreshToken": token})
	}
}

// Loading reports the console-wide loading indicator
func Loading(m *views.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, m.Loading())
	}
}
