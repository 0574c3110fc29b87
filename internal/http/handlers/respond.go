package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"listconsole/internal/listing"
	"listconsole/internal/services/views"
	"listconsole/internal/source"

	"github.com/rs/zerolog/log"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return false
	}
	return true
}

// writeError maps service and engine errors to status codes.
func writeError(w http.ResponseWriter, err error) {
	var (
		nf *views.NotFoundError
		ue *source.UpstreamError
	)
	switch {
	case errors.As(err, &nf),
		errors.Is(err, listing.ErrRowNotFound),
		errors.Is(err, listing.ErrUnknownAction),
		errors.Is(err, listing.ErrUnknownColumn):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, listing.ErrInvalidPage),
		errors.Is(err, listing.ErrInvalidPageSize),
		errors.Is(err, listing.ErrNotFilterable):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, listing.ErrPagingInSearch),
		errors.Is(err, listing.ErrSearchUnsupported),
		errors.Is(err, listing.ErrSelectionDisabled):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, listing.ErrClosed):
		http.Error(w, err.Error(), http.StatusGone)
	case errors.As(err, &ue):
		http.Error(w, err.Error(), http.StatusBadGateway)
	default:
		log.Error().Err(err).Msg("request failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
