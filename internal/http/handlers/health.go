package handlers

import (
	"net/http"

	"listconsole/internal/config"
	"listconsole/internal/services/views"
)

func Health(m *views.Manager, cfg config.Cfg) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":    "ok",
			"env":       cfg.App.Env,
			"instances": m.Count(),
			"loading":   m.Loading(),
		})
	}
}
