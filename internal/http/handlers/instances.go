package handlers

import (
	"context"
	"errors"
	"net/http"

	"listconsole/internal/catalog"
	middlewarex "listconsole/internal/http/middleware"
	"listconsole/internal/listing"
	"listconsole/internal/services/views"
	"listconsole/internal/source"

	"github.com/go-chi/chi/v5"
)

// withInstance resolves {id} for the calling user before running fn.
func withInstance(m *views.Manager, fn func(w http.ResponseWriter, r *http.Request, inst *views.Instance)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middlewarex.UserID(r.Context())
		if !ok {
			http.Error(w, "user not found", http.StatusUnauthorized)
			return
		}
		inst, err := m.Get(chi.URLParam(r, "id"), userID)
		if err != nil {
			writeError(w, err)
			return
		}
		fn(w, r, inst)
	}
}

// respondAfter runs op and answers with the fresh snapshot.
func respondAfter(w http.ResponseWriter, r *http.Request, inst *views.Instance, op func() error) {
	if err := op(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, instanceResponse(r, inst))
}

func GetInstance(m *views.Manager) http.HandlerFunc {
	return withInstance(m, func(w http.ResponseWriter, r *http.Request, inst *views.Instance) {
		writeJSON(w, http.StatusOK, instanceResponse(r, inst))
	})
}

func UnmountInstance(m *views.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middlewarex.UserID(r.Context())
		if !ok {
			http.Error(w, "user not found", http.StatusUnauthorized)
			return
		}
		if err := m.Unmount(chi.URLParam(r, "id"), userID); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// SetPage moves to {"page": n} or one step in {"direction": "next"|"prev"}
func SetPage(m *views.Manager) http.HandlerFunc {
	return withInstance(m, func(w http.ResponseWriter, r *http.Request, inst *views.Instance) {
		var req struct {
			Page      int    `json:"page"`
			Direction string `json:"direction"`
		}
		if !decode(w, r, &req) {
			return
		}
		respondAfter(w, r, inst, func() error {
			switch req.Direction {
			case "next":
				return inst.View.NextPage()
			case "prev":
				return inst.View.PrevPage()
			case "":
				return inst.View.SetPage(req.Page)
			}
			return listing.ErrInvalidPage
		})
	})
}

func SetPageSize(m *views.Manager) http.HandlerFunc {
	return withInstance(m, func(w http.ResponseWriter, r *http.Request, inst *views.Instance) {
		var req struct {
			PageSize int `json:"pageSize"`
		}
		if !decode(w, r, &req) {
			return
		}
		respondAfter(w, r, inst, func() error { return inst.View.SetPageSize(req.PageSize) })
	})
}

// SetSearch updates the search text. With "flush" the debounce is skipped.
func SetSearch(m *views.Manager) http.HandlerFunc {
	return withInstance(m, func(w http.ResponseWriter, r *http.Request, inst *views.Instance) {
		var req struct {
			Query string `json:"query"`
			Flush bool   `json:"flush"`
		}
		if !decode(w, r, &req) {
			return
		}
		respondAfter(w, r, inst, func() error {
			if err := inst.View.SetSearch(req.Query); err != nil {
				return err
			}
			if req.Flush {
				return inst.View.FlushSearch()
			}
			return nil
		})
	})
}

func SetFilter(m *views.Manager) http.HandlerFunc {
	return withInstance(m, func(w http.ResponseWriter, r *http.Request, inst *views.Instance) {
		var req struct {
			Value string `json:"value"`
		}
		if !decode(w, r, &req) {
			return
		}
		respondAfter(w, r, inst, func() error {
			return inst.View.SetColumnFilter(chi.URLParam(r, "key"), req.Value)
		})
	})
}

func Refresh(m *views.Manager) http.HandlerFunc {
	return withInstance(m, func(w http.ResponseWriter, r *http.Request, inst *views.Instance) {
		respondAfter(w, r, inst, inst.View.Refresh)
	})
}

func ToggleSelection(m *views.Manager) http.HandlerFunc {
	return withInstance(m, func(w http.ResponseWriter, r *http.Request, inst *views.Instance) {
		var req struct {
			ID string `json:"id"`
		}
		if !decode(w, r, &req) {
			return
		}
		if req.ID == "" {
			http.Error(w, "id is required", http.StatusBadRequest)
			return
		}
		respondAfter(w, r, inst, func() error {
			_, err := inst.View.ToggleSelection(req.ID)
			return err
		})
	})
}

// SelectPage selects ({"selected": true}) or deselects every row on the page
func SelectPage(m *views.Manager) http.HandlerFunc {
	return withInstance(m, func(w http.ResponseWriter, r *http.Request, inst *views.Instance) {
		var req struct {
			Selected bool `json:"selected"`
		}
		if !decode(w, r, &req) {
			return
		}
		respondAfter(w, r, inst, func() error {
			if req.Selected {
				return inst.View.SelectPage()
			}
			return inst.View.DeselectPage()
		})
	})
}

func ClearSelection(m *views.Manager) http.HandlerFunc {
	return withInstance(m, func(w http.ResponseWriter, r *http.Request, inst *views.Instance) {
		respondAfter(w, r, inst, func() error {
			inst.View.ClearSelection()
			return nil
		})
	})
}

func ToggleColumn(m *views.Manager) http.HandlerFunc {
	return withInstance(m, func(w http.ResponseWriter, r *http.Request, inst *views.Instance) {
		visible, err := inst.View.ToggleColumn(r.Context(), chi.URLParam(r, "key"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string][]string{"visible": visible})
	})
}

func RowAction(m *views.Manager) http.HandlerFunc {
	return withInstance(m, func(w http.ResponseWriter, r *http.Request, inst *views.Instance) {
		var req struct {
			RowID string `json:"rowId"`
		}
		if !decode(w, r, &req) {
			return
		}
		runAction(w, r, func(ctx context.Context) error {
			return inst.View.RunRowAction(ctx, chi.URLParam(r, "action"), req.RowID)
		})
	})
}

func BulkAction(m *views.Manager) http.HandlerFunc {
	return withInstance(m, func(w http.ResponseWriter, r *http.Request, inst *views.Instance) {
		runAction(w, r, func(ctx context.Context) error {
			return inst.View.RunBulkAction(ctx, chi.URLParam(r, "action"))
		})
	})
}

func HeaderAction(m *views.Manager) http.HandlerFunc {
	return withInstance(m, func(w http.ResponseWriter, r *http.Request, inst *views.Instance) {
		runAction(w, r, func(ctx context.Context) error {
			return inst.View.RunHeaderAction(ctx, chi.URLParam(r, "action"))
		})
	})
}

// runAction answers with what the action produced. Errors from the action
// itself are reported as 422 with their message.
func runAction(w http.ResponseWriter, r *http.Request, run func(ctx context.Context) error) {
	ctx, out := catalog.WithOutcome(r.Context())
	if err := run(ctx); err != nil {
		if isEngineError(err) {
			writeError(w, err)
			return
		}
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func isEngineError(err error) bool {
	var (
		nf *views.NotFoundError
		ue *source.UpstreamError
	)
	return errors.As(err, &nf) ||
		errors.As(err, &ue) ||
		errors.Is(err, listing.ErrUnknownAction) ||
		errors.Is(err, listing.ErrRowNotFound) ||
		errors.Is(err, listing.ErrClosed)
}
