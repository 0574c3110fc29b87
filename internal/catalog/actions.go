package catalog

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"sync"

	"listconsole/internal/listing"
	"listconsole/internal/pagination"
	"listconsole/internal/source"
)

var placeholder = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// expand replaces {field} with the path-escaped row value. Missing fields
// are an error so a bad template never hits the upstream.
func expand(tmpl string, row pagination.Row) (string, error) {
	var missing string
	out := placeholder.ReplaceAllStringFunc(tmpl, func(m string) string {
		field := m[1 : len(m)-1]
		v, ok := row[field]
		if !ok || v == nil {
			missing = field
			return m
		}
		return url.PathEscape(fmt.Sprint(v))
	})
	if missing != "" {
		return "", fmt.Errorf("row has no %q for %q", missing, tmpl)
	}
	return out, nil
}

// Outcome collects what an action produced for the caller.
type Outcome struct {
	mu      sync.Mutex
	Href    string `json:"href,omitempty"`
	Posted  bool   `json:"posted"`
	Token   int    `json:"refreshToken,omitempty"`
	Targets int    `json:"targets,omitempty"`
}

type outcomeKey struct{}

// WithOutcome attaches an Outcome that actions run with ctx fill in.
func WithOutcome(ctx context.Context) (context.Context, *Outcome) {
	o := &Outcome{}
	return context.WithValue(ctx, outcomeKey{}, o), o
}

func record(ctx context.Context, fn func(o *Outcome)) {
	if o, ok := ctx.Value(outcomeKey{}).(*Outcome); ok {
		o.mu.Lock()
		fn(o)
		o.mu.Unlock()
	}
}

func (r *Registry) headerAction(spec ViewSpec, a ActionSpec) listing.Action {
	act := listing.Action{ID: a.ID, Icon: a.Icon, Label: a.Label}
	switch a.Kind {
	case KindLink:
		href := a.Href
		act.OnClick = func(ctx context.Context) error {
			record(ctx, func(o *Outcome) { o.Href = href })
			return nil
		}
	case KindRefresh:
		act.OnClick = func(ctx context.Context) error {
			token, err := r.EntityChanged(spec.Entity)
			record(ctx, func(o *Outcome) { o.Token = token })
			return err
		}
	}
	return act
}

func (r *Registry) rowAction(spec ViewSpec, remote *source.Remote, a ActionSpec) listing.RowAction {
	act := listing.RowAction{ID: a.ID, Icon: a.Icon, Label: a.Label}
	switch a.Kind {
	case KindLink:
		act.OnClick = func(ctx context.Context, row pagination.Row) error {
			href, err := expand(a.Href, row)
			if err != nil {
				return err
			}
			record(ctx, func(o *Outcome) { o.Href = href })
			return nil
		}
	case KindWebhook:
		act.OnClick = func(ctx context.Context, row pagination.Row) error {
			path, err := expand(a.Path, row)
			if err != nil {
				return err
			}
			if err := remote.Post(ctx, path, row); err != nil {
				return err
			}
			token, err := r.EntityChanged(spec.Entity)
			record(ctx, func(o *Outcome) {
				o.Posted = true
				o.Targets = 1
				o.Token = token
			})
			return err
		}
	}
	return act
}

type bulkPayload struct {
	IDs []string `json:"ids"`
}

func (r *Registry) bulkAction(spec ViewSpec, remote *source.Remote, a ActionSpec) listing.BulkAction {
	act := listing.BulkAction{ID: a.ID, Icon: a.Icon, Label: a.Label}
	switch a.Kind {
	case KindWebhook:
		act.Run = func(ctx context.Context, _ []pagination.Row, selected []string) error {
			if len(selected) == 0 {
				return fmt.Errorf("%s: nothing selected", a.ID)
			}
			if err := remote.Post(ctx, a.Path, bulkPayload{IDs: selected}); err != nil {
				return err
			}
			token, err := r.EntityChanged(spec.Entity)
			record(ctx, func(o *Outcome) {
				o.Posted = true
				o.Targets = len(selected)
				o.Token = token
			})
			return err
		}
	case KindRefresh:
		act.Run = func(ctx context.Context, _ []pagination.Row, _ []string) error {
			token, err := r.EntityChanged(spec.Entity)
			record(ctx, func(o *Outcome) { o.Token = token })
			return err
		}
	}
	return act
}
