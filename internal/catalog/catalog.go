package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"listconsole/internal/source"

	"gopkg.in/yaml.v3"
)

// Action kinds.
const (
	KindLink    = "link"
	KindWebhook = "webhook"
	KindRefresh = "refresh"
)

const defaultPageSize = 10

// Catalog is the parsed view catalog file.
type Catalog struct {
	Upstreams map[string]Upstream `yaml:"upstreams"`
	Views     []ViewSpec          `yaml:"views"`
}

type Upstream struct {
	BaseURL string            `yaml:"base_url"`
	Headers map[string]string `yaml:"headers"`
}

type Params struct {
	Page         string `yaml:"page"`
	Limit        string `yaml:"limit"`
	Query        string `yaml:"query"`
	FilterPrefix string `yaml:"filter_prefix"`
}

type ColumnSpec struct {
	Key        string `yaml:"key"`
	Label      string `yaml:"label"`
	Visible    bool   `yaml:"visible"`
	Sortable   bool   `yaml:"sortable"`
	Filterable bool   `yaml:"filterable"`
	Format     string `yaml:"format"`
}

// ActionSpec describes a header, row or bulk action. Href and Path may
// reference row fields as {field}.
type ActionSpec struct {
	ID    string `yaml:"id"`
	Icon  string `yaml:"icon"`
	Label string `yaml:"label"`
	Kind  string `yaml:"kind"`
	Href  string `yaml:"href"`
	Path  string `yaml:"path"`
}

type FooterSpec struct {
	PrevNext   bool `yaml:"prev_next"`
	Pagination bool `yaml:"pagination"`
}

// ViewSpec describes one console screen.
type ViewSpec struct {
	Name           string       `yaml:"name"`
	Entity         string       `yaml:"entity"`
	Title          string       `yaml:"title"`
	Upstream       string       `yaml:"upstream"`
	ListPath       string       `yaml:"list_path"`
	SearchPath     string       `yaml:"search_path"`
	Params         Params       `yaml:"params"`
	PageSize       int          `yaml:"page_size"`
	PersistenceKey string       `yaml:"persistence_key"`
	Selection      bool         `yaml:"selection"`
	SearchBar      bool         `yaml:"search_bar"`
	ColumnFilters  bool         `yaml:"column_filters"`
	Footer         FooterSpec   `yaml:"footer"`
	Columns        []ColumnSpec `yaml:"columns"`
	HeaderActions  []ActionSpec `yaml:"header_actions"`
	RowActions     []ActionSpec `yaml:"row_actions"`
	BulkActions    []ActionSpec `yaml:"bulk_actions"`
}

// Load reads and validates a catalog file.
func Load(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(b)
}

// Parse decodes and validates catalog YAML. Unknown fields are rejected.
func Parse(b []byte) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	if len(c.Views) == 0 {
		return errors.New("catalog: no views defined")
	}
	seen := map[string]bool{}
	for i := range c.Views {
		v := &c.Views[i]
		if v.Name == "" {
			return fmt.Errorf("catalog: view %d has no name", i)
		}
		if seen[v.Name] {
			return fmt.Errorf("catalog: duplicate view %q", v.Name)
		}
		seen[v.Name] = true
		if err := v.validate(c.Upstreams); err != nil {
			return fmt.Errorf("catalog: view %q: %w", v.Name, err)
		}
	}
	return nil
}

func (v *ViewSpec) validate(upstreams map[string]Upstream) error {
	if v.Entity == "" {
		v.Entity = v.Name
	}
	if v.PageSize == 0 {
		v.PageSize = defaultPageSize
	}
	if v.PageSize < 0 {
		return fmt.Errorf("page_size must be positive")
	}
	if _, ok := upstreams[v.Upstream]; !ok {
		return fmt.Errorf("unknown upstream %q", v.Upstream)
	}
	if v.ListPath == "" {
		return errors.New("list_path is required")
	}
	if v.SearchBar && v.SearchPath == "" {
		return errors.New("search_bar needs a search_path")
	}
	if len(v.Columns) == 0 {
		return errors.New("at least one column is required")
	}
	for _, col := range v.Columns {
		if _, err := source.Renderer(col.Format, col.Key); err != nil {
			return fmt.Errorf("column %q: %w", col.Key, err)
		}
	}
	for _, a := range v.HeaderActions {
		if err := a.validate(KindLink, KindRefresh); err != nil {
			return fmt.Errorf("header action: %w", err)
		}
	}
	for _, a := range v.RowActions {
		if err := a.validate(KindLink, KindWebhook); err != nil {
			return fmt.Errorf("row action: %w", err)
		}
	}
	for _, a := range v.BulkActions {
		if err := a.validate(KindWebhook, KindRefresh); err != nil {
			return fmt.Errorf("bulk action: %w", err)
		}
	}
	return nil
}

func (a ActionSpec) validate(kinds ...string) error {
	if a.ID == "" && a.Icon == "" {
		return errors.New("action needs an id or icon")
	}
	allowed := false
	for _, k := range kinds {
		if a.Kind == k {
			allowed = true
		}
	}
	if !allowed {
		return fmt.Errorf("%q: kind %q not allowed here", a.ID, a.Kind)
	}
	switch a.Kind {
	case KindLink:
		if a.Href == "" {
			return fmt.Errorf("%q: link needs href", a.ID)
		}
	case KindWebhook:
		if a.Path == "" {
			return fmt.Errorf("%q: webhook needs path", a.ID)
		}
	}
	return nil
}

// toSource converts to the source package's query parameter names.
func (p Params) toSource() source.Params {
	return source.Params{Page: p.Page, Limit: p.Limit, Query: p.Query, FilterPrefix: p.FilterPrefix}
}
