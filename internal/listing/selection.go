package listing

import (
	"sort"
	"sync"

	"listconsole/internal/pagination"
)

// Selection is the set of selected row ids of one view. It is independent of
// the page currently displayed.
type Selection struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func NewSelection() *Selection {
	return &Selection{ids: make(map[string]struct{})}
}

// Selected returns the selected ids, sorted.
func (s *Selection) Selected() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s *Selection) IsSelected(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[id]
	return ok
}

func (s *Selection) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

// Toggle flips id and reports whether it is now selected.
func (s *Selection) Toggle(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// SelectAllOnPage adds every identifiable row. Rows without id or uuid are skipped.
func (s *Selection) SelectAllOnPage(rows []pagination.Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range rows {
		if id, ok := pagination.RowID(row); ok {
			s.ids[id] = struct{}{}
		}
	}
}

// DeselectPage removes the rows of one page, keeping selections made elsewhere.
func (s *Selection) DeselectPage(rows []pagination.Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range rows {
		if id, ok := pagination.RowID(row); ok {
			delete(s.ids, id)
		}
	}
}

func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.ids)
}
