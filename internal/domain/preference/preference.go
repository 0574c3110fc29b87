package preference

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound is returned by repositories when no preference exists for a key.
var ErrNotFound = errors.New("column preference not found")

const maxKeyLength = 200

// ColumnPreference is the durable visible-column set behind one persistence key.
type ColumnPreference struct {
	Key       string
	Columns   []string
	UpdatedAt time.Time
}

// New creates a preference with validation. Duplicate and blank column keys
// are dropped; an empty column list is valid (everything hidden).
func New(key string, columns []string) (*ColumnPreference, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("persistence key is required")
	}
	if len(key) > maxKeyLength {
		return nil, fmt.Errorf("persistence key must be at most %d characters", maxKeyLength)
	}

	seen := make(map[string]struct{}, len(columns))
	cols := make([]string, 0, len(columns))
	for _, c := range columns {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		cols = append(cols, c)
	}

	return &ColumnPreference{
		Key:       key,
		Columns:   cols,
		UpdatedAt: time.Now(),
	}, nil
}

// Scoped prefixes a persistence key with the owning user, so two users of the
// same screen keep separate preferences. An empty key stays empty
// (session-only visibility).
func Scoped(userID, key string) string {
	if key == "" || userID == "" {
		return key
	}
	return userID + ":" + key
}
