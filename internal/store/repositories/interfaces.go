package repositories

import (
	"context"

	"listconsole/internal/domain/preference"
)

// PreferenceRepository defines the contract for column preference storage.
// FindByKey returns preference.ErrNotFound when nothing was saved for key.
type PreferenceRepository interface {
	Save(ctx context.Context, pref *preference.ColumnPreference) error
	FindByKey(ctx context.Context, key string) (*preference.ColumnPreference, error)
}
