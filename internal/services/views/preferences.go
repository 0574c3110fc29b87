package views

import (
	"context"
	"errors"

	"listconsole/internal/domain/preference"
	"listconsole/internal/store/repositories"
)

// RepositoryPreferences adapts a preference repository to the list engine's
// preference store.
type RepositoryPreferences struct {
	repo repositories.PreferenceRepository
}

func NewRepositoryPreferences(repo repositories.PreferenceRepository) *RepositoryPreferences {
	return &RepositoryPreferences{repo: repo}
}

func (p *RepositoryPreferences) Load(ctx context.Context, key string) ([]string, bool, error) {
	pref, err := p.repo.FindByKey(ctx, key)
	if err != nil {
		if errors.Is(err, preference.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, &ServiceError{Op: "load_preference", Err: err}
	}
	return pref.Columns, true, nil
}

func (p *RepositoryPreferences) Save(ctx context.Context, key string, columns []string) error {
	pref, err := preference.New(key, columns)
	if err != nil {
		return &ServiceError{Op: "save_preference", Err: err}
	}
	if err := p.repo.Save(ctx, pref); err != nil {
		return &ServiceError{Op: "save_preference", Err: err}
	}
	return nil
}
