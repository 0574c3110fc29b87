package postgres

import (
	"context"
	"errors"
	"time"

	"listconsole/internal/domain/preference"

	"github.com/jackc/pgx/v5"
)

// preferenceRepository implements PreferenceRepository on Postgres.
type preferenceRepository struct {
	db DBTX
}

// NewPreferenceRepository creates a new preference repository
func NewPreferenceRepository(db DBTX) *preferenceRepository {
	return &preferenceRepository{db: db}
}

// Save inserts or replaces the preference for its key
func (r *preferenceRepository) Save(ctx context.Context, p *preference.ColumnPreference) error {
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}
	columns := p.Columns
	if columns == nil {
		columns = []string{}
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO column_preferences (persistence_key, columns, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (persistence_key) DO UPDATE SET
		    columns = EXCLUDED.columns,
		    updated_at = EXCLUDED.updated_at`,
		p.Key, columns, p.UpdatedAt)
	return err
}

// FindByKey finds the preference saved under key
func (r *preferenceRepository) FindByKey(ctx context.Context, key string) (*preference.ColumnPreference, error) {
	row := r.db.QueryRow(ctx, `
		SELECT persistence_key, columns, updated_at
		FROM column_preferences
		WHERE persistence_key = $1`, key)

	var p preference.ColumnPreference
	if err := row.Scan(&p.Key, &p.Columns, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, preference.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
