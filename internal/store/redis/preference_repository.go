package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"listconsole/internal/domain/preference"

	goredis "github.com/redis/go-redis/v9"
)

type storedPreference struct {
	Columns   []string  `json:"columns"`
	UpdatedAt time.Time `json:"updated_at"`
}

// preferenceRepository keeps one JSON document per persistence key, without expiry.
type preferenceRepository struct {
	rdb    Client
	prefix string
}

func NewPreferenceRepository(rdb Client, prefix string) *preferenceRepository {
	return &preferenceRepository{rdb: rdb, prefix: prefix}
}

func (r *preferenceRepository) redisKey(key string) string {
	return r.prefix + "colprefs:" + key
}

func (r *preferenceRepository) Save(ctx context.Context, p *preference.ColumnPreference) error {
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}
	columns := p.Columns
	if columns == nil {
		columns = []string{}
	}
	b, err := json.Marshal(storedPreference{Columns: columns, UpdatedAt: p.UpdatedAt})
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, r.redisKey(p.Key), b, 0).Err()
}

func (r *preferenceRepository) FindByKey(ctx context.Context, key string) (*preference.ColumnPreference, error) {
	b, err := r.rdb.Get(ctx, r.redisKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, preference.ErrNotFound
		}
		return nil, err
	}
	var sp storedPreference
	if err := json.Unmarshal(b, &sp); err != nil {
		return nil, fmt.Errorf("decode preference %q: %w", key, err)
	}
	return &preference.ColumnPreference{Key: key, Columns: sp.Columns, UpdatedAt: sp.UpdatedAt}, nil
}
