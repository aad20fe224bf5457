package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"section3/internal/errs"
	"section3/internal/infrastructure/persistence/sqlite/model"
	"section3/internal/ports"
)

type SQLiteCache struct {
	db  *gorm.DB
	now func() time.Time
}

var _ ports.Cache = (*SQLiteCache)(nil)

func NewSQLiteCache(db *gorm.DB) *SQLiteCache {
	return &SQLiteCache{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func checkKey(ctx context.Context, key string) (string, error) {
	if ctx == nil {
		return "", errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return "", errs.Wrap(err, "check context")
	}

	trimmedKey := strings.TrimSpace(key)
	if trimmedKey == "" {
		return "", errs.Ef(errs.KindInvalidInput, "key is required")
	}
	return trimmedKey, nil
}

func (c *SQLiteCache) Get(ctx context.Context, key string) (string, bool, error) {
	trimmedKey, err := checkKey(ctx, key)
	if err != nil {
		return "", false, err
	}

	var row model.KVEntry
	if err := c.db.WithContext(ctx).Where("key = ?", trimmedKey).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, errs.Store(err, "query cache by key")
	}
	if c.expired(row) {
		return "", false, nil
	}

	return row.Value, true, nil
}

// Set stores value under key. A positive ttl makes Get and List ignore the
// entry once it has elapsed.
func (c *SQLiteCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	trimmedKey, err := checkKey(ctx, key)
	if err != nil {
		return err
	}

	now := c.now()
	row := model.KVEntry{
		Key:       trimmedKey,
		Value:     value,
		UpdatedAt: now.Format(time.RFC3339Nano),
	}
	if ttl > 0 {
		expiresAt := now.Add(ttl).Format(time.RFC3339Nano)
		row.ExpiresAt = &expiresAt
	}

	if err := c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]any{
			"value":      row.Value,
			"expires_at": row.ExpiresAt,
			"updated_at": row.UpdatedAt,
		}),
	}).Create(&row).Error; err != nil {
		return errs.Store(err, "upsert cache key")
	}

	return nil
}

func (c *SQLiteCache) Delete(ctx context.Context, key string) error {
	trimmedKey, err := checkKey(ctx, key)
	if err != nil {
		return err
	}

	if err := c.db.WithContext(ctx).Where("key = ?", trimmedKey).Delete(&model.KVEntry{}).Error; err != nil {
		return errs.Store(err, "delete cache key")
	}
	return nil
}

// List returns every live entry whose key starts with prefix.
func (c *SQLiteCache) List(ctx context.Context, prefix string) (map[string]string, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}

	query := c.db.WithContext(ctx).Model(&model.KVEntry{})
	if prefix != "" {
		query = query.Where("substr(key, 1, ?) = ?", len(prefix), prefix)
	}

	var rows []model.KVEntry
	if err := query.Order("key asc").Find(&rows).Error; err != nil {
		return nil, errs.Store(err, "list cache keys")
	}

	out := make(map[string]string, len(rows))
	for _, row := range rows {
		if c.expired(row) {
			continue
		}
		out[row.Key] = row.Value
	}
	return out, nil
}

func (c *SQLiteCache) expired(row model.KVEntry) bool {
	if row.ExpiresAt == nil {
		return false
	}
	expiresAt, err := time.Parse(time.RFC3339Nano, *row.ExpiresAt)
	if err != nil {
		return false
	}
	return !c.now().Before(expiresAt)
}
