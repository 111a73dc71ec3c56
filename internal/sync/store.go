package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// LocalStore reads and upserts raw rows in the primary data store.
type LocalStore interface {
	ReadAll(ctx context.Context, table string) ([]map[string]interface{}, error)
	// Upsert applies one external row; it reports false when the local
	// copy was kept because it is at least as new.
	Upsert(ctx context.Context, table string, row map[string]interface{}) (bool, error)
}

// GormStore is the gorm-backed LocalStore used in production.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) ReadAll(ctx context.Context, table string) ([]map[string]interface{}, error) {
	spec, ok := AllowedTables[table]
	if !ok {
		return nil, fmt.Errorf("table %q is not allowed", table)
	}

	var rows []map[string]interface{}
	err := s.db.WithContext(ctx).
		Table(spec.localTable).
		Select(spec.columns).
		Find(&rows).Error
	return rows, err
}

func (s *GormStore) Upsert(ctx context.Context, table string, row map[string]interface{}) (bool, error) {
	spec, ok := AllowedTables[table]
	if !ok {
		return false, fmt.Errorf("table %q is not allowed", table)
	}

	id, ok := row["id"]
	if !ok || id == nil {
		return false, errors.New("row is missing its id")
	}

	var existing map[string]interface{}
	err := s.db.WithContext(ctx).
		Table(spec.localTable).
		Where("id = ?", id).
		Take(&existing).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := s.db.WithContext(ctx).Table(spec.localTable).Create(row).Error; err != nil {
			return false, err
		}
		return true, nil
	}
	if err != nil {
		return false, err
	}

	// Last-writer-wins: the external row is applied only when strictly
	// newer. Tables without updated_at keep the local copy.
	if spec.hasUpdatedAt {
		localTime, localOK := parseTime(existing["updated_at"])
		externalTime, externalOK := parseTime(row["updated_at"])
		if localOK && externalOK && !externalTime.After(localTime) {
			return false, nil
		}
	} else {
		return false, nil
	}

	err = s.db.WithContext(ctx).
		Table(spec.localTable).
		Where("id = ?", id).
		Updates(row).Error
	if err != nil {
		return false, err
	}
	return true, nil
}

// parseTime handles both driver-native time values and the string
// timestamps the gateway returns in recordsets.
func parseTime(value interface{}) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, true
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
			if t, err := time.Parse(layout, v); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}
