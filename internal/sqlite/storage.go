package sqlite

import (
	"context"
	"database/sql"

	"photo-albums/internal"

	"github.com/pkg/errors"
)

var _ internal.LocalStorage = (*SQLite)(nil)

const tableLocalStorage = "local_storage"

const (
	localStorageColumnKey       = "key"
	localStorageColumnValue     = "value"
	localStorageColumnUpdatedAt = "updated_at"
)

var localStorageColumns = []string{
	localStorageColumnKey,
	localStorageColumnValue,
	localStorageColumnUpdatedAt,
}

// qualified prefixes each column with its table name.
func qualified(table string, columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = table + "." + c
	}
	return out
}

// item is one row of local_storage. UpdatedAt is a unix timestamp.
type item struct {
	Key       string
	Value     string
	UpdatedAt int64
}

// GetItem returns the value stored under key. A missing key is not an error.
func (s *SQLite) GetItem(ctx context.Context, key string) (string, bool, error) {
	qv, err := buildGetItemQuery(key)
	if err != nil {
		return "", false, errors.Wrap(err, "build get item query")
	}
	var it item
	err = s.sqldb.GetContext(ctx, &it, qv.query, qv.args...)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "execute get item query")
	}
	return it.Value, true, nil
}

func buildGetItemQuery(key string) (QueryValues, error) {
	q, args, err := sqlb.
		Select(qualified(tableLocalStorage, localStorageColumns)...).
		From(tableLocalStorage).
		Where(localStorageColumnKey+" = ?", key).
		ToSql()

	return QueryValues{q, args}, errors.Wrap(err, "get item build query into SQL string")
}

// SetItem stores value under key, replacing any previous value.
func (s *SQLite) SetItem(ctx context.Context, key, value string) error {
	qv, err := buildSetItemQuery(item{Key: key, Value: value, UpdatedAt: s.clock.Now().Unix()})
	if err != nil {
		return errors.Wrap(err, "build set item query")
	}
	if _, err := s.sqldb.ExecContext(ctx, qv.query, qv.args...); err != nil {
		return errors.Wrap(err, "execute set item query")
	}
	return nil
}

func buildSetItemQuery(it item) (QueryValues, error) {
	q, args, err := sqlb.
		Insert(tableLocalStorage).
		Columns(localStorageColumns...).
		Values(it.Key, it.Value, it.UpdatedAt).
		Suffix("ON CONFLICT(" + localStorageColumnKey + ") DO UPDATE SET " +
			localStorageColumnValue + " = excluded." + localStorageColumnValue + ", " +
			localStorageColumnUpdatedAt + " = excluded." + localStorageColumnUpdatedAt).
		ToSql()

	return QueryValues{q, args}, errors.Wrap(err, "set item build query into SQL string")
}

// RemoveItem deletes key. Removing a missing key is not an error.
func (s *SQLite) RemoveItem(ctx context.Context, key string) error {
	qv, err := buildRemoveItemQuery(key)
	if err != nil {
		return errors.Wrap(err, "build remove item query")
	}
	if _, err := s.sqldb.ExecContext(ctx, qv.query, qv.args...); err != nil {
		return errors.Wrap(err, "execute remove item query")
	}
	return nil
}

func buildRemoveItemQuery(key string) (QueryValues, error) {
	q, args, err := sqlb.
		Delete(tableLocalStorage).
		Where(localStorageColumnKey+" = ?", key).
		ToSql()

	return QueryValues{q, args}, errors.Wrap(err, "remove item build query into SQL string")
}

// Keys lists the stored keys in lexical order.
func (s *SQLite) Keys(ctx context.Context) ([]string, error) {
	q, args, err := sqlb.
		Select(localStorageColumnKey).
		From(tableLocalStorage).
		OrderBy(localStorageColumnKey + " ASC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build keys query")
	}
	keys := []string{}
	if err := s.sqldb.SelectContext(ctx, &keys, q, args...); err != nil {
		return nil, errors.Wrap(err, "execute keys query")
	}
	return keys, nil
}
