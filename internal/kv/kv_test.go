package kv

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, ok, err := s.Load(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	buf := []byte(`[1,2]`)
	require.NoError(t, s.Save(ctx, "k", buf))
	buf[0] = 'x'

	v, ok, err := s.Load(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[1,2]`, string(v), "stored value must not alias the caller's slice")
}

func TestFileStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, "unicornCart", []byte(`[{"id":1,"quantity":2}]`)))
	require.NoError(t, s.Save(ctx, "secureAI_progress", []byte(`{"completed":[1]}`)))

	// a second instance sees what the first wrote
	s2, err := NewFileStore(dir)
	require.NoError(t, err)

	v, ok, err := s2.Load(ctx, "unicornCart")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `[{"id":1,"quantity":2}]`, string(v))

	v, ok, err = s2.Load(ctx, "secureAI_progress")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"completed":[1]}`, string(v))
}

func TestFileStore_RejectsInvalidJSON(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, s.Save(context.Background(), "k", []byte("not json")))
}

func TestFileStore_CorruptDocument(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, stateFileName), []byte("{broken"), 0o644))

	s, err := NewFileStore(dir)
	require.NoError(t, err)

	_, _, err = s.Load(ctx, "k")
	assert.Error(t, err)

	// writes recover the document
	require.NoError(t, s.Save(ctx, "k", []byte(`true`)))
	v, ok, err := s.Load(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "true", string(v))
}

func TestProfileNamespace_Stable(t *testing.T) {
	dir := t.TempDir()

	first, err := ProfileNamespace(dir)
	require.NoError(t, err)
	assert.NotEmpty(t, first)

	second, err := ProfileNamespace(dir)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRedisPrefix(t *testing.T) {
	assert.Equal(t, "emporium:default:", RedisPrefix(""))
	assert.Equal(t, "emporium:a_b:", RedisPrefix("a:b"))
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), Options{Backend: "etcd"})
	assert.Error(t, err)
}

func TestOpen_Memory(t *testing.T) {
	b, err := Open(context.Background(), Options{Backend: "memory"})
	require.NoError(t, err)
	assert.Equal(t, "memory", b.Type())
	assert.NoError(t, b.HealthCheck(context.Background()))
	assert.NoError(t, b.Close())
}

func TestMemoryStore_Purge(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Save(ctx, "a", []byte("1")))
	require.NoError(t, s.Save(ctx, "b", []byte("2")))

	n, err := s.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, ok, err := s.Load(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStore_Purge(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := NewFileStore(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, stateFileName), s.Path())

	require.NoError(t, s.Save(ctx, "unicornCart", []byte(`[]`)))
	require.NoError(t, s.Save(ctx, "secureAI_progress", []byte(`{}`)))

	n, err := s.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoFileExists(t, s.Path())

	n, err = s.Purge(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "purging an empty store is a no-op")
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	s := newRedisStore(client, "install-1")
	other := newRedisStore(client, "install-2")
	defer s.Close()

	_, ok, err := s.Load(ctx, "unicornCart")
	require.NoError(t, err)
	assert.False(t, ok, "missing keys are not errors")

	require.NoError(t, s.Save(ctx, "unicornCart", []byte(`[{"id":1}]`)))
	require.NoError(t, s.Save(ctx, "secureAI_progress", []byte(`{"completed":[2]}`)))
	require.NoError(t, other.Save(ctx, "unicornCart", []byte(`[]`)))

	v, ok, err := s.Load(ctx, "unicornCart")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `[{"id":1}]`, string(v))
	assert.True(t, mr.Exists("emporium:install-1:unicornCart"))
	assert.NoError(t, s.HealthCheck(ctx))

	n, err := s.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, ok, err = s.Load(ctx, "secureAI_progress")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = other.Load(ctx, "unicornCart")
	require.NoError(t, err)
	assert.True(t, ok, "other namespaces survive a purge")
}

func TestRedisStore_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisStore(context.Background(), addr, "", 0, "ns")
	assert.Error(t, err)
}

func TestPostgresStore(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	s := newPostgresStore(db, "")

	selectValue := regexp.QuoteMeta(`SELECT value FROM kv_entries WHERE namespace = $1 AND key = $2`)

	mock.ExpectQuery(selectValue).
		WithArgs("default", "unicornCart").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))
	_, ok, err := s.Load(ctx, "unicornCart")
	require.NoError(t, err)
	assert.False(t, ok, "no row means no saved value")

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO kv_entries`)).
		WithArgs("default", "unicornCart", []byte(`[]`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, s.Save(ctx, "unicornCart", []byte(`[]`)))

	mock.ExpectQuery(selectValue).
		WithArgs("default", "unicornCart").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(`[]`)))
	v, ok, err := s.Load(ctx, "unicornCart")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `[]`, string(v))

	mock.ExpectQuery(selectValue).
		WithArgs("default", "broken").
		WillReturnError(errors.New("connection reset"))
	_, _, err = s.Load(ctx, "broken")
	assert.ErrorContains(t, err, "connection reset")

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM kv_entries WHERE namespace = $1`)).
		WithArgs("default").
		WillReturnResult(sqlmock.NewResult(0, 2))
	n, err := s.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	mock.ExpectClose()
	require.NoError(t, s.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}
