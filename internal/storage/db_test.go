package storage_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"testing/fstest"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neexbeast/flysen-catalog/internal/storage"
)

type mockMigrationPool struct {
	beginFn func(ctx context.Context) (pgx.Tx, error)
}

func (m *mockMigrationPool) Begin(ctx context.Context) (pgx.Tx, error) {
	return m.beginFn(ctx)
}

func recordingPool(executed *[]string, execErr, commitErr error) *mockMigrationPool {
	tx := &mockTx{
		execFn: func(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
			*executed = append(*executed, sql)
			return pgconn.CommandTag{}, execErr
		},
		commitFn:   func(_ context.Context) error { return commitErr },
		rollbackFn: func(_ context.Context) error { return nil },
	}
	return &mockMigrationPool{beginFn: func(_ context.Context) (pgx.Tx, error) { return tx, nil }}
}

func TestRunMigrations_MissingDir(t *testing.T) {
	err := storage.RunMigrations(context.Background(), nil, os.DirFS("/nonexistent/dir"), nil)
	require.Error(t, err)
}

func TestRunMigrations_EmptyDir(t *testing.T) {
	err := storage.RunMigrations(context.Background(), nil, fstest.MapFS{}, nil)
	require.NoError(t, err)
}

func TestRunMigrations_Success(t *testing.T) {
	var executed []string
	fsys := fstest.MapFS{
		"001_test.sql": {Data: []byte("SELECT 1;")},
		"README.md":    {Data: []byte("not a migration")},
	}

	err := storage.RunMigrations(context.Background(), recordingPool(&executed, nil, nil), fsys, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"SELECT 1;"}, executed)
}

func TestRunMigrations_BeginError(t *testing.T) {
	fsys := fstest.MapFS{"001_test.sql": {Data: []byte("SELECT 1;")}}
	pool := &mockMigrationPool{
		beginFn: func(_ context.Context) (pgx.Tx, error) { return nil, fmt.Errorf("cannot begin") },
	}

	err := storage.RunMigrations(context.Background(), pool, fsys, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "executing migration 001_test.sql")
}

func TestRunMigrations_ExecError(t *testing.T) {
	var executed []string
	fsys := fstest.MapFS{"001_test.sql": {Data: []byte("INVALID SQL;")}}

	err := storage.RunMigrations(context.Background(), recordingPool(&executed, fmt.Errorf("syntax error"), nil), fsys, nil)
	require.Error(t, err)
}

func TestRunMigrations_CommitError(t *testing.T) {
	var executed []string
	fsys := fstest.MapFS{"001_test.sql": {Data: []byte("SELECT 1;")}}

	err := storage.RunMigrations(context.Background(), recordingPool(&executed, nil, fmt.Errorf("commit failed")), fsys, nil)
	require.Error(t, err)
}

func TestRunMigrations_SortsFilesLexicographically(t *testing.T) {
	var executed []string
	fsys := fstest.MapFS{
		"003_c.sql": {Data: []byte("SELECT 3;")},
		"001_a.sql": {Data: []byte("SELECT 1;")},
		"002_b.sql": {Data: []byte("SELECT 2;")},
	}

	err := storage.RunMigrations(context.Background(), recordingPool(&executed, nil, nil), fsys, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"SELECT 1;", "SELECT 2;", "SELECT 3;"}, executed)
}

func TestRunMigrations_DocumentsSchema(t *testing.T) {
	var executed []string
	err := storage.RunMigrations(context.Background(), recordingPool(&executed, nil, nil), os.DirFS("../../migrations"), nil)
	require.NoError(t, err)
	require.NotEmpty(t, executed)
	assert.Contains(t, executed[0], "CREATE TABLE IF NOT EXISTS documents")
}

func TestConnect_BadURL(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := storage.Connect(ctx, "postgres://invalid-host-xyz:5432/db?sslmode=disable")
	require.Error(t, err)
}
