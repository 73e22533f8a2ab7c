package setup

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roster/config"
	"roster/database"
	"roster/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.DBPath = filepath.Join(t.TempDir(), "roster.db")
	return cfg
}

func TestInitDatabase(t *testing.T) {
	tests := []struct {
		name        string
		backend     string
		dsn         string
		wantDialect database.Dialect
		wantErr     error
	}{
		{name: "SQLite", backend: "sqlite", wantDialect: database.DialectSQLite},
		{name: "Oracle stub rides on SQLite", backend: "oracle", wantDialect: database.DialectSQLite},
		{name: "MySQL", backend: "mysql", dsn: "user:pw@tcp(localhost:3306)/roster", wantDialect: database.DialectMySQL},
		{name: "Unknown", backend: "postgres", wantErr: storage.ErrUnsupportedBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.Backend = tt.backend
			cfg.MySQLDSN = tt.dsn

			db, err := InitDatabase(cfg, testLogger())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDialect, db.Dialect())
			assert.False(t, db.IsOpen(), "nothing is dialed until the controller opens it")
		})
	}
}

func TestInitApp_ServesAPI(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	db, err := InitDatabase(cfg, testLogger())
	require.NoError(t, err)
	application, err := InitApp(ctx, db, cfg, testLogger())
	require.NoError(t, err)
	defer Shutdown(application, testLogger())

	server := NewServer(cfg, application, testLogger())

	body, err := json.Marshal(map[string]string{"name": "Bob", "secret": "pw1"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/records", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := server.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp, err = server.Test(httptest.NewRequest(http.MethodPost, "/api/save", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = server.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = server.Test(httptest.NewRequest(http.MethodGet, "/nope", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestInitApp_ConnectionFailure(t *testing.T) {
	cfg := testConfig(t)
	cfg.Backend = "mysql"
	cfg.MySQLDSN = "not a dsn"

	db, err := InitDatabase(cfg, testLogger())
	require.NoError(t, err)

	_, err = InitApp(context.Background(), db, cfg, testLogger())

	assert.ErrorIs(t, err, storage.ErrConnectionUnavailable)
	assert.False(t, db.IsOpen())
}

func TestShutdown_NilApp(t *testing.T) {
	assert.NotPanics(t, func() { Shutdown(nil, testLogger()) })
}
