package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"roster/app"
	"roster/database"
	"roster/handlers"
	"roster/models"
	"roster/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestApp opens a temporary SQLite store and starts the coordinator
func setupTestApp(t *testing.T) *app.App {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db := database.New(
		database.SQLiteConnector(filepath.Join(t.TempDir(), "test.db")),
		database.DialectSQLite,
		logger,
	)

	application := app.New(db, storage.BackendSQLite, nil, logger, 0)
	require.NoError(t, application.Controller.OnOpen(context.Background()), "Failed to open test database")
	application.Coordinator.Start()

	t.Cleanup(func() {
		application.Coordinator.Stop()
		application.Controller.OnClose()
	})

	return application
}

func setupRouter(application *app.App) *fiber.App {
	fiberApp := fiber.New()
	fiberApp.Get("/health", handlers.Health(application))
	fiberApp.Get("/api/records", handlers.ListRecords(application))
	fiberApp.Get("/api/records/:id", handlers.GetRecord(application))
	fiberApp.Post("/api/records", handlers.CreateRecord(application))
	fiberApp.Put("/api/records/:id", handlers.UpdateRecord(application))
	fiberApp.Delete("/api/records/:id", handlers.DeleteRecord(application))
	fiberApp.Post("/api/save", handlers.Save(application))
	fiberApp.Post("/api/load", handlers.Load(application))
	fiberApp.Get("/api/logs", handlers.GetLogs(application))
	return fiberApp
}

func doJSON(t *testing.T, fiberApp *fiber.App, method, path string, payload interface{}) (int, map[string]interface{}) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, ok := payload.(string)
		if !ok {
			b, err := json.Marshal(payload)
			require.NoError(t, err)
			raw = string(b)
		}
		body = bytes.NewReader([]byte(raw))
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := fiberApp.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

// saveRecord stages and saves one record, returning its store id
func saveRecord(t *testing.T, fiberApp *fiber.App, name, secret string) int {
	t.Helper()

	status, _ := doJSON(t, fiberApp, http.MethodPost, "/api/records", models.CreateRecordRequest{Name: name, Secret: secret})
	require.Equal(t, http.StatusCreated, status)

	status, body := doJSON(t, fiberApp, http.MethodPost, "/api/save", nil)
	require.Equal(t, http.StatusOK, status)

	for _, raw := range body["records"].([]interface{}) {
		rec := raw.(map[string]interface{})
		if rec["name"] == name {
			return int(rec["id"].(float64))
		}
	}
	t.Fatalf("record %q not persisted", name)
	return 0
}

func TestHealth(t *testing.T) {
	application := setupTestApp(t)
	fiberApp := setupRouter(application)

	status, body := doJSON(t, fiberApp, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "sqlite", body["backend"])
	assert.Equal(t, true, body["connected"])
}

func TestCreateRecord(t *testing.T) {
	application := setupTestApp(t)
	fiberApp := setupRouter(application)

	tests := []struct {
		name           string
		payload        interface{}
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "Valid record is staged",
			payload:        models.CreateRecordRequest{Name: "Bob", Secret: "pw1"},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Malformed body",
			payload:        "{not json",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid request body",
		},
		{
			name:           "Missing name",
			payload:        models.CreateRecordRequest{Name: "", Secret: "pw1"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Validation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doJSON(t, fiberApp, http.MethodPost, "/api/records", tt.payload)

			assert.Equal(t, tt.expectedStatus, status)
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, body["error"])
				return
			}

			rec := body["record"].(map[string]interface{})
			assert.Equal(t, float64(models.UnassignedID), rec["id"])
			assert.Equal(t, "Bob", rec["name"])
		})
	}
}

func TestListRecords_VersionAdvancesOnChange(t *testing.T) {
	application := setupTestApp(t)
	fiberApp := setupRouter(application)

	status, before := doJSON(t, fiberApp, http.MethodGet, "/api/records", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, before["records"])

	status, _ = doJSON(t, fiberApp, http.MethodPost, "/api/records", models.CreateRecordRequest{Name: "Bob", Secret: "pw1"})
	require.Equal(t, http.StatusCreated, status)

	status, after := doJSON(t, fiberApp, http.MethodGet, "/api/records", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, after["records"], 1)
	assert.Greater(t, after["version"].(float64), before["version"].(float64))
}

func TestSaveAndGetRecord(t *testing.T) {
	application := setupTestApp(t)
	fiberApp := setupRouter(application)

	bob := saveRecord(t, fiberApp, "Bob", "pw1")
	sue := saveRecord(t, fiberApp, "Sue", "pw2")
	assert.NotZero(t, bob)
	assert.Greater(t, sue, bob)

	tests := []struct {
		name           string
		path           string
		expectedStatus int
		expectedName   string
	}{
		{name: "Stored record", path: "/api/records/" + strconv.Itoa(sue), expectedStatus: http.StatusOK, expectedName: "Sue"},
		{name: "Unknown id", path: "/api/records/999", expectedStatus: http.StatusNotFound},
		{name: "Non-numeric id", path: "/api/records/abc", expectedStatus: http.StatusBadRequest},
		{name: "Unassigned id", path: "/api/records/0", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doJSON(t, fiberApp, http.MethodGet, tt.path, nil)

			assert.Equal(t, tt.expectedStatus, status)
			if tt.expectedName != "" {
				rec := body["record"].(map[string]interface{})
				assert.Equal(t, tt.expectedName, rec["name"])
			}
		})
	}
}

func TestUpdateRecord(t *testing.T) {
	application := setupTestApp(t)
	fiberApp := setupRouter(application)

	id := saveRecord(t, fiberApp, "Bob", "pw1")
	path := "/api/records/" + strconv.Itoa(id)

	status, body := doJSON(t, fiberApp, http.MethodPut, path, models.UpdateRecordRequest{Name: "Robert", Secret: "pw9"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(id), body["record"].(map[string]interface{})["id"])

	status, _ = doJSON(t, fiberApp, http.MethodPost, "/api/save", nil)
	require.Equal(t, http.StatusOK, status)

	status, body = doJSON(t, fiberApp, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Robert", body["record"].(map[string]interface{})["name"])

	status, _ = doJSON(t, fiberApp, http.MethodPut, "/api/records/999", models.UpdateRecordRequest{Name: "Nobody", Secret: "x"})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestDeleteRecord(t *testing.T) {
	application := setupTestApp(t)
	fiberApp := setupRouter(application)

	id := saveRecord(t, fiberApp, "Bob", "pw1")
	path := "/api/records/" + strconv.Itoa(id)

	status, _ := doJSON(t, fiberApp, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = doJSON(t, fiberApp, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = doJSON(t, fiberApp, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestLoad_PicksUpExternalWrites(t *testing.T) {
	application := setupTestApp(t)
	fiberApp := setupRouter(application)

	repo, err := application.Factory.ForBackend(storage.BackendSQLite)
	require.NoError(t, err)
	err = application.Coordinator.Do(context.Background(), func(ctx context.Context) error {
		_, err := repo.AddRecord(ctx, models.NewRecord("Sue", "pw2"))
		return err
	})
	require.NoError(t, err)

	status, body := doJSON(t, fiberApp, http.MethodPost, "/api/load", nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, body["records"], 1)
	assert.Equal(t, "Sue", body["records"].([]interface{})[0].(map[string]interface{})["name"])
}

func TestGetLogs(t *testing.T) {
	application := setupTestApp(t)
	fiberApp := setupRouter(application)

	saveRecord(t, fiberApp, "Bob", "pw1")

	status, body := doJSON(t, fiberApp, http.MethodGet, "/api/logs?limit=1", nil)
	require.Equal(t, http.StatusOK, status)
	logs := body["logs"].([]interface{})
	require.Len(t, logs, 1)
	assert.Equal(t, "saved 1 records", logs[0].(map[string]interface{})["message"])

	status, _ = doJSON(t, fiberApp, http.MethodGet, "/api/logs?limit=-3", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestConnectionUnavailable(t *testing.T) {
	application := setupTestApp(t)
	fiberApp := setupRouter(application)

	status, _ := doJSON(t, fiberApp, http.MethodPost, "/api/records", models.CreateRecordRequest{Name: "Bob", Secret: "pw1"})
	require.Equal(t, http.StatusCreated, status)

	application.DB.Close()

	status, body := doJSON(t, fiberApp, http.MethodPost, "/api/save", nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "Error saving to the database", body["error"])
	assert.NotContains(t, body, "records")

	status, _ = doJSON(t, fiberApp, http.MethodGet, "/api/records/1", nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestCoordinatorStopped(t *testing.T) {
	application := setupTestApp(t)
	fiberApp := setupRouter(application)

	application.Coordinator.Stop()

	status, _ := doJSON(t, fiberApp, http.MethodGet, "/api/records", nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
}
