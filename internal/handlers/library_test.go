package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/encounter-tracker/internal/storage"
	"github.com/jwebster45206/encounter-tracker/pkg/library"
	"github.com/jwebster45206/encounter-tracker/pkg/session"
	"github.com/jwebster45206/encounter-tracker/pkg/transfer"
)

func setupLibraryHandler() (*LibraryHandler, *storage.MockStorage) {
	store := storage.NewMockStorage()
	return NewLibraryHandler(testLogger(), store), store
}

func seedLibrary(t *testing.T, store *storage.MockStorage) library.Snapshot {
	t.Helper()
	ctx := context.Background()
	snap := libTestSnapshot()
	require.NoError(t, store.RestoreLibrary(ctx, snap))
	return snap
}

func TestLibraryHandler_Snapshot(t *testing.T) {
	h, store := setupLibraryHandler()
	seedLibrary(t, store)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/library", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var snap library.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Len(t, snap.Categories, 1)
	assert.Len(t, snap.Creatures, 1)
}

func TestLibraryHandler_CategoryCRUD(t *testing.T) {
	h, _ := setupLibraryHandler()

	body := `{"name":"Humanoids"}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/library/categories", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var cat library.Category
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cat))
	assert.NotEqual(t, uuid.Nil, cat.ID)
	assert.Equal(t, "Humanoids", cat.Name)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/library/categories", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var cats []library.Category
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cats))
	require.Len(t, cats, 1)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/v1/library/categories/"+cat.ID.String(), nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/v1/library/categories/"+cat.ID.String(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLibraryHandler_CategoryValidation(t *testing.T) {
	h, _ := setupLibraryHandler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/library/categories", strings.NewReader(`{"name":""}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLibraryHandler_CreatureCRUD(t *testing.T) {
	h, _ := setupLibraryHandler()

	body := `{"name":"Ogre","initiative_kind":"roll","initiative_value":-1,"hp":59,"max_hp":59}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/library/creatures", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var tmpl library.CreatureTemplate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tmpl))
	assert.NotEqual(t, uuid.Nil, tmpl.ID)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/library/creatures", strings.NewReader(`{"name":"","hp":1,"max_hp":1,"initiative_kind":"fixed"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/v1/library/creatures/"+tmpl.ID.String(), nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestLibraryHandler_ExportImportRoundTrip(t *testing.T) {
	h, store := setupLibraryHandler()
	seeded := seedLibrary(t, store)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/library/export", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var exported map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &exported))

	// Fresh handler with empty storage imports the snapshot.
	h2, store2 := setupLibraryHandler()
	body, err := json.Marshal(ImportRequest{Data: exported["data"]})
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	h2.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/library/import", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	snap, err := store2.LibrarySnapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, seeded.Categories[0].ID, snap.Categories[0].ID)
	require.Len(t, snap.Creatures, 1)
	assert.Equal(t, "Wolf", snap.Creatures[0].Name)
}

func TestLibraryHandler_ImportRejectsSessionExport(t *testing.T) {
	h, _ := setupLibraryHandler()

	sess := createSession(t, NewSessionHandler(testLogger(), storage.NewMockStorage(), session.NewReducer(fixedRoller(10))))
	out, err := transfer.Export(transfer.OriginSession, sess)
	require.NoError(t, err)

	body, err := json.Marshal(ImportRequest{Data: out})
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/library/import", bytes.NewReader(body)))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "This looks like a different export type.", resp.Error)
}

func TestLibraryHandler_ExportFile(t *testing.T) {
	h, store := setupLibraryHandler()
	seedLibrary(t, store)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/library/export?format=file", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "library.enctrack")

	got, err := transfer.ImportBytes[library.Snapshot](rec.Body.Bytes(), transfer.OriginLibrary)
	require.NoError(t, err)
	assert.Len(t, got.Creatures, 1)
}
