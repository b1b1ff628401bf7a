// handlers_files_test.go - Tests for upload and file management handlers
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickpdf/backend/internal/models"
	"github.com/quickpdf/backend/internal/preview"
	"github.com/quickpdf/backend/internal/session"
	"github.com/quickpdf/backend/internal/storage"
	"github.com/quickpdf/backend/internal/testutil"
	"github.com/quickpdf/backend/internal/tools"
)

type stubRunner struct {
	result   models.ToolResult
	gotTool  string
	gotPaths []string
	gotPages map[string][]int
	gotOpts  map[string]string
	catalog  []tools.Descriptor
}

func (s *stubRunner) Execute(ctx context.Context, sessionID, toolID string, inputPaths []string, pages map[string][]int, options map[string]string) models.ToolResult {
	s.gotTool = toolID
	s.gotPaths = inputPaths
	s.gotPages = pages
	s.gotOpts = options
	return s.result
}

func (s *stubRunner) Catalog() []tools.Descriptor { return s.catalog }

type stubReclaimer struct {
	scheduled map[string]time.Duration
	purged    []string
}

func (s *stubReclaimer) ScheduleDeferred(sessionID string, delay time.Duration) {
	if s.scheduled == nil {
		s.scheduled = make(map[string]time.Duration)
	}
	s.scheduled[sessionID] = delay
}

func (s *stubReclaimer) RunOnDemand(sessionID string) {
	s.purged = append(s.purged, sessionID)
}

type stubPreviewer struct {
	entry preview.Entry
	err   error
	calls int
}

func (s *stubPreviewer) Previews(sessionID, path, password string) (preview.Entry, error) {
	s.calls++
	return s.entry, s.err
}

type testEnv struct {
	echo      *echo.Echo
	layout    *storage.Layout
	registry  *session.Registry
	runner    *stubRunner
	reclaimer *stubReclaimer
	previewer *stubPreviewer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	layout, err := storage.NewLayout(t.TempDir())
	require.NoError(t, err)
	registry := session.NewRegistry(layout, 10*time.Minute)

	env := &testEnv{
		layout:    layout,
		registry:  registry,
		runner:    &stubRunner{},
		reclaimer: &stubReclaimer{},
		previewer: &stubPreviewer{},
	}

	assets := fstest.MapFS{
		preview.PlaceholderName: &fstest.MapFile{Data: []byte("jpegdata")},
	}
	deps := &Dependencies{
		Layout:          layout,
		Registry:        registry,
		Previewer:       env.previewer,
		Runner:          env.runner,
		Reclaimer:       env.reclaimer,
		Assets:          assets,
		MaxUploadSizeMB: 10,
		DeferredDelay:   5 * time.Minute,
		CookieName:      "quickpdf_session",
		Version:         "test",
	}

	e := echo.New()
	SetupMiddleware(e)
	RegisterRoutes(e, NewHandlers(deps), deps)
	env.echo = e
	return env
}

func (env *testEnv) request(t *testing.T, method, target, sessionID string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, body)
	}
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: "quickpdf_session", Value: sessionID})
	}
	rec := httptest.NewRecorder()
	env.echo.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) uploadPDF(t *testing.T, sessionID string, names ...string) []string {
	t.Helper()
	body, ct := testutil.MultipartPDFs(t, names...)
	rec := env.request(t, http.MethodPost, "/api/files/upload", sessionID, body, ct)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Files []struct {
			StoredName string `json:"storedName"`
		} `json:"files"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	stored := make([]string, 0, len(resp.Files))
	for _, f := range resp.Files {
		stored = append(stored, f.StoredName)
	}
	return stored
}

func TestHandleUpload(t *testing.T) {
	env := newTestEnv(t)

	t.Run("accepts PDFs and tracks them", func(t *testing.T) {
		stored := env.uploadPDF(t, "sess-upload", "report.pdf", "invoice.pdf")
		require.Len(t, stored, 2)

		files := env.registry.TrackedFiles("sess-upload", models.KindUpload)
		require.Len(t, files, 2)
		assert.Equal(t, "report.pdf", files[0].DisplayName)
		assert.NotEqual(t, "report.pdf", files[0].StoredName)

		// The countdown restarts on upload.
		assert.True(t, env.registry.Countdown("sess-upload").Active)
	})

	t.Run("rejects non-PDF uploads", func(t *testing.T) {
		body, ct := testutil.MultipartFile(t, "files", "notes.txt", []byte("plain text"))
		rec := env.request(t, http.MethodPost, "/api/files/upload", "sess-upload", body, ct)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects oversized uploads", func(t *testing.T) {
		body, ct := testutil.MultipartFile(t, "files", "big.pdf", testutil.LargeBytes(11*1024*1024))
		rec := env.request(t, http.MethodPost, "/api/files/upload", "sess-upload", body, ct)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	t.Run("rejects empty form", func(t *testing.T) {
		body, ct := testutil.MultipartFile(t, "other", "x.pdf", testutil.PDFBytes())
		rec := env.request(t, http.MethodPost, "/api/files/upload", "sess-upload", body, ct)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleList(t *testing.T) {
	env := newTestEnv(t)
	env.uploadPDF(t, "sess-list", "a.pdf")

	rec := env.request(t, http.MethodGet, "/api/files", "sess-list", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Uploads   []models.TrackedFile   `json:"uploads"`
		Processed []models.TrackedFile   `json:"processed"`
		Countdown models.CountdownStatus `json:"countdown"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Uploads, 1)
	assert.Empty(t, resp.Processed)
	assert.True(t, resp.Countdown.Active)
}

func TestHandleRename(t *testing.T) {
	env := newTestEnv(t)
	stored := env.uploadPDF(t, "sess-rename", "draft.pdf")

	body := bytes.NewBufferString(`{"newName":"final.pdf"}`)
	rec := env.request(t, http.MethodPut, "/api/files/"+stored[0], "sess-rename", body, echo.MIMEApplicationJSON)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var renamed models.TrackedFile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &renamed))
	assert.Equal(t, "final.pdf", renamed.DisplayName)
	assert.NotEqual(t, stored[0], renamed.StoredName)
	assert.True(t, strings.HasSuffix(renamed.StoredName, ".pdf"))

	// The old stored name no longer resolves.
	body = bytes.NewBufferString(`{"newName":"again"}`)
	rec = env.request(t, http.MethodPut, "/api/files/"+stored[0], "sess-rename", body, echo.MIMEApplicationJSON)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleDelete(t *testing.T) {
	env := newTestEnv(t)
	stored := env.uploadPDF(t, "sess-delete", "gone.pdf")

	path, err := env.layout.FilePath("sess-delete", storage.ClassUploads, stored[0])
	require.NoError(t, err)

	rec := env.request(t, http.MethodDelete, "/api/files/"+stored[0], "sess-delete", nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
	assert.Empty(t, env.registry.TrackedFiles("sess-delete", models.KindUpload))

	rec = env.request(t, http.MethodDelete, "/api/files/"+stored[0], "sess-delete", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionCookieMinted(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodGet, "/api/files", "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	var found bool
	for _, c := range cookies {
		if c.Name == "quickpdf_session" && c.Value != "" {
			found = true
		}
	}
	assert.True(t, found, "a session cookie should be set for new clients")
}
