// handlers_session_test.go - Tests for session and download handlers
package api

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickpdf/backend/internal/models"
	"github.com/quickpdf/backend/internal/storage"
	"github.com/quickpdf/backend/internal/testutil"
)

func TestHandleCountdown(t *testing.T) {
	env := newTestEnv(t)
	env.uploadPDF(t, "sess-cd", "a.pdf")

	rec := env.request(t, http.MethodGet, "/api/session/countdown", "sess-cd", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var status models.CountdownStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.True(t, status.Active)
	assert.Greater(t, status.RemainingSeconds, int64(0))
}

func TestHandleClear(t *testing.T) {
	env := newTestEnv(t)
	env.uploadPDF(t, "sess-clear", "a.pdf")

	rec := env.request(t, http.MethodPost, "/api/session/clear", "sess-clear", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, env.reclaimer.purged, "sess-clear")
}

func TestHandleDownload(t *testing.T) {
	env := newTestEnv(t)
	stored := env.uploadPDF(t, "sess-dl", "report.pdf")

	rec := env.request(t, http.MethodGet, "/api/files/download/"+stored[0], "sess-dl", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "report.pdf")
	assert.Equal(t, testutil.PDFBytes(), rec.Body.Bytes())

	rec = env.request(t, http.MethodGet, "/api/files/download/ghost.pdf", "sess-dl", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleDownloadAll(t *testing.T) {
	env := newTestEnv(t)
	env.registry.Ensure("sess-zip")

	dir, err := env.layout.DirFor("sess-zip", storage.ClassProcessed)
	require.NoError(t, err)
	for _, name := range []string{"out_1.pdf", "out_2.pdf"} {
		testutil.WritePDF(t, dir+"/"+name)
		env.registry.Track("sess-zip", name, "result_"+name, models.KindProcessed)
	}

	rec := env.request(t, http.MethodGet, "/api/files/download-all", "sess-zip", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))

	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)
	names := map[string]bool{}
	for _, f := range zr.File {
		names[f.Name] = true
	}
	assert.True(t, names["result_out_1.pdf"])
	assert.True(t, names["result_out_2.pdf"])
}

func TestHandleDownloadAllEmpty(t *testing.T) {
	env := newTestEnv(t)
	rec := env.request(t, http.MethodGet, "/api/files/download-all", "sess-empty", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
