package router

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"qa-dashboard/internal/dashboard"
	"qa-dashboard/internal/ingest"
	"qa-dashboard/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var csrfMeta = regexp.MustCompile(`<meta name="csrf-token" content="([^"]+)">`)

type client struct {
	t      *testing.T
	engine *gin.Engine
	cookie *http.Cookie
	token  string
}

func newClient(t *testing.T) *client {
	t.Helper()
	gin.SetMode(gin.TestMode)
	source := ingest.NewSource(filepath.Join(t.TempDir(), "dashboard.csv"), time.Second, 0)
	board := dashboard.NewBoard(zap.NewNop(), models.DefaultCatalog(), source, "model-i")
	return &client{t: t, engine: Setup(zap.NewNop(), board)}
}

func (cl *client) do(req *http.Request) *httptest.ResponseRecorder {
	cl.t.Helper()
	if cl.cookie != nil {
		req.AddCookie(cl.cookie)
	}
	rec := httptest.NewRecorder()
	cl.engine.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == sessionName {
			cl.cookie = ck
		}
	}
	return rec
}

func (cl *client) get(path string) *httptest.ResponseRecorder {
	rec := cl.do(httptest.NewRequest(http.MethodGet, path, nil))
	if m := csrfMeta.FindStringSubmatch(rec.Body.String()); m != nil {
		cl.token = m[1]
	}
	return rec
}

func uploadRequest(t *testing.T, path, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = io.WriteString(part, content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestProjectsPageHeaders(t *testing.T) {
	cl := newClient(t)
	rec := cl.get("/")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Model-I")
	assert.Contains(t, rec.Body.String(), "Edimax 11be")
	assert.NotEmpty(t, cl.token)
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "'nonce-")
}

func TestHTMXRequestsGetFragments(t *testing.T) {
	cl := newClient(t)
	req := httptest.NewRequest(http.MethodGet, "/dashboard/model-k", nil)
	req.Header.Set("HX-Request", "true")
	rec := cl.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<!DOCTYPE html>")
	assert.Contains(t, rec.Body.String(), "Edimax 11be Dashboard")
	assert.Empty(t, rec.Header().Get("Content-Security-Policy"))
}

func TestAutoloadProjectShowsMissingCSVNotice(t *testing.T) {
	cl := newClient(t)
	rec := cl.get("/dashboard/model-i")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "CSV file not found. Using default demo data.")
	assert.Contains(t, rec.Body.String(), "Acera-1310 Dashboard")
}

func TestUnknownProject(t *testing.T) {
	cl := newClient(t)

	rec := cl.get("/dashboard/model-z")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = cl.get("/api/projects/model-z/metrics")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown project")
}

func TestUploadReplacesMetrics(t *testing.T) {
	cl := newClient(t)
	cl.get("/dashboard/model-h")
	require.NotEmpty(t, cl.token)

	req := uploadRequest(t, "/dashboard/model-h/upload", "run.csv", "Total Test Cases,Total Executed,Total Passed\n50,40,30\n")
	req.Header.Set("X-CSRF-Token", cl.token)
	req.Header.Set("HX-Request", "true")
	rec := cl.do(req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "80.00% Execution Rate")
	assert.Contains(t, rec.Body.String(), "75.00% Pass Rate")

	rec = cl.get("/api/projects/model-h/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	var payload struct {
		Snapshot dashboard.Snapshot `json:"snapshot"`
		Pending  int                `json:"pending"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, 50, payload.Snapshot.Metrics.TotalCases)
	assert.Equal(t, dashboard.OriginUpload, payload.Snapshot.Origin)
	assert.Equal(t, 8, payload.Pending)
}

func TestUploadFormTokenFallback(t *testing.T) {
	cl := newClient(t)
	cl.get("/dashboard/model-h")

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("_csrf", cl.token))
	part, err := w.CreateFormFile("file", "run.csv")
	require.NoError(t, err)
	_, _ = io.WriteString(part, "Total Failed\n9\n")
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/dashboard/model-h/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := cl.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<!DOCTYPE html>")
}

func TestUploadRejections(t *testing.T) {
	cl := newClient(t)
	cl.get("/dashboard/model-h")

	t.Run("missing token", func(t *testing.T) {
		rec := cl.do(uploadRequest(t, "/dashboard/model-h/upload", "run.csv", "Passed\n1\n"))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("wrong extension", func(t *testing.T) {
		req := uploadRequest(t, "/dashboard/model-h/upload", "run.xlsx", "Passed\n1\n")
		req.Header.Set("X-CSRF-Token", cl.token)
		rec := cl.do(req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Please upload a .csv file")
		assert.Equal(t, "#upload-alert", rec.Header().Get("HX-Retarget"))
	})

	t.Run("no file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/dashboard/model-h/upload", strings.NewReader(""))
		req.Header.Set("X-CSRF-Token", cl.token)
		rec := cl.do(req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("too large", func(t *testing.T) {
		big := "Total Test Cases\n" + strings.Repeat("1\n", 600_000)
		req := uploadRequest(t, "/dashboard/model-h/upload", "big.csv", big)
		req.Header.Set("X-CSRF-Token", cl.token)
		req.Header.Set("HX-Request", "true")
		rec := cl.do(req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Equal(t, "#upload-alert", rec.Header().Get("HX-Retarget"))
		assert.Equal(t, "innerHTML", rec.Header().Get("HX-Reswap"))
		assert.Contains(t, rec.Body.String(), "The uploaded file is too large.")
		assert.Contains(t, rec.Body.String(), `class="error glass-card"`)
	})

	rec := cl.get("/api/projects/model-h/metrics")
	assert.Contains(t, rec.Body.String(), `"origin":"defaults"`)
}

func TestChartPNG(t *testing.T) {
	cl := newClient(t)

	rec := cl.get("/dashboard/model-k/chart.png?kind=pie")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	rec = cl.get("/dashboard/model-k/chart.png?kind=radar")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClockPartial(t *testing.T) {
	cl := newClient(t)
	req := httptest.NewRequest(http.MethodGet, "/dashboard/model-i/clock", nil)
	req.Header.Set("HX-Request", "true")
	rec := cl.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Live • ")
	assert.Contains(t, rec.Body.String(), `hx-trigger="every 5s"`)
}

func TestAPIProjects(t *testing.T) {
	cl := newClient(t)
	rec := cl.get("/api/projects")

	require.Equal(t, http.StatusOK, rec.Code)
	var payload struct {
		Projects []models.Project `json:"projects"`
		Autoload string           `json:"autoload"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Len(t, payload.Projects, 3)
	assert.Equal(t, "model-i", payload.Autoload)
}
