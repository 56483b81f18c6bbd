package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSource(t *testing.T) {
	assert.IsType(t, &HTTPSource{}, NewSource("https://example.com/dashboard.csv", time.Second, 0))
	assert.IsType(t, &FileSource{}, NewSource("public/dashboard.csv", time.Second, 0))
	assert.Equal(t, "public/dashboard.csv", NewSource("public/dashboard.csv", time.Second, 0).String())
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file is unavailable", func(t *testing.T) {
		_, err := (&FileSource{Path: filepath.Join(dir, "missing.csv")}).Fetch(context.Background())
		assert.ErrorIs(t, err, ErrSourceUnavailable)
	})

	t.Run("whitespace-only file is unavailable", func(t *testing.T) {
		path := filepath.Join(dir, "blank.csv")
		require.NoError(t, os.WriteFile(path, []byte(" \n\t\n"), 0o644))
		_, err := (&FileSource{Path: path}).Fetch(context.Background())
		assert.ErrorIs(t, err, ErrSourceUnavailable)
	})

	t.Run("reads content", func(t *testing.T) {
		path := filepath.Join(dir, "dashboard.csv")
		require.NoError(t, os.WriteFile(path, []byte("Total Cases\n5\n"), 0o644))
		data, err := (&FileSource{Path: path}).Fetch(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Total Cases\n5\n", string(data))
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := (&FileSource{Path: filepath.Join(dir, "dashboard.csv")}).Fetch(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestSourceSizeLimit(t *testing.T) {
	body := "Total Test Cases\n" + strings.Repeat("1\n", 64)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "dashboard.csv")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	for name, src := range map[string]Source{
		"http": NewSource(srv.URL+"/dashboard.csv", time.Second, 32),
		"file": NewSource(path, time.Second, 32),
	} {
		t.Run(name+" over limit", func(t *testing.T) {
			_, err := src.Fetch(context.Background())
			assert.ErrorIs(t, err, ErrTooLarge)
			assert.NotErrorIs(t, err, ErrSourceUnavailable)
		})
	}

	t.Run("exactly at limit", func(t *testing.T) {
		data, err := NewSource(path, time.Second, int64(len(body))).Fetch(context.Background())
		require.NoError(t, err)
		assert.Equal(t, body, string(data))
	})
}

func TestHTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/dashboard.csv":
			_, _ = w.Write([]byte("Total Cases\n9\n"))
		case "/empty.csv":
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	t.Run("ok", func(t *testing.T) {
		data, err := NewSource(srv.URL+"/dashboard.csv", time.Second, 0).Fetch(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Total Cases\n9\n", string(data))
	})

	t.Run("not found", func(t *testing.T) {
		_, err := NewSource(srv.URL+"/missing.csv", time.Second, 0).Fetch(context.Background())
		assert.ErrorIs(t, err, ErrSourceUnavailable)
		assert.Contains(t, err.Error(), "404")
	})

	t.Run("empty body", func(t *testing.T) {
		_, err := NewSource(srv.URL+"/empty.csv", time.Second, 0).Fetch(context.Background())
		assert.ErrorIs(t, err, ErrSourceUnavailable)
	})

	t.Run("unreachable", func(t *testing.T) {
		_, err := (&HTTPSource{URL: "http://127.0.0.1:1/dashboard.csv"}).Fetch(context.Background())
		assert.ErrorIs(t, err, ErrSourceUnavailable)
	})
}
