package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"
)

// Source fetches the raw bytes of the well-known metrics document.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
	String() string
}

// NewSource picks an HTTP source for http(s) locations and a file source
// otherwise. Documents over maxBytes are rejected; 0 means no limit.
func NewSource(location string, timeout time.Duration, maxBytes int64) Source {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return &HTTPSource{URL: location, Client: &http.Client{Timeout: timeout}, MaxBytes: maxBytes}
	}
	return &FileSource{Path: location, MaxBytes: maxBytes}
}

// FileSource reads the document from disk.
type FileSource struct {
	Path     string
	MaxBytes int64
}

func (s *FileSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, unavailable("%s not found", s.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer f.Close()

	data, err := readLimited(f, s.MaxBytes, s.Path)
	if err != nil {
		return nil, err
	}
	return nonEmpty(s.Path, data)
}

func (s *FileSource) String() string { return s.Path }

// HTTPSource downloads the document with a single GET.
type HTTPSource struct {
	URL      string
	Client   *http.Client
	MaxBytes int64
}

func (s *HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, unavailable("%s returned status %d", s.URL, resp.StatusCode)
	}
	data, err := readLimited(resp.Body, s.MaxBytes, s.URL)
	if err != nil {
		return nil, err
	}
	return nonEmpty(s.URL, data)
}

func (s *HTTPSource) String() string { return s.URL }

// readLimited reads at most maxBytes, failing with ErrTooLarge when there is more.
func readLimited(r io.Reader, maxBytes int64, name string) ([]byte, error) {
	if maxBytes > 0 {
		r = io.LimitReader(r, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrSourceUnavailable, name, err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, name, maxBytes)
	}
	return data, nil
}

func nonEmpty(name string, data []byte) ([]byte, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, unavailable("%s is empty", name)
	}
	return data, nil
}
