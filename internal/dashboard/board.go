// Package dashboard owns the current metrics value of every project view and
// the load events that replace it.
package dashboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"qa-dashboard/internal/ingest"
	"qa-dashboard/internal/metrics"
	"qa-dashboard/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrUnknownProject is returned for identifiers missing from the catalog.
var ErrUnknownProject = errors.New("unknown project")

// Origin says where a snapshot's metrics came from.
type Origin string

const (
	OriginDefaults Origin = "defaults"
	OriginDocument Origin = "document"
	OriginUpload   Origin = "upload"
)

// Snapshot is one resolved load. It is never modified after it is published.
type Snapshot struct {
	ID         uuid.UUID            `json:"id"`
	ProjectID  string               `json:"projectId"`
	Metrics    models.TestMetrics   `json:"metrics"`
	Provenance []metrics.Provenance `json:"provenance"`
	Origin     Origin               `json:"origin"`
	// Notice is informational, Error is shown as a failure.
	Notice   string    `json:"notice,omitempty"`
	Error    string    `json:"error,omitempty"`
	LoadedAt time.Time `json:"loadedAt"`
}

// loadSettings names the document source and the project that reads it.
type loadSettings struct {
	source   ingest.Source
	autoload string
}

// Board holds the current snapshot per project.
type Board struct {
	log      *zap.Logger
	catalog  *models.Catalog
	settings atomic.Pointer[loadSettings]
	slots    map[string]*atomic.Pointer[Snapshot]
	loads    singleflight.Group
	now      func() time.Time
}

// NewBoard creates a board for every project in the catalog. Only the
// autoload project reads the document source on view entry.
func NewBoard(log *zap.Logger, catalog *models.Catalog, source ingest.Source, autoload string) *Board {
	slots := make(map[string]*atomic.Pointer[Snapshot], len(catalog.Projects))
	for _, id := range catalog.IDs() {
		slots[id] = &atomic.Pointer[Snapshot]{}
	}
	b := &Board{
		log:     log,
		catalog: catalog,
		slots:   slots,
		now:     time.Now,
	}
	b.settings.Store(&loadSettings{source: source, autoload: autoload})
	return b
}

// Reconfigure swaps the document source and autoload project. Loads already
// running finish against the old source; published snapshots are kept.
func (b *Board) Reconfigure(source ingest.Source, autoload string) {
	b.settings.Store(&loadSettings{source: source, autoload: autoload})
	name := ""
	if source != nil {
		name = source.String()
	}
	b.log.Info("Dashboard source reconfigured", zap.String("source", name), zap.String("autoload", autoload))
}

// Catalog returns the project catalog the board was built from.
func (b *Board) Catalog() *models.Catalog { return b.catalog }

// AutoloadProject is the project whose view fetches the document source.
func (b *Board) AutoloadProject() string { return b.settings.Load().autoload }

// SourceName describes the configured document source.
func (b *Board) SourceName() string {
	source := b.settings.Load().source
	if source == nil {
		return ""
	}
	return source.String()
}

// Enter runs the view-entry load for a project and publishes the result.
// Concurrent entries for the same project share a single load.
func (b *Board) Enter(ctx context.Context, projectID string) (*Snapshot, error) {
	slot, ok := b.slots[projectID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProject, projectID)
	}

	settings := b.settings.Load()
	if projectID != settings.autoload || settings.source == nil {
		snap := b.snapshot(projectID, nil, OriginDefaults)
		b.publish(slot, snap)
		return snap, nil
	}

	// Shared by every waiting caller; the source's timeout bounds it.
	loadCtx := context.WithoutCancel(ctx)
	v, _, _ := b.loads.Do(projectID, func() (any, error) {
		snap := b.loadDocument(loadCtx, projectID, settings.source)
		b.publish(slot, snap)
		return snap, nil
	})
	return v.(*Snapshot), nil
}

// Upload replaces the project's metrics with the first row of an uploaded
// CSV. A read error leaves the current value untouched; a parse error
// publishes defaults with a visible error.
func (b *Board) Upload(projectID, filename string, r io.Reader) (*Snapshot, error) {
	slot, ok := b.slots[projectID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProject, projectID)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	log := b.log.With(zap.String("project", projectID), zap.String("file", filename))
	log.Info("Manual file upload", zap.Int("bytes", len(data)))

	doc, err := ingest.Parse(bytes.NewReader(data))
	if err != nil {
		log.Error("Failed to parse uploaded file", zap.Error(err))
		snap := b.snapshot(projectID, nil, OriginDefaults)
		snap.Error = "Failed to parse uploaded file: " + err.Error()
		b.publish(slot, snap)
		return snap, nil
	}

	rec, ok := doc.First()
	if !ok {
		log.Warn("Uploaded file has no data rows, using default data")
		snap := b.snapshot(projectID, nil, OriginDefaults)
		b.publish(slot, snap)
		return snap, nil
	}

	snap := b.snapshot(projectID, rec, OriginUpload)
	b.publish(slot, snap)
	return snap, nil
}

// Current returns the published snapshot, publishing defaults if the view
// has not been entered yet.
func (b *Board) Current(projectID string) (*Snapshot, error) {
	slot, ok := b.slots[projectID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProject, projectID)
	}
	if snap := slot.Load(); snap != nil {
		return snap, nil
	}
	slot.CompareAndSwap(nil, b.snapshot(projectID, nil, OriginDefaults))
	return slot.Load(), nil
}

func (b *Board) loadDocument(ctx context.Context, projectID string, source ingest.Source) *Snapshot {
	log := b.log.With(zap.String("project", projectID), zap.Stringer("source", source))

	data, err := source.Fetch(ctx)
	switch {
	case errors.Is(err, ingest.ErrSourceUnavailable):
		log.Warn("CSV file not available, using default data", zap.Error(err))
		snap := b.snapshot(projectID, nil, OriginDefaults)
		snap.Notice = fmt.Sprintf("CSV file not found. Using default demo data. Place your CSV file at %s to load real data.", source)
		return snap
	case err != nil:
		log.Error("Failed to load CSV", zap.Error(err))
		snap := b.snapshot(projectID, nil, OriginDefaults)
		snap.Error = "Failed to load CSV: " + err.Error()
		return snap
	}

	doc, err := ingest.Parse(bytes.NewReader(data))
	if err != nil {
		log.Error("CSV parsing failed", zap.Error(err))
		snap := b.snapshot(projectID, nil, OriginDefaults)
		snap.Error = "CSV parsing failed: " + err.Error()
		return snap
	}

	rec, ok := doc.First()
	if !ok {
		log.Warn("No data found in CSV, using default data")
		return b.snapshot(projectID, nil, OriginDefaults)
	}
	log.Debug("CSV loaded", zap.Strings("columns", doc.Header), zap.Int("rows", len(doc.Rows)))
	return b.snapshot(projectID, rec, OriginDocument)
}

func (b *Board) snapshot(projectID string, rec metrics.RawRecord, origin Origin) *Snapshot {
	m, prov := metrics.Explain(rec)
	return &Snapshot{
		ID:         uuid.New(),
		ProjectID:  projectID,
		Metrics:    m,
		Provenance: prov,
		Origin:     origin,
		LoadedAt:   b.now(),
	}
}

func (b *Board) publish(slot *atomic.Pointer[Snapshot], snap *Snapshot) {
	slot.Store(snap)
	b.log.Info("Metrics published",
		zap.String("project", snap.ProjectID),
		zap.Stringer("snapshot", snap.ID),
		zap.String("origin", string(snap.Origin)),
		zap.Int("total_cases", snap.Metrics.TotalCases),
		zap.Bool("has_error", snap.Error != ""),
	)
	for _, p := range snap.Provenance {
		if p.Column == "" && !p.Derived {
			b.log.Debug("Field fell back to default", zap.String("project", snap.ProjectID), zap.String("field", string(p.Field)))
		}
	}
}
