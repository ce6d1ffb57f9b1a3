// Package mapsync keeps a map marker layer in step with the filtered event
// catalog and drives the viewport on selection and creation.
package mapsync

import (
	"errors"
	"iter"
	"sync"
	"time"

	"github.com/Potowai/nomad-nantes/internal/events"
	"go.uber.org/zap"
)

var (
	// InitialCenter is the viewport center set on mount.
	InitialCenter = events.LatLng{Lat: 47.2150, Lng: -1.5550}
	// UserLocation is where the user-location marker is drawn.
	UserLocation = events.LatLng{Lat: 47.2100, Lng: -1.5550}
)

const (
	InitialZoom     = 14
	SelectZoom      = 15
	CreateZoom      = 16
	CreateFlyLength = 1500 * time.Millisecond
)

// ErrMarkerNotFound indicates a click on an event id with no marker in the layer.
var ErrMarkerNotFound = errors.New("mapsync: marker not found")

// Mode is the presentation surface currently shown.
type Mode string

const (
	ModeMap  Mode = "map"
	ModeList Mode = "list"
)

// Catalog is the event source the engine reconciles against.
type Catalog interface {
	Filter(query string) iter.Seq[events.Event]
	FindByID(id string) (events.Event, bool)
	Create(draft events.Draft) (events.Event, error)
}

// Recorder receives reconciliation activity for metrics.
type Recorder interface {
	MarkersReconciled(markerCount int)
}

// Config wires an Engine.
type Config struct {
	Catalog  Catalog
	Viewport Viewport
	Logger   *zap.Logger
	Recorder Recorder
}

// Snapshot is the engine state reported to clients.
type Snapshot struct {
	Mounted    bool           `json:"mounted"`
	Mode       Mode           `json:"mode"`
	Query      string         `json:"query"`
	Markers    []Marker       `json:"markers"`
	UserMarker *events.LatLng `json:"userMarker,omitempty"`
	Viewport   ViewportState  `json:"viewport"`
	// Positioned reports whether markers are laid out against a valid viewport size.
	Positioned bool          `json:"positioned"`
	SelectedID string        `json:"selectedId,omitempty"`
	Selected   *events.Event `json:"selected,omitempty"`
}

// Engine owns the marker layer, the filter text and the selection. All
// methods are safe for concurrent use and reconciliations never overlap.
type Engine struct {
	mu         sync.Mutex
	catalog    Catalog
	viewport   Viewport
	layer      *MarkerLayer
	logger     *zap.Logger
	recorder   Recorder
	mounted    bool
	userMarker *events.LatLng
	query      string
	selectedID string
	mode       Mode
}

// NewEngine constructs an unmounted engine. A nil viewport gets a MemoryViewport.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Catalog == nil {
		return nil, errors.New("mapsync: catalog is required")
	}
	engine := &Engine{
		catalog:  cfg.Catalog,
		viewport: cfg.Viewport,
		layer:    NewMarkerLayer(),
		logger:   cfg.Logger,
		recorder: cfg.Recorder,
		mode:     ModeMap,
	}
	if engine.viewport == nil {
		engine.viewport = NewMemoryViewport()
	}
	if engine.logger == nil {
		engine.logger = zap.NewNop()
	}
	if engine.recorder == nil {
		engine.recorder = nopRecorder{}
	}
	return engine, nil
}

// Mount sets the initial view, installs the user-location marker and runs the
// first reconciliation. Only the first call has any effect.
func (e *Engine) Mount() ReconcileResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mounted {
		return ReconcileResult{}
	}
	e.mounted = true
	e.viewport.SetView(InitialCenter, InitialZoom, false)
	userMarker := UserLocation
	e.userMarker = &userMarker
	e.logger.Debug("map mounted")
	return e.reconcileLocked()
}

// Reconcile rebuilds the marker layer from the current filter. It does nothing
// before Mount.
func (e *Engine) Reconcile() ReconcileResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reconcileLocked()
}

// SetQuery stores the filter text and reconciles.
func (e *Engine) SetQuery(query string) ReconcileResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.query = query
	return e.reconcileLocked()
}

// Query returns the current filter text.
func (e *Engine) Query() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.query
}

// Click dispatches a click on the marker for eventID.
func (e *Engine) Click(eventID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.layer.Click(eventID)
}

// ShowList hides the viewport without tearing it down.
func (e *Engine) ShowList() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mode = ModeList
	e.viewport.SetVisible(false)
}

// ShowMap makes the viewport visible again and invalidates its size so
// markers lay out against the new dimensions.
func (e *Engine) ShowMap() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mode = ModeMap
	e.viewport.SetVisible(true)
	e.viewport.InvalidateSize()
}

// CreateEvent creates an event through the catalog, clears the filter so the
// new event is visible, selects it and flies the viewport to it.
func (e *Engine) CreateEvent(draft events.Draft) (events.Event, error) {
	event, err := e.catalog.Create(draft)
	if err != nil {
		return events.Event{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.query = ""
	e.reconcileLocked()
	e.selectedID = event.ID
	if e.mounted {
		e.viewport.FlyTo(event.Position, CreateZoom, CreateFlyLength)
	}
	return event, nil
}

// Selected resolves the current selection through the catalog. A selection
// whose event no longer resolves reports none.
func (e *Engine) Selected() (events.Event, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selectedLocked()
}

func (e *Engine) ClearSelection() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selectedID = ""
}

// MarkerIDs returns the event ids currently in the managed layer.
func (e *Engine) MarkerIDs() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.layer.IDs()
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	state := e.viewport.State()
	snapshot := Snapshot{
		Mounted:    e.mounted,
		Mode:       e.mode,
		Query:      e.query,
		Markers:    e.layer.Markers(),
		Viewport:   state,
		Positioned: e.mounted && state.Visible && state.SizeValid,
	}
	if e.userMarker != nil {
		userMarker := *e.userMarker
		snapshot.UserMarker = &userMarker
	}
	if selected, ok := e.selectedLocked(); ok {
		snapshot.SelectedID = selected.ID
		snapshot.Selected = &selected
	}
	return snapshot
}

func (e *Engine) reconcileLocked() ReconcileResult {
	if !e.mounted {
		return ReconcileResult{}
	}
	var targets []Marker
	for event := range e.catalog.Filter(e.query) {
		targets = append(targets, e.markerFor(event))
	}
	result := e.layer.Reconcile(targets)
	e.recorder.MarkersReconciled(e.layer.Len())
	e.logger.Debug("markers reconciled",
		zap.String("query", e.query),
		zap.Int("added", result.Added),
		zap.Int("removed", result.Removed))
	return result
}

// markerFor builds the marker for event. The click handler runs with e.mu held.
func (e *Engine) markerFor(event events.Event) Marker {
	eventID := event.ID
	position := event.Position
	return Marker{
		EventID:  eventID,
		Position: position,
		Emoji:    event.Emoji,
		Color:    event.Color,
		Label:    event.Label,
		onClick: func() {
			e.selectedID = eventID
			e.viewport.SetView(position, SelectZoom, true)
		},
	}
}

func (e *Engine) selectedLocked() (events.Event, bool) {
	if e.selectedID == "" {
		return events.Event{}, false
	}
	return e.catalog.FindByID(e.selectedID)
}

type nopRecorder struct{}

func (nopRecorder) MarkersReconciled(int) {}
