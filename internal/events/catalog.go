// Package events holds the in-memory catalog of geo-tagged meetup events.
package events

import (
	"fmt"
	"iter"
	"strings"
	"sync"

	"github.com/Potowai/nomad-nantes/internal/ids"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const (
	defaultCreatorName = "Moi"
	creatorRole        = "Organisateur"
	creatorCountLabel  = "1 participant (Vous)"
)

// Recorder receives catalog activity for metrics.
type Recorder interface {
	EventCreated()
}

// CatalogConfig wires a Catalog.
type CatalogConfig struct {
	// Seed is loaded in order at construction. Nil means an empty catalog.
	Seed       []Event
	IDProvider ids.Provider
	Resolver   LocationResolver
	Logger     *zap.Logger
	Recorder   Recorder
}

// Catalog is the process-lifetime collection of events. Events are appended,
// never modified or removed. All methods are safe for concurrent use.
type Catalog struct {
	mu       sync.RWMutex
	events   []Event
	index    map[string]int
	idSource ids.Provider
	resolver LocationResolver
	validate *validator.Validate
	logger   *zap.Logger
	recorder Recorder
}

// NewCatalog constructs a catalog holding cfg.Seed.
func NewCatalog(cfg CatalogConfig) (*Catalog, error) {
	catalog := &Catalog{
		index:    make(map[string]int, len(cfg.Seed)),
		idSource: cfg.IDProvider,
		resolver: cfg.Resolver,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   cfg.Logger,
		recorder: cfg.Recorder,
	}
	if catalog.idSource == nil {
		catalog.idSource = ids.NewUUIDProvider()
	}
	if catalog.resolver == nil {
		catalog.resolver = NewOffsetResolver()
	}
	if catalog.logger == nil {
		catalog.logger = zap.NewNop()
	}
	if catalog.recorder == nil {
		catalog.recorder = nopRecorder{}
	}
	for _, event := range cfg.Seed {
		if _, exists := catalog.index[event.ID]; exists {
			return nil, fmt.Errorf("%w: seed %s", ErrDuplicateID, event.ID)
		}
		if !event.Category.Valid() {
			return nil, fmt.Errorf("events: seed %s has unknown category %q", event.ID, event.Category)
		}
		catalog.append(event.clone())
	}
	return catalog, nil
}

// Create validates draft, builds the event and appends it to the catalog.
func (c *Catalog) Create(draft Draft) (Event, error) {
	draft = normalizeDraft(draft)
	if err := c.validate.Struct(draft); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrInvalidDraft, err)
	}

	id, err := c.idSource.NewID()
	if err != nil {
		return Event{}, fmt.Errorf("events: issue id: %w", err)
	}

	creatorName := draft.CreatorName
	if creatorName == "" {
		creatorName = defaultCreatorName
	}
	presentation := PresentationFor(draft.Category)
	event := Event{
		ID:                 id,
		Category:           draft.Category,
		Position:           c.resolver.Resolve(draft.Location),
		Emoji:              presentation.Emoji,
		Color:              presentation.Color,
		Label:              draft.Category.Label(),
		Title:              draft.Title,
		Location:           draft.Location,
		Time:               draft.Time,
		AttendeeCountLabel: creatorCountLabel,
		Attendees: []Attendee{
			{Name: creatorName, Avatar: draft.CreatorAvatar, Role: creatorRole},
		},
	}

	c.mu.Lock()
	if _, exists := c.index[event.ID]; exists {
		c.mu.Unlock()
		return Event{}, fmt.Errorf("%w: %s", ErrDuplicateID, event.ID)
	}
	c.append(event)
	c.mu.Unlock()

	c.recorder.EventCreated()
	c.logger.Info("event created",
		zap.String("event_id", event.ID),
		zap.String("category", string(event.Category)))
	return event.clone(), nil
}

// Filter yields the events whose title, location, label or category contains
// query, case-insensitively, in insertion order. An empty query yields every
// event. The sequence is lazy and may be ranged over repeatedly; each pass
// reflects the catalog at the time it starts.
func (c *Catalog) Filter(query string) iter.Seq[Event] {
	lowerQuery := strings.ToLower(query)
	return func(yield func(Event) bool) {
		for _, event := range c.snapshot() {
			if !event.matches(lowerQuery) {
				continue
			}
			if !yield(event.clone()) {
				return
			}
		}
	}
}

// FindByID returns the event with id, if any.
func (c *Catalog) FindByID(id string) (Event, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	position, ok := c.index[id]
	if !ok {
		return Event{}, false
	}
	return c.events[position].clone(), true
}

// Len returns the number of events in the catalog.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.events)
}

// All returns copies of every event in insertion order.
func (c *Catalog) All() []Event {
	events := make([]Event, 0, c.Len())
	for event := range c.Filter("") {
		events = append(events, event)
	}
	return events
}

func (c *Catalog) append(event Event) {
	c.index[event.ID] = len(c.events)
	c.events = append(c.events, event)
}

// snapshot returns the current slice header. Events are never mutated in place
// and appends never touch existing elements, so the prefix stays valid.
func (c *Catalog) snapshot() []Event {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.events[:len(c.events):len(c.events)]
}

func normalizeDraft(draft Draft) Draft {
	draft.Category = Category(strings.ToLower(strings.TrimSpace(string(draft.Category))))
	draft.Title = strings.TrimSpace(draft.Title)
	draft.Location = strings.TrimSpace(draft.Location)
	draft.Time = strings.TrimSpace(draft.Time)
	draft.CreatorName = strings.TrimSpace(draft.CreatorName)
	draft.CreatorAvatar = strings.TrimSpace(draft.CreatorAvatar)
	return draft
}

type nopRecorder struct{}

func (nopRecorder) EventCreated() {}
