package mapsync

import (
	"github.com/Potowai/nomad-nantes/internal/events"
	"github.com/samber/lo"
)

// Marker is one event pin in the managed layer.
type Marker struct {
	EventID  string        `json:"eventId"`
	Position events.LatLng `json:"position"`
	Emoji    string        `json:"emoji"`
	Color    string        `json:"color"`
	Label    string        `json:"label"`
	onClick  func()
}

// ReconcileResult counts the markers dropped and created by one reconciliation.
type ReconcileResult struct {
	Added   int `json:"added"`
	Removed int `json:"removed"`
}

// MarkerLayer holds the markers the engine manages. It knows nothing about a
// rendering backend; the user-location marker never lives here.
type MarkerLayer struct {
	order   []string
	markers map[string]Marker
}

func NewMarkerLayer() *MarkerLayer {
	return &MarkerLayer{markers: make(map[string]Marker)}
}

// Reconcile clears the layer and rebuilds it from targets. Targets sharing an
// event id collapse to the first occurrence.
func (l *MarkerLayer) Reconcile(targets []Marker) ReconcileResult {
	result := ReconcileResult{Removed: len(l.order)}
	l.order = l.order[:0]
	clear(l.markers)
	for _, target := range targets {
		if _, exists := l.markers[target.EventID]; exists {
			continue
		}
		l.markers[target.EventID] = target
		l.order = append(l.order, target.EventID)
	}
	result.Added = len(l.order)
	return result
}

// Click runs the click handler of the marker for eventID.
func (l *MarkerLayer) Click(eventID string) error {
	marker, ok := l.markers[eventID]
	if !ok {
		return ErrMarkerNotFound
	}
	if marker.onClick != nil {
		marker.onClick()
	}
	return nil
}

func (l *MarkerLayer) Len() int {
	return len(l.order)
}

// IDs returns the event ids of the markers in layer order.
func (l *MarkerLayer) IDs() []string {
	return append([]string(nil), l.order...)
}

// Markers returns the markers in layer order, without their click handlers.
func (l *MarkerLayer) Markers() []Marker {
	return lo.Map(l.order, func(id string, _ int) Marker {
		marker := l.markers[id]
		marker.onClick = nil
		return marker
	})
}
