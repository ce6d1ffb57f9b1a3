// Package metrics provides Prometheus collectors for the message store, the
// event catalog and the map marker layer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metric names as constants for consistency.
const (
	MetricMessagesAppended     = "nomadtable_messages_appended_total"
	MetricStorePersists        = "nomadtable_message_store_persists_total"
	MetricStoreRecoveries      = "nomadtable_message_store_recoveries_total"
	MetricStoreBlobBytes       = "nomadtable_message_store_blob_bytes"
	MetricEventsCreated        = "nomadtable_events_created_total"
	MetricMarkerReconciliation = "nomadtable_marker_reconciliations_total"
	MetricMarkers              = "nomadtable_markers"
)

// Metrics contains the Prometheus collectors. All operations are thread-safe.
type Metrics struct {
	messagesAppended prometheus.Counter
	storePersists    prometheus.Counter
	storeRecoveries  prometheus.Counter
	storeBlobBytes   prometheus.Gauge
	eventsCreated    prometheus.Counter
	reconciliations  prometheus.Counter
	markers          prometheus.Gauge
}

// NewMetrics creates the collectors. They are not registered; call Register.
func NewMetrics() *Metrics {
	return &Metrics{
		messagesAppended: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricMessagesAppended,
			Help: "Total number of chat messages appended to the message store",
		}),
		storePersists: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricStorePersists,
			Help: "Total number of full message database serializations written to durable storage",
		}),
		storeRecoveries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricStoreRecoveries,
			Help: "Total number of corrupt message database blobs discarded and reseeded",
		}),
		storeBlobBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: MetricStoreBlobBytes,
			Help: "Size in bytes of the last serialized message database",
		}),
		eventsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricEventsCreated,
			Help: "Total number of events created in the catalog",
		}),
		reconciliations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricMarkerReconciliation,
			Help: "Total number of marker layer reconciliations",
		}),
		markers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: MetricMarkers,
			Help: "Number of event markers in the managed layer after the last reconciliation",
		}),
	}
}

// Register registers all metrics with the given registry.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Collectors returns all Prometheus collectors.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.messagesAppended,
		m.storePersists,
		m.storeRecoveries,
		m.storeBlobBytes,
		m.eventsCreated,
		m.reconciliations,
		m.markers,
	}
}

// MessageAppended increments the appended messages counter.
func (m *Metrics) MessageAppended() {
	m.messagesAppended.Inc()
}

// StorePersisted records one serialization of blobBytes bytes.
func (m *Metrics) StorePersisted(blobBytes int) {
	m.storePersists.Inc()
	m.storeBlobBytes.Set(float64(blobBytes))
}

// StoreRecovered increments the corruption recovery counter.
func (m *Metrics) StoreRecovered() {
	m.storeRecoveries.Inc()
}

// EventCreated increments the created events counter.
func (m *Metrics) EventCreated() {
	m.eventsCreated.Inc()
}

// MarkersReconciled records a reconciliation that left markerCount markers.
func (m *Metrics) MarkersReconciled(markerCount int) {
	m.reconciliations.Inc()
	m.markers.Set(float64(markerCount))
}
