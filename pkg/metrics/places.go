package metrics

import "github.com/prometheus/client_golang/prometheus"

// Relocation outcomes.
const (
	RelocationMoved    = "moved"
	RelocationFailed   = "failed"
	RelocationRemoved  = "area_removed"
	RelocationRestored = "restored"
)

// PlaceMetrics records lifecycle and asset reconciliation counters.
type PlaceMetrics struct {
	mutations   *prometheus.CounterVec
	relocations *prometheus.CounterVec
	drops       *prometheus.CounterVec
	warnings    *prometheus.CounterVec
}

// NewPlaceMetrics registers the place metrics on the provided registerer.
func NewPlaceMetrics(reg prometheus.Registerer) *PlaceMetrics {
	if reg == nil {
		return &PlaceMetrics{}
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "places",
		Name:      "mutations_total",
		Help:      "Place mutations by operation and outcome.",
	}, []string{"operation", "outcome"})
	relocations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "places",
		Name:      "staged_files_total",
		Help:      "Staged asset relocation outcomes.",
	}, []string{"outcome"})
	drops := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "places",
		Name:      "schedule_rows_dropped_total",
		Help:      "Schedule input entries dropped during normalization.",
	}, []string{"reason"})
	warnings := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "places",
		Name:      "degraded_mutations_total",
		Help:      "Mutations that completed with storage or notification warnings.",
	}, []string{"operation"})
	reg.MustRegister(mutations, relocations, drops, warnings)
	return &PlaceMetrics{
		mutations:   mutations,
		relocations: relocations,
		drops:       drops,
		warnings:    warnings,
	}
}

// IncMutation counts a create/update/delete with its outcome ("ok" or an error code).
func (m *PlaceMetrics) IncMutation(operation, outcome string) {
	if m == nil || m.mutations == nil {
		return
	}
	m.mutations.WithLabelValues(normalizeLabel(operation), normalizeLabel(outcome)).Inc()
}

// AddRelocation counts staged files by relocation outcome.
func (m *PlaceMetrics) AddRelocation(outcome string, n int) {
	if m == nil || m.relocations == nil || n <= 0 {
		return
	}
	m.relocations.WithLabelValues(normalizeLabel(outcome)).Add(float64(n))
}

// IncScheduleDrop counts one dropped schedule entry.
func (m *PlaceMetrics) IncScheduleDrop(reason string) {
	if m == nil || m.drops == nil {
		return
	}
	m.drops.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncDegraded counts a mutation that returned warnings.
func (m *PlaceMetrics) IncDegraded(operation string) {
	if m == nil || m.warnings == nil {
		return
	}
	m.warnings.WithLabelValues(normalizeLabel(operation)).Inc()
}
