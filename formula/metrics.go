package formula

import (
	"sync"
	"sync/atomic"
)

// Metrics holds the process-lifetime evaluation counters of an [Engine].
// All methods are safe for concurrent use; a nil *Metrics ignores updates.
type Metrics struct {
	evaluations      atomic.Int64
	parseErrors      atomic.Int64
	divisionByZero   atomic.Int64
	unknownVariables atomic.Int64
	invalidResults   atomic.Int64
	functions        atomic.Pointer[sync.Map] // name -> *atomic.Int64
}

// MetricsSnapshot is a point-in-time copy of [Metrics].
type MetricsSnapshot struct {
	Evaluations      int64            `json:"evaluations"`
	ParseErrors      int64            `json:"parseErrors"`
	DivisionByZero   int64            `json:"divisionByZero"`
	UnknownVariables int64            `json:"unknownVariables"`
	InvalidResults   int64            `json:"invalidResults"`
	Functions        map[string]int64 `json:"functions"`
}

func (m *Metrics) count(kind ErrorKind) {
	if m == nil {
		return
	}

	switch kind {
	case DivisionByZero:
		m.divisionByZero.Add(1)
	case UnknownVariable:
		m.unknownVariables.Add(1)
	case InvalidResult:
		m.invalidResults.Add(1)
	}
}

func (m *Metrics) parseFailed() {
	if m != nil {
		m.parseErrors.Add(1)
	}
}

func (m *Metrics) evaluated() {
	if m != nil {
		m.evaluations.Add(1)
	}
}

func (m *Metrics) called(name string) {
	if m == nil {
		return
	}

	fns := m.functions.Load()
	if fns == nil {
		m.functions.CompareAndSwap(nil, &sync.Map{})
		fns = m.functions.Load()
	}

	n, ok := fns.Load(name)
	if !ok {
		n, _ = fns.LoadOrStore(name, new(atomic.Int64))
	}

	n.(*atomic.Int64).Add(1)
}

// Snapshot copies the current counter values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	s := MetricsSnapshot{Functions: map[string]int64{}}
	if m == nil {
		return s
	}

	s.Evaluations = m.evaluations.Load()
	s.ParseErrors = m.parseErrors.Load()
	s.DivisionByZero = m.divisionByZero.Load()
	s.UnknownVariables = m.unknownVariables.Load()
	s.InvalidResults = m.invalidResults.Load()

	if fns := m.functions.Load(); fns != nil {
		fns.Range(func(k, v any) bool {
			s.Functions[k.(string)] = v.(*atomic.Int64).Load()

			return true
		})
	}

	return s
}

func (m *Metrics) reset() {
	m.evaluations.Store(0)
	m.parseErrors.Store(0)
	m.divisionByZero.Store(0)
	m.unknownVariables.Store(0)
	m.invalidResults.Store(0)
	m.functions.Store(&sync.Map{})
}
