package observability

import (
	"sort"
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu           sync.Mutex
	requestCount map[string]int64
	errorCount   map[string]int64
	remoteCount  map[string]int64
	remoteTime   map[string]time.Duration
}

// Counter is one named counter in a snapshot.
type Counter struct {
	Key   string `json:"key"`
	Value int64  `json:"value"`
}

// Snapshot is a point-in-time copy of all counters, sorted by key.
type Snapshot struct {
	Requests     []Counter `json:"requests"`
	Errors       []Counter `json:"errors"`
	RemoteCalls  []Counter `json:"remote_calls"`
	RemoteMillis []Counter `json:"remote_millis"`
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
		remoteCount:  make(map[string]int64),
		remoteTime:   make(map[string]time.Duration),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordRemoteCall counts a round trip to the ticket backend by operation
// and outcome ("ok" or an error code).
func (m *Metrics) RecordRemoteCall(op, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	key := op + "|" + outcome
	m.mu.Lock()
	defer m.mu.Unlock()
	m.remoteCount[key]++
	m.remoteTime[op] += duration
}

// Snapshot copies the current counter values.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	millis := make(map[string]int64, len(m.remoteTime))
	for op, d := range m.remoteTime {
		millis[op] = d.Milliseconds()
	}
	return Snapshot{
		Requests:     counters(m.requestCount),
		Errors:       counters(m.errorCount),
		RemoteCalls:  counters(m.remoteCount),
		RemoteMillis: counters(millis),
	}
}

func counters(values map[string]int64) []Counter {
	out := make([]Counter, 0, len(values))
	for key, value := range values {
		out = append(out, Counter{Key: key, Value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
