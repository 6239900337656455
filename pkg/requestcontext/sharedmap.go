package requestcontext

import "sync"

// Well-known shared map keys.
const (
	// KeySupabase holds the request's backend client.
	KeySupabase = "supabase"
	// KeySession holds the session resolved by the session middleware.
	KeySession = "session"
)

// SharedMap is the per-request key/value store. One map is created for every
// incoming request and dropped when the request completes.
type SharedMap struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewSharedMap returns an empty map.
func NewSharedMap() *SharedMap {
	return &SharedMap{values: make(map[string]any)}
}

// Get returns the value stored under key.
func (m *SharedMap) Get(key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

// Set stores value under key, replacing any previous value.
func (m *SharedMap) Set(key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

// Delete removes key.
func (m *SharedMap) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
}

// LoadOrStore returns the existing value for key if present. Otherwise it
// stores the result of create and returns it. create runs under the map lock
// so it is called at most once per key.
func (m *SharedMap) LoadOrStore(key string, create func() any) any {
	m.mu.RLock()
	v, ok := m.values[key]
	m.mu.RUnlock()
	if ok {
		return v
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.values[key]; ok {
		return v
	}
	v = create()
	m.values[key] = v
	return v
}
