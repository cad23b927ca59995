package board

import "sync"

// IDMap is a bidirectional table between the opaque ids used by the
// persistence layer and the compact ids the board works with. It is also the
// allocator for local ids, so ids are never reused within a process.
type IDMap struct {
	mu       sync.RWMutex
	next     int64
	toLocal  map[string]int64
	toRemote map[int64]string
}

// NewIDMap returns an empty table whose first allocated id is 1.
func NewIDMap() *IDMap {
	return &IDMap{
		toLocal:  make(map[string]int64),
		toRemote: make(map[int64]string),
	}
}

// Next reserves a fresh local id.
func (m *IDMap) Next() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	return m.next
}

// Bind returns the local id for remote, allocating one on first sight.
func (m *IDMap) Bind(remote string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if local, ok := m.toLocal[remote]; ok {
		return local
	}
	m.next++
	m.toLocal[remote] = m.next
	m.toRemote[m.next] = remote
	return m.next
}

// Assign links an already allocated local id to remote.
func (m *IDMap) Assign(local int64, remote string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.toRemote[local]; ok {
		delete(m.toLocal, prev)
	}
	m.toLocal[remote] = local
	m.toRemote[local] = remote
	if local > m.next {
		m.next = local
	}
}

// Local looks up the local id of remote.
func (m *IDMap) Local(remote string) (int64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	local, ok := m.toLocal[remote]
	return local, ok
}

// Remote looks up the opaque id of local.
func (m *IDMap) Remote(local int64) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	remote, ok := m.toRemote[local]
	return remote, ok
}

// Forget drops the entry for local. The id is not handed out again.
func (m *IDMap) Forget(local int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if remote, ok := m.toRemote[local]; ok {
		delete(m.toLocal, remote)
		delete(m.toRemote, local)
	}
}

// Len returns the number of bound ids.
func (m *IDMap) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.toRemote)
}
