package registry

import "sync"

// Registry owns the session records and the streaming-session index for one
// orchestrator instance. Both maps are keyed by external session identifier
// and guarded by a single mutex so the paired insert and the paired delete
// are atomic: a session is either visible in both or in neither.
type Registry struct {
	mu      sync.RWMutex
	records map[string]*Record
	index   map[string]Entry
}

func New() *Registry {
	return &Registry{
		records: make(map[string]*Record),
		index:   make(map[string]Entry),
	}
}

// Register tracks a newly revealed session. Returns false without touching
// anything if the identifier is already tracked; registration is one-time.
func (r *Registry) Register(sessionID string, rec Record, entry Entry) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[sessionID]; ok {
		return false
	}
	if rec.Status == "" {
		rec.Status = StatusActive
	}
	r.records[sessionID] = &rec
	r.index[sessionID] = entry
	return true
}

// Remove deletes the record and the index entry together, returning what was
// stored so the caller can release the handle and temp files. The second call
// for the same identifier reports false, which termination paths use to tell
// "already cleaned up elsewhere" apart from a live session.
func (r *Registry) Remove(sessionID string) (Record, Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[sessionID]
	if !ok {
		return Record{}, Entry{}, false
	}
	entry := r.index[sessionID]
	delete(r.records, sessionID)
	delete(r.index, sessionID)
	return *rec, entry, true
}

// Get returns a copy of the session record.
func (r *Registry) Get(sessionID string) (Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[sessionID]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// MarkAborted flips the record's status. Returns false for unknown sessions.
func (r *Registry) MarkAborted(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[sessionID]
	if !ok {
		return false
	}
	rec.Status = StatusAborted
	return true
}

// IsActive reports whether the session is tracked and not aborted.
func (r *Registry) IsActive(sessionID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[sessionID]
	return ok && rec.Status == StatusActive
}

// ActiveSessionIDs lists the identifiers of all tracked active sessions.
func (r *Registry) ActiveSessionIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.records))
	for id, rec := range r.records {
		if rec.Status == StatusActive {
			ids = append(ids, id)
		}
	}
	return ids
}

// ByConversation finds the live session for a conversation, if any.
func (r *Registry) ByConversation(conversationID string) (string, Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for id, entry := range r.index {
		if entry.ConversationID == conversationID {
			return id, entry, true
		}
	}
	return "", Entry{}, false
}

// Entries returns a snapshot of the whole streaming-session index.
func (r *Registry) Entries() map[string]Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]Entry, len(r.index))
	for id, entry := range r.index {
		out[id] = entry
	}
	return out
}
