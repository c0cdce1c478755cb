package services

import "sync"

// Session is the ephemeral per-user flow state: which flow, which step,
// and the fields collected so far. Sessions are never persisted; a restart
// simply abandons in-progress flows before their terminal commit.
type Session struct {
	Flow string
	Step string
	Data map[string]string
}

// SessionRegistry keys sessions by actor id. Starting a new flow replaces
// any in-progress one, which is how concurrent flows per user are ruled out.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionRegistry creates an empty registry
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]*Session)}
}

// Get returns the active session for actor, or nil.
func (r *SessionRegistry) Get(actorID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[actorID]
}

// Begin starts a fresh session, discarding any in-progress flow.
func (r *SessionRegistry) Begin(actorID, flow, step string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess := &Session{Flow: flow, Step: step, Data: make(map[string]string)}
	r.sessions[actorID] = sess
	return sess
}

// End discards the session for actor, if any.
func (r *SessionRegistry) End(actorID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, actorID)
}
