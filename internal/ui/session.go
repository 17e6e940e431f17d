package ui

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/me/covweb/internal/vanlist"
)

const (
	// SessionCookieName is the name of the session cookie.
	SessionCookieName = "covweb_session"
	// SessionDuration is the default idle lifetime of a session.
	SessionDuration = 12 * time.Hour
)

// Session is one browser's view state. It is never persisted.
type Session struct {
	ID         string
	CreatedAt  time.Time
	Controller *vanlist.Controller
	View       *FragmentView
	Controls   *Controls

	mu       sync.Mutex
	lastSeen time.Time
	event    string // event chosen in the event selection section
}

// SelectedEvent returns the event chosen in this session, if any.
func (s *Session) SelectedEvent() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.event
}

func (s *Session) setEvent(name string) {
	s.mu.Lock()
	s.event = name
	s.mu.Unlock()
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) expired(now time.Time, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen) > ttl
}

// ControllerFactory builds the listing controller of a new session.
type ControllerFactory func(controls *Controls, view *FragmentView) *vanlist.Controller

// SessionManager keeps sessions in memory.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	factory  ControllerFactory
	now      func() time.Time
}

// NewSessionManager creates a new session manager. A non-positive ttl uses
// SessionDuration.
func NewSessionManager(ttl time.Duration, factory ControllerFactory) *SessionManager {
	if ttl <= 0 {
		ttl = SessionDuration
	}
	return &SessionManager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		factory:  factory,
		now:      time.Now,
	}
}

// CreateSession creates a session with its own controller.
func (sm *SessionManager) CreateSession() *Session {
	now := sm.now()
	controls := NewControls()
	view := NewFragmentView()
	sess := &Session{
		ID:        generateSessionID(),
		CreatedAt: now,
		View:      view,
		Controls:  controls,
		lastSeen:  now,
	}
	sess.Controller = sm.factory(controls, view)

	sm.mu.Lock()
	sm.sessions[sess.ID] = sess
	sm.mu.Unlock()
	return sess
}

// GetSession returns the session with the given ID, or nil if it doesn't
// exist or has expired.
func (sm *SessionManager) GetSession(id string) *Session {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sess, ok := sm.sessions[id]
	if !ok {
		return nil
	}
	now := sm.now()
	if sess.expired(now, sm.ttl) {
		delete(sm.sessions, id)
		return nil
	}
	sess.touch(now)
	return sess
}

// DeleteSession removes a session.
func (sm *SessionManager) DeleteSession(id string) {
	sm.mu.Lock()
	delete(sm.sessions, id)
	sm.mu.Unlock()
}

// Len returns the number of live sessions.
func (sm *SessionManager) Len() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return len(sm.sessions)
}

// CleanupExpiredSessions removes all expired sessions.
func (sm *SessionManager) CleanupExpiredSessions() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	now := sm.now()
	n := 0
	for id, sess := range sm.sessions {
		if sess.expired(now, sm.ttl) {
			delete(sm.sessions, id)
			n++
		}
	}
	return n
}

// Run removes expired sessions every interval until ctx is done.
func (sm *SessionManager) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			sm.CleanupExpiredSessions()
		}
	}
}

// GetSessionFromRequest extracts the session from the request cookie.
func (sm *SessionManager) GetSessionFromRequest(r *http.Request) *Session {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return nil // No cookie, no session
	}
	return sm.GetSession(cookie.Value)
}

// SetSessionCookie sets the session cookie on the response.
func SetSessionCookie(w http.ResponseWriter, sess *Session, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

func generateSessionID() string {
	return "sess_" + uuid.NewString()
}
