// Package store holds the client-side state containers the POS terminals
// render from: an authenticated session plus in-memory mirrors of the menu,
// table and order collections. Stores call the remote side through narrow
// interfaces, patch their local state only after the remote call succeeds,
// and apply realtime change events pushed by the feed. Derived views are
// pure functions over a snapshot, recomputed on demand.
package store

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"restaurant-pos/internal/model"
)

// Session is the authenticated identity a terminal operates under. Refresh
// is the opaque token used to resume the session after a restart; Access is
// the current bearer token.
type Session struct {
	User    *model.User `json:"user,omitempty"`
	Access  string      `json:"access_token,omitempty"`
	Refresh string      `json:"refresh_token,omitempty"`
}

// Authenticated reports whether the session carries a signed-in user.
func (s Session) Authenticated() bool { return s.User != nil }

// Role returns the session's role, defaulting to guest when signed out.
func (s Session) Role() model.Role {
	if s.User == nil {
		return model.RoleGuest
	}
	return s.User.Role
}

// SessionClient is the remote session interface: credential sign-in,
// sign-out and resuming an existing session from a refresh token.
type SessionClient interface {
	SignIn(ctx context.Context, email, password string) (Session, error)
	SignOut(ctx context.Context, refreshToken string) error
	Resume(ctx context.Context, refreshToken string) (Session, error)
}

// Persistor saves the session store's serializable state across process
// restarts.
type Persistor interface {
	Save(data []byte) error
	Load() ([]byte, error)
	Clear() error
}

// sessionState is what gets persisted: the session itself and the last
// error. The loading flag is transient and always rehydrates as false.
type sessionState struct {
	Session Session `json:"session"`
	Err     string  `json:"error,omitempty"`
}

// SessionStore owns the current session. All methods are safe for
// concurrent use.
type SessionStore struct {
	client  SessionClient
	persist Persistor // may be nil

	mu       sync.Mutex
	sess     Session
	loading  bool
	err      string
	checked  bool
	watchers []func(Session)
}

// NewSessionStore builds a session store and rehydrates any persisted
// session snapshot. A nil persistor disables persistence.
func NewSessionStore(client SessionClient, persist Persistor) *SessionStore {
	s := &SessionStore{client: client, persist: persist}
	if persist != nil {
		if data, err := persist.Load(); err == nil && len(data) > 0 {
			var st sessionState
			if err := json.Unmarshal(data, &st); err == nil {
				s.sess = st.Session
				s.err = st.Err
			}
		}
	}
	return s
}

// Login authenticates with email/password and loads the user profile. On
// failure the store stays unauthenticated and the error is both recorded
// and returned; the message is what the login screen shows.
func (s *SessionStore) Login(ctx context.Context, email, password string) error {
	s.setLoading(true)
	sess, err := s.client.SignIn(ctx, email, password)

	s.mu.Lock()
	s.loading = false
	if err != nil {
		s.err = err.Error()
		s.mu.Unlock()
		return err
	}
	s.sess = sess
	s.err = ""
	s.saveLocked()
	s.mu.Unlock()

	s.notify()
	return nil
}

// Logout clears the remote session and the local state. The local session
// is dropped even when the remote call fails; the error is still recorded
// and returned so the caller can surface it.
func (s *SessionStore) Logout(ctx context.Context) error {
	s.mu.Lock()
	refresh := s.sess.Refresh
	s.loading = true
	s.mu.Unlock()

	var err error
	if refresh != "" {
		err = s.client.SignOut(ctx, refresh)
	}

	s.mu.Lock()
	s.loading = false
	s.sess = Session{}
	if err != nil {
		s.err = err.Error()
	} else {
		s.err = ""
	}
	s.clearLocked()
	s.mu.Unlock()

	s.notify()
	return err
}

// CheckAuth re-derives the current user from the persisted session, used at
// startup and on external session-state change notifications. A failure is
// logged but not fatal: the terminal simply stays signed out.
func (s *SessionStore) CheckAuth(ctx context.Context) {
	s.mu.Lock()
	refresh := s.sess.Refresh
	s.checked = true
	s.mu.Unlock()

	if refresh == "" {
		return
	}
	s.setLoading(true)
	sess, err := s.client.Resume(ctx, refresh)

	s.mu.Lock()
	s.loading = false
	if err != nil {
		log.Printf("session: resume failed: %v", err)
		s.sess = Session{}
		s.clearLocked()
		s.mu.Unlock()
		s.notify()
		return
	}
	s.sess = sess
	s.err = ""
	s.saveLocked()
	s.mu.Unlock()
	s.notify()
}

// EnsureChecked runs CheckAuth once if the session has never been verified
// this process. The route guard calls this before its first decision.
func (s *SessionStore) EnsureChecked(ctx context.Context) {
	s.mu.Lock()
	done := s.checked
	s.mu.Unlock()
	if !done {
		s.CheckAuth(ctx)
	}
}

// Current returns the signed-in user, or nil.
func (s *SessionStore) Current() *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess.User
}

// Session returns a snapshot of the full session.
func (s *SessionStore) Session() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess
}

// Authenticated reports whether a user is signed in.
func (s *SessionStore) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess.Authenticated()
}

// Role returns the current role, guest when signed out.
func (s *SessionStore) Role() model.Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess.Role()
}

// HomeRoute maps the current role to its default landing path.
func (s *SessionStore) HomeRoute() string { return s.Role().HomeRoute() }

// Err returns the last recorded error message, empty when the last
// operation succeeded.
func (s *SessionStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Loading reports whether a session operation is in flight.
func (s *SessionStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// OnChange registers a callback invoked after every sign-in, sign-out or
// session refresh, with a snapshot of the new session.
func (s *SessionStore) OnChange(fn func(Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchers = append(s.watchers, fn)
}

func (s *SessionStore) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *SessionStore) notify() {
	s.mu.Lock()
	sess := s.sess
	watchers := make([]func(Session), len(s.watchers))
	copy(watchers, s.watchers)
	s.mu.Unlock()
	for _, fn := range watchers {
		fn(sess)
	}
}

// saveLocked/clearLocked persist the serializable state; callers hold mu.
func (s *SessionStore) saveLocked() {
	if s.persist == nil {
		return
	}
	data, err := json.Marshal(sessionState{Session: s.sess, Err: s.err})
	if err != nil {
		return
	}
	if err := s.persist.Save(data); err != nil {
		log.Printf("session: persist failed: %v", err)
	}
}

func (s *SessionStore) clearLocked() {
	if s.persist == nil {
		return
	}
	if err := s.persist.Clear(); err != nil {
		log.Printf("session: clear persisted state failed: %v", err)
	}
}
