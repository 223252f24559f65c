// Package session holds the app's in-memory view of who is logged in and
// where to route, and the startup resolver that derives it from a
// persisted token.
package session

import "sync"

// Route is the initial screen the UI should land on.
type Route string

const (
	RouteAuth Route = "Auth"
	RouteMain Route = "Main"
)

// GuestEmail is the sentinel email of the locally-synthesized guest
// identity. Feature gates (event creation, account deletion) compare
// against it through IsGuest; the value must stay exact and stable.
const GuestEmail = "user.guest@univent.com"

// GuestUsername is the display name of the guest identity.
const GuestUsername = "Guest"

// IsGuest reports whether an email belongs to the guest identity.
func IsGuest(email string) bool {
	return email == GuestEmail
}

// User is the resolved identity of the current session.
type User struct {
	ID       int32  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Guest returns the fixed guest identity.
func Guest() User {
	return User{Username: GuestUsername, Email: GuestEmail}
}

// Session is a snapshot of the current auth state. User is nil until a
// structurally valid, non-expired token has been resolved or issued.
type Session struct {
	User         *User
	IsLoading    bool
	InitialRoute Route
}

// Authenticated reports whether the session carries an identity.
func (s Session) Authenticated() bool {
	return s.User != nil
}

// Store is the single process-wide session container. One instance is
// created at app start and passed to the resolver, the auth gateway and
// the UI layer. Writes are serialized; Get returns a consistent snapshot
// of the {user, isLoading, initialRoute} triple.
type Store struct {
	mu      sync.RWMutex
	current Session
}

// NewStore returns a store in the initial state: loading, routed to Auth,
// no user.
func NewStore() *Store {
	return &Store{current: Session{IsLoading: true, InitialRoute: RouteAuth}}
}

// Get returns the current session snapshot.
func (s *Store) Get() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// SetUser sets or clears the identity. It does not touch the route; the
// resolver and the auth gateway own routing decisions.
func (s *Store) SetUser(u *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.User = u
}

func (s *Store) setRoute(r Route) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.InitialRoute = r
}

func (s *Store) setLoading(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.IsLoading = v
}

// Apply atomically installs an identity and route, used by the auth
// gateway after login, guest entry and logout.
func (s *Store) Apply(u *User, r Route) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.User = u
	s.current.InitialRoute = r
	s.current.IsLoading = false
}
