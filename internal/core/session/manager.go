// Package session keeps the process-wide authentication state and decides
// what protected views should do with it.
package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/marketly/storefront/internal/core/domain"
	"github.com/marketly/storefront/internal/core/ports"
	"github.com/marketly/storefront/internal/pkg/metrics"
)

// State is a point-in-time copy of the session.
type State struct {
	CurrentUser *domain.User `json:"user"`
	IsLoading   bool         `json:"isLoading"`
}

// Manager owns the current user and the loading flag. It is safe for
// concurrent use; all mutation goes through its methods.
//
// IsLoading holds until the first operation settles and afterwards is derived
// from a count of in-flight backend calls, so overlapping operations can
// never leave it stuck. Every login, registration
// and logout bumps a generation counter; a session check that started before
// the latest bump drops its result instead of overwriting newer state.
type Manager struct {
	auth  ports.AuthAPI
	log   zerolog.Logger
	group singleflight.Group

	mu         sync.Mutex
	user       *domain.User
	pending    int
	resolved   bool
	generation uint64
}

// NewManager creates a Manager in the loading state. It leaves it once the
// first check, login, registration or logout settles.
func NewManager(auth ports.AuthAPI, log zerolog.Logger) *Manager {
	return &Manager{auth: auth, log: log.With().Str("component", "session").Logger()}
}

// Snapshot returns the current state.
func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() State {
	var u *domain.User
	if m.user != nil {
		clone := *m.user
		u = &clone
	}
	return State{CurrentUser: u, IsLoading: m.pending > 0 || !m.resolved}
}

// begin marks an operation in flight and returns the generation it observed.
func (m *Manager) begin() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending++
	return m.generation
}

// CheckSession resolves the current user with the backend. Concurrent calls
// share a single backend round trip and observe the same end state. The
// check is not tied to the caller's cancellation: a view that goes away does
// not abort it, its result is simply not awaited.
func (m *Manager) CheckSession(ctx context.Context) State {
	ctx = context.WithoutCancel(ctx)
	_, _, _ = m.group.Do("session", func() (any, error) {
		gen := m.begin()
		user := m.auth.CurrentUser(ctx)

		m.mu.Lock()
		defer m.mu.Unlock()
		m.pending--
		m.resolved = true
		if m.generation != gen {
			m.log.Debug().Msg("stale session check discarded")
			return nil, nil
		}
		m.user = user
		if user == nil {
			metrics.SessionChecksTotal.WithLabelValues("anonymous").Inc()
		} else {
			metrics.SessionChecksTotal.WithLabelValues("user").Inc()
		}
		return nil, nil
	})
	return m.Snapshot()
}

// Login authenticates and stores the user. On failure the user is cleared
// and the error returned so the caller can show it.
func (m *Manager) Login(ctx context.Context, identifier, secret string) (*domain.User, error) {
	m.begin()
	user, err := m.auth.Login(ctx, identifier, secret)
	return m.settle(user, err, "login")
}

// Register creates an account, which also logs it in.
func (m *Manager) Register(ctx context.Context, email, secret, name string, role domain.Role) (*domain.User, error) {
	m.begin()
	user, err := m.auth.Register(ctx, email, secret, name, role)
	return m.settle(user, err, "register")
}

func (m *Manager) settle(user *domain.User, err error, op string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending--
	m.resolved = true
	m.generation++
	if err == nil && user == nil {
		err = domain.ErrNoSession
	}
	if err != nil {
		m.user = nil
		m.log.Warn().Err(err).Str("op", op).Msg("authentication failed")
		return nil, err
	}
	m.user = user
	m.log.Info().Str("op", op).Str("user_id", user.ID).Str("role", string(user.Role)).Msg("session opened")
	clone := *user
	return &clone, nil
}

// Logout ends the session. Local state is cleared no matter what the backend
// does.
func (m *Manager) Logout(ctx context.Context) {
	m.begin()
	m.auth.Logout(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending--
	m.resolved = true
	m.generation++
	m.user = nil
	m.log.Info().Msg("session closed")
}

// UpdateRole changes a user's role and, when it is the current user,
// refreshes the session with the result.
func (m *Manager) UpdateRole(ctx context.Context, userID string, role domain.Role) (*domain.User, error) {
	if !role.Valid() {
		return nil, domain.ErrInvalidRole
	}
	user, err := m.auth.UpdateRole(ctx, userID, role)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user != nil && m.user.ID == user.ID {
		m.user = user
		m.generation++
	}
	clone := *user
	return &clone, nil
}

// RequireUser returns the current user or ErrNoSession.
func (m *Manager) RequireUser() (*domain.User, error) {
	st := m.Snapshot()
	if st.CurrentUser == nil {
		return nil, domain.ErrNoSession
	}
	return st.CurrentUser, nil
}
