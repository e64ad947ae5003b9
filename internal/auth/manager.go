package auth

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/nyroxsystems-boop/Autoteile-Dashboard-sub001/internal/apiclient"
	"github.com/nyroxsystems-boop/Autoteile-Dashboard-sub001/internal/metrics"
	"github.com/nyroxsystems-boop/Autoteile-Dashboard-sub001/internal/session"
)

const (
	loginPath   = "/auth/login"
	refreshPath = "/auth/token/refresh"
	verifyPath  = "/auth/verify"
)

const invalidateTimeout = 5 * time.Second

// State is the auth lifecycle state of the running application.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// Route is a front-end navigation target.
type Route string

const (
	// RouteLanding is the default view after a successful login.
	RouteLanding Route = "/dashboard"
	// RouteSignIn is the unauthenticated entry point.
	RouteSignIn Route = "/login"
)

// Navigator is invoked for the forced-navigation side effects (post-login
// landing, forced sign-out). The front end supplies the implementation; the
// CLI just logs.
type Navigator func(Route)

type authResponse struct {
	Token     string        `json:"token"`
	User      *session.User `json:"user"`
	ExpiresIn int64         `json:"expires_in"`
}

// Manager owns the in-memory session, the single source of truth for the
// running application. It registers itself with the API client both as the
// token source and as the 401 invalidation hook.
type Manager struct {
	store      session.Store
	api        *apiclient.Client
	clock      clockwork.Clock
	defaultTTL time.Duration
	navigate   Navigator

	mu       sync.RWMutex
	state    State
	sess     *session.Session
	returnTo Route
}

// NewManager wires a Manager to the store and API client. defaultTTL is the
// session lifetime applied when the backend omits expires_in.
func NewManager(store session.Store, api *apiclient.Client, clock clockwork.Clock, defaultTTL time.Duration, navigate Navigator) *Manager {
	if navigate == nil {
		navigate = func(Route) {}
	}
	m := &Manager{
		store:      store,
		api:        api,
		clock:      clock,
		defaultTTL: defaultTTL,
		navigate:   navigate,
		state:      StateUninitialized,
	}
	api.SetTokenSource(apiclient.TokenSourceFunc(m.Token))
	api.OnUnauthorized(m.invalidate)
	return m
}

// Initialize restores the persisted session at app start. An expired or
// unverifiable session resolves deterministically to anonymous; it never
// fails the startup.
func (m *Manager) Initialize(ctx context.Context) error {
	m.setState(StateLoading)

	sess, err := m.store.Load(ctx)
	if err != nil {
		slog.Warn("Session store unavailable, starting anonymous", "error", err)
		metrics.SessionStoreErrorsTotal.WithLabelValues("load").Inc()
		m.setSession(nil, StateAnonymous)
		return nil
	}
	if sess == nil {
		m.setSession(nil, StateAnonymous)
		return nil
	}

	if sess.Expired(m.clock.Now()) {
		slog.Info("Persisted session expired, clearing")
		m.clearStore(ctx)
		m.setSession(nil, StateAnonymous)
		return nil
	}

	if sess.User != nil {
		m.setSession(sess, StateAuthenticated)
		return nil
	}

	// Legacy token-only session: the token must be attached before the
	// verification call, so commit it while still loading.
	m.setSession(sess, StateLoading)

	var user session.User
	if err := m.api.Get(ctx, verifyPath, nil, &user); err != nil {
		slog.Info("Identity verification failed, starting anonymous", "error", err)
		m.clearStore(ctx)
		m.setSession(nil, StateAnonymous)
		return nil
	}

	sess.User = &user
	m.persist(ctx, *sess)
	m.setSession(sess, StateAuthenticated)
	return nil
}

// Login installs a fresh session and navigates to the landing view, or to
// the return target the route guard captured before redirecting to sign-in.
func (m *Manager) Login(ctx context.Context, token string, user *session.User, expiresIn time.Duration) error {
	if expiresIn <= 0 {
		expiresIn = m.defaultTTL
	}
	sess := session.Session{
		Token:     token,
		User:      user,
		ExpiresAt: m.clock.Now().Add(expiresIn),
	}
	m.persist(ctx, sess)
	m.setSession(&sess, StateAuthenticated)

	target := m.consumeReturnTarget()
	if target == "" {
		target = RouteLanding
	}
	m.navigate(target)
	return nil
}

// LoginWithCredentials performs the credential exchange against the backend
// and installs the resulting session.
func (m *Manager) LoginWithCredentials(ctx context.Context, email, password string) error {
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: password}

	var resp authResponse
	if err := m.api.Post(ctx, loginPath, &apiclient.Options{Body: body}, &resp); err != nil {
		return err
	}
	if resp.Token == "" {
		return &apiclient.Error{Type: apiclient.TypeMalformed, Message: "login response missing token"}
	}
	return m.Login(ctx, resp.Token, resp.User, time.Duration(resp.ExpiresIn)*time.Second)
}

// Logout clears the in-memory and persisted session and navigates to the
// sign-in route. Idempotent.
func (m *Manager) Logout(ctx context.Context) {
	m.clearStore(ctx)
	m.setSession(nil, StateAnonymous)
	m.navigate(RouteSignIn)
}

// Refresh exchanges the current token for a fresh one. A no-op without a
// token; any failure resolves to logged out. Never scheduled, never retried.
func (m *Manager) Refresh(ctx context.Context) error {
	current := m.snapshot()
	if current == nil || current.Token == "" {
		return nil
	}

	var resp authResponse
	if err := m.api.Post(ctx, refreshPath, nil, &resp); err != nil {
		metrics.TokenRefreshesTotal.WithLabelValues("failure").Inc()
		slog.Info("Token refresh failed, logging out", "error", err)
		m.Logout(ctx)
		return err
	}

	metrics.TokenRefreshesTotal.WithLabelValues("success").Inc()

	user := resp.User
	if user == nil {
		user = current.User
	}
	return m.Login(ctx, resp.Token, user, time.Duration(resp.ExpiresIn)*time.Second)
}

// invalidate is the 401 hook: the backend declared the session dead, so clear
// everything and steer to sign-in.
func (m *Manager) invalidate() {
	ctx, cancel := context.WithTimeout(context.Background(), invalidateTimeout)
	defer cancel()

	slog.Info("Session invalidated by backend")
	m.clearStore(ctx)
	m.setSession(nil, StateAnonymous)
	m.navigate(RouteSignIn)
}

// --- accessors for the view layer ---

// Token returns the current session token, or "" when anonymous. Implements
// the client's TokenSource.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.sess == nil {
		return ""
	}
	return m.sess.Token
}

// User returns the authenticated user, or nil.
func (m *Manager) User() *session.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.sess == nil || m.sess.User == nil {
		return nil
	}
	u := *m.sess.User
	return &u
}

// IsAuthenticated reports whether a verified session is active.
func (m *Manager) IsAuthenticated() bool {
	return m.State() == StateAuthenticated
}

// Loading reports whether initialization is still resolving.
func (m *Manager) Loading() bool {
	s := m.State()
	return s == StateUninitialized || s == StateLoading
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// ExpiresAt returns the current session expiry, zero when none.
func (m *Manager) ExpiresAt() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.sess == nil {
		return time.Time{}
	}
	return m.sess.ExpiresAt
}

// --- internals ---

func (m *Manager) persist(ctx context.Context, sess session.Session) {
	if err := m.store.Save(ctx, sess); err != nil {
		// A broken store degrades to an in-memory session, never a crash.
		slog.Warn("Failed to persist session, continuing in memory", "error", err)
		metrics.SessionStoreErrorsTotal.WithLabelValues("save").Inc()
	}
}

func (m *Manager) clearStore(ctx context.Context) {
	if err := m.store.Clear(ctx); err != nil {
		slog.Warn("Failed to clear session store", "error", err)
		metrics.SessionStoreErrorsTotal.WithLabelValues("clear").Inc()
	}
}

func (m *Manager) snapshot() *session.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.sess == nil {
		return nil
	}
	s := *m.sess
	return &s
}

func (m *Manager) setSession(sess *session.Session, state State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = sess
	m.state = state
}

func (m *Manager) setState(state State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state
}

func (m *Manager) setReturnTarget(target Route) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.returnTo = target
}

func (m *Manager) consumeReturnTarget() Route {
	m.mu.Lock()
	defer m.mu.Unlock()
	target := m.returnTo
	m.returnTo = ""
	return target
}
