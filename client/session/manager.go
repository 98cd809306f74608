package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/lijoraj-p-r/NoPaper/client"
)

// Session is the in-memory view of the current identity. It is always
// replaced wholesale, never patched field-by-field, so a consumer can
// never observe a stale role next to a fresh email.
type Session struct {
	Email         string
	Role          string
	Authenticated bool
}

// IsAdmin reports whether the session belongs to an administrator.
func (s Session) IsAdmin() bool {
	return s.Authenticated && s.Role == "admin"
}

func sessionFromCredentials(creds Credentials) Session {
	return Session{
		Email:         creds.Email,
		Role:          creds.Role,
		Authenticated: creds.Email != "",
	}
}

// Manager is the single source of truth for "is the viewer
// authenticated, and as what role". It mirrors the persisted store,
// installs the bearer token on the API client, and pushes every change
// to subscribers.
type Manager struct {
	api    *client.Client
	store  *Store
	logger *zap.Logger

	mu      sync.Mutex
	current Session
	nextSub int
	subs    map[int]func(Session)
}

// NewManager builds a manager seeded from the persisted store.
func NewManager(api *client.Client, store *Store, logger *zap.Logger) (*Manager, error) {
	creds, err := store.Load()
	if err != nil {
		return nil, err
	}

	m := &Manager{
		api:    api,
		store:  store,
		logger: logger,
		subs:   make(map[int]func(Session)),
	}
	m.current = sessionFromCredentials(creds)
	api.SetToken(creds.Token)
	return m, nil
}

// Current returns the session as of now. Freshness is bounded by the
// last explicit operation or watcher-triggered resync.
func (m *Manager) Current() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Subscribe registers a callback invoked on every session replacement.
// The returned cancel removes the subscription.
func (m *Manager) Subscribe(fn func(Session)) (cancel func()) {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// Login authenticates against the shop and persists the new identity.
// On failure the session is left untouched and the server's message is
// surfaced as-is.
func (m *Manager) Login(ctx context.Context, email, password string) (Session, error) {
	res, err := m.api.Login(ctx, email, password)
	if err != nil {
		return m.Current(), err
	}
	return m.install(Credentials{Email: email, Token: res.Token, Role: res.Role})
}

// Register creates an account and logs the session in from the signup
// response directly.
func (m *Manager) Register(ctx context.Context, email, password string) (Session, error) {
	res, err := m.api.Register(ctx, email, password)
	if err != nil {
		if errors.Is(err, client.ErrConflict) {
			return m.Current(), fmt.Errorf("%w: %s", client.ErrConflict,
				"An account with this email already exists. Please sign in.")
		}
		return m.Current(), err
	}
	return m.install(Credentials{Email: email, Token: res.Token, Role: res.Role})
}

// Logout clears the persisted identity and resets the session. Pure
// local action; the backend is not involved.
func (m *Manager) Logout() error {
	if err := m.store.Clear(); err != nil {
		return err
	}

	m.mu.Lock()
	m.current = Session{}
	m.api.SetToken("")
	subs := m.snapshotSubs()
	session := m.current
	m.mu.Unlock()

	m.notify(subs, session)
	return nil
}

// Resync reconciles the in-memory session with the persisted store.
// The read, compare, and swap happen under one lock so a login that
// lands mid-resync cannot be overwritten by the stale read: last write
// to the store wins.
func (m *Manager) Resync() error {
	m.mu.Lock()
	creds, err := m.store.Load()
	if err != nil {
		m.mu.Unlock()
		return err
	}

	next := sessionFromCredentials(creds)
	if next == m.current && creds.Token == m.api.Token() {
		m.mu.Unlock()
		return nil
	}

	m.current = next
	m.api.SetToken(creds.Token)
	subs := m.snapshotSubs()
	m.mu.Unlock()

	m.logger.Debug("Session resynced from store",
		zap.String("email", next.Email), zap.Bool("authenticated", next.Authenticated))
	m.notify(subs, next)
	return nil
}

// Run wires the store watcher to Resync until ctx is done. A watcher
// that cannot start degrades to less-fresh session state; it never
// fails the caller.
func (m *Manager) Run(ctx context.Context) {
	events, err := m.store.Watch(ctx)
	if err != nil {
		m.logger.Warn("Session watcher unavailable, cross-process changes will not be picked up", zap.Error(err))
		return
	}

	go func() {
		for range events {
			if err := m.Resync(); err != nil {
				m.logger.Warn("Session resync failed", zap.Error(err))
			}
		}
	}()
}

// install persists new credentials and swaps the session in one step.
func (m *Manager) install(creds Credentials) (Session, error) {
	if err := m.store.Save(creds); err != nil {
		return m.Current(), err
	}

	next := sessionFromCredentials(creds)

	m.mu.Lock()
	m.current = next
	m.api.SetToken(creds.Token)
	subs := m.snapshotSubs()
	m.mu.Unlock()

	m.notify(subs, next)
	return next, nil
}

// snapshotSubs must be called with mu held.
func (m *Manager) snapshotSubs() []func(Session) {
	subs := make([]func(Session), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	return subs
}

func (m *Manager) notify(subs []func(Session), session Session) {
	for _, fn := range subs {
		fn(session)
	}
}
