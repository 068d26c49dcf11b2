package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/joshua-takyi/evently/internal/client"
)

// AuthStore owns the current session and feeds its token to the client.
type AuthStore struct {
	api       *client.Client
	persister Persister
	logger    *slog.Logger
	now       func() time.Time

	mu      sync.RWMutex
	session *Session
	version uint64
	gen     generation
	subs    subscribers[*Session]
}

func NewAuthStore(api *client.Client, persister Persister, logger *slog.Logger) *AuthStore {
	if persister == nil {
		persister = &MemoryPersister{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	a := &AuthStore{api: api, persister: persister, logger: logger, now: time.Now}
	api.SetToken(a.Token)
	return a
}

// Token is the current access token, "" when signed out.
func (a *AuthStore) Token() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.session == nil {
		return ""
	}
	return a.session.AccessToken
}

// Session returns a copy of the current session, or nil.
func (a *AuthStore) Session() *Session {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.session == nil {
		return nil
	}
	cp := *a.session
	return &cp
}

func (a *AuthStore) SignedIn() bool { return a.Token() != "" }

// Subscribe registers fn for every session change. A nil session means signed out.
func (a *AuthStore) Subscribe(fn func(*Session)) func() { return a.subs.add(fn) }

func (a *AuthStore) set(s *Session) {
	a.mu.Lock()
	a.session = s
	a.version++
	seq := a.version
	var snap *Session
	if s != nil {
		cp := *s
		snap = &cp
	}
	a.mu.Unlock()
	a.subs.publish(seq, snap)
}

// Restore loads a cached session, refreshing it when the access token has expired.
func (a *AuthStore) Restore(ctx context.Context) error {
	s, err := a.persister.Load()
	if err != nil {
		return err
	}
	if s == nil {
		return nil
	}
	a.set(s)
	if s.Expired(a.now()) {
		if s.RefreshToken == "" {
			return a.SignOut(ctx)
		}
		if err := a.Refresh(ctx); err != nil {
			a.logger.Warn("Cached session could not be refreshed", "error", err)
			return a.SignOut(ctx)
		}
	}
	return nil
}

func (a *AuthStore) SignIn(ctx context.Context, email, password string) error {
	session, err := a.api.Users.SignIn(ctx, email, password)
	if err != nil {
		return err
	}
	s := &Session{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		ExpiresAt:    a.now().Add(time.Duration(session.ExpiresIn) * time.Second),
	}
	a.set(s)
	if err := a.Fetch(ctx); err != nil {
		return fmt.Errorf("signed in but failed to load profile: %w", err)
	}
	return nil
}

// Fetch reloads the profile of the signed-in user.
func (a *AuthStore) Fetch(ctx context.Context) error {
	if !a.SignedIn() {
		return nil
	}
	n := a.gen.begin()
	user, err := a.api.Users.Me(ctx)
	if err != nil {
		return err
	}
	if !a.gen.commit(n) {
		return nil
	}
	s := a.Session()
	if s == nil {
		return nil
	}
	s.User = user
	a.set(s)
	return a.persister.Save(s)
}

func (a *AuthStore) Refresh(ctx context.Context) error {
	s := a.Session()
	if s == nil || s.RefreshToken == "" {
		return fmt.Errorf("no session to refresh")
	}
	session, err := a.api.Users.Refresh(ctx, s.RefreshToken)
	if err != nil {
		return err
	}
	s.AccessToken = session.AccessToken
	if session.RefreshToken != "" {
		s.RefreshToken = session.RefreshToken
	}
	s.ExpiresAt = a.now().Add(time.Duration(session.ExpiresIn) * time.Second)
	a.set(s)
	return a.persister.Save(s)
}

// SignOut always clears local state, even when the server call fails.
func (a *AuthStore) SignOut(ctx context.Context) error {
	if a.SignedIn() {
		if err := a.api.Users.Logout(ctx); err != nil {
			a.logger.Warn("Logout request failed", "error", err)
		}
	}
	a.gen.invalidate()
	a.set(nil)
	return a.persister.Clear()
}
