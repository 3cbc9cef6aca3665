package session

import (
	"sync"

	"github.com/naveenspark/consultly/pkg/domain"
)

// State is the authentication state of the gate.
type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// Gate guards actions that need a signed-in user. When anonymous, the action
// is parked as the pending continuation and the login form is opened; a
// successful login runs it exactly once. R is whatever the caller's actions
// return (a tea.Cmd in the TUI).
//
// The gate never talks to the network: callers perform the login request and
// report the outcome through LoginSucceeded or LoginFailed.
type Gate[R any] struct {
	mu        sync.Mutex
	store     Store
	pending   func() R
	loginOpen bool
	lastErr   error
}

// NewGate returns a gate whose initial state is read from store.
func NewGate[R any](store Store) *Gate[R] {
	return &Gate[R]{store: store}
}

// State is Authenticated exactly when the store holds a token.
func (g *Gate[R]) State() State {
	if _, ok := g.store.Token(); ok {
		return Authenticated
	}
	return Anonymous
}

// Session returns the stored session, if any.
func (g *Gate[R]) Session() (domain.Session, bool) {
	return g.store.Session()
}

// LoginOpen reports whether the login form should be shown.
func (g *Gate[R]) LoginOpen() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.loginOpen
}

// HasPending reports whether a continuation is waiting for login.
func (g *Gate[R]) HasPending() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pending != nil
}

// LastError is the most recent login failure, cleared on success or cancel.
func (g *Gate[R]) LastError() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastErr
}

// RequireAuth runs action immediately when authenticated and reports true.
// Otherwise it opens the login form, parks action (replacing any earlier
// pending one) and reports false without running it.
func (g *Gate[R]) RequireAuth(action func() R) (R, bool) {
	if g.State() == Authenticated {
		return action(), true
	}
	g.mu.Lock()
	g.pending = action
	g.loginOpen = true
	g.mu.Unlock()
	var zero R
	return zero, false
}

// OpenLogin shows the login form without a continuation.
func (g *Gate[R]) OpenLogin() {
	g.mu.Lock()
	g.loginOpen = true
	g.mu.Unlock()
}

// LoginSucceeded persists s, closes the login form and runs the pending
// continuation once. ran is false when there was nothing pending. On a
// persistence error the gate stays anonymous and keeps the continuation.
func (g *Gate[R]) LoginSucceeded(s domain.Session) (result R, ran bool, err error) {
	if err := g.store.Save(s); err != nil {
		g.mu.Lock()
		g.lastErr = err
		g.mu.Unlock()
		return result, false, err
	}

	g.mu.Lock()
	next := g.pending
	g.pending = nil
	g.loginOpen = false
	g.lastErr = nil
	g.mu.Unlock()

	if next == nil {
		return result, false, nil
	}
	return next(), true, nil
}

// LoginFailed records err and leaves the form open with the continuation intact.
func (g *Gate[R]) LoginFailed(err error) {
	g.mu.Lock()
	g.lastErr = err
	g.loginOpen = true
	g.mu.Unlock()
}

// CancelLogin closes the form and drops the pending continuation.
func (g *Gate[R]) CancelLogin() {
	g.mu.Lock()
	g.pending = nil
	g.loginOpen = false
	g.lastErr = nil
	g.mu.Unlock()
}

// Logout clears the persisted session and any pending continuation.
func (g *Gate[R]) Logout() error {
	g.mu.Lock()
	g.pending = nil
	g.loginOpen = false
	g.lastErr = nil
	g.mu.Unlock()
	return g.store.Clear()
}
