package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/harxxhilgg/univent/internal/token"
	"github.com/harxxhilgg/univent/internal/tokenstore"
	pkgerrors "github.com/harxxhilgg/univent/pkg/errors"
)

// DefaultResolveTimeout bounds the startup storage read. A hung read must
// not leave the app stuck on the loading screen.
const DefaultResolveTimeout = 5 * time.Second

// timeoutNotice is the transient message surfaced when resolution is
// forced to the Auth route by the deadline timer.
const timeoutNotice = "Authentication check timed out, please try again."

// Resolver turns a persisted token into a resolved session. It runs once
// per app launch.
type Resolver struct {
	// Notify surfaces a transient, toast-style message to the user.
	// Optional; only the startup timeout emits one.
	Notify func(msg string)

	// Timeout overrides DefaultResolveTimeout when positive.
	Timeout time.Duration

	tokens   tokenstore.Store
	sessions *Store
	now      func() time.Time
}

func NewResolver(tokens tokenstore.Store, sessions *Store) *Resolver {
	return &Resolver{tokens: tokens, sessions: sessions, now: time.Now}
}

// outcome is a terminal resolution result: the route to land on and the
// identity, if any.
type outcome struct {
	user  *User
	route Route
}

// Resolve reads the persisted token, validates it and finalizes the
// session store. Every branch terminates in a resolved state; no error
// escapes to the caller. The storage read races a deadline timer: the
// first to finish settles the session, the loser is discarded. The timer
// path is a failure fallback to the Auth route and emits exactly one
// notification.
func (r *Resolver) Resolve(ctx context.Context) Session {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultResolveTimeout
	}

	done := make(chan outcome, 1)
	go func() {
		done <- r.resolveToken(ctx)
	}()

	var settled outcome
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case settled = <-done:
	case <-timer.C:
		slog.Warn("session resolution failed", "error", pkgerrors.ErrResolveTimeout, "timeout", timeout)
		if r.Notify != nil {
			r.Notify(timeoutNotice)
		}
		settled = outcome{route: RouteAuth}
	case <-ctx.Done():
		slog.Warn("session resolution canceled", "error", ctx.Err())
		settled = outcome{route: RouteAuth}
	}

	// Single settle point: a late resolveToken result is left in the
	// buffered channel and never applied.
	r.sessions.Apply(settled.user, settled.route)
	return r.sessions.Get()
}

func (r *Resolver) resolveToken(ctx context.Context) outcome {
	tok, err := r.tokens.Get(ctx, tokenstore.TokenKey)
	if err != nil {
		// Storage failure fails open to the Auth screen, never to an
		// authenticated state.
		if !errors.Is(err, tokenstore.ErrNotFound) {
			slog.Warn("token read failed, treating as signed out", "error", err)
		}
		return outcome{route: RouteAuth}
	}
	if tok == "" {
		return outcome{route: RouteAuth}
	}

	claims, err := token.Decode(tok)
	if err != nil || !claims.HasIdentity() {
		slog.Info("discarding unusable token", "error", err)
		r.discardToken(ctx)
		return outcome{route: RouteAuth}
	}

	if claims.ExpiredAt(r.now().Unix()) {
		slog.Info("discarding token", "error", pkgerrors.ErrTokenExpired, "exp", claims.Exp)
		r.discardToken(ctx)
		return outcome{route: RouteAuth}
	}

	return outcome{
		user:  &User{ID: claims.UserID, Username: claims.Username, Email: claims.Email},
		route: RouteMain,
	}
}

func (r *Resolver) discardToken(ctx context.Context) {
	if err := r.tokens.Delete(ctx, tokenstore.TokenKey); err != nil {
		slog.Warn("failed to delete token", "error", err)
	}
}
