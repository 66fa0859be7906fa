// Package guard gates write access behind a single shared secret. A
// successful login stores {authenticated, timestamp} in a storage scope; every
// check recomputes validity from that timestamp and a fixed timeout, and a
// stale or malformed record is cleared on sight.
//
// This is an advisory check, not a security boundary: the secret is compared
// in cleartext and there is no lockout.
package guard

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eringen/poetbook/storage"
)

const (
	// DefaultTimeout is how long a login stays valid.
	DefaultTimeout = 30 * time.Minute
	// DefaultRecheckInterval is how often pages are expected to poll the
	// session so an expired admin view reverts without a reload.
	DefaultRecheckInterval = time.Minute
)

// record is the persisted session. Timestamp is Unix milliseconds.
type record struct {
	Authenticated bool  `json:"authenticated"`
	Timestamp     int64 `json:"timestamp"`
}

// Status describes the session at the time of a check.
type Status struct {
	Authenticated bool
	LoggedInAt    time.Time
	Remaining     time.Duration
}

// Guard evaluates and mutates the session stored in one storage scope.
type Guard struct {
	kv      storage.Storage
	secret  string
	timeout time.Duration
	now     func() time.Time
	log     logrus.FieldLogger
}

// Option configures a Guard.
type Option func(*Guard)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(g *Guard) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(g *Guard) {
		g.now = now
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log logrus.FieldLogger) Option {
	return func(g *Guard) {
		g.log = log
	}
}

// New returns a Guard that keeps its session in kv under storage.KeySession.
// An empty secret rejects every login.
func New(kv storage.Storage, secret string, opts ...Option) *Guard {
	l := logrus.New()
	l.SetOutput(io.Discard)
	g := &Guard{
		kv:      kv,
		secret:  secret,
		timeout: DefaultTimeout,
		now:     time.Now,
		log:     l,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Timeout returns the session validity window.
func (g *Guard) Timeout() time.Duration {
	return g.timeout
}

// Status reads the stored session. A record that is expired, not
// authenticated or unreadable is removed and reported as unauthenticated.
func (g *Guard) Status(ctx context.Context) (Status, error) {
	raw, ok, err := g.kv.Get(ctx, storage.KeySession)
	if err != nil {
		return Status{}, fmt.Errorf("read session: %w", err)
	}
	if !ok {
		return Status{}, nil
	}

	var r record
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		g.log.WithError(err).Warn("clearing unreadable session record")
		return Status{}, g.Logout(ctx)
	}

	loggedIn := time.UnixMilli(r.Timestamp)
	age := g.now().Sub(loggedIn)
	if !r.Authenticated || age >= g.timeout {
		g.log.WithField("age", age.Round(time.Second)).Debug("session expired")
		return Status{}, g.Logout(ctx)
	}
	return Status{
		Authenticated: true,
		LoggedInAt:    loggedIn,
		Remaining:     g.timeout - age,
	}, nil
}

// CheckStatus reports whether the stored session is currently valid.
func (g *Guard) CheckStatus(ctx context.Context) (bool, error) {
	st, err := g.Status(ctx)
	return st.Authenticated, err
}

// IsAuthorized is CheckStatus under the name mutators consult.
func (g *Guard) IsAuthorized(ctx context.Context) (bool, error) {
	return g.CheckStatus(ctx)
}

// Login starts a session when candidate matches the secret. A mismatch
// returns false and leaves the stored session untouched.
func (g *Guard) Login(ctx context.Context, candidate string) (bool, error) {
	if g.secret == "" || subtle.ConstantTimeCompare([]byte(candidate), []byte(g.secret)) != 1 {
		g.log.Info("admin login rejected")
		return false, nil
	}
	b, err := json.Marshal(record{Authenticated: true, Timestamp: g.now().UnixMilli()})
	if err != nil {
		return false, err
	}
	if err := g.kv.Set(ctx, storage.KeySession, string(b)); err != nil {
		return false, fmt.Errorf("write session: %w", err)
	}
	g.log.Info("admin logged in")
	return true, nil
}

// Logout clears the stored session. It is safe to call repeatedly.
func (g *Guard) Logout(ctx context.Context) error {
	if err := g.kv.Remove(ctx, storage.KeySession); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
