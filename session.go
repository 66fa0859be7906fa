package poetbook

import (
	"context"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/eringen/poetbook/collection"
	"github.com/eringen/poetbook/guard"
	"github.com/eringen/poetbook/storage"
)

// cookieScope is a storage.Storage over the visitor's signed session cookie.
// Each browser therefore carries its own session record.
type cookieScope struct {
	c   echo.Context
	log logrus.FieldLogger
}

var _ storage.Storage = cookieScope{}

func (s cookieScope) session() (*sessions.Session, error) {
	sess, err := session.Get(sessionName, s.c)
	if sess == nil {
		return nil, err
	}
	if err != nil {
		// A cookie signed with an old secret decodes to a fresh session.
		s.log.WithError(err).Debug("discarding unreadable session cookie")
	}
	return sess, nil
}

func (s cookieScope) Get(_ context.Context, key string) (string, bool, error) {
	sess, err := s.session()
	if err != nil {
		return "", false, err
	}
	v, ok := sess.Values[key].(string)
	return v, ok, nil
}

func (s cookieScope) Set(_ context.Context, key, value string) error {
	sess, err := s.session()
	if err != nil {
		return err
	}
	sess.Values[key] = value
	return sess.Save(s.c.Request(), s.c.Response())
}

func (s cookieScope) Remove(_ context.Context, key string) error {
	sess, err := s.session()
	if err != nil {
		return err
	}
	if _, ok := sess.Values[key]; !ok {
		return nil
	}
	delete(sess.Values, key)
	return sess.Save(s.c.Request(), s.c.Response())
}

func (s cookieScope) Close() error { return nil }

// guardFor returns the session guard for the visitor behind c.
func (a *App) guardFor(c echo.Context) *guard.Guard {
	log := a.log.WithField("ip", c.RealIP())
	return guard.New(cookieScope{c: c, log: log}, a.Config.AdminPassword,
		guard.WithTimeout(a.Config.SessionTimeout),
		guard.WithClock(a.now),
		guard.WithLogger(log),
	)
}

// collectionFor returns the collection with writes gated on c's session.
func (a *App) collectionFor(c echo.Context) *collection.Guarded {
	return collection.NewGuarded(a.Store, a.guardFor(c))
}

// IsAdmin reports whether the visitor behind c holds a valid admin session.
func (a *App) IsAdmin(c echo.Context) bool {
	ok, err := a.guardFor(c).CheckStatus(c.Request().Context())
	if err != nil {
		a.log.WithError(err).Warn("session check failed")
		return false
	}
	return ok
}
