package poetbook

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/poetbook/collection"
	"github.com/eringen/poetbook/views"
)

func (a *App) handleHome(c echo.Context) error {
	tag := c.QueryParam("tag")
	poems := a.Store.List()
	if tag != "" {
		poems = a.Store.ListByTag(tag)
	}
	return Render(c, a.Views.Home(poems, tag, a.Store.Tags()))
}

func (a *App) handlePoem(c echo.Context) error {
	p, err := a.Store.Get(c.Param("id"))
	if err != nil {
		return err
	}
	return Render(c, a.Views.Poem(p, views.FilterRelated(p, a.Store.List())))
}

func (a *App) handleCard(c echo.Context) error {
	p, err := a.Store.Get(c.Param("id"))
	if err != nil {
		return err
	}
	b, err := a.cards.Card(p, a.Config.Name)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "image/png", b)
}

func (a *App) handleRobots(c echo.Context) error {
	return c.String(http.StatusOK, "User-agent: *\nDisallow: /admin/\nSitemap: "+a.siteURL("/sitemap.xml")+"\n")
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	switch {
	case errors.Is(err, collection.ErrNotFound):
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	case errors.Is(err, collection.ErrDenied):
		_ = c.Redirect(http.StatusSeeOther, "/admin/")
		return
	case collection.IsValidation(err):
		_ = c.String(http.StatusUnprocessableEntity, err.Error())
		return
	case errors.As(err, &he) && he.Code == http.StatusNotFound:
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if he != nil {
		code = he.Code
	}
	if code >= 500 {
		a.log.WithError(err).WithField("uri", c.Request().RequestURI).Error("server error")
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
