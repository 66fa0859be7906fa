package poetbook

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/poetbook/collection"
	"github.com/eringen/poetbook/views"
)

type adminStatus struct {
	Authenticated    bool `json:"authenticated"`
	RemainingSeconds int  `json:"remainingSeconds"`
	RecheckSeconds   int  `json:"recheckSeconds"`
}

func (a *App) handleAdmin(c echo.Context) error {
	if !a.IsAdmin(c) {
		return Render(c, a.Views.AdminLogin(false, CsrfToken(c)))
	}
	return a.renderAdminDashboard(c, http.StatusOK, c.QueryParam("msg"), "")
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if a.loginLimiter != nil && !a.loginLimiter.Check(ip) {
		a.metrics.logins.WithLabelValues("limited").Inc()
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	ok, err := a.guardFor(c).Login(c.Request().Context(), c.FormValue("password"))
	if err != nil {
		return err
	}
	if !ok {
		if a.loginLimiter != nil {
			a.loginLimiter.Record(ip)
		}
		a.metrics.logins.WithLabelValues("rejected").Inc()
		return Render(c, a.Views.AdminLogin(true, CsrfToken(c)))
	}
	a.metrics.logins.WithLabelValues("ok").Inc()
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func (a *App) handleAdminLogout(c echo.Context) error {
	if err := a.guardFor(c).Logout(c.Request().Context()); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

// handleAdminStatus is polled by the admin pages so an expired session
// drops out of admin mode without a reload.
func (a *App) handleAdminStatus(c echo.Context) error {
	st, err := a.guardFor(c).Status(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, adminStatus{
		Authenticated:    st.Authenticated,
		RemainingSeconds: int(st.Remaining.Seconds()),
		RecheckSeconds:   int(a.Config.StatusInterval.Seconds()),
	})
}

func (a *App) handleAdminNew(c echo.Context) error {
	if !a.IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	return Render(c, a.Views.AdminForm(views.PoemForm{CSRFToken: CsrfToken(c)}))
}

func (a *App) handleAdminPoem(c echo.Context) error {
	if !a.IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	p, err := a.Store.Get(c.Param("id"))
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminForm(views.FormFor(p, CsrfToken(c))))
}

func (a *App) handleAdminSave(c echo.Context) error {
	form := views.PoemForm{
		EditingID: strings.TrimSpace(c.FormValue("editing_id")),
		Title:     c.FormValue("title"),
		Subtitle:  c.FormValue("subtitle"),
		Content:   c.FormValue("content"),
		Tags:      c.FormValue("tags"),
		CSRFToken: CsrfToken(c),
	}
	coll := a.collectionFor(c)
	ctx := c.Request().Context()

	var err error
	op := "add"
	if form.EditingID == "" {
		_, err = coll.Add(ctx, collection.Input{
			Title:    form.Title,
			Subtitle: form.Subtitle,
			Content:  form.Content,
			Tags:     collection.ParseTagList(form.Tags),
		})
	} else {
		op = "update"
		_, err = coll.Update(ctx, form.EditingID, collection.Patch{
			Title:    &form.Title,
			Subtitle: &form.Subtitle,
			Content:  &form.Content,
			Tags:     collection.ParseTagList(form.Tags),
		})
	}
	if errors.Is(err, collection.ErrDenied) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.metrics.mutation(op, err)
	if collection.IsValidation(err) {
		form.Error = err.Error()
		return RenderStatus(c, http.StatusUnprocessableEntity, a.Views.AdminForm(form))
	}
	if err != nil {
		return err
	}
	a.log.WithField("op", op).Info("poem saved")
	return a.renderAdminDashboard(c, http.StatusOK, "Poem saved.", "")
}

func (a *App) handleAdminDelete(c echo.Context) error {
	id := c.Param("id")
	found, err := a.collectionFor(c).Delete(c.Request().Context(), id)
	if errors.Is(err, collection.ErrDenied) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.metrics.mutation("delete", err)
	if err != nil {
		return err
	}
	if !found {
		return a.renderAdminDashboard(c, http.StatusNotFound, "", "That poem no longer exists.")
	}
	a.cards.Forget(id)
	return a.renderAdminDashboard(c, http.StatusOK, "Poem deleted.", "")
}

func (a *App) handleAdminExport(c echo.Context) error {
	if !a.IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	format, err := collection.ParseFormat(c.QueryParam("format"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	name := ExportFilename(a.now(), format)
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	c.Response().Header().Set(echo.HeaderContentType, format.ContentType())
	c.Response().WriteHeader(http.StatusOK)
	return collection.Encode(c.Response(), a.Store.List(), format)
}

func (a *App) handleAdminImport(c echo.Context) error {
	if !a.IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return a.renderAdminDashboard(c, http.StatusBadRequest, "", "Choose a file to import.")
	}
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	poems, err := collection.Decode(f, collection.FormatFromPath(fh.Filename))
	if err != nil {
		a.metrics.mutation("import", err)
		return a.renderAdminDashboard(c, http.StatusUnprocessableEntity, "", "Import failed: the file is not a poetry collection.")
	}
	err = a.collectionFor(c).Replace(c.Request().Context(), poems)
	if errors.Is(err, collection.ErrDenied) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.metrics.mutation("import", err)
	if collection.IsValidation(err) {
		return a.renderAdminDashboard(c, http.StatusUnprocessableEntity, "", "Import failed: "+err.Error())
	}
	if err != nil {
		return err
	}
	a.cards.Invalidate()
	a.log.WithField("poems", len(poems)).Info("collection imported")
	return a.renderAdminDashboard(c, http.StatusOK, fmt.Sprintf("Imported %d poems.", len(poems)), "")
}

func (a *App) renderAdminDashboard(c echo.Context, code int, msg, errMsg string) error {
	st, err := a.guardFor(c).Status(c.Request().Context())
	if err != nil {
		return err
	}
	return RenderStatus(c, code, a.Views.AdminDashboard(views.Dashboard{
		Poems:          a.Store.List(),
		Message:        msg,
		Error:          errMsg,
		CSRFToken:      CsrfToken(c),
		Remaining:      st.Remaining,
		RecheckSeconds: int(a.Config.StatusInterval.Seconds()),
		Now:            a.now(),
	}))
}
