package poetbook

import (
	"strings"
	"time"

	"github.com/eringen/poetbook/collection"
	"github.com/eringen/poetbook/views"
)

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	return views.BuildURL(base, pathSegments...)
}

// ExportFilename names an export taken at t, e.g.
// poetry-collection-2025-08-13.json.
func ExportFilename(t time.Time, f collection.Format) string {
	return "poetry-collection-" + t.Format("2006-01-02") + f.Extension()
}

// poemURL is the canonical URL of a poem page.
func (a *App) poemURL(id string) string {
	return BuildURL(a.Config.URL, "poems", id)
}

// siteURL joins an absolute path onto the configured site URL.
func (a *App) siteURL(p string) string {
	return strings.TrimRight(a.Config.URL, "/") + p
}
