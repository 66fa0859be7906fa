package poetbook

import (
	"encoding/xml"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/poetbook/collection"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

func (a *App) writeSitemap(w io.Writer, poems []collection.Poem) error {
	urls := []sitemapURL{
		{Loc: BuildURL(a.Config.URL)},
	}
	for _, p := range poems {
		urls = append(urls, sitemapURL{
			Loc:     a.poemURL(p.ID),
			LastMod: p.DateCreated.Format("2006-01-02"),
		})
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	return xml.NewEncoder(w).Encode(sitemap)
}

func (a *App) handleSitemap(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	return a.writeSitemap(c.Response(), a.Store.List())
}
