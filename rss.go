package poetbook

import (
	"encoding/xml"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/poetbook/collection"
	"github.com/eringen/poetbook/verse"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	PubDate     string   `xml:"pubDate"`
	GUID        string   `xml:"guid"`
	Categories  []string `xml:"category"`
}

// writeRSS writes an RSS 2.0 feed of poems, newest first as given.
func (a *App) writeRSS(w io.Writer, poems []collection.Poem) error {
	base := a.Config.URL
	items := make([]rssItem, 0, len(poems))
	for _, p := range poems {
		link := a.poemURL(p.ID)
		description := p.Subtitle
		if excerpt := verse.PlainText(p.Excerpt); excerpt != "" {
			if description != "" {
				description += " - "
			}
			description += excerpt
		}
		items = append(items, rssItem{
			Title:       p.Title,
			Link:        link,
			Description: description,
			PubDate:     p.DateCreated.Format(time.RFC1123Z),
			GUID:        link,
			Categories:  p.Tags,
		})
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.Config.Name,
			Link:        BuildURL(base),
			Description: a.Config.Description,
			Items:       items,
		},
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return enc.Encode(feed)
}

func (a *App) handleFeed(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	return a.writeRSS(c.Response(), a.Store.List())
}
