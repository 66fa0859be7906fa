package views

import (
	"time"

	"github.com/eringen/poetbook/collection"
)

// SiteConfig holds the site-wide values every page needs.
type SiteConfig struct {
	Name        string
	URL         string
	Description string
	Author      string
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head>.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string // og:image
}

// Dashboard is everything the admin dashboard renders.
type Dashboard struct {
	Poems          []collection.Poem
	Message        string
	Error          string
	CSRFToken      string
	Remaining      time.Duration
	RecheckSeconds int
	Now            time.Time
}

// PoemForm backs the add/edit form. An empty EditingID means a new poem.
type PoemForm struct {
	EditingID string
	Title     string
	Subtitle  string
	Content   string
	Tags      string
	Error     string
	CSRFToken string
}

// FormFor fills a PoemForm from an existing poem.
func FormFor(p collection.Poem, csrfToken string) PoemForm {
	return PoemForm{
		EditingID: p.ID,
		Title:     p.Title,
		Subtitle:  p.Subtitle,
		Content:   p.Content,
		Tags:      JoinTags(p.Tags),
		CSRFToken: csrfToken,
	}
}
