package views

import (
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/dustin/go-humanize"

	"github.com/eringen/poetbook/collection"
	"github.com/eringen/poetbook/verse"
)

const dateLayout = "January 2, 2006"

func tagLinks(h *html, tags []string, active string) {
	if len(tags) == 0 {
		return
	}
	h.raw(`<ul class="tags">`)
	for _, t := range tags {
		h.raw(`<li><a class="tag`)
		if t == active {
			h.raw(` tag-active`)
		}
		h.raw(`"`)
		h.attr("href", TagPath(t))
		h.raw(">")
		h.text(t)
		h.raw("</a></li>")
	}
	h.raw("</ul>")
}

func card(h *html, p collection.Poem) {
	h.raw(`<article class="poem-card"><h2><a`)
	h.attr("href", PoemPath(p.ID))
	h.raw(">")
	h.text(p.Title)
	h.raw("</a></h2>")
	if p.Subtitle != "" {
		h.raw(`<p class="subtitle">`)
		h.text(p.Subtitle)
		h.raw("</p>")
	}
	h.raw(`<div class="excerpt">`)
	h.render(verse.Verse(p.Excerpt))
	h.raw(`</div><p class="meta"><time`)
	h.attr("datetime", p.DateCreated.Format(time.RFC3339))
	h.raw(">")
	h.text(p.DateCreated.Format(dateLayout))
	h.raw("</time></p>")
	tagLinks(h, p.Tags, "")
	h.raw(`<a class="read-more"`)
	h.attr("href", PoemPath(p.ID))
	h.raw(">Read poem</a></article>")
}

// Home lists poems as cards, optionally filtered by activeTag.
func Home(cfg SiteConfig, poems []collection.Poem, activeTag string, tags []string) templ.Component {
	meta := PageMeta{Title: cfg.Name, Description: cfg.Description, URL: BuildURL(cfg.URL)}
	body := component(func(h *html) {
		h.raw(`<script type="application/ld+json">`)
		h.raw(WebsiteJsonLD(cfg))
		h.raw("</script><nav class=\"tag-filter\">")
		if activeTag != "" {
			h.raw(`<a class="tag" href="/">All poems</a>`)
		}
		tagLinks(h, tags, activeTag)
		h.raw(`</nav><section class="poems">`)
		if len(poems) == 0 {
			h.raw(`<p class="empty">No poems yet.</p>`)
		}
		for _, p := range poems {
			card(h, p)
		}
		h.raw("</section>")
	})
	return Layout(cfg, meta, false, body)
}

// Poem renders one poem on its own page with poems that share its tags.
func Poem(cfg SiteConfig, p collection.Poem, related []collection.Poem) templ.Component {
	meta := PageMeta{
		Title:       p.Title,
		Description: Describe(p),
		URL:         BuildURL(cfg.URL, "poems", p.ID),
		OGType:      "article",
		Image:       BuildURL(cfg.URL, "poems", p.ID) + "card.png",
	}
	body := component(func(h *html) {
		h.raw(`<script type="application/ld+json">`)
		h.raw(PoemJsonLD(cfg, p))
		h.raw(`</script><article class="poem"><h1>`)
		h.text(p.Title)
		h.raw("</h1>")
		if p.Subtitle != "" {
			h.raw(`<p class="subtitle">`)
			h.text(p.Subtitle)
			h.raw("</p>")
		}
		h.raw(`<div class="verse">`)
		h.render(verse.Verse(p.Content))
		h.raw(`</div><p class="meta"><time`)
		h.attr("datetime", p.DateCreated.Format(time.RFC3339))
		h.raw(">")
		h.text(p.DateCreated.Format(dateLayout))
		h.raw("</time></p>")
		tagLinks(h, p.Tags, "")
		h.raw("</article>")
		if len(related) > 0 {
			h.raw(`<aside class="related"><h2>More poems</h2><ul>`)
			for _, r := range related {
				h.raw("<li><a")
				h.attr("href", PoemPath(r.ID))
				h.raw(">")
				h.text(r.Title)
				h.raw("</a></li>")
			}
			h.raw("</ul></aside>")
		}
		h.raw(`<p><a href="/">&larr; All poems</a></p>`)
	})
	return Layout(cfg, meta, false, body)
}

// AdminLogin renders the password prompt.
func AdminLogin(cfg SiteConfig, showError bool, csrfToken string) templ.Component {
	body := component(func(h *html) {
		h.raw(`<section class="login"><h1>Admin</h1>`)
		if showError {
			h.raw(`<p class="error" role="alert">Incorrect password.</p>`)
		}
		h.raw(`<form method="post" action="/admin/login/">`)
		h.csrf(csrfToken)
		h.raw(`<label for="password">Password</label>`)
		h.raw(`<input id="password" name="password" type="password" autocomplete="current-password" required autofocus>`)
		h.raw(`<button type="submit">Log in</button></form></section>`)
	})
	return Layout(cfg, PageMeta{Title: "Admin"}, false, body)
}

// AdminDashboard lists every poem with edit and delete controls, the
// import/export tools and the remaining session time.
func AdminDashboard(cfg SiteConfig, d Dashboard) templ.Component {
	body := component(func(h *html) {
		h.raw(`<section class="dashboard" data-recheck="`)
		h.raw(itoa(d.RecheckSeconds))
		h.raw(`"><header class="admin-bar"><span class="badge">Admin mode</span>`)
		h.raw(`<span class="session" data-remaining="`)
		h.raw(itoa(int(d.Remaining.Seconds())))
		h.raw(`">Session ends in `)
		h.text(strings.TrimSpace(humanize.RelTime(d.Now, d.Now.Add(d.Remaining), "", "")))
		h.raw(`</span><form method="post" action="/admin/logout/">`)
		h.csrf(d.CSRFToken)
		h.raw(`<button type="submit">Log out</button></form></header>`)
		if d.Message != "" {
			h.raw(`<p class="notice" role="status">`)
			h.text(d.Message)
			h.raw("</p>")
		}
		if d.Error != "" {
			h.raw(`<p class="error" role="alert">`)
			h.text(d.Error)
			h.raw("</p>")
		}
		h.raw(`<p><a class="button" href="/admin/new/">New poem</a> `)
		h.raw(`<a class="button" href="/admin/export/">Export collection</a></p>`)
		h.raw(`<table class="poem-list"><thead><tr><th>Title</th><th>Tags</th><th>Created</th><th></th></tr></thead><tbody>`)
		for _, p := range d.Poems {
			h.raw("<tr><td><a")
			h.attr("href", "/admin/poem/"+PathEscape(p.ID)+"/")
			h.raw(">")
			h.text(p.Title)
			h.raw("</a></td><td>")
			h.text(JoinTags(p.Tags))
			h.raw("</td><td><time")
			h.attr("datetime", p.DateCreated.Format(time.RFC3339))
			h.attr("title", p.DateCreated.Format(dateLayout))
			h.raw(">")
			h.text(humanize.RelTime(p.DateCreated, d.Now, "ago", "from now"))
			h.raw(`</time></td><td><form method="post"`)
			h.attr("action", "/admin/poem/"+PathEscape(p.ID)+"/")
			h.raw(` class="delete" data-confirm="Delete this poem?"><input type="hidden" name="_method" value="DELETE">`)
			h.csrf(d.CSRFToken)
			h.raw(`<button type="submit">Delete</button></form></td></tr>`)
		}
		h.raw(`</tbody></table><form class="import" method="post" action="/admin/import/" enctype="multipart/form-data"`)
		h.raw(` data-confirm="Importing replaces every poem in the collection. Continue?">`)
		h.csrf(d.CSRFToken)
		h.raw(`<label for="file">Import collection (JSON)</label>`)
		h.raw(`<input id="file" name="file" type="file" accept="application/json,.json" required>`)
		h.raw(`<button type="submit">Import</button></form></section>`)
	})
	return Layout(cfg, PageMeta{Title: "Dashboard"}, true, body)
}

// AdminForm renders the add/edit form.
func AdminForm(cfg SiteConfig, f PoemForm) templ.Component {
	heading := "New poem"
	if f.EditingID != "" {
		heading = "Edit poem"
	}
	body := component(func(h *html) {
		h.raw(`<section class="editor"><h1>`)
		h.text(heading)
		h.raw("</h1>")
		if f.Error != "" {
			h.raw(`<p class="error" role="alert">`)
			h.text(f.Error)
			h.raw("</p>")
		}
		h.raw(`<form method="post" action="/admin/save/">`)
		h.csrf(f.CSRFToken)
		h.raw(`<input type="hidden" name="editing_id"`)
		h.attr("value", f.EditingID)
		h.raw(`><label for="title">Title</label><input id="title" name="title" required`)
		h.attr("value", f.Title)
		h.raw(`><label for="subtitle">Subtitle</label><input id="subtitle" name="subtitle"`)
		h.attr("value", f.Subtitle)
		h.raw(`><label for="content">Poem</label><textarea id="content" name="content" rows="16" required>`)
		h.text(f.Content)
		h.raw(`</textarea><label for="tags">Tags</label><input id="tags" name="tags" placeholder="nature, night"`)
		h.attr("value", f.Tags)
		h.raw(`><button type="submit">Save</button> <a href="/admin/">Cancel</a></form></section>`)
	})
	return Layout(cfg, PageMeta{Title: heading}, true, body)
}

// NotFound renders the 404 page.
func NotFound(cfg SiteConfig) templ.Component {
	body := component(func(h *html) {
		h.raw(`<section class="status"><h1>Not found</h1><p>That poem is not in the collection.</p><p><a href="/">&larr; All poems</a></p></section>`)
	})
	return Layout(cfg, PageMeta{Title: "Not found"}, false, body)
}

// ServerError renders the 500 page.
func ServerError(cfg SiteConfig) templ.Component {
	body := component(func(h *html) {
		h.raw(`<section class="status"><h1>Something went wrong</h1><p>Please try again in a moment.</p></section>`)
	})
	return Layout(cfg, PageMeta{Title: "Error"}, false, body)
}
