package views

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// html accumulates the first write error so components can be written as a
// straight sequence of calls.
type html struct {
	ctx context.Context
	w   io.Writer
	err error
}

func (h *html) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *html) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *html) attr(name, value string) {
	h.raw(" " + name + `="` + templ.EscapeString(value) + `"`)
}

func (h *html) render(c templ.Component) {
	if h.err == nil {
		h.err = c.Render(h.ctx, h.w)
	}
}

func (h *html) csrf(token string) {
	h.raw(`<input type="hidden" name="_csrf"`)
	h.attr("value", token)
	h.raw(">")
}

// component adapts a write sequence to templ.Component.
func component(fn func(h *html)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{ctx: ctx, w: w}
		fn(h)
		return h.err
	})
}

// Layout wraps body in the site chrome.
func Layout(cfg SiteConfig, meta PageMeta, admin bool, body templ.Component) templ.Component {
	return component(func(h *html) {
		title := cfg.Name
		if meta.Title != "" && meta.Title != cfg.Name {
			title = meta.Title + " | " + cfg.Name
		}
		description := meta.Description
		if description == "" {
			description = cfg.Description
		}
		ogType := meta.OGType
		if ogType == "" {
			ogType = "website"
		}

		h.raw("<!DOCTYPE html>\n<html lang=\"en\"><head><meta charset=\"utf-8\">")
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw("<title>")
		h.text(title)
		h.raw("</title>")
		if description != "" {
			h.raw(`<meta name="description"`)
			h.attr("content", description)
			h.raw(">")
		}
		if meta.URL != "" {
			h.raw(`<link rel="canonical"`)
			h.attr("href", meta.URL)
			h.raw(`><meta property="og:url"`)
			h.attr("content", meta.URL)
			h.raw(">")
		}
		h.raw(`<meta property="og:title"`)
		h.attr("content", title)
		h.raw(`><meta property="og:type"`)
		h.attr("content", ogType)
		h.raw(">")
		if description != "" {
			h.raw(`<meta property="og:description"`)
			h.attr("content", description)
			h.raw(">")
		}
		if meta.Image != "" {
			h.raw(`<meta property="og:image"`)
			h.attr("content", meta.Image)
			h.raw(`><meta name="twitter:card" content="summary_large_image">`)
		}
		h.raw(`<link rel="alternate" type="application/rss+xml"`)
		h.attr("title", cfg.Name)
		h.raw(` href="/feed.xml"><link rel="stylesheet" href="/public/poetbook.css">`)
		if admin {
			h.raw(`<script src="/public/poetbook.js" defer></script>`)
		}
		h.raw("</head><body")
		if admin {
			h.raw(` class="admin"`)
		}
		h.raw(`><header class="masthead"><a class="site-name" href="/">`)
		h.text(cfg.Name)
		h.raw("</a>")
		if cfg.Description != "" {
			h.raw(`<p class="tagline">`)
			h.text(cfg.Description)
			h.raw("</p>")
		}
		h.raw("</header><main>")
		h.render(body)
		h.raw(`</main><footer class="colophon">`)
		if cfg.Author != "" {
			h.raw("&copy; ")
			h.text(cfg.Author)
			h.raw(" &middot; ")
		}
		h.raw(`<a href="/feed.xml">RSS</a> &middot; <a href="/admin/">Admin</a></footer></body></html>`)
	})
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
