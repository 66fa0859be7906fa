package views

import (
	"encoding/json"
	"net/url"
	"path"
	"strings"

	"github.com/eringen/poetbook/collection"
	"github.com/eringen/poetbook/verse"
)

// BuildURL joins path segments onto a base URL, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// PathEscape wraps url.PathEscape for use in components.
func PathEscape(s string) string {
	return url.PathEscape(s)
}

// TagPath is the home page filtered by tag.
func TagPath(tag string) string {
	return "/?tag=" + url.QueryEscape(tag)
}

// PoemPath is the site-relative URL of a poem page.
func PoemPath(id string) string {
	return "/poems/" + url.PathEscape(id) + "/"
}

// CardPath is the site-relative URL of a poem's share card.
func CardPath(id string) string {
	return "/poems/" + url.PathEscape(id) + "/card.png"
}

// FilterRelated returns poems that share at least one tag with current.
func FilterRelated(current collection.Poem, poems []collection.Poem) []collection.Poem {
	var related []collection.Poem
	for _, p := range poems {
		if p.ID == current.ID {
			continue
		}
		for _, t := range current.Tags {
			if p.HasTag(t) {
				related = append(related, p)
				break
			}
		}
	}
	return related
}

// JoinTags formats a tag slice as a comma-separated string for form fields.
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

// Describe returns a one-line description for a poem, used in meta tags.
func Describe(p collection.Poem) string {
	if p.Subtitle != "" {
		return p.Subtitle
	}
	return verse.PlainText(p.Excerpt)
}

// WebsiteJsonLD produces a Schema.org WebSite JSON-LD block using cfg values.
func WebsiteJsonLD(cfg SiteConfig) string {
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     cfg.Name,
		"url":      BuildURL(cfg.URL),
	}
	if cfg.Description != "" {
		data["description"] = cfg.Description
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	return marshalJsonLD(data)
}

// PoemJsonLD produces a Schema.org CreativeWork JSON-LD block for a poem.
func PoemJsonLD(cfg SiteConfig, p collection.Poem) string {
	poemURL := BuildURL(cfg.URL, "poems", p.ID)
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "CreativeWork",
		"genre":       "Poetry",
		"headline":    p.Title,
		"description": Describe(p),
		"dateCreated": p.DateCreated.Format("2006-01-02"),
		"url":         poemURL,
		"text":        p.Content,
		"isPartOf":    map[string]string{"@type": "WebSite", "name": cfg.Name},
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   poemURL,
		},
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	if len(p.Tags) > 0 {
		data["keywords"] = strings.Join(p.Tags, ", ")
	}
	return marshalJsonLD(data)
}

func marshalJsonLD(data map[string]interface{}) string {
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
