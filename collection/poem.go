// Package collection owns the poem records: it keeps the authoritative list in
// memory and mirrors the whole list to a storage.Storage on every mutation.
package collection

import (
	"strings"
	"time"
	"unicode"
)

// Poem is a single entry in the collection.
type Poem struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Subtitle    string    `json:"subtitle" yaml:"subtitle"`
	Excerpt     string    `json:"excerpt" yaml:"excerpt"`
	Content     string    `json:"content" yaml:"content"`
	DateCreated time.Time `json:"dateCreated" yaml:"dateCreated"`
	Tags        []string  `json:"tags" yaml:"tags"`
}

func (p Poem) clone() Poem {
	p.Tags = append([]string{}, p.Tags...)
	return p
}

// HasTag reports whether p carries tag, ignoring case and surrounding space.
func (p Poem) HasTag(tag string) bool {
	want := normalizeTag(tag)
	for _, t := range p.Tags {
		if normalizeTag(t) == want {
			return true
		}
	}
	return false
}

// Input carries the caller-supplied fields of a new poem.
type Input struct {
	Title    string
	Subtitle string
	Content  string
	Tags     []string
}

// Patch lists the fields an update may change. Nil pointers leave the field
// as it is; a nil Tags slice leaves tags unchanged while a non-nil empty
// slice clears them. ID and DateCreated cannot be patched.
type Patch struct {
	Title    *string
	Subtitle *string
	Content  *string
	Tags     []string
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Subtitle == nil && p.Content == nil && p.Tags == nil
}

// Slugify derives a poem id from a title: lower-cased, characters other than
// a-z, 0-9, whitespace and hyphens dropped, runs of whitespace and hyphens
// collapsed to a single hyphen, leading and trailing hyphens trimmed.
func Slugify(title string) string {
	var b strings.Builder
	sep := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if sep && b.Len() > 0 {
				b.WriteByte('-')
			}
			sep = false
			b.WriteRune(r)
		case r == '-' || unicode.IsSpace(r):
			sep = true
		}
	}
	return b.String()
}

// Excerpt returns the first three non-blank lines of content joined by
// newlines, suffixed with "..." when more non-blank lines follow.
func Excerpt(content string) string {
	var lines []string
	for _, l := range strings.Split(content, "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) <= 3 {
		return strings.Join(lines, "\n")
	}
	return strings.Join(lines[:3], "\n") + "..."
}

// CleanTags trims each tag and drops empty ones. The result is never nil.
func CleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// ParseTagList splits a comma-separated form value into clean tags.
func ParseTagList(s string) []string {
	return CleanTags(strings.Split(s, ","))
}

func normalizeTag(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}
