// Package verse renders poem text as HTML. Blank lines separate stanzas,
// every other line break is kept, and *italic* / **bold** emphasis is
// supported. Everything else is escaped.
package verse

import (
	"bytes"
	"context"
	"html"
	"io"
	"regexp"
	"strings"

	"github.com/a-h/templ"
)

var (
	reBold             = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reBoldUnderscore   = regexp.MustCompile(`__(.+?)__`)
	reItalic           = regexp.MustCompile(`\*([^*]+)\*`)
	reItalicUnderscore = regexp.MustCompile(`\b_([^_]+)_\b`)
	// "* * *", "***", "~" and "---" on their own line mark a section break.
	reSectionBreak = regexp.MustCompile(`^\s*(?:\*\s*\*\s*\*|~|-{3,})\s*$`)
	reMarkers      = regexp.MustCompile(`\*\*|__|\*|\b_|_\b`)
)

// Verse returns a templ.Component that renders text as stanzas.
func Verse(text string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		Render(&buf, text)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// Render writes the HTML for text to buf.
func Render(buf *bytes.Buffer, text string) {
	var stanza []string
	flush := func() {
		if len(stanza) == 0 {
			return
		}
		buf.WriteString(`<p class="stanza">`)
		for i, line := range stanza {
			if i > 0 {
				buf.WriteString("<br/>\n")
			}
			buf.WriteString(line)
		}
		buf.WriteString("</p>\n")
		stanza = stanza[:0]
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimRight(raw, "\r \t")
		switch {
		case strings.TrimSpace(line) == "":
			flush()
		case reSectionBreak.MatchString(line):
			flush()
			buf.WriteString(`<hr class="section-break"/>` + "\n")
		default:
			stanza = append(stanza, indent(line)+FormatInline(strings.TrimSpace(line)))
		}
	}
	flush()
}

// indent keeps leading whitespace visible; two spaces or one tab per step.
func indent(line string) string {
	n := 0
	for _, r := range line {
		switch r {
		case ' ':
			n++
		case '\t':
			n += 2
		default:
			return strings.Repeat("&emsp;", n/2)
		}
	}
	return ""
}

// FormatInline escapes s and applies bold and italic emphasis.
func FormatInline(s string) string {
	escaped := html.EscapeString(s)
	escaped = reBold.ReplaceAllString(escaped, "<strong>$1</strong>")
	escaped = reBoldUnderscore.ReplaceAllString(escaped, "<strong>$1</strong>")
	escaped = reItalic.ReplaceAllString(escaped, "<em>$1</em>")
	escaped = reItalicUnderscore.ReplaceAllString(escaped, "<em>$1</em>")
	return escaped
}

// PlainText strips emphasis markers and collapses the text to single spaces,
// for feed descriptions, meta tags and share cards.
func PlainText(s string) string {
	return strings.Join(strings.Fields(reMarkers.ReplaceAllString(s, "")), " ")
}

// Lines returns the non-blank lines of text with emphasis markers removed.
func Lines(text string) []string {
	var out []string
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(reMarkers.ReplaceAllString(raw, ""))
		if line == "" || reSectionBreak.MatchString(raw) {
			continue
		}
		out = append(out, line)
	}
	return out
}
