package views

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"

	"github.com/eringen/poetbook/collection"
)

var testCfg = SiteConfig{
	Name:        "Verses",
	URL:         "https://poems.example.com",
	Description: "A small collection",
	Author:      "A. Poet",
}

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

func testPoem() collection.Poem {
	return collection.Poem{
		ID:          "night-<walk>",
		Title:       `Night <Walk> & "Stars"`,
		Subtitle:    "A short one",
		Excerpt:     "First line\nSecond line",
		Content:     "First line\nSecond line\n\nThird *line*",
		DateCreated: time.Date(2025, time.August, 13, 0, 0, 0, 0, time.UTC),
		Tags:        []string{"night", "stars"},
	}
}

func TestHomeEscapesAndLinks(t *testing.T) {
	got := renderString(t, Home(testCfg, []collection.Poem{testPoem()}, "", []string{"night", "stars"}))
	if strings.Contains(got, "<Walk>") {
		t.Errorf("Home did not escape title: %q", got)
	}
	if !strings.Contains(got, `href="/poems/night-%3Cwalk%3E/"`) {
		t.Errorf("Home missing escaped poem link")
	}
	if !strings.Contains(got, `href="/?tag=night"`) {
		t.Errorf("Home missing tag link")
	}
	if !strings.Contains(got, "August 13, 2025") {
		t.Errorf("Home missing date")
	}
	if !strings.Contains(got, `<p class="stanza">First line<br/>`) {
		t.Errorf("Home missing rendered excerpt")
	}
}

func TestHomeEmpty(t *testing.T) {
	got := renderString(t, Home(testCfg, nil, "", nil))
	if !strings.Contains(got, "No poems yet.") {
		t.Errorf("Home(nil) missing empty state: %q", got)
	}
}

func TestHomeActiveTag(t *testing.T) {
	got := renderString(t, Home(testCfg, nil, "night", []string{"night"}))
	if !strings.Contains(got, "tag tag-active") || !strings.Contains(got, "All poems") {
		t.Errorf("Home did not mark active tag: %q", got)
	}
}

func TestPoemPage(t *testing.T) {
	other := testPoem()
	other.ID = "other"
	other.Title = "Other"
	got := renderString(t, Poem(testCfg, testPoem(), []collection.Poem{other}))
	for _, want := range []string{
		`<em>line</em>`,
		`og:type" content="article"`,
		`https://poems.example.com/poems/night-%3Cwalk%3E/card.png`,
		`More poems`,
		`href="/poems/other/"`,
		`"@type":"CreativeWork"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Poem page missing %q", want)
		}
	}
}

func TestAdminLogin(t *testing.T) {
	got := renderString(t, AdminLogin(testCfg, true, "tok"))
	if !strings.Contains(got, "Incorrect password.") {
		t.Errorf("AdminLogin missing error")
	}
	if !strings.Contains(got, `name="_csrf" value="tok"`) {
		t.Errorf("AdminLogin missing csrf field")
	}
	if strings.Contains(renderString(t, AdminLogin(testCfg, false, "tok")), "Incorrect password.") {
		t.Errorf("AdminLogin shows error without a failed attempt")
	}
}

func TestAdminDashboard(t *testing.T) {
	now := time.Date(2025, time.August, 16, 0, 0, 0, 0, time.UTC)
	got := renderString(t, AdminDashboard(testCfg, Dashboard{
		Poems:          []collection.Poem{testPoem()},
		Message:        "Poem saved.",
		CSRFToken:      "tok",
		Remaining:      29 * time.Minute,
		RecheckSeconds: 60,
		Now:            now,
	}))
	for _, want := range []string{
		"Admin mode",
		`data-recheck="60"`,
		`data-remaining="1740"`,
		"29 minutes",
		"3 days ago",
		"Poem saved.",
		`name="_method" value="DELETE"`,
		`action="/admin/import/"`,
		`href="/admin/export/"`,
		`src="/public/poetbook.js"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Dashboard missing %q", want)
		}
	}
}

func TestAdminForm(t *testing.T) {
	got := renderString(t, AdminForm(testCfg, FormFor(testPoem(), "tok")))
	if !strings.Contains(got, "Edit poem") {
		t.Errorf("AdminForm missing edit heading")
	}
	if !strings.Contains(got, `name="editing_id" value="night-&lt;walk&gt;"`) {
		t.Errorf("AdminForm missing editing id: %q", got)
	}
	if !strings.Contains(got, `value="night, stars"`) {
		t.Errorf("AdminForm missing tags")
	}

	got = renderString(t, AdminForm(testCfg, PoemForm{Error: "title is required"}))
	if !strings.Contains(got, "New poem") || !strings.Contains(got, "title is required") {
		t.Errorf("AdminForm new/error state wrong: %q", got)
	}
}

func TestErrorPages(t *testing.T) {
	if got := renderString(t, NotFound(testCfg)); !strings.Contains(got, "Not found") {
		t.Errorf("NotFound = %q", got)
	}
	if got := renderString(t, ServerError(testCfg)); !strings.Contains(got, "Something went wrong") {
		t.Errorf("ServerError = %q", got)
	}
}

func TestFilterRelated(t *testing.T) {
	a := collection.Poem{ID: "a", Tags: []string{"sea"}}
	b := collection.Poem{ID: "b", Tags: []string{"SEA"}}
	c := collection.Poem{ID: "c", Tags: []string{"sky"}}
	got := FilterRelated(a, []collection.Poem{a, b, c})
	if len(got) != 1 || got[0].ID != "b" {
		t.Errorf("FilterRelated = %v", got)
	}
}

func TestBuildURL(t *testing.T) {
	if got := BuildURL("https://x.test", "poems", "a"); got != "https://x.test/poems/a/" {
		t.Errorf("BuildURL = %q", got)
	}
	if got := BuildURL("https://x.test/"); got != "https://x.test/" {
		t.Errorf("BuildURL root = %q", got)
	}
}
