package poetbook

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/poetbook/collection"
)

func TestCardCache(t *testing.T) {
	now := time.Date(2025, time.August, 13, 0, 0, 0, 0, time.UTC)
	renders := 0
	c := NewCardCache(time.Hour)
	c.now = func() time.Time { return now }
	c.render = func(p collection.Poem, site string) ([]byte, error) {
		renders++
		return []byte(p.Title), nil
	}

	p := collection.Poem{ID: "a", Title: "First"}
	b, err := c.Card(p, "Site")
	require.NoError(t, err)
	assert.Equal(t, "First", string(b))

	_, _ = c.Card(p, "Site")
	assert.Equal(t, 1, renders, "second read should hit the cache")

	p.Title = "Edited"
	b, _ = c.Card(p, "Site")
	assert.Equal(t, "Edited", string(b))
	assert.Equal(t, 2, renders, "edited poem must re-render")

	now = now.Add(2 * time.Hour)
	_, _ = c.Card(p, "Site")
	assert.Equal(t, 3, renders, "expired entry must re-render")

	c.Invalidate()
	_, _ = c.Card(p, "Site")
	assert.Equal(t, 4, renders)

	_, _ = c.Card(collection.Poem{ID: "b", Title: "Second"}, "Site")
	require.Equal(t, 2, c.Len())
	c.Forget("a")
	assert.Equal(t, 1, c.Len())
	c.Forget("missing")
	assert.Equal(t, 1, c.Len())
}

func TestRenderCardWrapsLongTitles(t *testing.T) {
	lines := wrapText("one two three four five six seven eight nine ten eleven twelve", 10, 2)
	require.Len(t, lines, 2)
	assert.LessOrEqual(t, len(lines[1]), 10)
	assert.Contains(t, lines[1], "...")

	assert.Equal(t, []string{"short"}, wrapText("short", 10, 2))
	assert.Equal(t, "abcd...", truncate("abcdefghij", 7))
}
