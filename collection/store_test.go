package collection_test

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"regexp"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/poetbook/collection"
	"github.com/eringen/poetbook/storage"
	"github.com/eringen/poetbook/storage/mock"
)

// fakeClock hands out strictly increasing times one minute apart.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, time.January, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.t = c.t.Add(time.Minute)
	return c.t
}

func openStore(t *testing.T, kv storage.Storage, opts ...collection.Option) *collection.Store {
	t.Helper()
	s, err := collection.Open(context.Background(), kv, append([]collection.Option{collection.WithClock(newFakeClock().Now)}, opts...)...)
	require.NoError(t, err)
	return s
}

func storedPoems(t *testing.T, kv storage.Storage) []collection.Poem {
	t.Helper()
	raw, ok, err := kv.Get(context.Background(), storage.KeyCollection)
	require.NoError(t, err)
	require.True(t, ok, "collection was not persisted")
	var poems []collection.Poem
	require.NoError(t, json.Unmarshal([]byte(raw), &poems))
	return poems
}

func ids(poems []collection.Poem) []string {
	out := make([]string, len(poems))
	for i, p := range poems {
		out[i] = p.ID
	}
	return out
}

func TestOpenSeedsEmptyStorage(t *testing.T) {
	kv := storage.NewMemory()
	s := openStore(t, kv)

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []string{"whispers-of-yesterday", "fragments-of-hope", "the-dreamers-lament"}, ids(s.List()))
	assert.Equal(t, ids(collection.Seed()), ids(storedPoems(t, kv)))
}

func TestOpenRecoversFromCorruptStorage(t *testing.T) {
	kv := storage.NewMemory()
	require.NoError(t, kv.Set(context.Background(), storage.KeyCollection, `{not json`))

	s := openStore(t, kv)

	assert.Equal(t, 3, s.Len())
	if diff := cmp.Diff(collection.Seed(), storedPoems(t, kv)); diff != "" {
		t.Errorf("persisted seed mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenReseedsEmptyCollection(t *testing.T) {
	kv := storage.NewMemory()
	require.NoError(t, kv.Set(context.Background(), storage.KeyCollection, `[]`))

	s := openStore(t, kv)
	assert.Equal(t, 3, s.Len())
}

func TestOpenKeepsStoredCollection(t *testing.T) {
	kv := storage.NewMemory()
	stored := `[{"id":"only","title":"Only","subtitle":"","excerpt":"x","content":"x","dateCreated":"2024-05-01T00:00:00.000Z","tags":null}]`
	require.NoError(t, kv.Set(context.Background(), storage.KeyCollection, stored))

	s := openStore(t, kv)
	require.Equal(t, 1, s.Len())
	p, err := s.Get("only")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC), p.DateCreated.UTC())
	assert.NotNil(t, p.Tags)
}

func TestOpenFailsWhenStorageFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	kv := mock.NewMockStorage(ctrl)
	kv.EXPECT().Get(gomock.Any(), storage.KeyCollection).Return("", false, errors.New("disk gone"))

	_, err := collection.Open(context.Background(), kv)
	assert.Error(t, err)
}

func TestAddScenario(t *testing.T) {
	s := openStore(t, storage.NewMemory())

	p, err := s.Add(context.Background(), collection.Input{Title: "Test Poem", Content: "line one\nline two"})
	require.NoError(t, err)

	assert.Equal(t, "test-poem", p.ID)
	assert.Equal(t, "line one\nline two", p.Excerpt)
	assert.Equal(t, "", p.Subtitle)
	assert.Equal(t, []string{}, p.Tags)
	assert.Equal(t, 4, s.Len())
}

func TestAddThenGet(t *testing.T) {
	kv := storage.NewMemory()
	s := openStore(t, kv)
	slug := regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

	inputs := []collection.Input{
		{Title: "Night Train", Content: "one\ntwo\nthree\nfour", Tags: []string{" travel ", ""}},
		{Title: "  Spaced   Out  ", Subtitle: " sub ", Content: "  body  "},
		{Title: "???", Content: "nameless"},
		{Title: "Night Train", Content: "again"},
	}
	for _, in := range inputs {
		p, err := s.Add(context.Background(), in)
		require.NoError(t, err)
		assert.Regexp(t, slug, p.ID)

		got, err := s.Get(p.ID)
		require.NoError(t, err)
		if diff := cmp.Diff(p, got); diff != "" {
			t.Errorf("Get(%q) mismatch (-added +got):\n%s", p.ID, diff)
		}
	}

	got, err := s.Get("night-train")
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\nthree...", got.Excerpt)
	assert.Equal(t, []string{"travel"}, got.Tags)

	got, err = s.Get("spaced-out")
	require.NoError(t, err)
	assert.Equal(t, "Spaced   Out", got.Title)
	assert.Equal(t, "sub", got.Subtitle)
	assert.Equal(t, "body", got.Content)

	_, err = s.Get("untitled")
	assert.NoError(t, err)
	_, err = s.Get("night-train-2")
	assert.NoError(t, err)

	assert.Len(t, storedPoems(t, kv), 7)
}

func TestAddValidation(t *testing.T) {
	s := openStore(t, storage.NewMemory())

	_, err := s.Add(context.Background(), collection.Input{Title: "   ", Content: "x"})
	var ve *collection.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "title", ve.Field)

	_, err = s.Add(context.Background(), collection.Input{Title: "x", Content: "\n\t"})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "content", ve.Field)
	assert.True(t, collection.IsValidation(err))

	assert.Equal(t, 3, s.Len())
}

func TestAddDeleteRoundTrip(t *testing.T) {
	s := openStore(t, storage.NewMemory())
	before := s.List()

	p, err := s.Add(context.Background(), collection.Input{Title: "Ephemeral", Content: "here\nthen gone"})
	require.NoError(t, err)

	removed, err := s.Delete(context.Background(), p.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	if diff := cmp.Diff(before, s.List()); diff != "" {
		t.Errorf("collection changed after add+delete (-before +after):\n%s", diff)
	}
}

func TestDeleteMissing(t *testing.T) {
	s := openStore(t, storage.NewMemory())
	removed, err := s.Delete(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, 3, s.Len())
}

func TestUpdateEmptyPatchIsIdentity(t *testing.T) {
	s := openStore(t, storage.NewMemory())
	before, err := s.Get("fragments-of-hope")
	require.NoError(t, err)

	after, err := s.Update(context.Background(), "fragments-of-hope", collection.Patch{})
	require.NoError(t, err)

	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("empty patch changed record (-before +after):\n%s", diff)
	}
}

func TestUpdateMergesFields(t *testing.T) {
	kv := storage.NewMemory()
	s := openStore(t, kv)
	before, err := s.Get("whispers-of-yesterday")
	require.NoError(t, err)

	title := "Whispers Renamed"
	content := "new first\nnew second\nnew third\nnew fourth"
	after, err := s.Update(context.Background(), before.ID, collection.Patch{
		Title:   &title,
		Content: &content,
		Tags:    []string{"renamed"},
	})
	require.NoError(t, err)

	assert.Equal(t, before.ID, after.ID, "id must not follow the title")
	assert.Equal(t, before.DateCreated, after.DateCreated)
	assert.Equal(t, before.Subtitle, after.Subtitle)
	assert.Equal(t, title, after.Title)
	assert.Equal(t, "new first\nnew second\nnew third...", after.Excerpt)
	assert.Equal(t, []string{"renamed"}, after.Tags)

	for _, p := range storedPoems(t, kv) {
		if p.ID == before.ID {
			assert.Equal(t, title, p.Title)
		}
	}
}

func TestUpdateSubtitleKeepsExcerpt(t *testing.T) {
	s := openStore(t, storage.NewMemory())
	before, err := s.Get("the-dreamers-lament")
	require.NoError(t, err)

	sub := "revised"
	after, err := s.Update(context.Background(), before.ID, collection.Patch{Subtitle: &sub})
	require.NoError(t, err)
	assert.Equal(t, before.Excerpt, after.Excerpt)
	assert.Equal(t, "revised", after.Subtitle)
}

func TestUpdateMissingAndInvalid(t *testing.T) {
	s := openStore(t, storage.NewMemory())

	_, err := s.Update(context.Background(), "nope", collection.Patch{})
	assert.ErrorIs(t, err, collection.ErrNotFound)

	blank := " "
	_, err = s.Update(context.Background(), "fragments-of-hope", collection.Patch{Content: &blank})
	assert.True(t, collection.IsValidation(err))
}

func TestGetMissing(t *testing.T) {
	s := openStore(t, storage.NewMemory())
	_, err := s.Get("missing")
	assert.ErrorIs(t, err, collection.ErrNotFound)
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	s := openStore(t, storage.NewMemory())
	p, err := s.Get("fragments-of-hope")
	require.NoError(t, err)
	p.Tags[0] = "mutated"

	again, err := s.Get("fragments-of-hope")
	require.NoError(t, err)
	assert.Equal(t, "hope", again.Tags[0])
}

func TestListMostRecentFirst(t *testing.T) {
	base := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	offsets := rand.New(rand.NewSource(7)).Perm(12)

	i := 0
	clock := func() time.Time {
		ts := base.Add(time.Duration(offsets[i]) * time.Hour)
		i++
		return ts
	}
	s := openStore(t, storage.NewMemory(), collection.WithClock(clock))
	for range offsets {
		_, err := s.Add(context.Background(), collection.Input{Title: "Poem", Content: "x"})
		require.NoError(t, err)
	}

	list := s.List()
	require.Len(t, list, 15)
	for j := 1; j < len(list); j++ {
		assert.False(t, list[j].DateCreated.After(list[j-1].DateCreated), "list not sorted at %d", j)
	}
	assert.Equal(t, "the-dreamers-lament", list[len(list)-1].ID)
}

func TestListByTagAndTags(t *testing.T) {
	s := openStore(t, storage.NewMemory())

	assert.Equal(t, []string{"whispers-of-yesterday", "fragments-of-hope"}, ids(s.ListByTag("HOPE")))
	assert.Len(t, s.ListByTag(""), 3)
	assert.Empty(t, s.ListByTag("nothing"))
	assert.Equal(t, []string{
		"courage", "dreams", "healing", "hope", "memories", "perseverance", "reflection", "resilience",
	}, s.Tags())
}

func TestReplace(t *testing.T) {
	kv := storage.NewMemory()
	s := openStore(t, kv)

	imported := []collection.Poem{
		{ID: "a", Title: "A", Content: "a"},
		{ID: "b", Title: "", Content: ""},
	}
	require.NoError(t, s.Replace(context.Background(), imported))
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []string{"a", "b"}, ids(storedPoems(t, kv)))

	err := s.Replace(context.Background(), []collection.Poem{{ID: "x"}, {ID: "x"}})
	assert.True(t, collection.IsValidation(err))
	err = s.Replace(context.Background(), []collection.Poem{{Title: "no id"}})
	assert.True(t, collection.IsValidation(err))
	assert.Equal(t, 2, s.Len())
}

func TestFailedPersistLeavesCollectionUnchanged(t *testing.T) {
	ctrl := gomock.NewController(t)
	kv := mock.NewMockStorage(ctrl)
	gomock.InOrder(
		kv.EXPECT().Get(gomock.Any(), storage.KeyCollection).Return("", false, nil),
		kv.EXPECT().Set(gomock.Any(), storage.KeyCollection, gomock.Any()).Return(nil),
	)
	s := openStore(t, kv)

	kv.EXPECT().Set(gomock.Any(), storage.KeyCollection, gomock.Any()).Return(errors.New("quota exceeded")).Times(3)

	_, err := s.Add(context.Background(), collection.Input{Title: "Lost", Content: "x"})
	assert.Error(t, err)

	title := "Renamed"
	_, err = s.Update(context.Background(), "fragments-of-hope", collection.Patch{Title: &title})
	assert.Error(t, err)

	removed, err := s.Delete(context.Background(), "fragments-of-hope")
	assert.Error(t, err)
	assert.False(t, removed)

	assert.Equal(t, 3, s.Len())
	p, err := s.Get("fragments-of-hope")
	require.NoError(t, err)
	assert.Equal(t, "Fragments of Hope", p.Title)
	_, err = s.Get("lost")
	assert.ErrorIs(t, err, collection.ErrNotFound)
}

func TestDeleteMissingDoesNotWrite(t *testing.T) {
	ctrl := gomock.NewController(t)
	kv := mock.NewMockStorage(ctrl)
	kv.EXPECT().Get(gomock.Any(), storage.KeyCollection).Return(`[{"id":"kept","title":"Kept","content":"x","dateCreated":"2025-01-01T00:00:00Z","tags":[]}]`, true, nil)
	s := openStore(t, kv)

	removed, err := s.Delete(context.Background(), "other")
	require.NoError(t, err)
	assert.False(t, removed)
}
