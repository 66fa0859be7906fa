package collection

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eringen/poetbook/storage"
)

// fallbackID is used when a title contains nothing a slug can keep.
const fallbackID = "untitled"

// Store holds the poem collection. The whole collection is written back to
// storage under storage.KeyCollection after every successful mutation; a
// mutation whose write fails leaves the in-memory collection unchanged.
type Store struct {
	mu    sync.RWMutex
	kv    storage.Storage
	poems []Poem

	now  func() time.Time
	log  logrus.FieldLogger
	seed func() []Poem
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for DateCreated.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Store) {
		s.log = log
	}
}

// WithSeed replaces the default seed collection.
func WithSeed(seed func() []Poem) Option {
	return func(s *Store) {
		s.seed = seed
	}
}

// Open loads the collection from kv. When the stored value is absent, empty
// or cannot be decoded, the seed collection is installed and persisted.
func Open(ctx context.Context, kv storage.Storage, opts ...Option) (*Store, error) {
	s := &Store{
		kv:   kv,
		now:  time.Now,
		log:  discardLogger(),
		seed: Seed,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func (s *Store) load(ctx context.Context) error {
	raw, ok, err := s.kv.Get(ctx, storage.KeyCollection)
	if err != nil {
		return fmt.Errorf("load collection: %w", err)
	}

	var poems []Poem
	if ok {
		if err := json.Unmarshal([]byte(raw), &poems); err != nil {
			s.log.WithError(fmt.Errorf("%w: %v", ErrStorageCorrupt, err)).
				WithField("key", storage.KeyCollection).
				Warn("discarding stored collection, restoring seed poems")
			poems = nil
		}
	}

	if len(poems) > 0 {
		for i := range poems {
			if poems[i].Tags == nil {
				poems[i].Tags = []string{}
			}
		}
		s.poems = poems
		return nil
	}

	seed := s.seed()
	if err := s.persist(ctx, seed); err != nil {
		return fmt.Errorf("persist seed collection: %w", err)
	}
	s.poems = seed
	s.log.WithField("count", len(seed)).Info("installed seed collection")
	return nil
}

// persist writes poems as the whole collection value.
func (s *Store) persist(ctx context.Context, poems []Poem) error {
	b, err := json.Marshal(poems)
	if err != nil {
		return fmt.Errorf("encode collection: %w", err)
	}
	return s.kv.Set(ctx, storage.KeyCollection, string(b))
}

// Len returns the number of poems.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.poems)
}

// List returns copies of all poems, most recently created first. Poems with
// equal creation times keep their insertion order.
func (s *Store) List() []Poem {
	s.mu.RLock()
	out := make([]Poem, len(s.poems))
	for i, p := range s.poems {
		out[i] = p.clone()
	}
	s.mu.RUnlock()

	slices.SortStableFunc(out, func(a, b Poem) int {
		return b.DateCreated.Compare(a.DateCreated)
	})
	return out
}

// ListByTag is List filtered to poems carrying tag. An empty tag lists all.
func (s *Store) ListByTag(tag string) []Poem {
	all := s.List()
	if strings.TrimSpace(tag) == "" {
		return all
	}
	var out []Poem
	for _, p := range all {
		if p.HasTag(tag) {
			out = append(out, p)
		}
	}
	return out
}

// Tags returns the sorted, de-duplicated, lower-cased tags of every poem.
func (s *Store) Tags() []string {
	s.mu.RLock()
	set := make(map[string]struct{})
	for _, p := range s.poems {
		for _, t := range p.Tags {
			if t = normalizeTag(t); t != "" {
				set[t] = struct{}{}
			}
		}
	}
	s.mu.RUnlock()

	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Get returns a copy of the poem with the given id, or ErrNotFound.
func (s *Store) Get(id string) (Poem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(id); i >= 0 {
		return s.poems[i].clone(), nil
	}
	return Poem{}, ErrNotFound
}

func (s *Store) indexOf(id string) int {
	for i, p := range s.poems {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// Add validates in, derives the id and excerpt, stamps DateCreated and
// appends the new poem.
func (s *Store) Add(ctx context.Context, in Input) (Poem, error) {
	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)
	if title == "" {
		return Poem{}, &ValidationError{Field: "title"}
	}
	if content == "" {
		return Poem{}, &ValidationError{Field: "content"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := Poem{
		ID:          s.uniqueID(Slugify(title)),
		Title:       title,
		Subtitle:    strings.TrimSpace(in.Subtitle),
		Excerpt:     Excerpt(content),
		Content:     content,
		DateCreated: s.now().UTC(),
		Tags:        CleanTags(in.Tags),
	}

	next := append(slices.Clip(s.poems), p)
	if err := s.persist(ctx, next); err != nil {
		return Poem{}, fmt.Errorf("add %s: %w", p.ID, err)
	}
	s.poems = next
	s.log.WithField("id", p.ID).Info("poem added")
	return p.clone(), nil
}

// uniqueID appends -2, -3, ... to base until no poem uses it.
func (s *Store) uniqueID(base string) string {
	if base == "" {
		base = fallbackID
	}
	candidate := base
	for n := 2; s.indexOf(candidate) >= 0; n++ {
		candidate = base + "-" + strconv.Itoa(n)
	}
	return candidate
}

// Update merges patch onto the poem with the given id. The excerpt is
// recomputed whenever the patch carries content, so it never goes stale.
func (s *Store) Update(ctx context.Context, id string, patch Patch) (Poem, error) {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return Poem{}, &ValidationError{Field: "title"}
	}
	if patch.Content != nil && strings.TrimSpace(*patch.Content) == "" {
		return Poem{}, &ValidationError{Field: "content"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Poem{}, ErrNotFound
	}
	if patch.IsEmpty() {
		return s.poems[i].clone(), nil
	}

	p := s.poems[i].clone()
	if patch.Title != nil {
		p.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Subtitle != nil {
		p.Subtitle = strings.TrimSpace(*patch.Subtitle)
	}
	if patch.Content != nil {
		p.Content = strings.TrimSpace(*patch.Content)
		p.Excerpt = Excerpt(p.Content)
	}
	if patch.Tags != nil {
		p.Tags = CleanTags(patch.Tags)
	}

	next := slices.Clone(s.poems)
	next[i] = p
	if err := s.persist(ctx, next); err != nil {
		return Poem{}, fmt.Errorf("update %s: %w", id, err)
	}
	s.poems = next
	s.log.WithField("id", id).Info("poem updated")
	return p.clone(), nil
}

// Delete removes the poem with the given id and reports whether one was
// removed. Nothing is written when no poem matches.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false, nil
	}
	next := slices.Delete(slices.Clone(s.poems), i, i+1)
	if err := s.persist(ctx, next); err != nil {
		return false, fmt.Errorf("delete %s: %w", id, err)
	}
	s.poems = next
	s.log.WithField("id", id).Info("poem deleted")
	return true, nil
}

// Replace swaps in a whole collection, as an import does. Records are taken
// as given apart from the id checks: every id must be present and unique.
func (s *Store) Replace(ctx context.Context, poems []Poem) error {
	seen := make(map[string]struct{}, len(poems))
	next := make([]Poem, len(poems))
	for i, p := range poems {
		if p.ID == "" {
			return &ValidationError{Field: "id", Reason: fmt.Sprintf("record %d has no id", i)}
		}
		if _, dup := seen[p.ID]; dup {
			return &ValidationError{Field: "id", Reason: fmt.Sprintf("duplicate id %q", p.ID)}
		}
		seen[p.ID] = struct{}{}
		next[i] = p.clone()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persist(ctx, next); err != nil {
		return fmt.Errorf("replace collection: %w", err)
	}
	s.poems = next
	s.log.WithField("count", len(next)).Info("collection replaced")
	return nil
}
