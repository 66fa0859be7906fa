package collection

import (
	"context"
)

// Authorizer decides whether the caller may mutate the collection.
type Authorizer interface {
	IsAuthorized(ctx context.Context) (bool, error)
}

// AuthorizerFunc adapts a function to Authorizer.
type AuthorizerFunc func(ctx context.Context) (bool, error)

// IsAuthorized calls f(ctx).
func (f AuthorizerFunc) IsAuthorized(ctx context.Context) (bool, error) {
	return f(ctx)
}

// Guarded wraps a Store so that every mutator first consults an Authorizer.
// Reads are public and pass straight through.
type Guarded struct {
	store *Store
	auth  Authorizer
}

// NewGuarded returns store guarded by auth.
func NewGuarded(store *Store, auth Authorizer) *Guarded {
	return &Guarded{store: store, auth: auth}
}

func (g *Guarded) authorize(ctx context.Context) error {
	ok, err := g.auth.IsAuthorized(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return ErrDenied
	}
	return nil
}

// List returns every poem, newest first.
func (g *Guarded) List() []Poem { return g.store.List() }

// ListByTag returns the poems carrying tag, newest first.
func (g *Guarded) ListByTag(tag string) []Poem { return g.store.ListByTag(tag) }

// Tags returns the distinct tags in use.
func (g *Guarded) Tags() []string { return g.store.Tags() }

// Get returns the poem with id, or ErrNotFound.
func (g *Guarded) Get(id string) (Poem, error) { return g.store.Get(id) }

// Add creates a poem if the caller is authorized, else returns ErrDenied.
func (g *Guarded) Add(ctx context.Context, in Input) (Poem, error) {
	if err := g.authorize(ctx); err != nil {
		return Poem{}, err
	}
	return g.store.Add(ctx, in)
}

// Update merges patch into poem id if the caller is authorized.
func (g *Guarded) Update(ctx context.Context, id string, patch Patch) (Poem, error) {
	if err := g.authorize(ctx); err != nil {
		return Poem{}, err
	}
	return g.store.Update(ctx, id, patch)
}

// Delete removes poem id if the caller is authorized.
func (g *Guarded) Delete(ctx context.Context, id string) (bool, error) {
	if err := g.authorize(ctx); err != nil {
		return false, err
	}
	return g.store.Delete(ctx, id)
}

// Replace swaps in an imported collection if the caller is authorized.
func (g *Guarded) Replace(ctx context.Context, poems []Poem) error {
	if err := g.authorize(ctx); err != nil {
		return err
	}
	return g.store.Replace(ctx, poems)
}
