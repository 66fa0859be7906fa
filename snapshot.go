package poetbook

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/poetbook/collection"
	"github.com/eringen/poetbook/views"
)

// Snapshot writes the public site to dir as static files: the home page, one
// page and share card per poem, poems.json, feed.xml, sitemap.xml and the
// stylesheet. Admin pages are not included. Open must have been called.
func (a *App) Snapshot(ctx context.Context, dir string) error {
	if a.Store == nil {
		return fmt.Errorf("poetbook: snapshot: collection not open")
	}
	poems := a.Store.List()
	log := a.log.WithField("dir", dir)

	if err := a.writeComponent(ctx, filepath.Join(dir, "index.html"), a.Views.Home(poems, "", a.Store.Tags())); err != nil {
		return err
	}
	written := 0
	for _, p := range poems {
		if !safePathSegment(p.ID) {
			log.WithField("id", p.ID).Warn("skipping poem with an id that is not a safe file name")
			continue
		}
		poemDir := filepath.Join(dir, "poems", p.ID)
		page := a.Views.Poem(p, views.FilterRelated(p, poems))
		if err := a.writeComponent(ctx, filepath.Join(poemDir, "index.html"), page); err != nil {
			return err
		}
		card, err := renderCard(p, a.Config.Name)
		if err != nil {
			return fmt.Errorf("poetbook: card for %s: %w", p.ID, err)
		}
		if err := writeFile(filepath.Join(poemDir, "card.png"), card); err != nil {
			return err
		}
		written++
	}

	if err := a.writeWith(filepath.Join(dir, "poems.json"), func(w io.Writer) error {
		return collection.Encode(w, poems, collection.FormatJSON)
	}); err != nil {
		return err
	}
	if err := a.writeWith(filepath.Join(dir, "feed.xml"), func(w io.Writer) error {
		return a.writeRSS(w, poems)
	}); err != nil {
		return err
	}
	if err := a.writeWith(filepath.Join(dir, "sitemap.xml"), func(w io.Writer) error {
		return a.writeSitemap(w, poems)
	}); err != nil {
		return err
	}
	if err := copyAssets(filepath.Join(dir, "public")); err != nil {
		return err
	}
	log.WithField("poems", written).Info("snapshot written")
	return nil
}

func (a *App) writeComponent(ctx context.Context, path string, c templ.Component) error {
	return a.writeWith(path, func(w io.Writer) error {
		return c.Render(ctx, w)
	})
}

func (a *App) writeWith(path string, fn func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		return fmt.Errorf("poetbook: render %s: %w", filepath.Base(path), err)
	}
	return writeFile(path, buf.Bytes())
}

func writeFile(path string, b []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("poetbook: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("poetbook: %w", err)
	}
	return nil
}

func copyAssets(dir string) error {
	assets, err := fs.Sub(EmbeddedAssets, "embedded")
	if err != nil {
		return err
	}
	return fs.WalkDir(assets, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		b, err := fs.ReadFile(assets, p)
		if err != nil {
			return err
		}
		return writeFile(filepath.Join(dir, filepath.FromSlash(p)), b)
	})
}

// safePathSegment reports whether id can be used as a single directory name.
func safePathSegment(id string) bool {
	return id != "" && id != "." && filepath.IsLocal(id) && !strings.ContainsAny(id, `/\`)
}
