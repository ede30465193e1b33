// Package storage serves the static informational pages from an afero
// filesystem, the embedded web/public tree in production and an in-memory
// filesystem in tests.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"

	"github.com/spf13/afero"
)

// ErrPageNotFound is returned when no page exists under a name.
var ErrPageNotFound = errors.New("page not found")

var pageName = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// PageStore reads HTML fragments named <name>.html from a filesystem.
type PageStore struct {
	fs afero.Fs
}

// NewPageStore creates a PageStore over fsys. Wrap it in afero.NewReadOnlyFs
// when the source must not change.
func NewPageStore(fsys afero.Fs) *PageStore {
	return &PageStore{fs: fsys}
}

// NewEmbeddedPageStore exposes an io/fs tree, such as an embed.FS, as a
// read-only PageStore.
func NewEmbeddedPageStore(fsys fs.FS) *PageStore {
	return NewPageStore(afero.NewReadOnlyFs(afero.FromIOFS{FS: fsys}))
}

// Page returns the content of the named page. Names are restricted to
// lowercase slugs, so a request can never escape the page directory.
func (s *PageStore) Page(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !pageName.MatchString(name) {
		return nil, ErrPageNotFound
	}

	content, err := afero.ReadFile(s.fs, name+".html")
	if err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, fs.ErrNotExist) {
			return nil, ErrPageNotFound
		}
		return nil, fmt.Errorf("failed to read page %q: %w", name, err)
	}
	return content, nil
}
