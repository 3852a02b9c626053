package review

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Resolver locates the live document behind a record's source
// identifier.
type Resolver interface {
	Resolve(sourceID string) (string, error)
}

// Chooser picks one path when a source identifier matches several
// documents. Returning an error leaves the record unresolved.
type Chooser func(sourceID string, matches []string) (string, error)

// GlobResolver finds documents by name anywhere under a root directory.
// Resolutions are cached so a session asks about each source at most
// once.
type GlobResolver struct {
	root    string
	chooser Chooser
	cache   map[string]string
}

// NewGlobResolver creates a resolver rooted at dir. chooser may be nil,
// in which case ambiguous identifiers are unresolvable.
func NewGlobResolver(dir string, chooser Chooser) *GlobResolver {
	return &GlobResolver{
		root:    dir,
		chooser: chooser,
		cache:   make(map[string]string),
	}
}

// Resolve maps a source identifier to a document path under the root.
func (g *GlobResolver) Resolve(sourceID string) (string, error) {
	if path, ok := g.cache[sourceID]; ok {
		return path, nil
	}

	// Identifiers taken from git diffs are already root-relative.
	direct := filepath.Join(g.root, sourceID)
	if info, err := os.Stat(direct); err == nil && info.Mode().IsRegular() {
		g.cache[sourceID] = direct
		return direct, nil
	}

	pattern := filepath.Join(g.root, "**", sourceID)
	hits, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return "", fmt.Errorf("search for %s: %w", sourceID, err)
	}

	var files []string
	for _, hit := range hits {
		if info, err := os.Stat(hit); err == nil && info.Mode().IsRegular() {
			files = append(files, hit)
		}
	}
	sort.Strings(files)

	switch len(files) {
	case 0:
		return "", fmt.Errorf("no document named %q under %s", sourceID, g.root)
	case 1:
		g.cache[sourceID] = files[0]
		return files[0], nil
	}

	if g.chooser == nil {
		return "", fmt.Errorf("%d documents named %q under %s", len(files), sourceID, g.root)
	}
	choice, err := g.chooser(sourceID, files)
	if err != nil {
		return "", fmt.Errorf("choose document for %q: %w", sourceID, err)
	}
	g.cache[sourceID] = choice
	return choice, nil
}
