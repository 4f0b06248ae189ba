package titles

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/justchokingaround/anidb/internal/anidb"
)

// DocumentFile is the raw titles document name inside the cache directory
const DocumentFile = "anime-titles.xml"

// DocumentCache keeps a verbatim copy of the upstream titles document and
// decodes it again on every load.
type DocumentCache struct {
	path string
}

// NewDocumentCache creates a document tier backed by path
func NewDocumentCache(path string) *DocumentCache {
	return &DocumentCache{path: path}
}

// Name implements Backend
func (c *DocumentCache) Name() string {
	return "document"
}

// Path returns the document file location
func (c *DocumentCache) Path() string {
	return c.path
}

// Load implements Backend
func (c *DocumentCache) Load(ctx context.Context) LoadResult {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Miss(c.Name(), nil)
		}
		return Miss(c.Name(), err)
	}

	entries, err := anidb.UnpackTitles(data)
	if err != nil {
		return Miss(c.Name(), err)
	}
	return Hit(anidb.TitlesIndex{Entries: entries, Source: data})
}

// Save writes index.Source verbatim. Only an index without source bytes is
// re-serialized from its entries.
func (c *DocumentCache) Save(ctx context.Context, index anidb.TitlesIndex) error {
	data := index.Source
	if len(data) == 0 {
		var err error
		data, err = anidb.MarshalTitles(index.Entries)
		if err != nil {
			return err
		}
	}
	return writeFileAtomic(c.path, data)
}

// Clear implements Clearer
func (c *DocumentCache) Clear(ctx context.Context) error {
	return removeIfExists(c.path)
}
