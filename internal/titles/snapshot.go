package titles

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/justchokingaround/anidb/internal/anidb"
)

const (
	// SnapshotFile is the snapshot file name inside the cache directory
	SnapshotFile = "anime-titles.dat"

	snapshotMagic   = "ANIDBTI\x00"
	snapshotVersion = uint16(1)
	headerLen       = len(snapshotMagic) + 2
)

var errBadMagic = errors.New("not a titles snapshot")

// snapshotVersionError reports a snapshot written by another format version
type snapshotVersionError struct {
	got uint16
}

func (e *snapshotVersionError) Error() string {
	return fmt.Sprintf("snapshot format version %d, want %d", e.got, snapshotVersion)
}

type snapshotPayload struct {
	Entries []anidb.TitlesIndexEntry
	Source  []byte
}

// encodeSnapshot serializes index as magic, big endian version and a zstd
// compressed gob payload.
func encodeSnapshot(index anidb.TitlesIndex) ([]byte, error) {
	var payload bytes.Buffer
	if err := gob.NewEncoder(&payload).Encode(snapshotPayload{
		Entries: index.Entries,
		Source:  index.Source,
	}); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	defer enc.Close()

	out := make([]byte, headerLen, headerLen+payload.Len()/4)
	copy(out, snapshotMagic)
	binary.BigEndian.PutUint16(out[len(snapshotMagic):], snapshotVersion)
	return enc.EncodeAll(payload.Bytes(), out), nil
}

func decodeSnapshot(data []byte) (anidb.TitlesIndex, error) {
	if len(data) < headerLen || string(data[:len(snapshotMagic)]) != snapshotMagic {
		return anidb.TitlesIndex{}, errBadMagic
	}
	if v := binary.BigEndian.Uint16(data[len(snapshotMagic):headerLen]); v != snapshotVersion {
		return anidb.TitlesIndex{}, &snapshotVersionError{got: v}
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return anidb.TitlesIndex{}, fmt.Errorf("create zstd decoder: %w", err)
	}
	defer dec.Close()

	raw, err := dec.DecodeAll(data[headerLen:], nil)
	if err != nil {
		return anidb.TitlesIndex{}, fmt.Errorf("decompress snapshot: %w", err)
	}

	var payload snapshotPayload
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&payload); err != nil {
		return anidb.TitlesIndex{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return anidb.TitlesIndex{Entries: emptyIfNil(payload.Entries), Source: payload.Source}, nil
}

// emptyIfNil restores the empty slices gob drops, matching what the
// unpacker produces for a dump without entries or titles.
func emptyIfNil(entries []anidb.TitlesIndexEntry) []anidb.TitlesIndexEntry {
	if entries == nil {
		return []anidb.TitlesIndexEntry{}
	}
	for i := range entries {
		if entries[i].Titles == nil {
			entries[i].Titles = []anidb.TitleRecord{}
		}
	}
	return entries
}

// SnapshotCache stores the decoded index as a versioned binary snapshot
type SnapshotCache struct {
	path string
}

// NewSnapshotCache creates a snapshot tier backed by path
func NewSnapshotCache(path string) *SnapshotCache {
	return &SnapshotCache{path: path}
}

// Name implements Backend
func (c *SnapshotCache) Name() string {
	return "snapshot"
}

// Path returns the snapshot file location
func (c *SnapshotCache) Path() string {
	return c.path
}

// Load implements Backend
func (c *SnapshotCache) Load(ctx context.Context) LoadResult {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Miss(c.Name(), nil)
		}
		return Miss(c.Name(), err)
	}

	index, err := decodeSnapshot(data)
	if err != nil {
		return Miss(c.Name(), err)
	}
	return Hit(index)
}

// Save implements Backend
func (c *SnapshotCache) Save(ctx context.Context, index anidb.TitlesIndex) error {
	data, err := encodeSnapshot(index)
	if err != nil {
		return err
	}
	return writeFileAtomic(c.path, data)
}

// writeFileAtomic writes data next to path and renames it into place
func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Clear implements Clearer
func (c *SnapshotCache) Clear(ctx context.Context) error {
	return removeIfExists(c.path)
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
