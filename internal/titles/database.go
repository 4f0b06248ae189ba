package titles

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/justchokingaround/anidb/internal/anidb"
	"github.com/justchokingaround/anidb/internal/database"
)

// DatabaseCache stores the snapshot encoding in a single SQLite row
type DatabaseCache struct {
	db *gorm.DB
}

// NewDatabaseCache creates a database tier on an opened connection
func NewDatabaseCache(db *gorm.DB) *DatabaseCache {
	return &DatabaseCache{db: db}
}

// Name implements Backend
func (c *DatabaseCache) Name() string {
	return "database"
}

// Load implements Backend
func (c *DatabaseCache) Load(ctx context.Context) LoadResult {
	var row database.TitlesSnapshot
	err := c.db.WithContext(ctx).First(&row, database.TitlesSnapshotID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Miss(c.Name(), nil)
		}
		return Miss(c.Name(), err)
	}

	if row.Format != int(snapshotVersion) {
		return Miss(c.Name(), &snapshotVersionError{got: uint16(row.Format)})
	}
	index, err := decodeSnapshot(row.Data)
	if err != nil {
		return Miss(c.Name(), err)
	}
	return Hit(index)
}

// Save implements Backend
func (c *DatabaseCache) Save(ctx context.Context, index anidb.TitlesIndex) error {
	data, err := encodeSnapshot(index)
	if err != nil {
		return err
	}

	row := database.TitlesSnapshot{
		ID:      database.TitlesSnapshotID,
		Format:  int(snapshotVersion),
		Entries: index.Len(),
		Data:    data,
	}
	err = c.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("store titles snapshot: %w", err)
	}
	return nil
}

// Clear implements Clearer
func (c *DatabaseCache) Clear(ctx context.Context) error {
	return c.db.WithContext(ctx).Delete(&database.TitlesSnapshot{}, database.TitlesSnapshotID).Error
}
