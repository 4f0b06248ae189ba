package database

import (
	"time"

	"gorm.io/gorm"
)

// TitlesSnapshotID is the primary key of the single cached snapshot row
const TitlesSnapshotID = 1

// TitlesSnapshot holds the encoded titles index. There is at most one row.
type TitlesSnapshot struct {
	ID        uint      `gorm:"primaryKey"`
	Format    int       `gorm:"not null"`
	Entries   int       `gorm:"not null;default:0"`
	Data      []byte    `gorm:"not null"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP"`
}

// TableName overrides the table name
func (TitlesSnapshot) TableName() string {
	return "titles_snapshots"
}

// Migrate runs database migrations
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&TitlesSnapshot{},
	)
}
