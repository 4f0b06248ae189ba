package anidb

import (
	"fmt"
	"time"
)

// AnimeRecord holds the metadata for a single anime work
type AnimeRecord struct {
	AID          int             `json:"aid" yaml:"aid"`
	Type         string          `json:"type" yaml:"type"`
	EpisodeCount int             `json:"episode_count" yaml:"episode_count"`
	StartDate    *Date           `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	EndDate      *Date           `json:"end_date,omitempty" yaml:"end_date,omitempty"`
	Titles       []TitleRecord   `json:"titles" yaml:"titles"`
	Episodes     []EpisodeRecord `json:"episodes" yaml:"episodes"`
}

// TitleRecord is one title of a work (main, official, synonym, ...)
type TitleRecord struct {
	Text string `json:"text" yaml:"text"`
	Type string `json:"type" yaml:"type"`
	Lang string `json:"lang" yaml:"lang"`
}

// EpisodeRecord holds an episode entry.
//
// EpNo is a concatenation of a type prefix and the episode number. It is
// unique among the episodes of one anime and serves as its identifier.
// Type is the numeric episode type code and LengthMinutes the runtime.
type EpisodeRecord struct {
	EpNo          string               `json:"epno" yaml:"epno"`
	Type          int                  `json:"type" yaml:"type"`
	LengthMinutes int                  `json:"length" yaml:"length"`
	Titles        []EpisodeTitleRecord `json:"titles" yaml:"titles"`
}

// EpisodeTitleRecord is one localized episode title
type EpisodeTitleRecord struct {
	Text string `json:"text" yaml:"text"`
	Lang string `json:"lang" yaml:"lang"`
}

// TitlesIndexEntry is the lightweight per-work entry of the titles dump
type TitlesIndexEntry struct {
	AID    int           `json:"aid" yaml:"aid"`
	Titles []TitleRecord `json:"titles" yaml:"titles"`
}

// TitlesIndex is the full titles dump, the unit that gets cached.
//
// Source holds the upstream document the entries were decoded from, when it
// is known. It is carried along so document caches can store it verbatim.
type TitlesIndex struct {
	Entries []TitlesIndexEntry
	Source  []byte
}

// Len returns the number of works in the index
func (idx TitlesIndex) Len() int {
	return len(idx.Entries)
}

// Lookup finds the entry for aid
func (idx TitlesIndex) Lookup(aid int) (TitlesIndexEntry, bool) {
	for _, e := range idx.Entries {
		if e.AID == aid {
			return e, true
		}
	}
	return TitlesIndexEntry{}, false
}

// MainTitle returns the title tagged "main"
func (a AnimeRecord) MainTitle() (string, error) {
	return mainTitle(a.AID, a.Titles)
}

// MainTitle returns the title tagged "main"
func (e TitlesIndexEntry) MainTitle() (string, error) {
	return mainTitle(e.AID, e.Titles)
}

func mainTitle(aid int, titles []TitleRecord) (string, error) {
	for _, t := range titles {
		if t.Type == "main" {
			return t.Text, nil
		}
	}
	return "", &MissingMainTitleError{AID: aid}
}

// Date is a calendar date without time of day
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

const dateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date. Anything else yields nil.
func ParseDate(s string) *Date {
	if len(s) != len(dateLayout) {
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil
	}
	return &Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalText implements encoding.TextMarshaler
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Date) UnmarshalText(b []byte) error {
	parsed := ParseDate(string(b))
	if parsed == nil {
		return fmt.Errorf("invalid date %q", string(b))
	}
	*d = *parsed
	return nil
}
