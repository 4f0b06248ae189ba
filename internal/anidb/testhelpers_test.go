package anidb

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func loadTestdata(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

// evangelion is the record encoded in testdata/anime.xml
var evangelion = AnimeRecord{
	AID:          22,
	Type:         "TV Series",
	EpisodeCount: 26,
	StartDate:    &Date{Year: 1995, Month: time.October, Day: 4},
	EndDate:      &Date{Year: 1996, Month: time.March, Day: 27},
	Titles: []TitleRecord{
		{Text: "Shinseiki Evangelion", Type: "main", Lang: "x-jat"},
		{Text: "Neon Genesis Evangelion", Type: "official", Lang: "en"},
	},
	Episodes: []EpisodeRecord{
		{
			EpNo:          "1",
			Type:          1,
			LengthMinutes: 25,
			Titles: []EpisodeTitleRecord{
				{Text: "使徒, 襲来", Lang: "ja"},
				{Text: "Angel Attack!", Lang: "en"},
				{Text: "Shito, Shuurai", Lang: "x-jat"},
			},
		},
		{
			EpNo:          "S1",
			Type:          2,
			LengthMinutes: 75,
			Titles: []EpisodeTitleRecord{
				{Text: "Revival of Evangelion Extras Disc", Lang: "en"},
			},
		},
	},
}

// titlesEntries is the index encoded in testdata/titles.xml
var titlesEntries = []TitlesIndexEntry{
	{
		AID: 22,
		Titles: []TitleRecord{
			{Text: "Neon Genesis Evangelion", Type: "official", Lang: "en"},
			{Text: "Shinseiki Evangelion", Type: "main", Lang: "x-jat"},
		},
	},
	{
		AID: 1,
		Titles: []TitleRecord{
			{Text: "Seikai no Monshou", Type: "main", Lang: "x-jat"},
			{Text: "Crest of the Stars", Type: "official", Lang: "en"},
			{Text: "星界之纹章", Type: "syn", Lang: "zh-Hans"},
		},
	},
}
