package titles

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/justchokingaround/anidb/internal/anidb"
)

// Match is one search hit: the entry and the title that matched best
type Match struct {
	Entry anidb.TitlesIndexEntry
	Title anidb.TitleRecord
	Score int
	Exact bool
}

// titleSource flattens every title of an index for fuzzy matching
type titleSource struct {
	entries []int
	titles  []anidb.TitleRecord
}

func (s titleSource) String(i int) string {
	return s.titles[i].Text
}

func (s titleSource) Len() int {
	return len(s.titles)
}

func newTitleSource(index anidb.TitlesIndex) titleSource {
	var src titleSource
	for i, e := range index.Entries {
		for _, t := range e.Titles {
			src.entries = append(src.entries, i)
			src.titles = append(src.titles, t)
		}
	}
	return src
}

// Search ranks the works of index against query. Each work appears once,
// with its best matching title. Case-insensitive exact matches come first.
// A limit <= 0 returns every match.
func Search(index anidb.TitlesIndex, query string, limit int) []Match {
	query = strings.TrimSpace(query)
	if query == "" || index.Len() == 0 {
		return nil
	}

	src := newTitleSource(index)
	found := fuzzy.FindFrom(query, src)

	best := make(map[int]int, len(found))
	matches := make([]Match, 0, len(found))
	for _, f := range found {
		entryIdx := src.entries[f.Index]
		title := src.titles[f.Index]
		m := Match{
			Entry: index.Entries[entryIdx],
			Title: title,
			Score: f.Score,
			Exact: strings.EqualFold(title.Text, query),
		}
		if pos, ok := best[entryIdx]; ok {
			if better(m, matches[pos]) {
				matches[pos] = m
			}
			continue
		}
		best[entryIdx] = len(matches)
		matches = append(matches, m)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return better(matches[i], matches[j])
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

func better(a, b Match) bool {
	if a.Exact != b.Exact {
		return a.Exact
	}
	return a.Score > b.Score
}
