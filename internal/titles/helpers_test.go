package titles

import (
	"context"
	"errors"

	"github.com/stretchr/testify/mock"

	"github.com/justchokingaround/anidb/internal/anidb"
)

// mockTier is a Backend whose calls are recorded with testify/mock
type mockTier struct {
	mock.Mock
	name string
}

func newMockTier(name string) *mockTier {
	return &mockTier{name: name}
}

func (m *mockTier) Name() string {
	return m.name
}

func (m *mockTier) Load(ctx context.Context) LoadResult {
	args := m.Called(ctx)
	return args.Get(0).(LoadResult)
}

func (m *mockTier) Save(ctx context.Context, index anidb.TitlesIndex) error {
	args := m.Called(ctx, index)
	return args.Error(0)
}

// memoryTier is a Backend holding the index in memory
type memoryTier struct {
	name  string
	index *anidb.TitlesIndex
	saves int
}

func (m *memoryTier) Name() string {
	return m.name
}

func (m *memoryTier) Load(ctx context.Context) LoadResult {
	if m.index == nil {
		return Miss(m.name, nil)
	}
	return Hit(*m.index)
}

func (m *memoryTier) Save(ctx context.Context, index anidb.TitlesIndex) error {
	m.saves++
	m.index = &index
	return nil
}

// stubRemote returns index on every call and counts calls
type stubRemote struct {
	index anidb.TitlesIndex
	err   error
	calls int
}

func (s *stubRemote) fetch(ctx context.Context) (anidb.TitlesIndex, error) {
	s.calls++
	if s.err != nil {
		return anidb.TitlesIndex{}, s.err
	}
	return s.index, nil
}

var errUnexpectedRemote = errors.New("remote must not be called")

func failingRemote(ctx context.Context) (anidb.TitlesIndex, error) {
	return anidb.TitlesIndex{}, errUnexpectedRemote
}

func sampleIndex(label string) anidb.TitlesIndex {
	return anidb.TitlesIndex{
		Entries: []anidb.TitlesIndexEntry{
			{
				AID: 22,
				Titles: []anidb.TitleRecord{
					{Text: "Shinseiki Evangelion", Type: "main", Lang: "x-jat"},
					{Text: "Neon Genesis Evangelion " + label, Type: "official", Lang: "en"},
				},
			},
			{
				AID: 1,
				Titles: []anidb.TitleRecord{
					{Text: "Seikai no Monshou", Type: "main", Lang: "x-jat"},
				},
			},
		},
	}
}
