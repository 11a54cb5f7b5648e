package logic

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/openmohaa/bracket-api/internal/models"
)

type MockSource struct {
	TeamIDs     []int
	GameRows    []models.Game
	SeedRows    []models.SeedRow
	SlotRows    map[int][]models.Slot
	RankingRows []models.RankingRow

	// Gate, when set, blocks Games until closed.
	Gate       chan struct{}
	GamesCalls atomic.Int32
}

func (m *MockSource) Teams(ctx context.Context) ([]int, error) {
	return m.TeamIDs, nil
}

func (m *MockSource) Games(ctx context.Context) ([]models.Game, error) {
	m.GamesCalls.Add(1)
	if m.Gate != nil {
		select {
		case <-m.Gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return m.GameRows, nil
}

func (m *MockSource) Seeds(ctx context.Context) ([]models.SeedRow, error) {
	return m.SeedRows, nil
}

func (m *MockSource) Slots(ctx context.Context, season int) ([]models.Slot, error) {
	slots, ok := m.SlotRows[season]
	if !ok {
		return nil, models.ErrNotFound
	}
	return slots, nil
}

func (m *MockSource) Rankings(ctx context.Context) ([]models.RankingRow, error) {
	return m.RankingRows, nil
}

type MockCache struct {
	mu      sync.Mutex
	Tables  map[string]models.WinProbabilityTable
	GetErr  error
	SetHits int
}

func NewMockCache() *MockCache {
	return &MockCache{Tables: make(map[string]models.WinProbabilityTable)}
}

func (m *MockCache) GetTable(ctx context.Context, key string) (models.WinProbabilityTable, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	t, ok := m.Tables[key]
	if !ok {
		return nil, models.ErrNotFound
	}
	return t, nil
}

func (m *MockCache) SetTable(ctx context.Context, key string, table models.WinProbabilityTable) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetHits++
	m.Tables[key] = table
	return nil
}

var errCacheDown = errors.New("cache unavailable")

func newMockSource() *MockSource {
	seeds, slots := fourTeamBracket()
	var seedRows []models.SeedRow
	for label, team := range seeds {
		seedRows = append(seedRows, models.SeedRow{Season: 2024, Seed: label, TeamID: team})
	}
	seedRows = append(seedRows, models.SeedRow{Season: 2023, Seed: "X05", TeamID: 2})

	return &MockSource{
		TeamIDs:  []int{1, 2, 3, 4},
		GameRows: sampleGames(),
		SeedRows: seedRows,
		SlotRows: map[int][]models.Slot{2024: slots},
	}
}
