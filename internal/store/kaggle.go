package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/openmohaa/bracket-api/internal/logic"
	"github.com/openmohaa/bracket-api/internal/models"
)

// ImportStats counts the rows loaded by ImportKaggle.
type ImportStats struct {
	Teams    int
	Games    int
	Seeds    int
	Slots    int
	Rankings int
}

// ImportKaggle loads the competition CSV export for one league ("M" or "W")
// from dir. Teams and both result files are required; seeds, slots and the
// Massey ordinals are loaded when present.
func (s *SQLiteSource) ImportKaggle(ctx context.Context, dir, league string) (*ImportStats, error) {
	stats := &ImportStats{}
	file := func(name string) string { return filepath.Join(dir, league+name+".csv") }

	teamRecs, err := readCSV(file("Teams"), true)
	if err != nil {
		return nil, err
	}
	var teams []int
	for _, rec := range teamRecs {
		id, err := rec.intCol("TeamID")
		if err != nil {
			return nil, err
		}
		teams = append(teams, id)
	}

	var games []models.Game
	for _, name := range []string{"RegularSeasonCompactResults", "NCAATourneyCompactResults"} {
		recs, err := readCSV(file(name), true)
		if err != nil {
			return nil, err
		}
		tourney := name == "NCAATourneyCompactResults"
		for _, rec := range recs {
			g, err := rec.game(tourney)
			if err != nil {
				return nil, err
			}
			games = append(games, g)
		}
	}
	// Tournament days follow the regular season, so (season, day) is replay order.
	sort.SliceStable(games, func(i, j int) bool {
		if games[i].Season != games[j].Season {
			return games[i].Season < games[j].Season
		}
		return games[i].DayNum < games[j].DayNum
	})

	seedRecs, err := readCSV(file("NCAATourneySeeds"), false)
	if err != nil {
		return nil, err
	}
	var seeds []models.SeedRow
	for _, rec := range seedRecs {
		season, err := rec.intCol("Season")
		if err != nil {
			return nil, err
		}
		team, err := rec.intCol("TeamID")
		if err != nil {
			return nil, err
		}
		seeds = append(seeds, models.SeedRow{Season: season, Seed: rec.strCol("Seed"), TeamID: team})
	}

	slotRecs, err := readCSV(file("NCAATourneySlots"), false)
	if err != nil {
		return nil, err
	}
	slots, err := slotsBySeason(slotRecs)
	if err != nil {
		return nil, err
	}

	rankRecs, err := readCSV(file("MasseyOrdinals"), false)
	if err != nil {
		return nil, err
	}
	var ranks []models.RankingRow
	for _, rec := range rankRecs {
		season, err := rec.intCol("Season")
		if err != nil {
			return nil, err
		}
		team, err := rec.intCol("TeamID")
		if err != nil {
			return nil, err
		}
		rank, err := rec.floatCol("OrdinalRank")
		if err != nil {
			return nil, err
		}
		ranks = append(ranks, models.RankingRow{Season: season, TeamID: team, OrdinalRank: rank})
	}

	if err := s.SaveTeams(ctx, teams); err != nil {
		return nil, fmt.Errorf("save teams: %w", err)
	}
	if err := s.SaveGames(ctx, games); err != nil {
		return nil, fmt.Errorf("save games: %w", err)
	}
	if err := s.SaveSeeds(ctx, seeds); err != nil {
		return nil, fmt.Errorf("save seeds: %w", err)
	}
	seasons := make([]int, 0, len(slots))
	for season := range slots {
		seasons = append(seasons, season)
	}
	sort.Ints(seasons)
	for _, season := range seasons {
		if err := s.SaveSlots(ctx, season, slots[season]); err != nil {
			return nil, fmt.Errorf("save slots for %d: %w", season, err)
		}
		stats.Slots += len(slots[season])
	}
	if err := s.SaveRankings(ctx, ranks); err != nil {
		return nil, fmt.Errorf("save rankings: %w", err)
	}

	stats.Teams = len(teams)
	stats.Games = len(games)
	stats.Seeds = len(seeds)
	stats.Rankings = len(ranks)
	return stats, nil
}

// slotsBySeason groups slot rows and orders each season so play-in slots
// come before the rounds that reference them.
func slotsBySeason(recs []csvRecord) (map[int][]models.Slot, error) {
	out := make(map[int][]models.Slot)
	for _, rec := range recs {
		season, err := rec.intCol("Season")
		if err != nil {
			return nil, err
		}
		out[season] = append(out[season], models.Slot{
			Slot:       rec.strCol("Slot"),
			StrongSeed: rec.strCol("StrongSeed"),
			WeakSeed:   rec.strCol("WeakSeed"),
		})
	}
	for _, slots := range out {
		sort.SliceStable(slots, func(i, j int) bool {
			return logic.SlotRound(slots[i].Slot) < logic.SlotRound(slots[j].Slot)
		})
	}
	return out, nil
}

type csvRecord struct {
	file   string
	line   int
	header map[string]int
	fields []string
}

func (r csvRecord) strCol(col string) string {
	i, ok := r.header[col]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return r.fields[i]
}

func (r csvRecord) intCol(col string) (int, error) {
	v, err := strconv.Atoi(r.strCol(col))
	if err != nil {
		return 0, fmt.Errorf("%s:%d: column %s: %w", r.file, r.line, col, err)
	}
	return v, nil
}

func (r csvRecord) floatCol(col string) (float64, error) {
	v, err := strconv.ParseFloat(r.strCol(col), 64)
	if err != nil {
		return 0, fmt.Errorf("%s:%d: column %s: %w", r.file, r.line, col, err)
	}
	return v, nil
}

func (r csvRecord) game(tourney bool) (models.Game, error) {
	g := models.Game{WLoc: models.Location(r.strCol("WLoc")), IsTourney: tourney}
	var err error
	for _, f := range []struct {
		col string
		dst *int
	}{
		{"Season", &g.Season},
		{"DayNum", &g.DayNum},
		{"WTeamID", &g.WTeamID},
		{"LTeamID", &g.LTeamID},
		{"WScore", &g.WScore},
		{"LScore", &g.LScore},
	} {
		if *f.dst, err = r.intCol(f.col); err != nil {
			return models.Game{}, err
		}
	}
	return g, nil
}

// readCSV returns every data row of path. A missing optional file yields no
// rows; a missing required file is ErrMissingDataSource.
func readCSV(path string, required bool) ([]csvRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if required {
				return nil, fmt.Errorf("%w: %s", models.ErrMissingDataSource, filepath.Base(path))
			}
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	head, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	header := make(map[string]int, len(head))
	for i, name := range head {
		header[name] = i
	}

	name := filepath.Base(path)
	var out []csvRecord
	for line := 2; ; line++ {
		fields, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		out = append(out, csvRecord{file: name, line: line, header: header, fields: fields})
	}
	return out, nil
}
