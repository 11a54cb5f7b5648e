// Command simulate runs bracket simulations offline against a SQLite copy of
// the historical tables, optionally importing the Kaggle CSV export first.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/openmohaa/bracket-api/internal/config"
	"github.com/openmohaa/bracket-api/internal/logic"
	"github.com/openmohaa/bracket-api/internal/models"
	"github.com/openmohaa/bracket-api/internal/store"
)

func main() {
	var (
		dbPath     = flag.String("db", "bracket.db", "SQLite database path")
		importDir  = flag.String("import", "", "directory of Kaggle CSV files to import before simulating")
		league     = flag.String("league", "M", "Kaggle file prefix: M or W")
		season     = flag.Int("season", 0, "tournament season to simulate")
		runs       = flag.Int("runs", 0, "number of brackets (default from model params)")
		seed       = flag.Uint64("seed", 0, "random seed; 0 draws a fresh one")
		paramsPath = flag.String("params", "", "YAML model parameters")
		workers    = flag.Int("workers", 0, "concurrent brackets (default GOMAXPROCS)")
		top        = flag.Int("top", 16, "number of teams to print")
	)
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	ctx := context.Background()

	src, err := store.OpenSQLite(ctx, *dbPath)
	if err != nil {
		sugar.Fatalw("Failed to open database", "path", *dbPath, "error", err)
	}
	defer src.Close()

	if *importDir != "" {
		stats, err := src.ImportKaggle(ctx, *importDir, *league)
		if err != nil {
			sugar.Fatalw("Import failed", "dir", *importDir, "error", err)
		}
		sugar.Infow("Imported Kaggle data",
			"teams", stats.Teams,
			"games", stats.Games,
			"seeds", stats.Seeds,
			"slots", stats.Slots,
			"rankings", stats.Rankings,
		)
	}

	if *season == 0 {
		if *importDir == "" {
			fmt.Fprintln(os.Stderr, "simulate: -season is required")
			flag.Usage()
			os.Exit(2)
		}
		return
	}

	params, err := config.LoadModelParams(*paramsPath)
	if err != nil {
		sugar.Fatalw("Failed to load model params", "error", err)
	}
	predictor, err := logic.NewLogisticPredictor(params.Predictor)
	if err != nil {
		sugar.Fatalw("Invalid predictor weights", "error", err)
	}

	svc := logic.NewForecastService(logic.ForecastConfig{
		Source:      src,
		Predictor:   predictor,
		Rating:      params.Rating,
		Aggregation: params.Aggregation,
		DefaultRuns: params.DefaultRuns,
		SimWorkers:  *workers,
		Logger:      logger,
	})

	req := models.SimulationRequest{Season: *season, Runs: *runs}
	if *seed != 0 {
		req.Seed = seed
	}
	res, err := svc.Simulate(ctx, req)
	if err != nil {
		sugar.Fatalw("Simulation failed", "season", *season, "error", err)
	}

	printOdds(os.Stdout, res, *top)
}

func printOdds(out io.Writer, res *models.SimulationResult, top int) {
	type row struct {
		team  int
		champ float64
		final float64
	}
	maxRound := 0
	for _, rounds := range res.Summary.Advancement {
		for r := range rounds {
			if r > maxRound {
				maxRound = r
			}
		}
	}

	rows := make([]row, 0, len(res.Summary.Advancement))
	for team, rounds := range res.Summary.Advancement {
		rows = append(rows, row{team: team, champ: res.Summary.Champions[team], final: rounds[maxRound-1]})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].champ != rows[j].champ {
			return rows[i].champ > rows[j].champ
		}
		return rows[i].team < rows[j].team
	})
	if top > 0 && len(rows) > top {
		rows = rows[:top]
	}

	fmt.Fprintf(out, "Season %d, %d brackets\n\n", res.Season, res.Runs)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TEAM\tFINAL\tCHAMPION")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%.1f%%\t%.1f%%\n", r.team, 100*r.final, 100*r.champ)
	}
	tw.Flush()
}
