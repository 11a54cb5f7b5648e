package logic

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/openmohaa/bracket-api/internal/models"
)

// Bracket is the read-only description of one tournament: initial seeds,
// slots in a valid processing order, and the pairwise win probabilities.
// It is safe to run concurrently; every run owns its own seed map.
type Bracket struct {
	seeds  models.SeedAssignment
	labels map[int]string
	slots  []models.Slot
	probs  models.WinProbabilityTable
}

// NewBracket captures the inputs of a simulation. The slot order is trusted:
// each slot's seed references must resolve from seeds or earlier slots.
func NewBracket(seeds models.SeedAssignment, slots []models.Slot, probs models.WinProbabilityTable) (*Bracket, error) {
	if len(seeds) == 0 {
		return nil, fmt.Errorf("%w: seed assignment", models.ErrMissingDataSource)
	}
	if len(slots) == 0 {
		return nil, fmt.Errorf("%w: bracket slots", models.ErrMissingDataSource)
	}
	if probs == nil {
		return nil, fmt.Errorf("%w: win probability table", models.ErrMissingDataSource)
	}

	s := make([]models.Slot, len(slots))
	copy(s, slots)

	seedsCopy := seeds.Clone()
	return &Bracket{
		seeds:  seedsCopy,
		labels: seedsCopy.Inverse(),
		slots:  s,
		probs:  probs,
	}, nil
}

// Slots returns the bracket's slots in processing order.
func (b *Bracket) Slots() []models.Slot { return b.slots }

// bracketRun is the mutable state of one simulated bracket.
type bracketRun struct {
	id    int
	seeds models.SeedAssignment
	log   []models.SlotResult
}

// Run plays every slot once. Winners are written back under the slot label
// so later slots referencing that label resolve to them. The last entry of
// the returned log is the champion.
func (b *Bracket) Run(runID int, rng *rand.Rand) ([]models.SlotResult, error) {
	st := &bracketRun{
		id:    runID,
		seeds: b.seeds.Clone(),
		log:   make([]models.SlotResult, 0, len(b.slots)),
	}

	for _, slot := range b.slots {
		if err := b.step(st, slot, rng); err != nil {
			return nil, fmt.Errorf("run %d: %w", runID, err)
		}
	}
	return st.log, nil
}

func (b *Bracket) step(st *bracketRun, slot models.Slot, rng *rand.Rand) error {
	team1, ok := st.seeds[slot.StrongSeed]
	if !ok {
		return fmt.Errorf("slot %s: %w %q", slot.Slot, models.ErrUnresolvedSeed, slot.StrongSeed)
	}
	team2, ok := st.seeds[slot.WeakSeed]
	if !ok {
		return fmt.Errorf("slot %s: %w %q", slot.Slot, models.ErrUnresolvedSeed, slot.WeakSeed)
	}

	p, err := b.probs.Lookup(team1, team2)
	if err != nil {
		return fmt.Errorf("slot %s: %w", slot.Slot, err)
	}

	winner := team2
	if rng.Float64() < p {
		winner = team1
	}

	st.seeds[slot.Slot] = winner
	st.log = append(st.log, models.SlotResult{
		Run:    st.id,
		Slot:   slot.Slot,
		TeamID: winner,
		Seed:   b.labels[winner],
	})
	return nil
}

// SimOptions controls a batch of simulated brackets.
type SimOptions struct {
	// Workers bounds concurrent runs; 0 means GOMAXPROCS.
	Workers int
	// Seed makes the batch reproducible when set. Each run derives its own
	// stream from (Seed, run id), so results do not depend on scheduling.
	Seed *uint64
}

// Simulate plays n independent brackets (run ids 1..n) and returns their
// logs concatenated in run order.
func Simulate(ctx context.Context, b *Bracket, n int, opts SimOptions) ([]models.SlotResult, error) {
	if n <= 0 {
		return nil, fmt.Errorf("run count must be positive, got %d", n)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	logs := make([][]models.SlotResult, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := 0; i < n; i++ {
		runID := i + 1
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			log, err := b.Run(runID, newRunRand(opts.Seed, runID))
			if err != nil {
				return err
			}
			logs[runID-1] = log
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]models.SlotResult, 0, n*len(b.slots))
	for _, log := range logs {
		out = append(out, log...)
	}
	return out, nil
}

func newRunRand(seed *uint64, runID int) *rand.Rand {
	if seed != nil {
		return rand.New(rand.NewPCG(*seed, uint64(runID)))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}
