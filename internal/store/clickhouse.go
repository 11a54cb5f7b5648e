package store

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/openmohaa/bracket-api/internal/models"
)

const insertSlotResults = `
	INSERT INTO bracket.simulation_results (
		simulation_id, season, run_id, slot, team_id, seed
	)
`

// ResultWriter appends per-slot simulation results to ClickHouse.
type ResultWriter struct {
	conn      driver.Conn
	batchSize int
}

func NewResultWriter(conn driver.Conn, batchSize int) *ResultWriter {
	if batchSize <= 0 {
		batchSize = 5000
	}
	return &ResultWriter{conn: conn, batchSize: batchSize}
}

// WriteResults inserts every slot result of res, batchSize rows per batch.
// It returns the number of rows sent.
func (w *ResultWriter) WriteResults(ctx context.Context, res *models.SimulationResult) (int, error) {
	written := 0
	for start := 0; start < len(res.Results); start += w.batchSize {
		end := start + w.batchSize
		if end > len(res.Results) {
			end = len(res.Results)
		}

		batch, err := w.conn.PrepareBatch(ctx, insertSlotResults)
		if err != nil {
			return written, fmt.Errorf("prepare batch: %w", err)
		}
		for _, r := range res.Results[start:end] {
			if err := batch.Append(res.ID, uint16(res.Season), uint32(r.Run), r.Slot, uint32(r.TeamID), r.Seed); err != nil {
				batch.Abort()
				return written, fmt.Errorf("append run %d slot %s: %w", r.Run, r.Slot, err)
			}
		}
		if err := batch.Send(); err != nil {
			return written, fmt.Errorf("send batch: %w", err)
		}
		written += end - start
	}
	return written, nil
}

func (w *ResultWriter) Ping(ctx context.Context) error {
	return w.conn.Ping(ctx)
}
