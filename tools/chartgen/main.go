package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2"
)

func main() {
	dsn := flag.String("dsn", os.Getenv("CLICKHOUSE_URL"), "ClickHouse DSN")
	simID := flag.String("id", "", "simulation id")
	out := flag.String("out", "charts", "output directory")
	flag.Parse()

	if *dsn == "" || *simID == "" {
		log.Fatal("both -dsn (or CLICKHOUSE_URL) and -id are required")
	}

	ctx := context.Background()
	opts, err := clickhouse.ParseDSN(*dsn)
	if err != nil {
		log.Fatal(err)
	}
	conn, err := clickhouse.Open(opts)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	if err := conn.Ping(ctx); err != nil {
		log.Fatalf("Failed to ping ClickHouse: %v", err)
	}

	generateChampionOdds(ctx, conn, *simID, *out)
	generateUpsetRate(ctx, conn, *simID, *out)
}

// The championship slot has the highest round number, so it sorts last among
// the round slot labels.
func generateChampionOdds(ctx context.Context, conn clickhouse.Conn, simID, out string) {
	fmt.Println("Querying champion odds...")
	rows, err := conn.Query(ctx, `
		SELECT toString(team_id) AS team, count() AS titles
		FROM bracket.simulation_results
		WHERE simulation_id = ?
		  AND slot = (
			SELECT max(slot) FROM bracket.simulation_results
			WHERE simulation_id = ? AND startsWith(slot, 'R')
		  )
		GROUP BY team
		ORDER BY titles DESC
		LIMIT 10
	`, simID, simID)
	if err != nil {
		log.Printf("Failed to query champion odds: %v", err)
		return
	}
	defer rows.Close()

	labels, values, maxVal := collect(rows)
	if len(labels) == 0 {
		fmt.Println("No data found for champion odds.")
		return
	}

	svg := generateBarChartSVG("Championships by Team", labels, values, maxVal, "#4a90e2")
	saveChart(out, simID+"_champions.svg", svg)
}

func generateUpsetRate(ctx context.Context, conn clickhouse.Conn, simID, out string) {
	fmt.Println("Querying winning seeds...")
	rows, err := conn.Query(ctx, `
		SELECT substring(seed, 2, 2) AS seed_num, count() AS wins
		FROM bracket.simulation_results
		WHERE simulation_id = ? AND startsWith(slot, 'R')
		GROUP BY seed_num
		ORDER BY seed_num
	`, simID)
	if err != nil {
		log.Printf("Failed to query winning seeds: %v", err)
		return
	}
	defer rows.Close()

	labels, values, maxVal := collect(rows)
	if len(labels) == 0 {
		fmt.Println("No data found for winning seeds.")
		return
	}

	svg := generateBarChartSVG("Slot Wins by Seed", labels, values, maxVal, "#e74c3c")
	saveChart(out, simID+"_seeds.svg", svg)
}

type scanner interface {
	Next() bool
	Scan(dest ...any) error
}

func collect(rows scanner) ([]string, []uint64, uint64) {
	var (
		labels []string
		values []uint64
		maxVal uint64
	)
	for rows.Next() {
		var label string
		var val uint64
		if err := rows.Scan(&label, &val); err != nil {
			continue
		}
		labels = append(labels, label)
		values = append(values, val)
		if val > maxVal {
			maxVal = val
		}
	}
	return labels, values, maxVal
}

func saveChart(dir, filename, svg string) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Fatal(err)
	}
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Chart generated: %s\n", path)
}

func generateBarChartSVG(title string, labels []string, values []uint64, maxVal uint64, color string) string {
	width := 600
	height := 400
	padding := 50
	barWidth := (width - 2*padding) / len(labels)
	maxBarHeight := height - 2*padding

	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg width="%d" height="%d" viewBox="0 0 %d %d" xmlns="http://www.w3.org/2000/svg">`, width, height, width, height)
	sb.WriteString(`<rect width="100%" height="100%" fill="#1a1a1a" />`)
	fmt.Fprintf(&sb, `<text x="%d" y="30" fill="white" font-family="Arial" font-size="20" text-anchor="middle">%s</text>`, width/2, title)

	for i, val := range values {
		barHeight := 0
		if maxVal > 0 {
			barHeight = int((val * uint64(maxBarHeight)) / maxVal)
		}
		x := padding + i*barWidth
		y := height - padding - barHeight

		fmt.Fprintf(&sb, `<rect x="%d" y="%d" width="%d" height="%d" fill="%s" rx="4" />`, x+5, y, barWidth-10, barHeight, color)
		fmt.Fprintf(&sb, `<text x="%d" y="%d" fill="white" font-family="Arial" font-size="12" text-anchor="end" transform="rotate(-45 %d %d)">%s</text>`,
			x+barWidth/2, height-padding+20, x+barWidth/2, height-padding+20, labels[i])
		fmt.Fprintf(&sb, `<text x="%d" y="%d" fill="white" font-family="Arial" font-size="10" text-anchor="middle">%d</text>`, x+barWidth/2, y-5, val)
	}

	fmt.Fprintf(&sb, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="white" stroke-width="2" />`, padding, height-padding, width-padding, height-padding)
	sb.WriteString(`</svg>`)
	return sb.String()
}
