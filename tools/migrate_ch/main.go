package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2"
)

func main() {
	dsn := flag.String("dsn", envOr("CLICKHOUSE_URL", "clickhouse://default:@localhost:9000/bracket"), "ClickHouse DSN")
	file := flag.String("file", "migrations/clickhouse/001_simulation_results.sql", "migration to apply")
	flag.Parse()

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

	migration, err := os.ReadFile(*file)
	if err != nil {
		log.Fatal(err)
	}

	statements := strings.Split(string(migration), ";")
	for _, stmt := range statements {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if err := conn.Exec(ctx, stmt); err != nil {
			log.Fatal(err)
		}
	}
	fmt.Println("Migration applied successfully!")

	var count uint64
	err = conn.QueryRow(ctx, "SELECT count() FROM bracket.simulation_results").Scan(&count)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Stored slot results: %d\n", count)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
