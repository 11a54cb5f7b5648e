package store

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
)

// MockDBStore answers queries from canned rows keyed by the first table
// name found in the SQL.
type MockDBStore struct {
	Rows   map[string][][]any
	Errs   map[string]error
	Tables []string
}

func (m *MockDBStore) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	for _, table := range m.Tables {
		if !containsTable(sql, table) {
			continue
		}
		if err := m.Errs[table]; err != nil {
			return nil, err
		}
		return &MockPGXRows{data: m.Rows[table], index: -1}, nil
	}
	return nil, fmt.Errorf("unexpected query: %s", sql)
}

func containsTable(sql, table string) bool {
	fields := strings.Fields(sql)
	for i := 0; i+1 < len(fields); i++ {
		if fields[i] == "FROM" && fields[i+1] == table {
			return true
		}
	}
	return false
}

// MockPGXRows implements the parts of pgx.Rows used by pgx.CollectRows.
type MockPGXRows struct {
	pgx.Rows
	data  [][]any
	index int
}

func (m *MockPGXRows) Close()     {}
func (m *MockPGXRows) Err() error { return nil }
func (m *MockPGXRows) Next() bool {
	m.index++
	return m.index < len(m.data)
}

func (m *MockPGXRows) Scan(dest ...any) error {
	row := m.data[m.index]
	if len(dest) != len(row) {
		return fmt.Errorf("scan: %d destinations for %d columns", len(dest), len(row))
	}
	for i, d := range dest {
		assign(d, row[i])
	}
	return nil
}

func assign(dest, val any) {
	reflect.ValueOf(dest).Elem().Set(reflect.ValueOf(val))
}

// MockRedis keeps string values in memory.
type MockRedis struct {
	redis.Cmdable
	mu   sync.Mutex
	Data map[string]string
	TTLs map[string]time.Duration
	Err  error
}

func NewMockRedis() *MockRedis {
	return &MockRedis{Data: make(map[string]string), TTLs: make(map[string]time.Duration)}
}

func (m *MockRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return redis.NewStringResult("", m.Err)
	}
	v, ok := m.Data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *MockRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return redis.NewStatusResult("", m.Err)
	}
	switch v := value.(type) {
	case []byte:
		m.Data[key] = string(v)
	case string:
		m.Data[key] = v
	default:
		m.Data[key] = fmt.Sprint(v)
	}
	m.TTLs[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

// MockClickHouseConn records every batch it prepares.
type MockClickHouseConn struct {
	driver.Conn
	mu      sync.Mutex
	Batches []*MockBatch
	SendErr error
}

func (m *MockClickHouseConn) PrepareBatch(ctx context.Context, query string, opts ...driver.PrepareBatchOption) (driver.Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := &MockBatch{sendErr: m.SendErr}
	m.Batches = append(m.Batches, b)
	return b, nil
}

func (m *MockClickHouseConn) Ping(ctx context.Context) error { return nil }

type MockBatch struct {
	driver.Batch
	Appended [][]any
	sent     bool
	aborted  bool
	sendErr  error
}

func (m *MockBatch) Append(v ...any) error {
	m.Appended = append(m.Appended, v)
	return nil
}

func (m *MockBatch) Send() error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = true
	return nil
}

func (m *MockBatch) Abort() error {
	m.aborted = true
	return nil
}

func (m *MockBatch) IsSent() bool { return m.sent }
func (m *MockBatch) Rows() int    { return len(m.Appended) }
