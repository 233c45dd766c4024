package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/thisisjab/myn/entity"
)

type ClickHouseStorageConfig struct {
	Addr     []string `yaml:"addr"`
	Database string   `yaml:"database"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
}

// ClickHouseStorage keeps check results in ClickHouse.
type ClickHouseStorage struct {
	conn clickhouse.Conn
	cfg  ClickHouseStorageConfig
}

func NewClickHouseStorage(cfg ClickHouseStorageConfig) (*ClickHouseStorage, error) {
	if len(cfg.Addr) == 0 {
		return nil, errors.New("clickhouse address is required")
	}

	return &ClickHouseStorage{cfg: cfg}, nil
}

func setupClickHouseTables(ctx context.Context, conn driver.Conn) error {
	// Diagnostics are stored as a JSON string; they are only read back whole.
	return conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS check_results (
			id UUID,
			source String,
			checked_at DateTime64(3),
			duration_us UInt64,
			tokens UInt32,
			statements Map(String, UInt32),
			max_depth UInt16,
			valid Bool,
			code LowCardinality(String),
			error String,
			diagnostics String
		)
		ENGINE = MergeTree
		ORDER BY (source, checked_at, id)
		PARTITION BY toYYYYMM(checked_at)
	`)
}

func (s *ClickHouseStorage) Connect(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: s.cfg.Addr,
		Auth: clickhouse.Auth{
			Database: s.cfg.Database,
			Username: s.cfg.Username,
			Password: s.cfg.Password,
		},
		DialTimeout: 5 * time.Second,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})

	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping the database: %w", err)
	}

	s.conn = conn

	if err := setupClickHouseTables(ctx, conn); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	return nil
}

func (s *ClickHouseStorage) Close() error {
	if s.conn == nil {
		return nil
	}

	return s.conn.Close()
}

func (s *ClickHouseStorage) Store(ctx context.Context, results ...entity.CheckResult) error {
	if len(results) == 0 {
		return nil
	}

	if s.conn == nil {
		return errors.New("clickhouse storage is not connected")
	}

	ctx, cancel := context.WithTimeout(ctx, 1*time.Minute)
	defer cancel()

	batch, err := s.conn.PrepareBatch(ctx, "INSERT INTO check_results (id, source, checked_at, duration_us, tokens, statements, max_depth, valid, code, error, diagnostics)")
	if err != nil {
		return fmt.Errorf("couldn't prepare batch: %w", err)
	}

	for _, res := range results {
		row, err := toRow(res)
		if err != nil {
			return err
		}

		if err := batch.Append(row...); err != nil {
			return fmt.Errorf("couldn't append result to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("couldn't send batch: %w", err)
	}

	return nil
}

func toRow(res entity.CheckResult) ([]any, error) {
	diagnostics, err := json.Marshal(res.Diagnostics)
	if err != nil {
		return nil, fmt.Errorf("couldn't encode diagnostics: %w", err)
	}

	statements := make(map[string]uint32, len(res.Statements))
	for k, v := range res.Statements {
		statements[k] = uint32(v)
	}

	return []any{
		res.ID,
		res.Source,
		res.CheckedAt,
		uint64(res.Duration.Microseconds()),
		uint32(res.Tokens),
		statements,
		uint16(res.MaxDepth),
		res.Valid,
		res.Code,
		res.Error,
		string(diagnostics),
	}, nil
}
