package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

const (
	defaultConnTimeout   = 5 * time.Second
	defaultMaxRetries    = 3
	defaultRetryInterval = time.Second
	defaultQueryTimeout  = 10 * time.Second
)

// PostgresConfig configures the authoritative store connection.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	PoolSize int
}

// record is the single table behind the remote store: one JSON document
// per logical path.
type record struct {
	bun.BaseModel `bun:"table:records,alias:r"`

	Path      string          `bun:"path,pk"`
	Value     json.RawMessage `bun:"value,type:jsonb,notnull"`
	UpdatedAt time.Time       `bun:"updated_at,notnull"`
}

// PostgresStore is the authoritative RecordStore on Postgres.
type PostgresStore struct {
	pool  *pgxpool.Pool
	bunDB *bun.DB
}

// NewPostgresStore dials the database with retries, builds the pool and
// initializes the schema.
func NewPostgresStore(ctx context.Context, cfg PostgresConfig) (*PostgresStore, error) {
	var conn net.Conn
	var err error

	tryDial := func() (net.Conn, error) {
		addr := net.JoinHostPort(cfg.Host, fmt.Sprintf("%d", cfg.Port))
		// Prefer IPv4, then fall back to IPv6
		if c, e := net.DialTimeout("tcp4", addr, defaultConnTimeout); e == nil {
			return c, nil
		}
		return net.DialTimeout("tcp6", addr, defaultConnTimeout)
	}

	for i := 0; i < defaultMaxRetries; i++ {
		conn, err = tryDial()
		if err == nil {
			break
		}
		time.Sleep(defaultRetryInterval)
	}
	if err != nil {
		return nil, fmt.Errorf("database server unreachable after %d attempts: %w", defaultMaxRetries, err)
	}
	conn.Close()

	poolConfig, err := pgxpool.ParseConfig(buildConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	if cfg.PoolSize > 0 {
		poolConfig.MaxConns = int32(cfg.PoolSize)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	s := &PostgresStore{pool: pool, bunDB: newBunDB(pool)}
	if err := s.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func buildConnString(cfg PostgresConfig) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?connect_timeout=5",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database,
	)
}

func newBunDB(pool *pgxpool.Pool) *bun.DB {
	sslMode := os.Getenv("PG_SSLMODE")
	if sslMode == "" {
		sslMode = "disable"
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		pool.Config().ConnConfig.User,
		pool.Config().ConnConfig.Password,
		pool.Config().ConnConfig.Host,
		pool.Config().ConnConfig.Port,
		pool.Config().ConnConfig.Database,
		sslMode,
	)

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

func (s *PostgresStore) initSchema(ctx context.Context) error {
	_, err := s.bunDB.NewCreateTable().
		Model((*record)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize records schema: %w", err)
	}
	slog.Debug("Remote store schema ready", slog.String("type", "store"))
	return nil
}

func (s *PostgresStore) Read(ctx context.Context, path string) (json.RawMessage, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	rec := new(record)
	err := s.bunDB.NewSelect().
		Model(rec).
		Where("path = ?", path).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, &StoreError{Op: "read", Path: path, Err: err}
	}
	return rec.Value, true, nil
}

func (s *PostgresStore) Write(ctx context.Context, path string, value json.RawMessage) error {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	rec := &record{Path: path, Value: value, UpdatedAt: time.Now()}
	_, err := s.bunDB.NewInsert().
		Model(rec).
		On("CONFLICT (path) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return &StoreError{Op: "write", Path: path, Err: err}
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, path string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	_, err := s.bunDB.NewDelete().
		Model((*record)(nil)).
		Where("path = ?", path).
		Exec(ctx)
	if err != nil {
		return &StoreError{Op: "delete", Path: path, Err: err}
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultConnTimeout)
	defer cancel()
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return s.bunDB.Close()
}

// BunDB exposes the underlying bun handle for auxiliary tooling that
// needs raw queries against the records table.
func (s *PostgresStore) BunDB() *bun.DB {
	return s.bunDB
}
