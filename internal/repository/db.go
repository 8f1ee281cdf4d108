package repository

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/userauth/userauth-go/internal/model"
)

// Backend identifies a storage engine.
type Backend string

const (
	BackendMySQL    Backend = "mysql"
	BackendPostgres Backend = "postgres"
	BackendMemory   Backend = "memory"
)

// UserRepository is implemented by every storage backend.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// Options configures Open.
type Options struct {
	URI           string
	AutoMigrate   bool
	TLSSkipVerify bool
}

// Store is an opened storage backend.
type Store struct {
	Backend Backend
	Users   UserRepository
	close   func()
}

// Close releases the underlying connection pool.
func (s *Store) Close() {
	if s.close != nil {
		s.close()
	}
}

// DetectBackend picks a backend from the URI scheme. Anything that is not a
// postgres or memory URI is treated as a go-sql-driver/mysql DSN.
func DetectBackend(uri string) Backend {
	switch {
	case strings.HasPrefix(uri, "postgres://"), strings.HasPrefix(uri, "postgresql://"):
		return BackendPostgres
	case uri == "memory" || strings.HasPrefix(uri, "memory://"):
		return BackendMemory
	default:
		return BackendMySQL
	}
}

// Open connects to the backend named by opts.URI and, if requested, creates
// the schema.
func Open(ctx context.Context, opts Options, logger *zap.Logger) (*Store, error) {
	backend := DetectBackend(opts.URI)
	logger = logger.With(zap.String("backend", string(backend)))

	switch backend {
	case BackendMemory:
		logger.Warn("using in-memory user store, data is lost on restart")
		return &Store{Backend: backend, Users: NewMemoryUserRepository()}, nil

	case BackendPostgres:
		pool, err := NewPostgresPool(ctx, opts.URI, opts.TLSSkipVerify)
		if err != nil {
			return nil, err
		}
		if opts.AutoMigrate {
			if err := migratePool(ctx, pool, backend, logger); err != nil {
				pool.Close()
				return nil, err
			}
		}
		logger.Info("PostgreSQL connection established")
		return &Store{Backend: backend, Users: NewPostgresUserRepository(pool), close: pool.Close}, nil

	default:
		db, err := NewMySQLDB(ctx, opts.URI, opts.TLSSkipVerify)
		if err != nil {
			return nil, err
		}
		if opts.AutoMigrate {
			if err := Migrate(ctx, db, backend, logger); err != nil {
				db.Close()
				return nil, err
			}
		}
		logger.Info("MySQL connection established")
		return &Store{Backend: backend, Users: NewMySQLUserRepository(db), close: func() { db.Close() }}, nil
	}
}

// migratePool runs Migrate over a database/sql handle borrowed from pool.
func migratePool(ctx context.Context, pool *pgxpool.Pool, backend Backend, logger *zap.Logger) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()
	return Migrate(ctx, db, backend, logger)
}

// NewMySQLDB creates a MySQL connection pool from a go-sql-driver DSN.
// parseTime is always enabled so DATETIME columns scan into time.Time.
func NewMySQLDB(ctx context.Context, dsn string, tlsSkipVerify bool) (*sql.DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	if tlsSkipVerify {
		cfg.TLS = &tls.Config{InsecureSkipVerify: true}
	}

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating mysql connector: %w", err)
	}
	db := sql.OpenDB(connector)

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging mysql: %w", err)
	}

	return db, nil
}

// NewPostgresPool creates a pgx connection pool.
func NewPostgresPool(ctx context.Context, dsn string, tlsSkipVerify bool) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing postgres dsn: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnIdleTime = time.Minute
	if tlsSkipVerify {
		poolCfg.ConnConfig.TLSConfig = &tls.Config{InsecureSkipVerify: true}
		poolCfg.ConnConfig.Fallbacks = nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	return pool, nil
}
