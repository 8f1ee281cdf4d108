package repository

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed migrations/*/*.sql
var migrations embed.FS

// goose keeps its base FS, dialect and logger in package globals.
var gooseMu sync.Mutex

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Migrate applies the embedded schema migrations for backend.
func Migrate(ctx context.Context, db *sql.DB, backend Backend, logger *zap.Logger) error {
	dialect, err := gooseDialect(backend)
	if err != nil {
		return err
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{logger.Sugar()})
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, migrationDir(backend)); err != nil {
		return fmt.Errorf("running %s migrations: %w", backend, err)
	}
	return nil
}

func gooseDialect(backend Backend) (string, error) {
	switch backend {
	case BackendMySQL:
		return "mysql", nil
	case BackendPostgres:
		return "postgres", nil
	default:
		return "", fmt.Errorf("no migrations for backend %q", backend)
	}
}

func migrationDir(backend Backend) string {
	return "migrations/" + string(backend)
}

// gooseLogger routes goose output through zap.
type gooseLogger struct {
	s *zap.SugaredLogger
}

func (l gooseLogger) Printf(format string, v ...interface{}) { l.s.Infof(format, v...) }
func (l gooseLogger) Fatalf(format string, v ...interface{}) { l.s.Fatalf(format, v...) }
