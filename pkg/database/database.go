package database

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/rakbuku/rakbuku/pkg/config"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type key int

const ctxKey key = 0

func WithLogging(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxKey, true)
}

type logQueryHook struct {
	log logger.Logger
}

func (*logQueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (qh *logQueryHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	enabled, ok := ctx.Value(ctxKey).(bool)
	if !ok || !enabled {
		return
	}

	qh.log.Debug(event.Query, logger.Data{"duration": time.Since(event.StartTime).String()})
}

// IsPostgres reports whether the given database URL points at a Postgres
// server rather than a SQLite file.
func IsPostgres(url string) bool {
	return strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://")
}

func New(cfg *config.Config) (*bun.DB, error) {
	var db *bun.DB
	if IsPostgres(cfg.DatabaseURL) {
		sqldb, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		db = bun.NewDB(sqldb, pgdialect.New())
	} else {
		sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DatabaseURL)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		// A single connection serializes writes and keeps in-memory databases
		// shared across queries.
		sqldb.SetMaxOpenConns(1)
		db = bun.NewDB(sqldb, sqlitedialect.New())
	}

	// print out all queries in debug mode
	if cfg.DatabaseDebug {
		db.AddQueryHook(&logQueryHook{logger.NewWithLevel("debug")})
	}

	// Retry up to a few times to ensure that the database can connect.
	var err error
	for i := 0; i < cfg.DatabaseConnectRetryCount; i++ {
		_, err = db.Exec("SELECT 1")
		if err != nil {
			time.Sleep(cfg.DatabaseConnectRetryDelay)
			continue
		}
		// We've successfully connected.
		break
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if db.Dialect().Name() == dialect.SQLite {
		if err := configureSQLite(db, cfg); err != nil {
			return nil, err
		}
	}

	return db, nil
}

func configureSQLite(db *bun.DB, cfg *config.Config) error {
	if cfg.DatabaseURL != ":memory:" {
		_, err := db.Exec("PRAGMA journal_mode=WAL")
		if err != nil {
			return errors.Wrap(err, "failed to enable WAL mode")
		}
	}

	_, err := db.Exec("PRAGMA foreign_keys=ON")
	if err != nil {
		return errors.Wrap(err, "failed to enable foreign keys")
	}

	busyTimeoutMs := cfg.DatabaseBusyTimeout.Milliseconds()
	_, err = db.Exec("PRAGMA busy_timeout=?", busyTimeoutMs)
	if err != nil {
		return errors.Wrap(err, "failed to set busy_timeout")
	}

	return nil
}

// IsUniqueViolation reports whether err was caused by a unique constraint on
// either supported database.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
