package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

type Options struct {
	Driver          string
	DataSource      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	RetryAttempts   int
	RetryDelay      time.Duration
	PingTimeout     time.Duration
}

type Option func(*Options)

func WithDriver(driver string) Option {
	return func(o *Options) { o.Driver = driver }
}

func WithDataSource(dsn string) Option {
	return func(o *Options) { o.DataSource = dsn }
}

func WithMaxOpenConns(count int) Option {
	return func(o *Options) { o.MaxOpenConns = count }
}

func WithMaxIdleConns(count int) Option {
	return func(o *Options) { o.MaxIdleConns = count }
}

func WithConnMaxLifetime(duration time.Duration) Option {
	return func(o *Options) { o.ConnMaxLifetime = duration }
}

func WithRetry(attempts int, delay time.Duration) Option {
	return func(o *Options) {
		o.RetryAttempts = attempts
		o.RetryDelay = delay
	}
}

// IsMemory reports whether a sqlite data source lives only in process memory.
func IsMemory(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
}

// New opens the ticket index database. In-memory sqlite databases are pinned
// to a single connection that never expires, since every new connection
// would see an empty database.
func New(opts ...Option) (*sql.DB, error) {
	options := &Options{
		Driver:          "sqlite3",
		DataSource:      ":memory:",
		MaxOpenConns:    4,
		MaxIdleConns:    2,
		ConnMaxLifetime: 30 * time.Minute,
		ConnMaxIdleTime: 5 * time.Minute,
		RetryAttempts:   3,
		RetryDelay:      200 * time.Millisecond,
		PingTimeout:     2 * time.Second,
	}

	for _, opt := range opts {
		opt(options)
	}

	if options.Driver == "" {
		return nil, fmt.Errorf("database driver cannot be empty")
	}
	if options.DataSource == "" {
		return nil, fmt.Errorf("database data source cannot be empty")
	}
	if options.RetryAttempts < 1 {
		options.RetryAttempts = 1
	}
	if IsMemory(options.DataSource) {
		options.MaxOpenConns = 1
		options.MaxIdleConns = 1
		options.ConnMaxLifetime = 0
		options.ConnMaxIdleTime = 0
	}

	var db *sql.DB
	var err error

	for i := 0; i < options.RetryAttempts; i++ {
		db, err = sql.Open(options.Driver, options.DataSource)
		if err == nil {
			db.SetMaxOpenConns(options.MaxOpenConns)
			db.SetMaxIdleConns(options.MaxIdleConns)
			db.SetConnMaxLifetime(options.ConnMaxLifetime)
			db.SetConnMaxIdleTime(options.ConnMaxIdleTime)

			ctx, cancel := context.WithTimeout(context.Background(), options.PingTimeout)
			err = db.PingContext(ctx)
			cancel()
			if err == nil {
				return db, nil
			}

			db.Close()
		}

		if i < options.RetryAttempts-1 {
			time.Sleep(time.Duration(i+1) * options.RetryDelay)
		}
	}

	return nil, fmt.Errorf("failed to open %s database after %d attempts: %w", options.Driver, options.RetryAttempts, err)
}
