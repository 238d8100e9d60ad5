package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/nexovate-backend/internal/platform/logger"
)

var ErrConnectorClosed = errors.New("db connector closed")

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Driver string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresName     string
	PostgresSSLMode  string

	SQLitePath string

	ConnectTimeout time.Duration
	Retries        int
	RetryDelay     time.Duration
	HealthInterval time.Duration
}

func (c Config) dialector() (gorm.Dialector, error) {
	switch strings.ToLower(strings.TrimSpace(c.Driver)) {
	case "", DriverPostgres:
		ssl := c.PostgresSSLMode
		if ssl == "" {
			ssl = "disable"
		}
		dsn := fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s?sslmode=%s",
			c.PostgresUser,
			c.PostgresPassword,
			c.PostgresHost,
			c.PostgresPort,
			c.PostgresName,
			ssl,
		)
		return postgres.Open(dsn), nil
	case DriverSQLite:
		path := c.SQLitePath
		if path == "" {
			path = "nexovate.db"
		}
		return sqlite.Open(path), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", c.Driver)
	}
}

// Connector owns the process-wide gorm pool. The first Get connects; concurrent
// callers share that attempt and each waits no longer than its own context allows.
type Connector struct {
	cfg  Config
	log  *logger.Logger
	open func(gorm.Dialector) (*gorm.DB, error)

	group singleflight.Group

	mu     sync.RWMutex
	db     *gorm.DB
	closed bool

	onHealthFailure func(error)
}

func NewConnector(cfg Config, log *logger.Logger) *Connector {
	if cfg.Retries <= 0 {
		cfg.Retries = 5
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 30 * time.Second
	}
	if cfg.HealthInterval <= 0 {
		cfg.HealthInterval = 5 * time.Minute
	}
	return &Connector{
		cfg:  cfg,
		log:  log.With("service", "DBConnector", "driver", cfg.Driver),
		open: openGorm,
	}
}

// OnHealthFailure registers a hook invoked for every failed background ping.
func (c *Connector) OnHealthFailure(fn func(error)) {
	c.mu.Lock()
	c.onHealthFailure = fn
	c.mu.Unlock()
}

func openGorm(d gorm.Dialector) (*gorm.DB, error) {
	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	return gorm.Open(d, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
		NowFunc:                                  func() time.Time { return time.Now().UTC() },
	})
}

func (c *Connector) current() (*gorm.DB, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db, c.closed
}

func (c *Connector) Get(ctx context.Context) (*gorm.DB, error) {
	if db, closed := c.current(); closed {
		return nil, ErrConnectorClosed
	} else if db != nil {
		return db, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.ConnectTimeout)
	defer cancel()

	ch := c.group.DoChan("connect", func() (interface{}, error) {
		// Detached from any single caller; bounded by the connect timeout.
		connectCtx, connectCancel := context.WithTimeout(context.Background(), c.cfg.ConnectTimeout)
		defer connectCancel()
		return c.connect(connectCtx)
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for db connection: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*gorm.DB), nil
	}
}

func (c *Connector) connect(ctx context.Context) (*gorm.DB, error) {
	if db, closed := c.current(); closed {
		return nil, ErrConnectorClosed
	} else if db != nil {
		return db, nil
	}

	dialector, err := c.cfg.dialector()
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= c.cfg.Retries; attempt++ {
		db, err := c.open(dialector)
		if err == nil {
			err = c.prepare(ctx, db)
		}
		if err == nil {
			c.mu.Lock()
			if c.closed {
				c.mu.Unlock()
				closeGorm(db)
				return nil, ErrConnectorClosed
			}
			c.db = db
			c.mu.Unlock()
			c.log.Info("Database connected", "attempt", attempt)
			return db, nil
		}
		lastErr = err
		c.log.Warn("Database connect failed", "attempt", attempt, "max_attempts", c.cfg.Retries, "error", err)

		if attempt == c.cfg.Retries {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("connect to %s: %w (last error: %v)", c.cfg.Driver, ctx.Err(), lastErr)
		case <-time.After(c.cfg.RetryDelay):
		}
	}
	return nil, fmt.Errorf("connect to %s after %d attempts: %w", c.cfg.Driver, c.cfg.Retries, lastErr)
}

func (c *Connector) prepare(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	if strings.EqualFold(c.cfg.Driver, DriverSQLite) {
		// sqlite serializes writers; one connection avoids SQLITE_BUSY under concurrent requests.
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		closeGorm(db)
		return err
	}
	if !strings.EqualFold(c.cfg.Driver, DriverSQLite) {
		if err := db.WithContext(ctx).Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
			closeGorm(db)
			return fmt.Errorf("enable uuid-ossp extension: %w", err)
		}
	}
	return nil
}

func (c *Connector) Ping(ctx context.Context) error {
	db, closed := c.current()
	if closed {
		return ErrConnectorClosed
	}
	if db == nil {
		return errors.New("db not connected")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// StartHealthLoop pings on the configured interval until ctx is cancelled.
func (c *Connector) StartHealthLoop(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(c.cfg.HealthInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
				err := c.Ping(pingCtx)
				cancel()
				if err == nil {
					continue
				}
				if errors.Is(err, ErrConnectorClosed) {
					return
				}
				c.log.Error("Database health check failed", "error", err)
				c.mu.RLock()
				hook := c.onHealthFailure
				c.mu.RUnlock()
				if hook != nil {
					hook(err)
				}
			}
		}
	}()
}

func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.db == nil {
		return nil
	}
	sqlDB, err := c.db.DB()
	c.db = nil
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func closeGorm(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
