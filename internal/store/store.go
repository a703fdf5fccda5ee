// Package store persists domains, their availability and evaluations, and the
// jobs that produced them. Writes that may collide on a natural key use
// upsert-coalesce: on conflict each column takes the incoming non-null value
// or keeps the existing one.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DomainRepository is the write surface the persist stage uses.
type DomainRepository interface {
	UpsertDomain(ctx context.Context, in DomainUpsert) (*DomainName, error)
	UpsertAvailability(ctx context.Context, in AvailabilityUpsert) (*DomainAvailabilityStatus, error)
	UpsertEvaluation(ctx context.Context, in EvaluationUpsert) (*DomainEvaluation, error)
	LinkDomainToJob(ctx context.Context, jobID, domainID uuid.UUID) error
	RecordAgentRun(ctx context.Context, run *AgentRun) error
	JobExists(ctx context.Context, jobID uuid.UUID) (bool, error)
}

// UnitOfWork runs fn against a repository bound to a single transaction.
type UnitOfWork interface {
	InTx(ctx context.Context, fn func(repo DomainRepository) error) error
}

// Store is the gorm-backed repository.
type Store struct {
	db *gorm.DB
}

var (
	_ DomainRepository = (*Store)(nil)
	_ UnitOfWork       = (*Store)(nil)
)

// Option configures Open.
type Option func(*gorm.Config)

// WithLogLevel sets the gorm SQL logger level.
func WithLogLevel(level logger.LogLevel) Option {
	return func(c *gorm.Config) { c.Logger = logger.Default.LogMode(level) }
}

// Open connects to the SQLite database at dsn and migrates the schema.
func Open(ctx context.Context, dsn string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("database dsn is required")
	}

	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}
	for _, opt := range opts {
		opt(cfg)
	}

	db, err := gorm.Open(sqlite.Open(dsn), cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	// SQLite allows one writer; a single connection serializes access.
	sqlDB.SetMaxOpenConns(1)

	s := New(db)
	if err := s.Migrate(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing gorm handle.
func New(db *gorm.DB) *Store { return &Store{db: db} }

// DB exposes the underlying handle.
func (s *Store) DB() *gorm.DB { return s.db }

// Migrate creates or updates all tables.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(allModels()...); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// WithTx runs fn inside a transaction. fn must use the Store it is given.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// InTx implements UnitOfWork.
func (s *Store) InTx(ctx context.Context, fn func(repo DomainRepository) error) error {
	return s.WithTx(ctx, func(tx *Store) error { return fn(tx) })
}

func (s *Store) conn(ctx context.Context) *gorm.DB { return s.db.WithContext(ctx) }
