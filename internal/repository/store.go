package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/segyhp/loan-tracker/internal/config"
)

// Store bundles the repositories of the configured backend with the
// connection they share.
type Store struct {
	Loans LoanRepository
	Users UserRepository

	db    *sqlx.DB
	redis *redis.Client
}

// Open connects to the backend named by cfg.Storage.Driver. The postgres
// backend has its schema applied before Open returns.
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		return &Store{
			Loans: NewMemoryLoanRepository(),
			Users: NewMemoryUserRepository(),
		}, nil

	case config.StoragePostgres:
		db, err := sqlx.ConnectContext(ctx, "postgres", cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}

		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

		if err := Migrate(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}

		return &Store{
			Loans: NewLoanRepository(db),
			Users: NewUserRepository(db),
			db:    db,
		}, nil

	case config.StorageRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}

		return &Store{
			Loans: NewRedisLoanRepository(client, cfg.Redis.Prefix),
			Users: NewRedisUserRepository(client, cfg.Redis.Prefix),
			redis: client,
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// DB is the postgres pool, or nil for other backends.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Redis is the redis client, or nil for other backends.
func (s *Store) Redis() *redis.Client {
	return s.redis
}

func (s *Store) Close() error {
	var errs []error
	if s.db != nil {
		errs = append(errs, s.db.Close())
	}
	if s.redis != nil {
		errs = append(errs, s.redis.Close())
	}
	return errors.Join(errs...)
}
