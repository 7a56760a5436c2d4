package config

import (
	"context"
	"fmt"
	"log/slog"

	"podcast-catalog/pkg/db"
)

// OpenStore connects the configured backend.
func OpenStore(ctx context.Context, cfg *Config, logger *slog.Logger) (db.Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Backend {
	case BackendMemory, "":
		mem, err := db.LoadMemoryStore(cfg.SeedFile)
		if err != nil {
			return nil, err
		}
		logger.Debug("opened memory store", "seed_file", cfg.SeedFile)
		return &seededStore{MemoryStore: mem, path: cfg.SeedFile}, nil

	case BackendMongo:
		client := db.NewClient(cfg.Mongo.URI, cfg.Mongo.Database)
		if err := client.Connect(ctx); err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		logger.Debug("connected to mongo", "database", cfg.Mongo.Database)
		return client, nil

	case BackendPostgres:
		pg := db.NewPostgresClient(db.PostgresConfig{
			DSN:  cfg.Postgres.DSN,
			Pool: cfg.Postgres.pool(),
		})
		if err := pg.Connect(ctx); err != nil {
			return nil, err
		}
		store := db.NewPostgresStore(pg)
		if err := store.EnsureSchema(ctx); err != nil {
			_ = pg.Close()
			return nil, err
		}
		logger.Debug("connected to postgres")
		return store, nil

	case BackendSupabase:
		client := db.NewSupabaseClient(db.SupabaseConfig{
			SupabaseURL:      cfg.Supabase.URL,
			SupabaseKey:      cfg.Supabase.Key,
			Password:         cfg.Supabase.Password,
			ConnectionString: cfg.Supabase.ConnectionString,
			Pool:             cfg.Postgres.pool(),
		})
		if err := client.Connect(ctx); err != nil {
			return nil, err
		}
		store, err := db.NewSupabaseStore(client)
		if err != nil {
			_ = client.Close()
			return nil, err
		}
		logger.Debug("connected to supabase", "direct_db", client.HasDirectDB())
		return store, nil

	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// seededStore writes the memory store back to its seed file on Close.
type seededStore struct {
	*db.MemoryStore
	path string
}

func (s *seededStore) Close(ctx context.Context) error {
	if s.path == "" {
		return nil
	}
	return s.SaveTo(s.path)
}

// pool applies to both Postgres and Supabase direct connections.
func (p PostgresConfig) pool() db.PoolConfig {
	return db.PoolConfig{
		MaxOpenConns: p.MaxOpenConns,
		MaxIdleConns: p.MaxIdleConns,
		ConnMaxIdle:  p.ConnMaxIdle.Duration,
		ConnMaxLife:  p.ConnMaxLife.Duration,
	}
}
