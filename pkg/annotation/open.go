package annotation

import (
	"context"
	"path/filepath"

	"github.com/matzehuels/platekit/pkg/config"
	perrors "github.com/matzehuels/platekit/pkg/errors"
)

// Open returns the store selected by cfg. Relative or empty paths for the
// file and sqlite backends resolve under config.DataDir.
func Open(ctx context.Context, cfg config.Store) (Store, error) {
	switch cfg.Backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile:
		dir, err := dataPath(cfg.Path, "plates")
		if err != nil {
			return nil, err
		}
		return NewFileStore(dir)
	case BackendSQLite:
		path, err := dataPath(cfg.Path, "platekit.db")
		if err != nil {
			return nil, err
		}
		return NewSQLiteStore(path)
	case BackendRedis:
		return NewRedisStore(ctx, RedisConfig{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
			Prefix:   cfg.Prefix,
		})
	case BackendMongo:
		return NewMongoStore(ctx, MongoConfig{
			URI:      cfg.URI,
			Database: cfg.Database,
		})
	default:
		return nil, perrors.New(perrors.ErrCodeInvalidConfig, "unknown store backend %q", cfg.Backend)
	}
}

func dataPath(p, fallback string) (string, error) {
	if filepath.IsAbs(p) {
		return p, nil
	}
	dir, err := config.DataDir()
	if err != nil {
		return "", perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "resolve data directory")
	}
	if p == "" {
		p = fallback
	}
	return filepath.Join(dir, p), nil
}
