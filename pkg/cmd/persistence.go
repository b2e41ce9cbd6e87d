// Package cmd wires configuration values to concrete sandbox backends.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukex/flowsuite/pkg/persistence"
	"github.com/dukex/flowsuite/pkg/persistence/file"
	"github.com/dukex/flowsuite/pkg/persistence/postgresql"
	"github.com/dukex/flowsuite/pkg/persistence/redis"
	"github.com/dukex/flowsuite/pkg/persistence/sqlite"
)

var supportedPersistenceProviders = []string{"file", "postgres", "postgresql", "sqlite", "redis", "rediss"}

// NewPersistence selects a backend by the scheme of databaseURL.
// A URL without a scheme is treated as a file directory.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	provider, err := parsePersistenceProvider(databaseURL)
	if err != nil {
		return nil, err
	}

	logger = logger.With("persistence", provider)

	switch provider {
	case "postgres", "postgresql":
		return postgresql.NewPersistence(ctx, logger, databaseURL)
	case "sqlite":
		return sqlite.NewPersistence(ctx, logger, databaseURL)
	case "redis", "rediss":
		return redis.NewPersistence(ctx, logger, databaseURL)
	default:
		fp := file.NewPersistence(databaseURL)

		if err := fp.HealthCheck(ctx); err != nil {
			return nil, err
		}

		return fp, nil
	}
}

func parsePersistenceProvider(databaseURL string) (string, error) {
	provider, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file", nil
	}

	for _, supported := range supportedPersistenceProviders {
		if provider == supported {
			return provider, nil
		}
	}

	return "", fmt.Errorf("%w: %q (supported: %s)", persistence.ErrUnsupportedScheme, provider, strings.Join(supportedPersistenceProviders, ", "))
}
