package config

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
)

// ErrMissingDatabaseURL means no connection string could be resolved from
// the environment or from .env.local.
var ErrMissingDatabaseURL = errors.New("DATABASE_URL not set (checked environment and .env.local)")

// Config holds everything the importers need, resolved once at startup.
// Components receive it by parameter; nothing reads the environment later.
type Config struct {
	// DatabaseURL is the Postgres connection string for the database
	// holding essentials.geofence_boundaries.
	DatabaseURL string

	// WorkDir is the local cache directory for downloaded archives and
	// their extracted contents. Never purged; presence of a file or
	// directory there means "already fetched".
	WorkDir string
}

// DefaultWorkDir matches the cache directory the original import runs used,
// so existing operator checkouts keep their downloads.
const DefaultWorkDir = "shapefile_data"

// Load resolves configuration from the environment, falling back to a
// .env.local file in the working directory for DATABASE_URL.
func Load() (Config, error) {
	// Best effort: the file is optional when the variable is exported.
	_ = godotenv.Load(".env.local")

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return Config{}, ErrMissingDatabaseURL
	}

	workDir := os.Getenv("GEOFENCE_WORK_DIR")
	if workDir == "" {
		workDir = DefaultWorkDir
	}

	return Config{
		DatabaseURL: dsn,
		WorkDir:     workDir,
	}, nil
}
