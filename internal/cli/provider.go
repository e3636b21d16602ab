package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/julianstephens/dayreflect/internal/constants"
	"github.com/julianstephens/dayreflect/internal/keyring"
	"github.com/julianstephens/dayreflect/internal/logger"
	"github.com/julianstephens/dayreflect/internal/storage"
	"github.com/julianstephens/dayreflect/internal/storage/postgres"
	"github.com/julianstephens/dayreflect/internal/storage/sqlite"
)

// ErrEmbeddedCredentials is returned for a --config connection string that carries a password.
var ErrEmbeddedCredentials = errors.New("PostgreSQL connection strings with embedded credentials are not allowed on the command line")

var (
	userHomeDirFunc   = os.UserHomeDir
	userConfigDirFunc = os.UserConfigDir
	getenvFunc        = os.Getenv
	keyringGetFunc    = keyring.GetConnectionString
)

// ExpandPath resolves a leading "~" to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := userHomeDirFunc()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// Connection is the resolved storage target.
type Connection struct {
	// Target is a SQLite path or a PostgreSQL connection string.
	Target string
	// Source says where Target came from: flag, env, keyring or default.
	Source string
}

func (c Connection) Postgres() bool {
	return isPostgresTarget(c.Target)
}

func isPostgresTarget(s string) bool {
	return storage.IsPostgres(s) || strings.Contains(s, "host=")
}

// ResolveConnection picks the storage target. An explicit --config wins. With
// the default path, DAYREFLECT_DB_CONNECTION and then the OS keyring are
// consulted before falling back to the default SQLite file.
func ResolveConnection(config string) (Connection, error) {
	if config != "" && config != constants.DefaultConfigPath {
		if isPostgresTarget(config) {
			if storage.HasEmbeddedCredentials(config) {
				return Connection{}, ErrEmbeddedCredentials
			}
			return Connection{Target: config, Source: "flag"}, nil
		}
		path, err := ExpandPath(config)
		if err != nil {
			return Connection{}, err
		}
		return Connection{Target: path, Source: "flag"}, nil
	}

	if env := strings.TrimSpace(getenvFunc(constants.DBConnectionEnvVar)); env != "" {
		return Connection{Target: env, Source: "env"}, nil
	}

	connStr, err := keyringGetFunc()
	switch {
	case err == nil && connStr != "":
		return Connection{Target: connStr, Source: "keyring"}, nil
	case err != nil && !errors.Is(err, keyring.ErrNotFound):
		logger.Debug("Keyring lookup failed", "error", err)
	}

	path, err := ExpandPath(constants.DefaultConfigPath)
	if err != nil {
		return Connection{}, err
	}
	return Connection{Target: path, Source: "default"}, nil
}

// OpenProvider returns an unloaded store for conn.
func OpenProvider(conn Connection) storage.Provider {
	if conn.Postgres() {
		return postgres.New(conn.Target)
	}
	return sqlite.NewStore(conn.Target)
}

// ConfigDir is where logs and lockfiles live: next to a SQLite database, or
// in the user config directory for PostgreSQL.
func ConfigDir(conn Connection) (string, error) {
	if !conn.Postgres() {
		return filepath.Dir(conn.Target), nil
	}
	dir, err := userConfigDirFunc()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config directory: %w", err)
	}
	return filepath.Join(dir, constants.AppName), nil
}
