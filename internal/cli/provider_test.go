package cli

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/julianstephens/dayreflect/internal/constants"
	"github.com/julianstephens/dayreflect/internal/keyring"
	"github.com/julianstephens/dayreflect/internal/storage/postgres"
	"github.com/julianstephens/dayreflect/internal/storage/sqlite"
)

func stubLookups(t *testing.T, env string, keyringValue string, keyringErr error) {
	t.Helper()
	origHome, origEnv, origKeyring, origConfig := userHomeDirFunc, getenvFunc, keyringGetFunc, userConfigDirFunc
	userHomeDirFunc = func() (string, error) { return "/home/test", nil }
	userConfigDirFunc = func() (string, error) { return "/home/test/.config", nil }
	getenvFunc = func(key string) string {
		if key == constants.DBConnectionEnvVar {
			return env
		}
		return ""
	}
	keyringGetFunc = func() (string, error) { return keyringValue, keyringErr }
	t.Cleanup(func() {
		userHomeDirFunc, getenvFunc, keyringGetFunc, userConfigDirFunc = origHome, origEnv, origKeyring, origConfig
	})
}

func TestExpandPath(t *testing.T) {
	stubLookups(t, "", "", keyring.ErrNotFound)

	tests := []struct {
		in   string
		want string
	}{
		{"~/.config/dayreflect/dayreflect.db", filepath.Join("/home/test", ".config/dayreflect/dayreflect.db")},
		{"~", "/home/test"},
		{"/tmp/x.db", "/tmp/x.db"},
		{"relative.db", "relative.db"},
		{"~other/x.db", "~other/x.db"},
	}
	for _, tt := range tests {
		got, err := ExpandPath(tt.in)
		if err != nil {
			t.Fatalf("ExpandPath(%q) failed: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolveConnection(t *testing.T) {
	defaultPath := filepath.Join("/home/test", ".config/dayreflect/dayreflect.db")

	tests := []struct {
		name        string
		config      string
		env         string
		keyring     string
		keyringErr  error
		wantTarget  string
		wantSource  string
		wantErr     error
		wantPostgre bool
	}{
		{name: "explicit sqlite path", config: "/data/reflect.db", keyringErr: keyring.ErrNotFound, wantTarget: "/data/reflect.db", wantSource: "flag"},
		{name: "explicit postgres without password", config: "postgres://me@db/reflect", wantTarget: "postgres://me@db/reflect", wantSource: "flag", wantPostgre: true},
		{name: "explicit postgres with password", config: "postgres://me:secret@db/reflect", wantErr: ErrEmbeddedCredentials},
		{name: "explicit dsn with password", config: "host=db user=me password=secret", wantErr: ErrEmbeddedCredentials},
		{name: "env wins over keyring", config: constants.DefaultConfigPath, env: "postgres://me:pw@db/x", keyring: "postgres://other@db/y", wantTarget: "postgres://me:pw@db/x", wantSource: "env", wantPostgre: true},
		{name: "keyring when no env", config: constants.DefaultConfigPath, keyring: "postgres://me:pw@db/y", wantTarget: "postgres://me:pw@db/y", wantSource: "keyring", wantPostgre: true},
		{name: "default when keyring empty", config: constants.DefaultConfigPath, keyringErr: keyring.ErrNotFound, wantTarget: defaultPath, wantSource: "default"},
		{name: "default when keyring unavailable", config: "", keyringErr: keyring.ErrKeyringUnavailable, wantTarget: defaultPath, wantSource: "default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubLookups(t, tt.env, tt.keyring, tt.keyringErr)

			conn, err := ResolveConnection(tt.config)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveConnection failed: %v", err)
			}
			if conn.Target != tt.wantTarget || conn.Source != tt.wantSource {
				t.Errorf("got %+v, want target %q source %q", conn, tt.wantTarget, tt.wantSource)
			}
			if conn.Postgres() != tt.wantPostgre {
				t.Errorf("Postgres() = %v, want %v", conn.Postgres(), tt.wantPostgre)
			}
		})
	}
}

func TestOpenProviderAndConfigDir(t *testing.T) {
	stubLookups(t, "", "", keyring.ErrNotFound)

	sqliteConn := Connection{Target: "/data/reflect.db"}
	if _, ok := OpenProvider(sqliteConn).(*sqlite.Store); !ok {
		t.Error("expected sqlite store for a file path")
	}
	if dir, _ := ConfigDir(sqliteConn); dir != "/data" {
		t.Errorf("ConfigDir(sqlite) = %q", dir)
	}

	pgConn := Connection{Target: "postgres://me@db/reflect"}
	if _, ok := OpenProvider(pgConn).(*postgres.Store); !ok {
		t.Error("expected postgres store for a connection string")
	}
	if dir, _ := ConfigDir(pgConn); dir != filepath.Join("/home/test/.config", constants.AppName) {
		t.Errorf("ConfigDir(postgres) = %q", dir)
	}
}
