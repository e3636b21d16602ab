// Package lockfile reads and writes the "port|pid|secret" files that local
// helper processes use to advertise their loopback endpoint, and the bare pid
// files that mark a running app view.
package lockfile

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"
)

// ErrNotRunning is returned when the lockfile is missing or its process is gone.
var ErrNotRunning = errors.New("process is not running")

// FindProcessFunc looks up a process by pid; nil with a nil error means not found.
type FindProcessFunc func(pid int) (ps.Process, error)

// Lock is the parsed content of a lockfile.
type Lock struct {
	Port   int
	PID    int
	Secret string
}

func (l Lock) String() string {
	return fmt.Sprintf("%d|%d|%s", l.Port, l.PID, l.Secret)
}

// Read parses the lockfile at path.
func Read(path string) (Lock, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Lock{}, ErrNotRunning
		}
		return Lock{}, fmt.Errorf("failed to read lockfile: %w", err)
	}
	return Parse(string(content))
}

// Parse decodes "port|pid|secret".
func Parse(content string) (Lock, error) {
	parts := strings.Split(strings.TrimSpace(content), "|")
	if len(parts) != 3 {
		return Lock{}, errors.New("lockfile is malformed")
	}

	if strings.TrimSpace(parts[0]) == "" {
		return Lock{}, errors.New("port in lockfile is empty")
	}
	port, err := strconv.Atoi(parts[0])
	if err != nil {
		return Lock{}, errors.New("invalid port number in lockfile")
	}
	if port < 1 || port > 65535 {
		return Lock{}, fmt.Errorf("port number %d is outside valid range (1-65535)", port)
	}

	pid, err := strconv.Atoi(parts[1])
	if err != nil {
		return Lock{}, errors.New("invalid process ID in lockfile")
	}

	secret := parts[2]
	if strings.TrimSpace(secret) == "" {
		return Lock{}, errors.New("secret in lockfile is empty")
	}

	return Lock{Port: port, PID: pid, Secret: secret}, nil
}

// Validate checks that the lock's pid belongs to a live process whose
// executable name starts with prefix.
func Validate(l Lock, prefix string, find FindProcessFunc) error {
	if find == nil {
		find = ps.FindProcess
	}
	process, err := find(l.PID)
	if err != nil || process == nil {
		return fmt.Errorf("%w: pid %d", ErrNotRunning, l.PID)
	}
	if !strings.HasPrefix(process.Executable(), prefix) {
		return fmt.Errorf("process with PID %d is not %s (is %s)", l.PID, prefix, process.Executable())
	}
	return nil
}

// Write stores l at path, readable only by the current user.
func Write(path string, l Lock) error {
	return writeFile(path, l.String())
}

// WritePID stores a bare pid at path, for processes with no endpoint to advertise.
func WritePID(path string, pid int) error {
	return writeFile(path, strconv.Itoa(pid))
}

// ReadPID reads a file written by WritePID.
func ReadPID(path string) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, ErrNotRunning
		}
		return 0, fmt.Errorf("failed to read lockfile: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(content)))
	if err != nil || pid < 1 {
		return 0, errors.New("invalid process ID in lockfile")
	}
	return pid, nil
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create lockfile directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write lockfile: %w", err)
	}
	return os.Rename(tmp, path)
}

// NewSecret returns a random hex token.
func NewSecret() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
