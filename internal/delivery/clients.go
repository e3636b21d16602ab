package delivery

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/julianstephens/dayreflect/internal/constants"
	"github.com/julianstephens/dayreflect/internal/lockfile"
	"github.com/julianstephens/dayreflect/internal/logger"
)

// ErrNoLauncher is returned by Open when no launch command is configured.
var ErrNoLauncher = errors.New("no launch command configured")

var (
	selfPIDFunc = os.Getpid
	commandFunc = func(command string) *exec.Cmd {
		if runtime.GOOS == "windows" {
			return exec.Command("cmd", "/C", command)
		}
		return exec.Command("sh", "-c", command)
	}
)

// ViewLockfilePath returns where a running TUI records its pid.
func ViewLockfilePath(configDir string) string {
	return filepath.Join(configDir, constants.ViewLockfileName)
}

// RegisterView marks the current process as the open app view. The returned
// release removes the mark if it still names this process.
func RegisterView(path string) (release func(), err error) {
	pid := selfPIDFunc()
	if err := lockfile.WritePID(path, pid); err != nil {
		return func() {}, err
	}
	return func() {
		if owner, err := lockfile.ReadPID(path); err == nil && owner == pid {
			if err := os.Remove(path); err != nil {
				logger.Warn("Failed to remove view lockfile", "path", path, "error", err)
			}
		}
	}, nil
}

// ProcessClients finds an open view through the view lockfile and starts
// LaunchCommand when there is none.
type ProcessClients struct {
	ViewLockPath  string
	LaunchCommand string
}

func (c ProcessClients) Focus(context.Context) (bool, error) {
	if c.ViewLockPath == "" {
		return false, nil
	}
	pid, err := lockfile.ReadPID(c.ViewLockPath)
	if err != nil {
		if errors.Is(err, lockfile.ErrNotRunning) {
			return false, nil
		}
		return false, fmt.Errorf("reading view lockfile: %w", err)
	}
	if pid == selfPIDFunc() {
		return false, nil
	}
	proc, err := findProcessFunc(pid)
	if err != nil || proc == nil || !isAppExecutable(proc.Executable()) {
		logger.Debug("Stale view lockfile", "pid", pid)
		return false, nil
	}
	logger.Info("App already open", "pid", pid)
	return true, nil
}

// Open starts the launch command with the target url in DAYREFLECT_URL. The
// process outlives the caller's context.
func (c ProcessClients) Open(_ context.Context, url string) error {
	if strings.TrimSpace(c.LaunchCommand) == "" {
		return ErrNoLauncher
	}
	cmd := commandFunc(c.LaunchCommand)
	cmd.Env = append(os.Environ(), "DAYREFLECT_URL="+url)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting launch command: %w", err)
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			logger.Debug("Launch command exited", "error", err)
		}
	}()
	return nil
}

// isAppExecutable matches the app binary itself, not helpers such as the tray
// that share its name as a prefix.
func isAppExecutable(name string) bool {
	return strings.TrimSuffix(name, ".exe") == constants.AppName
}
