package delivery

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/dayreflect/internal/constants"
	"github.com/julianstephens/dayreflect/internal/notifier"
)

func mockViewProcesses(t *testing.T, self int, running map[int]string) {
	t.Helper()
	origFind, origSelf := findProcessFunc, selfPIDFunc
	findProcessFunc = func(pid int) (ps.Process, error) {
		exe, ok := running[pid]
		if !ok {
			return nil, nil
		}
		return fakeProcess{pid: pid, executable: exe}, nil
	}
	selfPIDFunc = func() int { return self }
	t.Cleanup(func() {
		findProcessFunc = origFind
		selfPIDFunc = origSelf
	})
}

func TestProcessClientsFocus(t *testing.T) {
	// pid 10 is the daemon, 30 a send-message process, 40 the tray app.
	running := map[int]string{
		10: "dayreflect",
		20: "dayreflect",
		21: "dayreflect.exe",
		30: "dayreflect",
		40: "dayreflect-tray",
		50: "bash",
	}
	tests := []struct {
		name    string
		lock    string
		want    bool
		wantErr bool
	}{
		{name: "no view registered", want: false},
		{name: "registered view", lock: "20", want: true},
		{name: "registered view on windows", lock: "21", want: true},
		{name: "lock names this process", lock: "10", want: false},
		{name: "lock names the tray app", lock: "40", want: false},
		{name: "lock names an unrelated process", lock: "50", want: false},
		{name: "view has exited", lock: "99", want: false},
		{name: "malformed lock", lock: "twenty", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockViewProcesses(t, 10, running)
			path := filepath.Join(t.TempDir(), constants.ViewLockfileName)
			if tt.lock != "" {
				if err := os.WriteFile(path, []byte(tt.lock), 0o600); err != nil {
					t.Fatal(err)
				}
			}
			got, err := ProcessClients{ViewLockPath: path}.Focus(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("Focus() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Focus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProcessClientsFocusIgnoresRunningHelpers(t *testing.T) {
	// The tray and a click sender are running but no view registered.
	mockViewProcesses(t, 10, map[int]string{10: "dayreflect", 30: "dayreflect", 40: "dayreflect-tray"})
	path := filepath.Join(t.TempDir(), constants.ViewLockfileName)

	got, err := ProcessClients{ViewLockPath: path}.Focus(context.Background())
	if err != nil {
		t.Fatalf("Focus failed: %v", err)
	}
	if got {
		t.Error("helpers must not count as an open view")
	}
}

func TestRegisterView(t *testing.T) {
	mockViewProcesses(t, 20, map[int]string{20: "dayreflect"})
	path := filepath.Join(t.TempDir(), constants.ViewLockfileName)

	release, err := RegisterView(path)
	if err != nil {
		t.Fatalf("RegisterView failed: %v", err)
	}
	selfPIDFunc = func() int { return 10 }
	if ok, _ := (ProcessClients{ViewLockPath: path}).Focus(context.Background()); !ok {
		t.Error("expected the registered view to be found")
	}

	release()
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected lockfile removed, stat err = %v", err)
	}
}

func TestRegisterViewReleaseKeepsNewerOwner(t *testing.T) {
	mockViewProcesses(t, 20, nil)
	path := filepath.Join(t.TempDir(), constants.ViewLockfileName)

	release, err := RegisterView(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("21"), 0o600); err != nil {
		t.Fatal(err)
	}
	release()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("lockfile of another view was removed: %v", err)
	}
}

func TestProcessClientsOpen(t *testing.T) {
	if err := (ProcessClients{}).Open(context.Background(), "/"); !errors.Is(err, ErrNoLauncher) {
		t.Errorf("expected ErrNoLauncher, got %v", err)
	}

	if runtime.GOOS == "windows" {
		t.Skip("uses a POSIX shell")
	}
	var ran string
	orig := commandFunc
	commandFunc = func(command string) *exec.Cmd {
		ran = command
		return exec.Command("true")
	}
	t.Cleanup(func() { commandFunc = orig })

	if err := (ProcessClients{LaunchCommand: "dayreflect tui"}).Open(context.Background(), "/"); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if ran != "dayreflect tui" {
		t.Errorf("ran %q", ran)
	}
}

func TestClickOpensAppThatOutlivesRequest(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a POSIX shell")
	}
	marker := filepath.Join(t.TempDir(), "opened")
	clients := ProcessClients{
		ViewLockPath:  filepath.Join(t.TempDir(), constants.ViewLockfileName),
		LaunchCommand: "sleep 1; touch " + marker,
	}
	e := NewEngine(newChanDisplay(), clients)
	t.Cleanup(e.Stop)
	s, err := NewServer(e, filepath.Join(t.TempDir(), constants.DeliveryLockfileName))
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp := post(t, ts.URL, s.secret, `{"type":"NOTIFICATION_CLICK","action":"open"}`)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusAccepted)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, err := os.Stat(marker); err == nil {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("launched app did not survive the request")
		}
		time.Sleep(50 * time.Millisecond)
	}
}

type fakeTray struct {
	err   error
	calls int
}

func (f *fakeTray) Notify(context.Context, string, string) error {
	f.calls++
	return f.err
}

func TestTrayDisplay(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr bool
	}{
		{name: "shown"},
		{name: "tray not running is not an error", err: notifier.ErrTrayNotRunning},
		{name: "other errors surface", err: errors.New("boom"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tray := &fakeTray{err: tt.err}
			err := TrayDisplay{Notifier: tray}.Show(context.Background(), Shown{Title: "t"})
			if (err != nil) != tt.wantErr {
				t.Errorf("Show() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tray.calls != 1 {
				t.Errorf("expected one notify call, got %d", tray.calls)
			}
		})
	}
}
