package lockfile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	ps "github.com/mitchellh/go-ps"
)

type mockProcess struct {
	pid        int
	executable string
}

func (m *mockProcess) Pid() int           { return m.pid }
func (m *mockProcess) PPid() int          { return 0 }
func (m *mockProcess) Executable() string { return m.executable }

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    Lock
		errPart string
	}{
		{name: "valid", content: "8080|12345|s3cret\n", want: Lock{Port: 8080, PID: 12345, Secret: "s3cret"}},
		{name: "two parts", content: "8080|12345", errPart: "malformed"},
		{name: "garbage", content: "invalid", errPart: "malformed"},
		{name: "empty secret", content: "8080|12345|", errPart: "secret"},
		{name: "empty port", content: "|12345|s", errPart: "port"},
		{name: "non numeric port", content: "http|12345|s", errPart: "port"},
		{name: "port out of range", content: "99999|12345|s", errPart: "range"},
		{name: "bad pid", content: "8080|abc|s", errPart: "process ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.content)
			if tt.errPart != "" {
				if err == nil || !strings.Contains(err.Error(), tt.errPart) {
					t.Fatalf("expected error containing %q, got %v", tt.errPart, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Parse = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestReadMissing(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "none.lock")); !errors.Is(err, ErrNotRunning) {
		t.Errorf("expected ErrNotRunning, got %v", err)
	}
}

func TestWriteThenRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "app.lock")
	want := Lock{Port: 4242, PID: 77, Secret: "abc"}

	if err := Write(path, want); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got != want {
		t.Errorf("Read = %+v, want %+v", got, want)
	}
}

func TestValidate(t *testing.T) {
	lock := Lock{Port: 1, PID: 9, Secret: "s"}

	notFound := func(int) (ps.Process, error) { return nil, nil }
	if err := Validate(lock, "dayreflect-tray", notFound); !errors.Is(err, ErrNotRunning) {
		t.Errorf("expected ErrNotRunning, got %v", err)
	}

	wrong := func(pid int) (ps.Process, error) { return &mockProcess{pid: pid, executable: "bash"}, nil }
	if err := Validate(lock, "dayreflect-tray", wrong); err == nil {
		t.Error("expected error for wrong executable")
	}

	right := func(pid int) (ps.Process, error) { return &mockProcess{pid: pid, executable: "dayreflect-tray.exe"}, nil }
	if err := Validate(lock, "dayreflect-tray", right); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNewSecret(t *testing.T) {
	a, err := NewSecret()
	if err != nil {
		t.Fatal(err)
	}
	b, _ := NewSecret()
	if len(a) != 32 || a == b {
		t.Errorf("expected distinct 32-char secrets, got %q and %q", a, b)
	}
}

func TestPIDFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "view.lock")

	if _, err := ReadPID(path); !errors.Is(err, ErrNotRunning) {
		t.Errorf("expected ErrNotRunning for a missing file, got %v", err)
	}

	if err := WritePID(path, 4321); err != nil {
		t.Fatalf("WritePID failed: %v", err)
	}
	pid, err := ReadPID(path)
	if err != nil {
		t.Fatalf("ReadPID failed: %v", err)
	}
	if pid != 4321 {
		t.Errorf("pid = %d, want 4321", pid)
	}

	for _, content := range []string{"", "abc", "0", "-5", "1|2|x"} {
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := ReadPID(path); err == nil {
			t.Errorf("expected error for %q", content)
		}
	}
}
