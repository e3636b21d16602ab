package settings

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/dayreflect/internal/cli"
	"github.com/julianstephens/dayreflect/internal/storage/sqlite"
)

func setupTestDB(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})

	var out bytes.Buffer
	return &cli.Context{Store: store, Out: &out}, &out
}

func ptr[T any](v T) *T { return &v }

func TestSettingsCmd_List(t *testing.T) {
	ctx, out := setupTestDB(t)

	if err := (&SettingsCmd{List: true}).Run(ctx); err != nil {
		t.Fatalf("settings list failed: %v", err)
	}
	for _, want := range []string{"Notifications Enabled: true", "Timezone:              Local", "(built-in)", "(none)"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("expected %q in output:\n%s", want, out.String())
		}
	}
}

func TestSettingsCmd_Update(t *testing.T) {
	ctx, _ := setupTestDB(t)

	cmd := &SettingsCmd{
		Notifications: ptr(false),
		Timezone:      ptr("America/New_York"),
		LaunchCommand: ptr("alacritty -e dayreflect"),
	}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("settings update failed: %v", err)
	}

	got, err := ctx.Store.GetSettings()
	if err != nil {
		t.Fatal(err)
	}
	if got.NotificationsEnabled || got.Timezone != "America/New_York" || got.LaunchCommand != "alacritty -e dayreflect" {
		t.Errorf("settings not saved: %+v", got)
	}
}

func TestSettingsCmd_InvalidTimezone(t *testing.T) {
	ctx, _ := setupTestDB(t)

	if err := (&SettingsCmd{Timezone: ptr("Mars/Olympus")}).Run(ctx); err == nil {
		t.Fatal("expected error for invalid timezone")
	}
	got, _ := ctx.Store.GetSettings()
	if got.Timezone != "Local" {
		t.Errorf("timezone changed to %q", got.Timezone)
	}
}

func TestSettingsCmd_PromptsFile(t *testing.T) {
	ctx, _ := setupTestDB(t)
	dir := t.TempDir()

	valid := filepath.Join(dir, "prompts.yaml")
	content := `prompts:
  - id: sleep
    title: How did you sleep?
    description: A quick check.
    options:
      - id: well
        label: Well
      - id: poorly
        label: Poorly
`
	if err := os.WriteFile(valid, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	if err := (&SettingsCmd{PromptsFile: ptr(valid)}).Run(ctx); err != nil {
		t.Fatalf("valid prompts file rejected: %v", err)
	}
	got, _ := ctx.Store.GetSettings()
	if got.PromptsFile != valid {
		t.Errorf("PromptsFile = %q, want %q", got.PromptsFile, valid)
	}

	invalid := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(invalid, []byte("prompts: []\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := (&SettingsCmd{PromptsFile: ptr(invalid)}).Run(ctx); err == nil {
		t.Error("expected error for empty prompt set")
	}
	if err := (&SettingsCmd{PromptsFile: ptr(filepath.Join(dir, "missing.yaml"))}).Run(ctx); err == nil {
		t.Error("expected error for missing file")
	}

	if err := (&SettingsCmd{PromptsFile: ptr("")}).Run(ctx); err != nil {
		t.Fatalf("clearing prompts file failed: %v", err)
	}
	got, _ = ctx.Store.GetSettings()
	if got.PromptsFile != "" {
		t.Errorf("expected prompts file cleared, got %q", got.PromptsFile)
	}
}
