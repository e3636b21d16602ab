package system

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateCmd(t *testing.T) {
	dir := t.TempDir()
	covered := filepath.Join(dir, "covered.yaml")
	uncovered := filepath.Join(dir, "uncovered.yaml")
	broken := filepath.Join(dir, "broken.yaml")

	write := func(path, data string) {
		t.Helper()
		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write(covered, `prompts:
  - id: energy
    title: Where is your energy?
    options:
      - {id: high, label: Buzzing}
`)
	write(uncovered, `prompts:
  - id: weather
    title: What is the weather like?
    options:
      - {id: sunny, label: Sunny}
`)
	write(broken, `prompts: []`)

	tests := []struct {
		name    string
		file    string
		want    string
		wantErr bool
	}{
		{name: "built-in", file: "", want: "No conflicts detected."},
		{name: "covered file", file: covered, want: "No conflicts detected."},
		{name: "missing perspective", file: uncovered, want: "Conflicts detected:"},
		{name: "invalid file", file: broken, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, out := setupTestDB(t)
			err := (&ValidateCmd{File: tt.file}).Run(ctx)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Run() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.want != "" && !strings.Contains(out.String(), tt.want) {
				t.Errorf("expected %q in output:\n%s", tt.want, out.String())
			}
		})
	}
}
