package utils

import (
	"testing"
	"time"

	"github.com/julianstephens/dayreflect/internal/models"
)

func TestLoadLocation(t *testing.T) {
	tests := []struct {
		name    string
		tz      string
		want    string
		wantErr bool
	}{
		{name: "empty is local", tz: "", want: time.Local.String()},
		{name: "explicit local", tz: "Local", want: time.Local.String()},
		{name: "utc", tz: "UTC", want: "UTC"},
		{name: "iana name", tz: "America/New_York", want: "America/New_York"},
		{name: "invalid", tz: "Mars/Olympus_Mons", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := LoadLocation(tt.tz)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadLocation(%q) error = %v, wantErr %v", tt.tz, err, tt.wantErr)
			}
			if !tt.wantErr && loc.String() != tt.want {
				t.Errorf("LoadLocation(%q) = %s, want %s", tt.tz, loc, tt.want)
			}
		})
	}
}

func TestLocationFromSettingsFallsBack(t *testing.T) {
	if loc := LocationFromSettings(models.Settings{Timezone: "Not/AZone"}); loc != time.Local {
		t.Errorf("expected time.Local fallback, got %s", loc)
	}
	if loc := LocationFromSettings(models.Settings{Timezone: "UTC"}); loc.String() != "UTC" {
		t.Errorf("expected UTC, got %s", loc)
	}
}

func TestStartOfDay(t *testing.T) {
	loc, _ := time.LoadLocation("Asia/Tokyo")
	in := time.Date(2024, 3, 9, 23, 59, 12, 5, loc)
	got := StartOfDay(in)
	want := time.Date(2024, 3, 9, 0, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Errorf("StartOfDay = %v, want %v", got, want)
	}
}

func TestValidateTimezone(t *testing.T) {
	if !ValidateTimezone("Europe/Berlin") {
		t.Error("expected Europe/Berlin to be valid")
	}
	if ValidateTimezone("Nowhere/Special") {
		t.Error("expected invalid timezone to fail")
	}
}
