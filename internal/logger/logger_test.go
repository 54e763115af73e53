package logger

import (
	"reflect"
	"testing"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRegistryLevel(t *testing.T) {
	r := NewWithCore(zapcore.NewNopCore(), zapcore.WarnLevel, []NamedLevel{
		{Name: "engine", Level: "debug"},
		{Name: "engine*", Level: "info"},
		{Name: "engine.diff", Level: "error"},
		{Name: "[", Level: "debug"},
	})

	tests := []struct {
		name string
		want zapcore.Level
	}{
		{"engine", zapcore.DebugLevel},
		{"engine.scan", zapcore.InfoLevel},
		{"engine.diff", zapcore.InfoLevel},
		{"session", zapcore.WarnLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Level(tt.name); got != tt.want {
				t.Errorf("Level(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestRegistryNamed(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := NewWithCore(core, zapcore.WarnLevel, []NamedLevel{{Name: "engine", Level: "debug"}})

	r.Named("engine").Debug("cycle")
	r.Named("session").Info("opened")
	r.Named("session").Warn("stale edit")

	if r.Named("engine") != r.Named("engine") {
		t.Error("Named should return the same logger for the same name")
	}
	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].LoggerName != "engine" || entries[0].Message != "cycle" {
		t.Errorf("first entry = %s %q", entries[0].LoggerName, entries[0].Message)
	}
	if entries[1].LoggerName != "session" || entries[1].Level != zapcore.WarnLevel {
		t.Errorf("second entry = %s %v", entries[1].LoggerName, entries[1].Level)
	}
}

func TestLevelsFromString(t *testing.T) {
	got, err := LevelsFromString("engine=debug; session*=warn;error")
	if err != nil {
		t.Fatalf("LevelsFromString: %v", err)
	}
	want := []NamedLevel{
		{Name: "engine", Level: "debug"},
		{Name: "session*", Level: "warn"},
		{Name: "*", Level: "error"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("LevelsFromString() = %v, want %v", got, want)
	}

	if _, err := LevelsFromString("engine=loud"); err == nil {
		t.Error("expected an error for an unknown level")
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
	bad := []Config{
		{DefaultLevel: "loud"},
		{Levels: []NamedLevel{{Name: "x", Level: "nope"}}},
		{Format: "xml"},
	}
	for _, c := range bad {
		if err := c.Validate(); err == nil {
			t.Errorf("Validate(%+v) = nil, want error", c)
		}
	}
}

func TestNewBuildsLogger(t *testing.T) {
	r, err := New(Config{DefaultLevel: "error", Format: FormatJSON, OutputPaths: []string{"stderr"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if r.Level("anything") != zapcore.ErrorLevel {
		t.Errorf("Level() = %v, want error", r.Level("anything"))
	}
	r.Named("engine").Debug("dropped")
	Nop().Named("x").Error("discarded")
}
