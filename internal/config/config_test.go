package config

import (
	"path/filepath"
	"testing"

	"github.com/san-kum/mpole/internal/hippo"
	"github.com/san-kum/mpole/internal/scf"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Polarization != "mutual" {
		t.Errorf("expected polarization mutual, got %s", cfg.Polarization)
	}
	if cfg.Epsilon <= 0 {
		t.Error("epsilon should be positive")
	}
	if cfg.MaxIterations <= 0 {
		t.Error("max iterations should be positive")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("water-dimer")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if len(cfg.Particles) != 6 {
		t.Errorf("expected 6 particles, got %d", len(cfg.Particles))
	}

	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	if len(ListPresets()) == 0 {
		t.Error("expected built-in presets")
	}
}

func TestOptionsMapping(t *testing.T) {
	cfg := GetPreset("water-box")
	opts, err := cfg.Options()
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	if opts.Method != hippo.PME {
		t.Errorf("expected pme method, got %v", opts.Method)
	}
	if opts.Polarization != scf.Mutual {
		t.Errorf("expected mutual polarization, got %v", opts.Polarization)
	}
	if !opts.Box.IsValid() {
		t.Errorf("box not valid: %v", opts.Box)
	}

	bad := DefaultConfig()
	bad.Polarization = "sor"
	if _, err := bad.Options(); err == nil {
		t.Error("expected error for unknown polarization mode")
	}
	bad = DefaultConfig()
	bad.Method = "pme"
	if _, err := bad.Options(); err == nil {
		t.Error("expected error for pme without box")
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "system.yaml")
	if err := Save(path, GetPreset("ion-pair")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Particles) != 2 {
		t.Fatalf("expected 2 particles, got %d", len(cfg.Particles))
	}
	if cfg.Particles[1].Position[0] != 2.8 {
		t.Errorf("position lost in round trip: %v", cfg.Particles[1].Position)
	}
	if cfg.Polarization != "direct" {
		t.Errorf("polarization lost in round trip: %s", cfg.Polarization)
	}
}

func TestBuildForce(t *testing.T) {
	f, positions, err := GetPreset("water-dimer").BuildForce()
	if err != nil {
		t.Fatalf("BuildForce: %v", err)
	}
	if f == nil || len(positions) != 6 {
		t.Fatalf("unexpected force/positions: %v %d", f, len(positions))
	}
}
