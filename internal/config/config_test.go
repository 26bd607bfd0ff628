package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultSettings(t *testing.T) {
	s := Default()

	if s.SampleMonths != 3 {
		t.Fatalf("sampleMonths = %d, want 3", s.SampleMonths)
	}
	if s.IHDefaultHours != 4.5 || s.PTDefaultHours != 5.5 {
		t.Fatalf("default hours = %g/%g, want 4.5/5.5", s.IHDefaultHours, s.PTDefaultHours)
	}
	if s.CoreSkillThreshold != 20 || s.RareCaseThreshold != 5 || s.MinCaseCount != 5 {
		t.Fatalf("tag classification defaults wrong: %+v", s)
	}
	if got := s.TechnicalThresholds(); got != [4]float64{1.8, 2.6, 3.4, 4.2} {
		t.Fatalf("technical thresholds = %v", got)
	}
	// 20 days * 7.5 hours * 0.7
	if s.MonthlyWorkHours() != 105 {
		t.Fatalf("monthly work hours = %g, want 105", s.MonthlyWorkHours())
	}
	if err := s.validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := "sampleMonths: 6\nexcludeOjt: true\nminCaseCount: 10\ntcL4: 4.5\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.SampleMonths != 6 || !s.ExcludeOJT || s.MinCaseCount != 10 {
		t.Fatalf("file overrides not applied: %+v", s)
	}
	if s.TechnicalL4 != 4.5 {
		t.Fatalf("tcL4 = %g, want 4.5", s.TechnicalL4)
	}
	// untouched keys keep their defaults
	if s.HyperWidth != 75 {
		t.Fatalf("hyperWidth = %g, want default 75", s.HyperWidth)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for a missing config file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SKILLMAP_SAMPLE_MONTHS", "12")
	t.Setenv("SKILLMAP_EXCLUDE_OJT", "true")
	t.Setenv("SKILLMAP_TARGET_RALLY_PER_HOUR", "8.5")

	s, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.SampleMonths != 12 || !s.ExcludeOJT || s.TargetRallyPerHour != 8.5 {
		t.Fatalf("env overrides not applied: %+v", s)
	}
}

func TestValidation(t *testing.T) {
	s := Default()
	s.SampleMonths = 0
	if err := s.validate(); err == nil {
		t.Fatal("expected error for zero sampleMonths")
	}

	s = Default()
	s.TechnicalL2 = 1.0 // below L1, not increasing
	if err := s.validate(); err == nil {
		t.Fatal("expected error for non-increasing thresholds")
	}
}
