package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Settings holds every tunable of the scoring model. The zero value is not
// usable; obtain one through Load or Default. All analyses take Settings by
// value so a run sees a consistent snapshot.
type Settings struct {
	// Sampling window
	SampleMonths int  `yaml:"sampleMonths"`
	ExcludeOJT   bool `yaml:"excludeOjt"`

	// Default daily support hours per organization type, used when the
	// roster carries no work-time ratio.
	IHDefaultHours float64 `yaml:"ihDefaultHours"`
	PTDefaultHours float64 `yaml:"ptDefaultHours"`

	// Tag classification
	CoreSkillThreshold float64 `yaml:"coreSkillThreshold"` // percent share at or above which a tag is core
	RareCaseThreshold  float64 `yaml:"rareCaseThreshold"`  // percent share at or below which a tag is rare
	MinCaseCount       int     `yaml:"minCaseCount"`       // cases required before a distribution is computed

	// Level boundaries per scoring dimension. A composite score below L1
	// grades L1, below L2 grades L2, and so on; at or above L4 grades L5.
	TechnicalL1 float64 `yaml:"tcL1"`
	TechnicalL2 float64 `yaml:"tcL2"`
	TechnicalL3 float64 `yaml:"tcL3"`
	TechnicalL4 float64 `yaml:"tcL4"`
	ResponseL1  float64 `yaml:"rdL1"`
	ResponseL2  float64 `yaml:"rdL2"`
	ResponseL3  float64 `yaml:"rdL3"`
	ResponseL4  float64 `yaml:"rdL4"`
	KnowledgeL1 float64 `yaml:"krL1"`
	KnowledgeL2 float64 `yaml:"krL2"`
	KnowledgeL3 float64 `yaml:"krL3"`
	KnowledgeL4 float64 `yaml:"krL4"`

	// Skill-type gates
	HyperWidth        float64 `yaml:"hyperWidth"`
	HyperProductivity float64 `yaml:"hyperProductivity"`
	SpecialistDepth   float64 `yaml:"specialistDepth"`
	SpecialistComplex int     `yaml:"specialistComplexTags"`
	AllrounderWidth   float64 `yaml:"allrounderWidth"`

	// Workforce model
	WorkDaysPerMonth     float64 `yaml:"workDaysPerMonth"`
	HoursPerDay          float64 `yaml:"hoursPerDay"`
	ProductivityRatio    float64 `yaml:"productivityRatio"`
	TargetRallyPerHour   float64 `yaml:"targetRallyPerHour"`
	TargetCompletionRate float64 `yaml:"targetCompletionRate"`

	// Per-category targets, in AllCategories order: internal primary,
	// internal secondary, external primary, external secondary.
	TargetRallyRateIHPrimary   float64 `yaml:"targetRallyRateIhPrimary"`
	TargetRallyRateIHSecondary float64 `yaml:"targetRallyRateIhSecondary"`
	TargetRallyRatePTPrimary   float64 `yaml:"targetRallyRatePtPrimary"`
	TargetRallyRatePTSecondary float64 `yaml:"targetRallyRatePtSecondary"`
	TargetProdIHPrimary        float64 `yaml:"targetProductivityIhPrimary"`
	TargetProdIHSecondary      float64 `yaml:"targetProductivityIhSecondary"`
	TargetProdPTPrimary        float64 `yaml:"targetProductivityPtPrimary"`
	TargetProdPTSecondary      float64 `yaml:"targetProductivityPtSecondary"`

	// Effective-productivity cost factors
	ConsultationCostFactor float64 `yaml:"consultationCostFactor"`
	QuestionCostFactor     float64 `yaml:"questionCostFactor"`
}

// Load initialises Settings from a YAML file and optional environment
// overrides. An empty path falls back to SKILLMAP_CONFIG, and if neither is
// set the built-in defaults are returned.
func Load(path string) (Settings, error) {
	if path == "" {
		path = os.Getenv("SKILLMAP_CONFIG")
	}

	s := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return s, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return s, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &s); err != nil {
			return s, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&s)

	if err := s.validate(); err != nil {
		return s, err
	}
	return s, nil
}

// Default returns the built-in settings table.
func Default() Settings {
	return Settings{
		SampleMonths: 3,
		ExcludeOJT:   false,

		IHDefaultHours: 4.5,
		PTDefaultHours: 5.5,

		CoreSkillThreshold: 20,
		RareCaseThreshold:  5,
		MinCaseCount:       5,

		TechnicalL1: 1.8, TechnicalL2: 2.6, TechnicalL3: 3.4, TechnicalL4: 4.2,
		ResponseL1: 1.8, ResponseL2: 2.6, ResponseL3: 3.4, ResponseL4: 4.2,
		KnowledgeL1: 1.8, KnowledgeL2: 2.6, KnowledgeL3: 3.4, KnowledgeL4: 4.2,

		HyperWidth:        75,
		HyperProductivity: 10,
		SpecialistDepth:   3.5,
		SpecialistComplex: 3,
		AllrounderWidth:   70,

		WorkDaysPerMonth:     20,
		HoursPerDay:          7.5,
		ProductivityRatio:    0.7,
		TargetRallyPerHour:   10,
		TargetCompletionRate: 85,

		TargetRallyRateIHPrimary:   70,
		TargetRallyRateIHSecondary: 15,
		TargetRallyRatePTPrimary:   10,
		TargetRallyRatePTSecondary: 5,
		TargetProdIHPrimary:        12,
		TargetProdIHSecondary:      10,
		TargetProdPTPrimary:        8,
		TargetProdPTSecondary:      7,

		ConsultationCostFactor: 0.5,
		QuestionCostFactor:     0.3,
	}
}

// MonthlyWorkHours is the effective support capacity of one full-time member
// per month.
func (s Settings) MonthlyWorkHours() float64 {
	return s.WorkDaysPerMonth * s.HoursPerDay * s.ProductivityRatio
}

// TechnicalThresholds returns the L1..L4 boundaries of the technical dimension.
func (s Settings) TechnicalThresholds() [4]float64 {
	return [4]float64{s.TechnicalL1, s.TechnicalL2, s.TechnicalL3, s.TechnicalL4}
}

// ResponseThresholds returns the L1..L4 boundaries of the response dimension.
func (s Settings) ResponseThresholds() [4]float64 {
	return [4]float64{s.ResponseL1, s.ResponseL2, s.ResponseL3, s.ResponseL4}
}

// KnowledgeThresholds returns the L1..L4 boundaries of the knowledge dimension.
func (s Settings) KnowledgeThresholds() [4]float64 {
	return [4]float64{s.KnowledgeL1, s.KnowledgeL2, s.KnowledgeL3, s.KnowledgeL4}
}

func (s Settings) validate() error {
	if s.SampleMonths <= 0 {
		return fmt.Errorf("sampleMonths must be positive, got %d", s.SampleMonths)
	}
	if s.MinCaseCount < 1 {
		return fmt.Errorf("minCaseCount must be at least 1, got %d", s.MinCaseCount)
	}
	if s.TargetRallyPerHour <= 0 {
		return fmt.Errorf("targetRallyPerHour must be positive, got %g", s.TargetRallyPerHour)
	}
	if s.MonthlyWorkHours() <= 0 {
		return errors.New("workDaysPerMonth, hoursPerDay and productivityRatio must be positive")
	}
	for _, t := range [][4]float64{s.TechnicalThresholds(), s.ResponseThresholds(), s.KnowledgeThresholds()} {
		if !(t[0] < t[1] && t[1] < t[2] && t[2] < t[3]) {
			return fmt.Errorf("level thresholds must be strictly increasing, got %v", t)
		}
	}
	return nil
}

func applyEnvOverrides(s *Settings) {
	if v := os.Getenv("SKILLMAP_SAMPLE_MONTHS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			s.SampleMonths = n
		}
	}
	if v := os.Getenv("SKILLMAP_EXCLUDE_OJT"); v != "" {
		s.ExcludeOJT = strings.EqualFold(v, "true") || v == "1"
	}
	if v := os.Getenv("SKILLMAP_MIN_CASE_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			s.MinCaseCount = n
		}
	}
	if v := os.Getenv("SKILLMAP_TARGET_RALLY_PER_HOUR"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			s.TargetRallyPerHour = f
		}
	}
	if v := os.Getenv("SKILLMAP_TARGET_COMPLETION_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			s.TargetCompletionRate = f
		}
	}
	if v := os.Getenv("SKILLMAP_PRODUCTIVITY_RATIO"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			s.ProductivityRatio = f
		}
	}
}
