package config

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/boddenberg/offer-prep-go/internal/transform"
)

// Pipeline holds the transform settings of a run.
type Pipeline struct {
	Reference          time.Time
	SentinelAge        int
	GenderStart        int
	DurationMultiplier int
	Workers            int
}

// pipelineFile is the on-disk shape of PIPELINE_CONFIG. Absent keys keep
// the current value.
type pipelineFile struct {
	ReferenceDate      string `yaml:"reference_date"`
	SentinelAge        *int   `yaml:"sentinel_age"`
	GenderStart        *int   `yaml:"gender_start"`
	DurationMultiplier *int   `yaml:"duration_multiplier"`
	Workers            *int   `yaml:"workers"`
}

// DefaultPipeline returns the settings used when nothing overrides them.
// The reference date has no default.
func DefaultPipeline() Pipeline {
	return Pipeline{
		SentinelAge:        transform.SentinelAge,
		GenderStart:        0,
		DurationMultiplier: transform.HoursPerDay,
		Workers:            runtime.GOMAXPROCS(0),
	}
}

// LoadFile merges the YAML settings file at path into p.
func (p *Pipeline) LoadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read pipeline config: %w", err)
	}

	var f pipelineFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("parse pipeline config %s: %w", path, err)
	}

	if f.ReferenceDate != "" {
		ref, err := ParseDate(f.ReferenceDate)
		if err != nil {
			return fmt.Errorf("pipeline config reference_date: %w", err)
		}
		p.Reference = ref
	}
	if f.SentinelAge != nil {
		p.SentinelAge = *f.SentinelAge
	}
	if f.GenderStart != nil {
		p.GenderStart = *f.GenderStart
	}
	if f.DurationMultiplier != nil {
		if *f.DurationMultiplier <= 0 {
			return fmt.Errorf("pipeline config duration_multiplier must be positive, got %d", *f.DurationMultiplier)
		}
		p.DurationMultiplier = *f.DurationMultiplier
	}
	if f.Workers != nil {
		p.Workers = *f.Workers
	}
	return nil
}
