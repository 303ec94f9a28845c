package device

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Fixture is the on-disk description of a device, used for demos and for
// running without access to real metrics.
//
//	memory:  {used_mb: 3400, total_mb: 4000}
//	battery: {level: 15, charging: false, health: Cold}
//	storage: {used_mb: 57600, total_mb: 64000, available_mb: 6400}
//	apps:
//	  - package: com.google.android.youtube
//	    label: YouTube
//	    foreground_minutes: 95
type Fixture struct {
	Memory  Memory       `yaml:"memory"`
	Battery Battery      `yaml:"battery"`
	Storage Storage      `yaml:"storage"`
	Apps    []FixtureApp `yaml:"apps"`
}

type FixtureApp struct {
	Package           string  `yaml:"package"`
	Label             string  `yaml:"label"`
	System            bool    `yaml:"system"`
	UpdatedSystem     bool    `yaml:"updated_system"`
	Unresolved        bool    `yaml:"unresolved"` // behave as if the label lookup failed
	ForegroundMinutes float64 `yaml:"foreground_minutes"`
}

// FixtureProvider serves metrics from a Fixture.
type FixtureProvider struct {
	fixture Fixture
}

func NewFixtureProvider(f Fixture) *FixtureProvider {
	return &FixtureProvider{fixture: f}
}

// LoadFixture reads a YAML fixture file.
func LoadFixture(path string) (*FixtureProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}

	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if f.Battery.Health == "" {
		f.Battery.Health = HealthUnknown
	} else {
		f.Battery.Health = ParseHealth(string(f.Battery.Health))
	}

	return NewFixtureProvider(f), nil
}

func (p *FixtureProvider) MemorySnapshot(context.Context) (Memory, error) {
	return p.fixture.Memory, nil
}

func (p *FixtureProvider) BatteryLevel(context.Context) (int, error) {
	return p.fixture.Battery.Level, nil
}

func (p *FixtureProvider) IsCharging(context.Context) (bool, error) {
	return p.fixture.Battery.Charging, nil
}

func (p *FixtureProvider) BatteryHealth(context.Context) (BatteryHealth, error) {
	return p.fixture.Battery.Health, nil
}

func (p *FixtureProvider) StorageSnapshot(context.Context) (Storage, error) {
	return p.fixture.Storage, nil
}

func (p *FixtureProvider) TopForegroundApps(_ context.Context, limit int, _ time.Duration) ([]AppUsage, error) {
	totals := make(map[string]time.Duration, len(p.fixture.Apps))
	table := make(PackageTable, len(p.fixture.Apps))

	for _, app := range p.fixture.Apps {
		totals[app.Package] += time.Duration(app.ForegroundMinutes * float64(time.Minute))
		if app.Unresolved {
			continue
		}
		table[app.Package] = PackageInfo{
			Label:         app.Label,
			System:        app.System,
			UpdatedSystem: app.UpdatedSystem,
		}
	}

	return RankApps(totals, table, limit), nil
}
