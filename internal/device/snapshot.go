// Package device models point-in-time device health readings and the
// providers that collect them.
package device

import (
	"context"
	"fmt"
	"time"
)

// BatteryHealth is the coarse battery condition reported by the platform.
type BatteryHealth string

const (
	HealthGood               BatteryHealth = "Good"
	HealthOverheat           BatteryHealth = "Overheat"
	HealthDead               BatteryHealth = "Dead"
	HealthOverVoltage        BatteryHealth = "Over Voltage"
	HealthUnspecifiedFailure BatteryHealth = "Unspecified Failure"
	HealthCold               BatteryHealth = "Cold"
	HealthUnknown            BatteryHealth = "Unknown"
)

// Default thresholds and ranking parameters.
const (
	MemoryLowPercent  = 80.0 // used memory above this is low
	BatteryLowPercent = 20   // level below this is low
	StorageLowPercent = 20.0 // available storage below this is low

	TopAppsLimit  = 5
	TopAppsWindow = 24 * time.Hour
)

type Memory struct {
	UsedMB  int64 `yaml:"used_mb"`
	TotalMB int64 `yaml:"total_mb"`
}

// UsedPercent is 0 when the total is unknown.
func (m Memory) UsedPercent() float64 {
	if m.TotalMB <= 0 {
		return 0
	}
	return float64(m.UsedMB) / float64(m.TotalMB) * 100
}

func (m Memory) IsLow() bool {
	return m.UsedPercent() > MemoryLowPercent
}

type Battery struct {
	Level    int           `yaml:"level"`
	Charging bool          `yaml:"charging"`
	Health   BatteryHealth `yaml:"health"`
}

func (b Battery) IsLow(threshold int) bool {
	return b.Level < threshold
}

type Storage struct {
	UsedMB      int64 `yaml:"used_mb"`
	TotalMB     int64 `yaml:"total_mb"`
	AvailableMB int64 `yaml:"available_mb"`
}

// AvailablePercent is 0 when the total is unknown, which counts as low.
func (s Storage) AvailablePercent() float64 {
	if s.TotalMB <= 0 {
		return 0
	}
	return float64(s.AvailableMB) / float64(s.TotalMB) * 100
}

func (s Storage) IsLow(thresholdPercent float64) bool {
	return s.AvailablePercent() < thresholdPercent
}

// AppUsage is one ranked application.
type AppUsage struct {
	Name       string
	Foreground time.Duration
}

// Snapshot is a read-only view of device health taken once per diagnostic
// request.
type Snapshot struct {
	Memory  Memory
	Battery Battery
	Storage Storage
	TopApps []AppUsage // ranked, most used first
}

// Provider exposes raw device metrics.
type Provider interface {
	MemorySnapshot(ctx context.Context) (Memory, error)
	BatteryLevel(ctx context.Context) (int, error)
	IsCharging(ctx context.Context) (bool, error)
	BatteryHealth(ctx context.Context) (BatteryHealth, error)
	StorageSnapshot(ctx context.Context) (Storage, error)
	TopForegroundApps(ctx context.Context, limit int, window time.Duration) ([]AppUsage, error)
}

// Collect reads every metric from p into a Snapshot. Missing app usage data
// is not an error, the snapshot simply carries no top apps.
func Collect(ctx context.Context, p Provider) (Snapshot, error) {
	var s Snapshot
	var err error

	if s.Memory, err = p.MemorySnapshot(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("read memory: %w", err)
	}
	if s.Battery.Level, err = p.BatteryLevel(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("read battery level: %w", err)
	}
	if s.Battery.Charging, err = p.IsCharging(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("read charging state: %w", err)
	}
	if s.Battery.Health, err = p.BatteryHealth(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("read battery health: %w", err)
	}
	if s.Storage, err = p.StorageSnapshot(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("read storage: %w", err)
	}

	apps, err := p.TopForegroundApps(ctx, TopAppsLimit, TopAppsWindow)
	if err == nil {
		s.TopApps = apps
	}

	return s, nil
}

// ParseHealth maps a platform health string onto a BatteryHealth, falling
// back to HealthUnknown.
func ParseHealth(raw string) BatteryHealth {
	switch normalizeHealth(raw) {
	case "good":
		return HealthGood
	case "overheat":
		return HealthOverheat
	case "dead":
		return HealthDead
	case "overvoltage":
		return HealthOverVoltage
	case "unspecifiedfailure":
		return HealthUnspecifiedFailure
	case "cold":
		return HealthCold
	default:
		return HealthUnknown
	}
}

func normalizeHealth(raw string) string {
	out := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c >= 'A' && c <= 'Z':
			out = append(out, c+('a'-'A'))
		case c >= 'a' && c <= 'z':
			out = append(out, c)
		}
	}
	return string(out)
}
