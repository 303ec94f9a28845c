package device

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/distatus/battery"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePowerSupply(t *testing.T, root, name string, attrs map[string]string) {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for k, v := range attrs {
		require.NoError(t, os.WriteFile(filepath.Join(dir, k), []byte(v+"\n"), 0o644))
	}
}

func withBatteries(h *HostProvider, batts []*battery.Battery, err error) {
	h.batteries = func() ([]*battery.Battery, error) { return batts, err }
}

func TestHostProviderBattery(t *testing.T) {
	h := NewHostProvider("", zerolog.Nop())
	withBatteries(h, []*battery.Battery{{State: battery.Discharging, Current: 8500, Full: 50000}}, nil)
	ctx := context.Background()

	level, err := h.BatteryLevel(ctx)
	require.NoError(t, err)
	assert.Equal(t, 17, level)

	charging, err := h.IsCharging(ctx)
	require.NoError(t, err)
	assert.False(t, charging)
}

func TestHostProviderChargingStates(t *testing.T) {
	tests := []struct {
		state battery.State
		want  bool
	}{
		{battery.Charging, true},
		{battery.Full, true},
		{battery.Discharging, false},
		{battery.Empty, false},
		{battery.Unknown, false},
	}
	for _, tt := range tests {
		h := NewHostProvider("", zerolog.Nop())
		withBatteries(h, []*battery.Battery{{State: tt.state, Current: 1, Full: 1}}, nil)

		charging, err := h.IsCharging(context.Background())
		require.NoError(t, err)
		assert.Equal(t, tt.want, charging, tt.state.String())
	}
}

func TestHostProviderSkipsUnreadableBattery(t *testing.T) {
	h := NewHostProvider("", zerolog.Nop())
	withBatteries(h, []*battery.Battery{nil, {State: battery.Charging, Current: 30, Full: 40}}, errors.New("partial"))

	level, err := h.BatteryLevel(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 75, level)
}

func TestHostProviderWithoutBattery(t *testing.T) {
	h := NewHostProvider("", zerolog.Nop())
	withBatteries(h, nil, errors.New("no power supply class"))
	h.powerSupplyDir = filepath.Join(t.TempDir(), "none")
	ctx := context.Background()

	level, err := h.BatteryLevel(ctx)
	require.NoError(t, err)
	assert.Equal(t, noBatteryLevel, level)

	charging, err := h.IsCharging(ctx)
	require.NoError(t, err)
	assert.True(t, charging)

	health, err := h.BatteryHealth(ctx)
	require.NoError(t, err)
	assert.Equal(t, HealthUnknown, health)
}

func TestHostProviderUnknownCapacity(t *testing.T) {
	h := NewHostProvider("", zerolog.Nop())
	withBatteries(h, []*battery.Battery{{State: battery.Discharging, Current: 10}}, nil)

	_, err := h.BatteryLevel(context.Background())
	assert.ErrorIs(t, err, errBatteryCapacity)
}

func TestHostProviderBatteryHealth(t *testing.T) {
	root := t.TempDir()
	writePowerSupply(t, root, "AC", map[string]string{"type": "Mains", "online": "0"})
	writePowerSupply(t, root, "BAT0", map[string]string{"type": "Battery", "health": "Over voltage"})

	h := NewHostProvider("", zerolog.Nop())
	h.powerSupplyDir = root

	health, err := h.BatteryHealth(context.Background())
	require.NoError(t, err)
	assert.Equal(t, HealthOverVoltage, health)
}

func TestHostProviderHealthMissing(t *testing.T) {
	root := t.TempDir()
	writePowerSupply(t, root, "BAT1", map[string]string{"type": "Battery"})

	h := NewHostProvider("", zerolog.Nop())
	h.powerSupplyDir = root

	health, err := h.BatteryHealth(context.Background())
	require.NoError(t, err)
	assert.Equal(t, HealthUnknown, health)
}

func TestProcessUsageOrdersEvents(t *testing.T) {
	start := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	procs := []processInfo{
		{Name: "firefox", Created: start.Add(3 * time.Hour)},
		{Name: "firefox", Created: start.Add(time.Hour)},
		{Name: "sshd", Created: start.Add(-48 * time.Hour), Root: true},
		{Name: ""},
	}

	events, table := processUsage(procs, start)

	require.Len(t, events, 3)
	assert.Equal(t, "sshd", events[0].Package)
	assert.Equal(t, start, events[0].At, "clamped to window start")
	assert.Equal(t, start.Add(time.Hour), events[1].At)
	assert.Equal(t, start.Add(3*time.Hour), events[2].At)
	assert.True(t, table["sshd"].System)
	assert.False(t, table["firefox"].System)
}

func TestProcessUsageSystemNeedsAllRoot(t *testing.T) {
	start := time.Now()
	for _, procs := range [][]processInfo{
		{{Name: "python3", Created: start, Root: true}, {Name: "python3", Created: start}},
		{{Name: "python3", Created: start}, {Name: "python3", Created: start, Root: true}},
	} {
		_, table := processUsage(procs, start)
		assert.False(t, table["python3"].System)
	}
}

func TestHostProviderTopForegroundApps(t *testing.T) {
	end := time.Date(2026, 10, 2, 12, 0, 0, 0, time.UTC)
	h := NewHostProvider("", zerolog.Nop())
	h.now = func() time.Time { return end }
	h.processes = func(context.Context) ([]processInfo, error) {
		return []processInfo{
			{Name: "slack", Created: end.Add(-2 * time.Hour)},
			{Name: "systemd", Created: end.Add(-72 * time.Hour), Root: true},
			{Name: "firefox", Created: end.Add(-30 * time.Minute)},
			{Name: "firefox", Created: end.Add(-5 * time.Hour)},
			{Name: "vim", Created: end.Add(-90 * time.Hour)},
			{Name: "htop", Created: end.Add(-time.Minute)},
		}, nil
	}

	apps, err := h.TopForegroundApps(context.Background(), 3, 24*time.Hour)
	require.NoError(t, err)

	assert.Equal(t, []AppUsage{
		{Name: "vim", Foreground: 24 * time.Hour},
		{Name: "firefox", Foreground: 5 * time.Hour},
		{Name: "slack", Foreground: 2 * time.Hour},
	}, apps)
}

func TestHostProviderProcessListFailure(t *testing.T) {
	h := NewHostProvider("", zerolog.Nop())
	h.processes = func(context.Context) ([]processInfo, error) {
		return nil, errors.New("permission denied")
	}

	_, err := h.TopForegroundApps(context.Background(), 3, time.Hour)
	assert.ErrorContains(t, err, "list processes")
}
