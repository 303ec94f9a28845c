package device

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/distatus/battery"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

const (
	bytesPerMB         = 1024 * 1024
	defaultPowerSupply = "/sys/class/power_supply"
	defaultStoragePath = "/"
	noBatteryLevel     = 100
)

// HostProvider reads metrics from the machine the process runs on. Memory,
// storage and processes come from gopsutil, battery level and state from
// distatus/battery. Battery health is only exposed by the Linux power_supply
// class. Machines without a battery report a full, charging battery of
// unknown health.
type HostProvider struct {
	storagePath    string
	powerSupplyDir string
	batteries      func() ([]*battery.Battery, error)
	processes      func(ctx context.Context) ([]processInfo, error)
	now            func() time.Time
	log            zerolog.Logger
}

// processInfo is the part of a running process that usage ranking needs.
type processInfo struct {
	Name    string
	Created time.Time
	Root    bool
}

func NewHostProvider(storagePath string, logger zerolog.Logger) *HostProvider {
	if storagePath == "" {
		storagePath = defaultStoragePath
	}
	return &HostProvider{
		storagePath:    storagePath,
		powerSupplyDir: defaultPowerSupply,
		batteries:      battery.GetAll,
		processes:      listProcesses,
		now:            time.Now,
		log:            logger,
	}
}

func (h *HostProvider) MemorySnapshot(ctx context.Context) (Memory, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return Memory{}, err
	}
	total := int64(vm.Total / bytesPerMB)
	available := int64(vm.Available / bytesPerMB)
	return Memory{UsedMB: total - available, TotalMB: total}, nil
}

func (h *HostProvider) StorageSnapshot(ctx context.Context) (Storage, error) {
	usage, err := disk.UsageWithContext(ctx, h.storagePath)
	if err != nil {
		return Storage{}, err
	}
	total := int64(usage.Total / bytesPerMB)
	available := int64(usage.Free / bytesPerMB)
	return Storage{UsedMB: total - available, TotalMB: total, AvailableMB: available}, nil
}

// primaryBattery returns the first battery the system reports, or nil when
// there is none.
func (h *HostProvider) primaryBattery() *battery.Battery {
	batts, err := h.batteries()
	for _, b := range batts {
		if b != nil {
			return b
		}
	}
	if err != nil {
		h.log.Debug().Err(err).Msg("no readable battery")
	}
	return nil
}

var errBatteryCapacity = errors.New("battery full capacity unknown")

func (h *HostProvider) BatteryLevel(ctx context.Context) (int, error) {
	b := h.primaryBattery()
	if b == nil {
		return noBatteryLevel, nil
	}
	if b.Full <= 0 {
		return 0, errBatteryCapacity
	}
	level := int(math.Round(b.Current / b.Full * 100))
	return min(max(level, 0), 100), nil
}

func (h *HostProvider) IsCharging(ctx context.Context) (bool, error) {
	b := h.primaryBattery()
	if b == nil {
		return true, nil
	}
	return b.State == battery.Charging || b.State == battery.Full, nil
}

func (h *HostProvider) BatteryHealth(ctx context.Context) (BatteryHealth, error) {
	dir, ok := h.batteryDir()
	if !ok {
		return HealthUnknown, nil
	}
	raw, err := readAttr(dir, "health")
	if err != nil {
		// Many drivers do not expose health at all.
		return HealthUnknown, nil
	}
	return ParseHealth(raw), nil
}

// TopForegroundApps ranks running processes by how long they have been alive
// within the window.
func (h *HostProvider) TopForegroundApps(ctx context.Context, limit int, window time.Duration) ([]AppUsage, error) {
	procs, err := h.processes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}

	end := h.now()
	events, table := processUsage(procs, end.Add(-window))
	h.log.Debug().Int("processes", len(procs)).Int("events", len(events)).Msg("collected process usage")
	return RankApps(AggregateForeground(events, end), table, limit), nil
}

// processUsage turns processes into time-ordered foreground events starting
// no earlier than start. A name counts as a system package only when every
// process carrying it is owned by root.
func processUsage(procs []processInfo, start time.Time) ([]UsageEvent, PackageTable) {
	table := make(PackageTable)
	events := make([]UsageEvent, 0, len(procs))

	for _, p := range procs {
		if p.Name == "" {
			continue
		}
		at := p.Created
		if at.Before(start) {
			at = start
		}

		info, seen := table[p.Name]
		if !seen {
			info = PackageInfo{Label: p.Name, System: true}
		}
		info.System = info.System && p.Root
		table[p.Name] = info

		events = append(events, UsageEvent{Package: p.Name, Kind: MovedToForeground, At: at})
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].At.Before(events[j].At)
	})
	return events, table
}

func listProcesses(ctx context.Context) ([]processInfo, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]processInfo, 0, len(procs))
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil || name == "" {
			continue
		}
		created, err := p.CreateTimeWithContext(ctx)
		if err != nil {
			continue
		}
		uids, err := p.UidsWithContext(ctx)
		root := err == nil && len(uids) > 0 && uids[0] == 0
		infos = append(infos, processInfo{Name: name, Created: time.UnixMilli(created), Root: root})
	}
	return infos, nil
}

func (h *HostProvider) batteryDir() (string, bool) {
	entries, err := os.ReadDir(h.powerSupplyDir)
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		dir := filepath.Join(h.powerSupplyDir, e.Name())
		if kind, err := readAttr(dir, "type"); err == nil && kind == "Battery" {
			return dir, true
		}
	}
	return "", false
}

func readAttr(dir, name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
