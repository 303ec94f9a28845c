package device

import (
	"sort"
	"strings"
	"time"
)

type EventKind int

const (
	MovedToForeground EventKind = iota
	MovedToBackground
)

// UsageEvent is a foreground transition of a package.
type UsageEvent struct {
	Package string
	Kind    EventKind
	At      time.Time
}

// PackageInfo describes an installed package.
type PackageInfo struct {
	Label         string
	System        bool
	UpdatedSystem bool
}

// PackageResolver looks up installed packages. ok is false when the package
// is unknown.
type PackageResolver interface {
	Resolve(pkg string) (info PackageInfo, ok bool)
}

// PackageTable is a static PackageResolver.
type PackageTable map[string]PackageInfo

func (t PackageTable) Resolve(pkg string) (PackageInfo, bool) {
	info, ok := t[pkg]
	return info, ok
}

// AggregateForeground sums foreground time per package from time-ordered
// events. Repeated foreground events for an already active package are
// ignored, and packages still active at end are closed at end.
func AggregateForeground(events []UsageEvent, end time.Time) map[string]time.Duration {
	totals := make(map[string]time.Duration)
	active := make(map[string]time.Time)

	for _, ev := range events {
		switch ev.Kind {
		case MovedToForeground:
			if _, ok := active[ev.Package]; !ok {
				active[ev.Package] = ev.At
			}
		case MovedToBackground:
			if start, ok := active[ev.Package]; ok {
				totals[ev.Package] += ev.At.Sub(start)
				delete(active, ev.Package)
			}
		}
	}

	for pkg, start := range active {
		totals[pkg] += end.Sub(start)
	}

	return totals
}

// RankApps orders packages by foreground time, most used first, skipping
// system and updated system packages. Unknown packages are labeled with
// FallbackLabel. Ties are broken by name so the result is deterministic.
func RankApps(totals map[string]time.Duration, resolver PackageResolver, limit int) []AppUsage {
	apps := make([]AppUsage, 0, len(totals))

	for pkg, total := range totals {
		if total < 0 {
			total = -total
		}

		name := FallbackLabel(pkg)
		if info, ok := resolver.Resolve(pkg); ok {
			if info.System || info.UpdatedSystem {
				continue
			}
			if info.Label != "" {
				name = info.Label
			}
		}
		apps = append(apps, AppUsage{Name: name, Foreground: total})
	}

	sort.Slice(apps, func(i, j int) bool {
		if apps[i].Foreground != apps[j].Foreground {
			return apps[i].Foreground > apps[j].Foreground
		}
		return apps[i].Name < apps[j].Name
	})

	if limit >= 0 && len(apps) > limit {
		apps = apps[:limit]
	}
	return apps
}

// FallbackLabel drops the leading segment of a dotted package identifier:
// "com.spotify.music" becomes "spotify.music". Identifiers without a dot are
// returned unchanged.
func FallbackLabel(pkg string) string {
	if _, rest, ok := strings.Cut(pkg, "."); ok && rest != "" {
		return rest
	}
	return pkg
}
