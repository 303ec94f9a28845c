// Package diagnostics turns a device snapshot into the status report shown to
// the user.
package diagnostics

import (
	"fmt"
	"strings"

	"github.com/Rorical/PocketDoc/internal/device"
)

// Markers prefixed to status lines.
const (
	AlertMarker   = "🔴"
	WarningMarker = "⚠️"
	OKMarker      = "🟢"
	ChartMarker   = "📊"
)

// Section labels. Recommendations are chosen by looking for these in the
// report text.
const (
	LabelMemoryAlert    = "Memory Alert"
	LabelBatteryLow     = "Battery Low"
	LabelStorageAlert   = "Storage Alert"
	LabelChargingStatus = "Charging Status"
)

const (
	Header               = "--System Information--"
	RecommendationsTitle = "**Recommendations:**"
	SmoothlyLine         = "Your device is running smoothly! Keep up the good work."
	NoUsageLine          = "No app usage data available."
)

type recommendation struct {
	label string
	text  string
}

// Fixed order of recommendation lines.
var recommendations = []recommendation{
	{LabelMemoryAlert, "- Close unused background apps."},
	{LabelBatteryLow, "- Charge your device regularly and avoid complete discharges."},
	{LabelStorageAlert, "- Uninstall unnecessary apps and delete unwanted files."},
	{LabelChargingStatus, "- Enable battery-saving modes or check your charging accessories."},
}

// Builder renders reports. It holds no state; Build is a pure function of
// the snapshot.
type Builder struct{}

func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) Build(s device.Snapshot) string {
	var sb strings.Builder

	sb.WriteString(Header + "\n\n")

	if s.Memory.IsLow() {
		fmt.Fprintf(&sb, "%s **%s**: Your device is running low on memory. Consider closing some background apps to improve performance.\n\n", AlertMarker, LabelMemoryAlert)
	} else {
		fmt.Fprintf(&sb, "%s **Memory Status**: Sufficient memory available.\n\n", OKMarker)
	}
	fmt.Fprintf(&sb, "RAM Usage: %d MB / %d MB\n\n", s.Memory.UsedMB, s.Memory.TotalMB)

	level := s.Battery.Level
	if s.Battery.IsLow(device.BatteryLowPercent) {
		fmt.Fprintf(&sb, "%s **%s**: Your battery level is at %d%%. Consider charging your device to ensure uninterrupted usage.\n\n", AlertMarker, LabelBatteryLow, level)
	} else {
		fmt.Fprintf(&sb, "%s **Battery Level**: %d%%.\n\n", OKMarker, level)
	}

	if !s.Battery.Charging {
		fmt.Fprintf(&sb, "%s **%s**: Your device is not charging. If you're experiencing battery drain, consider enabling battery-saving modes or checking your charging cable.\n\n", WarningMarker, LabelChargingStatus)
	}

	// Only the literal "Good" category is healthy; "Unknown" is an alert too.
	healthMarker := AlertMarker
	if s.Battery.Health == device.HealthGood {
		healthMarker = OKMarker
	}
	fmt.Fprintf(&sb, "%s **Battery Health**: %s.\n\n", healthMarker, s.Battery.Health)

	writeTopApps(&sb, s.TopApps)

	storage := fmt.Sprintf("Storage Usage: %d MB / %d MB\nAvailable Storage: %d MB",
		s.Storage.UsedMB, s.Storage.TotalMB, s.Storage.AvailableMB)
	if s.Storage.IsLow(device.StorageLowPercent) {
		fmt.Fprintf(&sb, "%s **%s**: %s\n\n", AlertMarker, LabelStorageAlert, storage)
	} else {
		fmt.Fprintf(&sb, "%s **Storage Status**: %s\n\n", OKMarker, storage)
	}

	writeRecommendations(&sb)

	return sb.String()
}

func writeTopApps(sb *strings.Builder, apps []device.AppUsage) {
	if len(apps) == 0 {
		sb.WriteString(NoUsageLine + "\n\n")
		return
	}

	if len(apps) > device.TopAppsLimit {
		apps = apps[:device.TopAppsLimit]
	}

	fmt.Fprintf(sb, "%s **Top Used Apps (Estimated Battery Consumers):**\n", ChartMarker)
	for i, app := range apps {
		fmt.Fprintf(sb, "%d. %s\n", i+1, app.Name)
	}
	sb.WriteString("\n")
}

// writeRecommendations inspects what has been written so far.
func writeRecommendations(sb *strings.Builder) {
	text := sb.String()

	if !strings.Contains(text, AlertMarker) && !strings.Contains(text, WarningMarker) {
		sb.WriteString(SmoothlyLine + "\n")
		return
	}

	sb.WriteString(RecommendationsTitle + "\n")
	for _, r := range recommendations {
		if strings.Contains(text, r.label) {
			sb.WriteString(r.text + "\n")
		}
	}
}
