package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/pterm/pterm"

	"github.com/sunmind/sunmind/pkg/client"
	"github.com/sunmind/sunmind/pkg/sunmind"
)

// DeviceTableData returns the table data for a device, with bold ID and value
func DeviceTableData(d client.Device) pterm.TableData {
	data := pterm.TableData{
		[]string{pterm.Bold.Sprint("ID"), pterm.Bold.Sprint(d.ID)},
		[]string{"Name", d.Name},
		[]string{"Online", fmt.Sprintf("%v", d.IsOnline)},
		[]string{"Selected", fmt.Sprintf("%v", d.Selected)},
		[]string{"Last Seen", formatLastSeen(d.LastSeen)},
	}
	if t := d.Telemetry; t != nil {
		data = append(data,
			[]string{"Lux", formatOptional(t.Lux, "%.0f")},
			[]string{"Relay", string(t.RelayState)},
			[]string{"Motion", fmt.Sprintf("%v", t.MotionDetected)},
			[]string{"Battery", formatOptional(t.BatteryLevel, "%.0f%%")},
			[]string{"Solar", formatOptional(t.SolarVoltage, "%.2fV")},
			[]string{"Power Source", string(t.PowerSource)},
		)
	}
	return data
}

// formatLastSeen formats the LastSeen time for display
func formatLastSeen(lastSeen *time.Time) string {
	if lastSeen != nil && !lastSeen.IsZero() {
		return lastSeen.Format(time.RFC1123Z)
	}
	return "N/A"
}

func formatOptional(v *float64, format string) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf(format, *v)
}

// DeviceParseable returns the parseable key=value string for a device
func DeviceParseable(d client.Device) string {
	lastSeenUnix := "0"
	if d.LastSeen != nil && !d.LastSeen.IsZero() {
		lastSeenUnix = strconv.FormatInt(d.LastSeen.Unix(), 10)
	}
	s := fmt.Sprintf("id=%q name=%q online=%v selected=%v lastseen=%s",
		d.ID, d.Name, d.IsOnline, d.Selected, lastSeenUnix)
	if t := d.Telemetry; t != nil {
		if t.Lux != nil {
			s += fmt.Sprintf(" lux=%g", *t.Lux)
		}
		s += fmt.Sprintf(" relay=%q motion=%v", t.RelayState, t.MotionDetected)
		if t.BatteryLevel != nil {
			s += fmt.Sprintf(" battery=%g", *t.BatteryLevel)
		}
	}
	return s
}

// LightTableData returns the table data for the light state
func LightTableData(l *client.Light) pterm.TableData {
	target := l.DeviceID
	if target == "" {
		target = "none"
	}
	return pterm.TableData{
		[]string{"Property", "Value"},
		[]string{"On", fmt.Sprintf("%v", l.Settings.IsOn)},
		[]string{"Brightness", fmt.Sprintf("%d%%", l.Settings.Brightness)},
		[]string{"Mode", string(l.Settings.Mode)},
		[]string{"Control", string(l.Settings.ControlMode)},
		[]string{"Target", target},
		[]string{"Connected", fmt.Sprintf("%v", l.Connected)},
	}
}

// LightParseable returns the parseable key=value string for the light state
func LightParseable(l *client.Light) string {
	return fmt.Sprintf("on=%v brightness=%d mode=%q control=%q target=%q connected=%v",
		l.Settings.IsOn,
		l.Settings.Brightness,
		l.Settings.Mode,
		l.Settings.ControlMode,
		l.DeviceID,
		l.Connected,
	)
}

// ReviewParseable returns the parseable key=value string for a review
func ReviewParseable(r sunmind.Review) string {
	return fmt.Sprintf("id=%q author=%q rating=%d date=%q text=%q", r.ID, r.Author, r.Rating, r.Date, r.Text)
}
