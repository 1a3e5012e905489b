// Package sunmind holds the SunMind wire model: devices, telemetry,
// the inbound socket events, outbound commands and light settings.
package sunmind

import (
	"time"
)

// RelayState is the energized state of the light output.
type RelayState string

const (
	RelayOn  RelayState = "ON"
	RelayOff RelayState = "OFF"
)

// Valid reports whether r is a known relay state.
func (r RelayState) Valid() bool {
	return r == RelayOn || r == RelayOff
}

// PowerSource is what the device is currently running from.
type PowerSource string

const (
	PowerSolar   PowerSource = "solar"
	PowerBattery PowerSource = "battery"
	PowerGrid    PowerSource = "grid"
)

// Valid reports whether p is a known power source.
func (p PowerSource) Valid() bool {
	switch p {
	case PowerSolar, PowerBattery, PowerGrid:
		return true
	}
	return false
}

// Device is a registered SunMind device.
type Device struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	APIKey    string     `json:"api_key"`
	UserID    string     `json:"user_id"`
	IsOnline  bool       `json:"is_online"`
	LastSeen  *time.Time `json:"last_seen,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// DevicePatch is a partial Device update. Nil fields are left untouched.
type DevicePatch struct {
	Name     *string
	APIKey   *string
	UserID   *string
	IsOnline *bool
	LastSeen *time.Time
}

// Apply returns a copy of d with the patch merged in.
func (p DevicePatch) Apply(d Device) Device {
	if p.Name != nil {
		d.Name = *p.Name
	}
	if p.APIKey != nil {
		d.APIKey = *p.APIKey
	}
	if p.UserID != nil {
		d.UserID = *p.UserID
	}
	if p.IsOnline != nil {
		d.IsOnline = *p.IsOnline
	}
	if p.LastSeen != nil {
		ts := *p.LastSeen
		d.LastSeen = &ts
	}
	return d
}

// Telemetry is a device's sensor and state report. A snapshot always
// replaces the previous one for the same device.
type Telemetry struct {
	Lux            *float64    `json:"lux,omitempty"`
	MotionDetected bool        `json:"motion_detected"`
	RelayState     RelayState  `json:"relay_state"`
	BatteryLevel   *float64    `json:"battery_level,omitempty"`
	SolarVoltage   *float64    `json:"solar_voltage,omitempty"`
	PowerSource    PowerSource `json:"power_source"`
	Timestamp      time.Time   `json:"timestamp"`
}

// User is the authenticated account as returned by the backend.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Roles     string `json:"roles"`
	CreatedAt string `json:"created_at"`
}

// Review is a user review of the product.
type Review struct {
	ID     string `json:"id"`
	Author string `json:"author"`
	Text   string `json:"text"`
	Rating int    `json:"rating"`
	Date   string `json:"date"`
}

// NewReview is a review as submitted, before the backend assigns an id.
type NewReview struct {
	Author string `json:"author"`
	Text   string `json:"text"`
	Rating int    `json:"rating"`
	Date   string `json:"date"`
}

// Float64 returns a pointer to v.
func Float64(v float64) *float64 { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }

// Time returns a pointer to v.
func Time(v time.Time) *time.Time { return &v }
