package sunmind

import "fmt"

// LightMode is a brightness preset.
type LightMode string

const (
	ModeEconomy LightMode = "economy"
	ModeMaximum LightMode = "maximum"
	ModeDefault LightMode = "default"
	ModeCustom  LightMode = "custom"
)

// ControlMode says who has authority over power and brightness.
type ControlMode string

const (
	ControlManual ControlMode = "manual"
	ControlAuto   ControlMode = "auto"
)

// Brightness bounds, in percent.
const (
	MinBrightness = 0
	MaxBrightness = 100
)

// ParseLightMode validates a mode name.
func ParseLightMode(s string) (LightMode, error) {
	switch m := LightMode(s); m {
	case ModeEconomy, ModeMaximum, ModeDefault, ModeCustom:
		return m, nil
	}
	return "", fmt.Errorf("unknown light mode %q", s)
}

// ParseControlMode validates a control mode name.
func ParseControlMode(s string) (ControlMode, error) {
	switch m := ControlMode(s); m {
	case ControlManual, ControlAuto:
		return m, nil
	}
	return "", fmt.Errorf("unknown control mode %q", s)
}

// CanonicalBrightness returns the brightness a mode prescribes. Custom has
// none, so ok is false and the current value should be kept.
func CanonicalBrightness(m LightMode) (brightness int, ok bool) {
	switch m {
	case ModeEconomy:
		return 30, true
	case ModeMaximum:
		return 100, true
	case ModeDefault:
		return 50, true
	}
	return 0, false
}

// ClampBrightness bounds v to [MinBrightness, MaxBrightness].
func ClampBrightness(v int) int {
	if v < MinBrightness {
		return MinBrightness
	}
	if v > MaxBrightness {
		return MaxBrightness
	}
	return v
}

// LightSettings is the user's intended light configuration.
type LightSettings struct {
	IsOn        bool        `json:"isOn"`
	Brightness  int         `json:"brightness"`
	Mode        LightMode   `json:"mode"`
	ControlMode ControlMode `json:"controlMode"`
}

// DefaultSettings returns the factory light settings.
func DefaultSettings() LightSettings {
	return LightSettings{
		IsOn:        false,
		Brightness:  50,
		Mode:        ModeDefault,
		ControlMode: ControlManual,
	}
}
