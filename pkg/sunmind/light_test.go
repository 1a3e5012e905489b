package sunmind

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalBrightness(t *testing.T) {
	tests := []struct {
		mode LightMode
		want int
		ok   bool
	}{
		{ModeEconomy, 30, true},
		{ModeMaximum, 100, true},
		{ModeDefault, 50, true},
		{ModeCustom, 0, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			got, ok := CanonicalBrightness(tt.mode)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClampBrightness(t *testing.T) {
	assert.Equal(t, 0, ClampBrightness(-5))
	assert.Equal(t, 42, ClampBrightness(42))
	assert.Equal(t, 100, ClampBrightness(255))
}

func TestParseModes(t *testing.T) {
	m, err := ParseLightMode("economy")
	require.NoError(t, err)
	assert.Equal(t, ModeEconomy, m)
	_, err = ParseLightMode("disco")
	assert.Error(t, err)

	c, err := ParseControlMode("auto")
	require.NoError(t, err)
	assert.Equal(t, ControlAuto, c)
	_, err = ParseControlMode("remote")
	assert.Error(t, err)
}

func TestDefaultSettings(t *testing.T) {
	assert.Equal(t, LightSettings{IsOn: false, Brightness: 50, Mode: ModeDefault, ControlMode: ControlManual}, DefaultSettings())
}

func TestDevicePatchApply(t *testing.T) {
	seen := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	d := Device{ID: "D1", Name: "Porch", APIKey: "k", IsOnline: false}

	patched := DevicePatch{IsOnline: Bool(true), LastSeen: Time(seen)}.Apply(d)

	assert.True(t, patched.IsOnline)
	require.NotNil(t, patched.LastSeen)
	assert.Equal(t, seen, *patched.LastSeen)
	assert.Equal(t, "Porch", patched.Name)
	assert.False(t, d.IsOnline, "Apply must not mutate its argument")
}
