package theme

import "strings"

// Mode is a colour scheme.
type Mode string

const (
	Light Mode = "light"
	Dark  Mode = "dark"
)

// ParseMode maps "dark" (any case) to Dark and everything else to Light.
func ParseMode(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), string(Dark)) {
		return Dark
	}
	return Light
}

// Opposite returns the other mode.
func (m Mode) Opposite() Mode {
	if m == Dark {
		return Light
	}
	return Dark
}

// IsDark reports whether m is Dark.
func (m Mode) IsDark() bool {
	return m == Dark
}

// Switch is the site colour scheme, toggled by a single control.
type Switch struct {
	*Setting[Mode]
}

// NewSwitch creates a Switch starting in initial.
func NewSwitch(initial Mode) *Switch {
	if initial != Dark {
		initial = Light
	}
	return &Switch{Setting: NewSetting(initial)}
}

// Toggle flips the mode and returns the new value.
func (s *Switch) Toggle() Mode {
	return s.Update(Mode.Opposite)
}
