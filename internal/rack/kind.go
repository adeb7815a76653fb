package rack

import (
	"fmt"
	"strings"
)

// Kind identifies one effect of the chain. Kinds are declared in
// registration order; a kind's ordinal is also its slot index when every
// kind is registered with RegisterAll.
type Kind int

const (
	Record Kind = iota
	PitchShiftHigh
	PitchShiftLow
	Amplify
	Distortion
	HighPass
	LowPass
	BandPass
	PanLeft
	PanRight
	Phaser
	Reverb
	Delay // must stay last

	KindCount = int(Delay) + 1
)

var kindNames = [KindCount]string{
	Record:         "record",
	PitchShiftHigh: "pitch-high",
	PitchShiftLow:  "pitch-low",
	Amplify:        "amplify",
	Distortion:     "distortion",
	HighPass:       "high-pass",
	LowPass:        "low-pass",
	BandPass:       "band-pass",
	PanLeft:        "pan-left",
	PanRight:       "pan-right",
	Phaser:         "phaser",
	Reverb:         "reverb",
	Delay:          "delay",
}

func (k Kind) Valid() bool { return k >= 0 && int(k) < KindCount }

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Kinds returns every kind in registration order.
func Kinds() []Kind {
	out := make([]Kind, KindCount)
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

// ParseKind accepts the names printed by String, case-insensitively.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range kindNames {
		if name == s {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown effect %q", s)
}
