// Package toggle binds on/off controls to the slots of the effect chain.
// Each control is a two-state switch whose pressed state is mirrored into
// its slot's enabled flag; nothing else writes that flag.
package toggle

import (
	"errors"
	"fmt"

	"github.com/cbegin/micfx-go/internal/rack"
)

var (
	ErrAlreadyBuilt   = errors.New("controls already built")
	ErrDuplicateKind  = errors.New("duplicate control for effect")
	ErrForeignControl = errors.New("control does not belong to this binding")
)

// Target is the part of the chain controller a binding drives.
type Target interface {
	Slot(kind rack.Kind) (int, error)
	SetEnabled(bus, slot int, enabled bool) error
	ApplyPreset(p rack.Preset) error
}

// Entry names one control to build.
type Entry struct {
	Kind  rack.Kind
	Label string
}

// DefaultEntries lists every effect in on-screen order.
func DefaultEntries() []Entry {
	return []Entry{
		{Kind: rack.Delay, Label: "Delay"},
		{Kind: rack.Amplify, Label: "Amplify"},
		{Kind: rack.PitchShiftHigh, Label: "Hi-Pitch"},
		{Kind: rack.PitchShiftLow, Label: "Low-Pitch"},
		{Kind: rack.Distortion, Label: "Distortion"},
		{Kind: rack.HighPass, Label: "Hi-Pass"},
		{Kind: rack.LowPass, Label: "Low-Pass"},
		{Kind: rack.BandPass, Label: "Band-Pass"},
		{Kind: rack.PanLeft, Label: "Pan Left"},
		{Kind: rack.PanRight, Label: "Pan Right"},
		{Kind: rack.Phaser, Label: "Phaser"},
		{Kind: rack.Reverb, Label: "Reverb"},
		{Kind: rack.Record, Label: "Record"},
	}
}

// DefaultOn reports whether kind starts enabled: only the echo and the
// amplifier do.
func DefaultOn(kind rack.Kind) bool {
	return kind == rack.Delay || kind == rack.Amplify
}

// Control is one on-screen switch.
type Control struct {
	Label   string
	Kind    rack.Kind
	pressed bool
	owner   *Binding
}

func (c *Control) Pressed() bool { return c.pressed }

// Listener observes a control after its new state reached the chain.
type Listener func(c *Control)

type Option func(*Binding)

// WithPresets replaces the startup presets.
func WithPresets(presets ...rack.Preset) Option {
	return func(b *Binding) {
		b.presets = presets
	}
}

// WithDefaultOn replaces the rule deciding which controls start pressed.
func WithDefaultOn(fn func(rack.Kind) bool) Option {
	return func(b *Binding) {
		b.defaultOn = fn
	}
}

// WithListener subscribes fn to toggle events.
func WithListener(fn Listener) Option {
	return func(b *Binding) {
		b.listeners = append(b.listeners, fn)
	}
}

// Binding owns the controls of one effect bus.
type Binding struct {
	target    Target
	bus       int
	presets   []rack.Preset
	defaultOn func(rack.Kind) bool
	listeners []Listener

	built    bool
	byKind   [rack.KindCount]*Control
	controls []*Control
}

func New(target Target, bus int, opts ...Option) *Binding {
	b := &Binding{
		target:    target,
		bus:       bus,
		presets:   rack.DefaultPresets(),
		defaultOn: DefaultOn,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BuildControls creates one control per entry, applies the startup presets
// and writes every control's initial state to its slot. It runs once.
func (b *Binding) BuildControls(entries []Entry) error {
	if b.built {
		return ErrAlreadyBuilt
	}
	var byKind [rack.KindCount]*Control
	controls := make([]*Control, 0, len(entries))
	for _, e := range entries {
		if !e.Kind.Valid() {
			return &rack.UnknownKindError{Kind: e.Kind}
		}
		if byKind[e.Kind] != nil {
			return fmt.Errorf("%w: %s", ErrDuplicateKind, e.Kind)
		}
		c := &Control{Label: e.Label, Kind: e.Kind, pressed: b.defaultOn(e.Kind), owner: b}
		byKind[e.Kind] = c
		controls = append(controls, c)
	}

	for _, p := range b.presets {
		if err := b.target.ApplyPreset(p); err != nil {
			return err
		}
	}
	for _, c := range controls {
		if err := b.write(c); err != nil {
			return err
		}
	}

	b.byKind = byKind
	b.controls = controls
	b.built = true
	return nil
}

// OnToggled records the control's new state and forwards it to the slot.
func (b *Binding) OnToggled(c *Control, pressed bool) error {
	if c == nil || c.owner != b {
		return ErrForeignControl
	}
	c.pressed = pressed
	if err := b.write(c); err != nil {
		return err
	}
	for _, fn := range b.listeners {
		fn(c)
	}
	return nil
}

// Press flips kind's control, as a click on it would.
func (b *Binding) Press(kind rack.Kind) error {
	c, ok := b.Control(kind)
	if !ok {
		return &rack.UnknownKindError{Kind: kind}
	}
	return b.OnToggled(c, !c.pressed)
}

// Control returns kind's control, if one was built.
func (b *Binding) Control(kind rack.Kind) (*Control, bool) {
	if !kind.Valid() || b.byKind[kind] == nil {
		return nil, false
	}
	return b.byKind[kind], true
}

// Controls returns the controls in build order.
func (b *Binding) Controls() []*Control {
	return b.controls
}

func (b *Binding) write(c *Control) error {
	slot, err := b.target.Slot(c.Kind)
	if err != nil {
		return err
	}
	return b.target.SetEnabled(b.bus, slot, c.pressed)
}
