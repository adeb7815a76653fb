// Package rack owns the effect chain of one bus: which instance sits in
// which slot, and whether each slot is enabled.
package rack

import (
	"fmt"

	intbus "github.com/cbegin/micfx-go/internal/bus"
	intfx "github.com/cbegin/micfx-go/internal/effects"
)

// Host is the slice of the audio server the controller drives.
type Host interface {
	CreateBus(name string, at int) (int, error)
	BusIndex(name string) int
	AddEffect(bus int, fx intfx.Effector) (int, error)
	SetEffectEnabled(bus, slot int, enabled bool) error
	EffectEnabled(bus, slot int) (bool, error)
	EffectAt(bus, slot int) (intfx.Effector, error)
	Configure(bus, slot int, fn func(intfx.Effector) error) error
}

type registration struct {
	ok   bool
	bus  int
	slot int
	fx   intfx.Effector
}

// SlotInfo describes one registered slot.
type SlotInfo struct {
	Kind    Kind
	Bus     int
	Index   int
	Enabled bool
}

// Controller maps each Kind to the slot holding its instance. It is not safe
// for concurrent use; a single goroutine owns registration and toggling.
type Controller struct {
	host  Host
	slots [KindCount]registration
}

func New(host Host) *Controller {
	return &Controller{host: host}
}

// CreateBus creates the effect bus directly after Master.
func (c *Controller) CreateBus(name string) (int, error) {
	master := c.host.BusIndex(intbus.MasterName)
	idx, err := c.host.CreateBus(name, master+1)
	if err != nil {
		return -1, &BusCreationError{Name: name, Err: err}
	}
	return idx, nil
}

// RegisterEffect appends fx to bus and records it as kind's instance.
// Kinds must be registered in Kinds() order so that Delay ends up last;
// that order is the caller's responsibility.
func (c *Controller) RegisterEffect(bus int, kind Kind, fx intfx.Effector) (int, error) {
	if !kind.Valid() {
		return -1, &UnknownKindError{Kind: kind}
	}
	if c.slots[kind].ok {
		return -1, fmt.Errorf("%w: %s", ErrAlreadyRegistered, kind)
	}
	if !matches(kind, fx) {
		return -1, fmt.Errorf("%w: %s cannot hold %T", ErrKindMismatch, kind, fx)
	}
	slot, err := c.host.AddEffect(bus, fx)
	if err != nil {
		return -1, fmt.Errorf("register %s: %w", kind, err)
	}
	c.slots[kind] = registration{ok: true, bus: bus, slot: slot, fx: fx}
	return slot, nil
}

// RegisterAll registers a default instance of every kind, in order.
func (c *Controller) RegisterAll(bus, sampleRate int) error {
	for _, k := range Kinds() {
		fx, err := NewEffect(k, sampleRate)
		if err != nil {
			return err
		}
		if _, err := c.RegisterEffect(bus, k, fx); err != nil {
			return err
		}
	}
	return nil
}

// SetEnabled writes the slot's enabled flag through to the host, even when
// it already has that value.
func (c *Controller) SetEnabled(bus, slot int, enabled bool) error {
	if err := c.host.SetEffectEnabled(bus, slot, enabled); err != nil {
		return fmt.Errorf("set bus %d slot %d enabled=%t: %w", bus, slot, enabled, err)
	}
	return nil
}

// Slot returns the slot index assigned to kind.
func (c *Controller) Slot(kind Kind) (int, error) {
	r, err := c.lookup(kind)
	if err != nil {
		return -1, err
	}
	return r.slot, nil
}

// Enabled reports whether kind's slot is currently enabled on its bus.
func (c *Controller) Enabled(kind Kind) (bool, error) {
	r, err := c.lookup(kind)
	if err != nil {
		return false, err
	}
	return c.host.EffectEnabled(r.bus, r.slot)
}

// Effect returns the instance registered for kind.
func (c *Controller) Effect(kind Kind) (intfx.Effector, error) {
	r, err := c.lookup(kind)
	if err != nil {
		return nil, err
	}
	return r.fx, nil
}

// Configure runs fn on kind's instance with audio processing held off.
func (c *Controller) Configure(kind Kind, fn func(intfx.Effector) error) error {
	r, err := c.lookup(kind)
	if err != nil {
		return err
	}
	return c.host.Configure(r.bus, r.slot, fn)
}

// ApplyPreset writes p's parameters into its target instance.
func (c *Controller) ApplyPreset(p Preset) error {
	if err := c.Configure(p.Kind(), p.apply); err != nil {
		return fmt.Errorf("apply %s preset: %w", p.Kind(), err)
	}
	return nil
}

// Slots lists registered slots in kind order.
func (c *Controller) Slots() ([]SlotInfo, error) {
	var out []SlotInfo
	for k, r := range c.slots {
		if !r.ok {
			continue
		}
		on, err := c.host.EffectEnabled(r.bus, r.slot)
		if err != nil {
			return nil, err
		}
		out = append(out, SlotInfo{Kind: Kind(k), Bus: r.bus, Index: r.slot, Enabled: on})
	}
	return out, nil
}

func (c *Controller) lookup(kind Kind) (registration, error) {
	if !kind.Valid() || !c.slots[kind].ok {
		return registration{}, &UnknownKindError{Kind: kind}
	}
	return c.slots[kind], nil
}
