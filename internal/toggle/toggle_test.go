package toggle

import (
	"errors"
	"testing"

	intbus "github.com/cbegin/micfx-go/internal/bus"
	"github.com/cbegin/micfx-go/internal/rack"
)

func newChain(t *testing.T) (*rack.Controller, int) {
	t.Helper()
	srv := intbus.NewServer(48000)
	c := rack.New(srv)
	bus, err := c.CreateBus("Record")
	if err != nil {
		t.Fatal(err)
	}
	if err := c.RegisterAll(bus, 48000); err != nil {
		t.Fatal(err)
	}
	return c, bus
}

func TestStartupDefaults(t *testing.T) {
	c, bus := newChain(t)
	b := New(c, bus)
	if err := b.BuildControls(DefaultEntries()); err != nil {
		t.Fatal(err)
	}
	if got := len(b.Controls()); got != rack.KindCount {
		t.Fatalf("controls = %d, want %d", got, rack.KindCount)
	}

	slot, _ := c.Slot(rack.Delay)
	if slot != 12 {
		t.Errorf("delay slot = %d, want 12", slot)
	}
	for _, k := range rack.Kinds() {
		on, err := c.Enabled(k)
		if err != nil {
			t.Fatal(err)
		}
		want := k == rack.Delay || k == rack.Amplify
		if on != want {
			t.Errorf("%s enabled = %t, want %t", k, on, want)
		}
		ctl, ok := b.Control(k)
		if !ok {
			t.Fatalf("no control for %s", k)
		}
		if ctl.Pressed() != on {
			t.Errorf("%s control pressed = %t but slot enabled = %t", k, ctl.Pressed(), on)
		}
	}
}

func TestToggleRoundTrip(t *testing.T) {
	c, bus := newChain(t)
	b := New(c, bus)
	if err := b.BuildControls(DefaultEntries()); err != nil {
		t.Fatal(err)
	}
	ctl, _ := b.Control(rack.HighPass)
	for _, pressed := range []bool{true, false} {
		if err := b.OnToggled(ctl, pressed); err != nil {
			t.Fatal(err)
		}
		on, _ := c.Enabled(rack.HighPass)
		if on != pressed || ctl.Pressed() != pressed {
			t.Errorf("after toggle to %t: slot=%t control=%t", pressed, on, ctl.Pressed())
		}
	}

	if err := b.Press(rack.Delay); err != nil {
		t.Fatal(err)
	}
	if on, _ := c.Enabled(rack.Delay); on {
		t.Error("pressing an enabled control should disable it")
	}
}

func TestBuildOnce(t *testing.T) {
	c, bus := newChain(t)
	b := New(c, bus)
	if err := b.BuildControls(DefaultEntries()); err != nil {
		t.Fatal(err)
	}
	if err := b.BuildControls(DefaultEntries()); !errors.Is(err, ErrAlreadyBuilt) {
		t.Errorf("second build: got %v, want ErrAlreadyBuilt", err)
	}
}

func TestBuildRejectsDuplicates(t *testing.T) {
	c, bus := newChain(t)
	b := New(c, bus)
	err := b.BuildControls([]Entry{{Kind: rack.Reverb, Label: "A"}, {Kind: rack.Reverb, Label: "B"}})
	if !errors.Is(err, ErrDuplicateKind) {
		t.Errorf("got %v, want ErrDuplicateKind", err)
	}
	if len(b.Controls()) != 0 {
		t.Error("failed build should not leave controls behind")
	}
}

func TestBuildFailsOnUnregisteredKind(t *testing.T) {
	srv := intbus.NewServer(48000)
	c := rack.New(srv)
	bus, _ := c.CreateBus("Record")
	b := New(c, bus, WithPresets())
	err := b.BuildControls([]Entry{{Kind: rack.PanLeft, Label: "Pan Left"}})
	var uke *rack.UnknownKindError
	if !errors.As(err, &uke) {
		t.Errorf("got %v, want UnknownKindError", err)
	}
}

func TestListenerAndForeignControl(t *testing.T) {
	c, bus := newChain(t)
	var seen []rack.Kind
	b := New(c, bus, WithListener(func(ctl *Control) { seen = append(seen, ctl.Kind) }))
	if err := b.BuildControls(DefaultEntries()); err != nil {
		t.Fatal(err)
	}
	if len(seen) != 0 {
		t.Fatalf("build should not notify listeners, got %v", seen)
	}
	_ = b.Press(rack.Reverb)
	_ = b.Press(rack.Record)
	if len(seen) != 2 || seen[0] != rack.Reverb || seen[1] != rack.Record {
		t.Errorf("listener saw %v", seen)
	}

	other := New(c, bus)
	if err := other.OnToggled(&Control{Kind: rack.Reverb}, true); !errors.Is(err, ErrForeignControl) {
		t.Errorf("got %v, want ErrForeignControl", err)
	}
	if err := b.Press(rack.Kind(-1)); err == nil {
		t.Error("pressing an invalid kind should fail")
	}
}

type countingTarget struct {
	writes  []bool
	presets int
}

func (f *countingTarget) Slot(kind rack.Kind) (int, error) { return int(kind), nil }
func (f *countingTarget) SetEnabled(_, _ int, enabled bool) error {
	f.writes = append(f.writes, enabled)
	return nil
}
func (f *countingTarget) ApplyPreset(rack.Preset) error {
	f.presets++
	return nil
}

func TestToggleAlwaysWritesThrough(t *testing.T) {
	f := &countingTarget{}
	b := New(f, 1, WithDefaultOn(func(rack.Kind) bool { return false }))
	if err := b.BuildControls([]Entry{{Kind: rack.Phaser, Label: "Phaser"}}); err != nil {
		t.Fatal(err)
	}
	if f.presets != len(rack.DefaultPresets()) {
		t.Errorf("presets applied = %d, want %d", f.presets, len(rack.DefaultPresets()))
	}
	ctl, _ := b.Control(rack.Phaser)
	_ = b.OnToggled(ctl, false)
	_ = b.OnToggled(ctl, false)
	if len(f.writes) != 3 {
		t.Errorf("writes = %v, want 3 (build + two toggles)", f.writes)
	}
}
