package main

import (
	"testing"

	"github.com/cbegin/micfx-go"
	"github.com/cbegin/micfx-go/internal/config"
	"github.com/cbegin/micfx-go/internal/rack"
)

func TestApplyStates(t *testing.T) {
	r, err := micfx.New(config.Default())
	if err != nil {
		t.Fatal(err)
	}
	if err := applyStates(r, []string{"Reverb", " pitch-high"}, []string{"delay"}); err != nil {
		t.Fatal(err)
	}
	want := map[rack.Kind]bool{
		rack.Reverb:         true,
		rack.PitchShiftHigh: true,
		rack.Delay:          false,
		rack.Amplify:        true,
	}
	for kind, on := range want {
		got, err := r.Enabled(kind)
		if err != nil {
			t.Fatal(err)
		}
		if got != on {
			t.Errorf("%s enabled = %v, want %v", kind, got, on)
		}
	}
}

func TestApplyStatesUnknownName(t *testing.T) {
	r, err := micfx.New(config.Default())
	if err != nil {
		t.Fatal(err)
	}
	if err := applyStates(r, []string{"flanger"}, nil); err == nil {
		t.Fatal("expected error for unknown effect name")
	}
}
