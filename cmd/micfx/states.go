package main

import (
	"github.com/cbegin/micfx-go"
	"github.com/cbegin/micfx-go/internal/rack"
)

// applyStates switches the named effects on, then the others off.
func applyStates(r *micfx.Rack, enable, disable []string) error {
	for _, set := range []struct {
		names []string
		on    bool
	}{{enable, true}, {disable, false}} {
		for _, name := range set.names {
			kind, err := rack.ParseKind(name)
			if err != nil {
				return err
			}
			if err := r.SetEnabled(kind, set.on); err != nil {
				return err
			}
		}
	}
	return nil
}
