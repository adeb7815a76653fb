package rack

import (
	"fmt"

	intfx "github.com/cbegin/micfx-go/internal/effects"
)

// Preset is a one-time parameter set for one registered effect. The set of
// implementations is closed: one record type per effect family.
type Preset interface {
	Kind() Kind
	apply(fx intfx.Effector) error
}

type DelayPreset struct {
	FeedbackActive bool
	Tap2Active     bool
	Tap1DelayMs    float64
	Dry            float64
}

func (DelayPreset) Kind() Kind { return Delay }

func (p DelayPreset) apply(fx intfx.Effector) error {
	d, ok := fx.(*intfx.Delay)
	if !ok {
		return mismatch(Delay, fx)
	}
	d.SetFeedbackActive(p.FeedbackActive)
	tap1 := d.Tap(0)
	tap1.DelayMs = p.Tap1DelayMs
	d.SetTap(0, tap1)
	tap2 := d.Tap(1)
	tap2.Active = p.Tap2Active
	d.SetTap(1, tap2)
	d.SetDry(p.Dry)
	return nil
}

type AmplifyPreset struct {
	VolumeDB float64
}

func (AmplifyPreset) Kind() Kind { return Amplify }

func (p AmplifyPreset) apply(fx intfx.Effector) error {
	a, ok := fx.(*intfx.Amplify)
	if !ok {
		return mismatch(Amplify, fx)
	}
	a.SetVolumeDB(p.VolumeDB)
	return nil
}

// PitchShiftPreset targets PitchShiftHigh or PitchShiftLow.
type PitchShiftPreset struct {
	Target Kind
	Scale  float64
}

func (p PitchShiftPreset) Kind() Kind { return p.Target }

func (p PitchShiftPreset) apply(fx intfx.Effector) error {
	if p.Target != PitchShiftHigh && p.Target != PitchShiftLow {
		return fmt.Errorf("%w: pitch preset cannot target %s", ErrKindMismatch, p.Target)
	}
	ps, ok := fx.(*intfx.PitchShift)
	if !ok {
		return mismatch(p.Target, fx)
	}
	ps.SetPitchScale(p.Scale)
	return nil
}

type DistortionPreset struct {
	Drive float32
	Mode  intfx.DistortionMode
}

func (DistortionPreset) Kind() Kind { return Distortion }

func (p DistortionPreset) apply(fx intfx.Effector) error {
	d, ok := fx.(*intfx.Distortion)
	if !ok {
		return mismatch(Distortion, fx)
	}
	d.SetDrive(p.Drive)
	d.SetMode(p.Mode)
	return nil
}

// PanPreset targets PanLeft or PanRight.
type PanPreset struct {
	Target Kind
	Pan    float32
}

func (p PanPreset) Kind() Kind { return p.Target }

func (p PanPreset) apply(fx intfx.Effector) error {
	if p.Target != PanLeft && p.Target != PanRight {
		return fmt.Errorf("%w: pan preset cannot target %s", ErrKindMismatch, p.Target)
	}
	pn, ok := fx.(*intfx.Panner)
	if !ok {
		return mismatch(p.Target, fx)
	}
	pn.SetPan(p.Pan)
	return nil
}

type PhaserPreset struct {
	Feedback float64
	Depth    float64
}

func (PhaserPreset) Kind() Kind { return Phaser }

func (p PhaserPreset) apply(fx intfx.Effector) error {
	ph, ok := fx.(*intfx.Phaser)
	if !ok {
		return mismatch(Phaser, fx)
	}
	ph.SetFeedback(p.Feedback)
	ph.SetDepth(p.Depth)
	return nil
}

type ReverbPreset struct {
	Dry float32
}

func (ReverbPreset) Kind() Kind { return Reverb }

func (p ReverbPreset) apply(fx intfx.Effector) error {
	r, ok := fx.(*intfx.Reverb)
	if !ok {
		return mismatch(Reverb, fx)
	}
	r.SetDry(p.Dry)
	return nil
}

// DefaultPresets is the startup configuration: a five second single-tap
// echo with no dry signal, +18dB of gain, octave up/down pitch, crushed
// distortion, hard pans, a deep phaser and a fully wet reverb.
func DefaultPresets() []Preset {
	return []Preset{
		DelayPreset{FeedbackActive: false, Tap2Active: false, Tap1DelayMs: 5000, Dry: 0},
		AmplifyPreset{VolumeDB: 18},
		PitchShiftPreset{Target: PitchShiftHigh, Scale: 2},
		PitchShiftPreset{Target: PitchShiftLow, Scale: 0.5},
		DistortionPreset{Drive: 1, Mode: intfx.DistortionLofi},
		PanPreset{Target: PanLeft, Pan: -1},
		PanPreset{Target: PanRight, Pan: 1},
		PhaserPreset{Feedback: 0.7, Depth: 1},
		ReverbPreset{Dry: 0},
	}
}

func mismatch(kind Kind, fx intfx.Effector) error {
	return fmt.Errorf("%w: %s preset applied to %T", ErrKindMismatch, kind, fx)
}
