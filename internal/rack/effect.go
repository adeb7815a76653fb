package rack

import (
	"fmt"

	intfx "github.com/cbegin/micfx-go/internal/effects"
)

// RecordLimitSeconds caps a single recorder take.
const RecordLimitSeconds = 600

// NewEffect builds a fresh instance with host defaults for kind.
func NewEffect(kind Kind, sampleRate int) (intfx.Effector, error) {
	switch kind {
	case Record:
		return intfx.NewRecord(sampleRate, RecordLimitSeconds), nil
	case PitchShiftHigh, PitchShiftLow:
		ps, err := intfx.NewPitchShift(sampleRate)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", kind, err)
		}
		return ps, nil
	case Amplify:
		return intfx.NewAmplify(), nil
	case Distortion:
		return intfx.NewDistortion(sampleRate), nil
	case HighPass:
		return intfx.NewHighPass(sampleRate), nil
	case LowPass:
		return intfx.NewLowPass(sampleRate), nil
	case BandPass:
		return intfx.NewBandPass(sampleRate), nil
	case PanLeft, PanRight:
		return intfx.NewPanner(), nil
	case Phaser:
		ph, err := intfx.NewPhaser(sampleRate)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", kind, err)
		}
		return ph, nil
	case Reverb:
		return intfx.NewReverb(sampleRate, 0.8, 0.5, 0.5, 1), nil
	case Delay:
		return intfx.NewDelay(sampleRate), nil
	}
	return nil, &UnknownKindError{Kind: kind}
}

// matches reports whether fx is the concrete type kind expects.
func matches(kind Kind, fx intfx.Effector) bool {
	switch kind {
	case Record:
		_, ok := fx.(*intfx.Record)
		return ok
	case PitchShiftHigh, PitchShiftLow:
		_, ok := fx.(*intfx.PitchShift)
		return ok
	case Amplify:
		_, ok := fx.(*intfx.Amplify)
		return ok
	case Distortion:
		_, ok := fx.(*intfx.Distortion)
		return ok
	case HighPass:
		f, ok := fx.(*intfx.Filter)
		return ok && f.Type() == intfx.FilterHighPass
	case LowPass:
		f, ok := fx.(*intfx.Filter)
		return ok && f.Type() == intfx.FilterLowPass
	case BandPass:
		f, ok := fx.(*intfx.Filter)
		return ok && f.Type() == intfx.FilterBandPass
	case PanLeft, PanRight:
		_, ok := fx.(*intfx.Panner)
		return ok
	case Phaser:
		_, ok := fx.(*intfx.Phaser)
		return ok
	case Reverb:
		_, ok := fx.(*intfx.Reverb)
		return ok
	case Delay:
		_, ok := fx.(*intfx.Delay)
		return ok
	}
	return false
}
