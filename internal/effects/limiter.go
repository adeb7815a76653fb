package effects

import (
	"math"

	"github.com/cwbudde/algo-dsp/dsp/effects/dynamics"
)

// Limiter is a stereo-linked peak limiter. Both channels share one gain so a
// hard-panned signal keeps its position while it is being held down.
type Limiter struct {
	comp *dynamics.Compressor
	gain float64
}

// NewLimiter returns a limiter with a -1 dB ceiling and 80 ms release, used
// on Master to keep boosted input from clipping the output. The detector is
// a hard-knee 100:1 compressor with a 0.1 ms attack.
func NewLimiter(sampleRate int) (*Limiter, error) {
	c, err := dynamics.NewCompressor(float64(sampleRate))
	if err != nil {
		return nil, err
	}
	l := &Limiter{comp: c, gain: 1}
	for _, set := range []func() error{
		func() error { return c.SetRatio(100) },
		func() error { return c.SetAttack(0.1) },
		func() error { return c.SetKnee(0) },
		func() error { return c.SetAutoMakeup(false) },
		func() error { return c.SetMakeupGain(0) },
		func() error { return l.SetCeilingDB(-1) },
		func() error { return l.SetReleaseMs(80) },
	} {
		if err := set(); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// SetCeilingDB sets the threshold; positive values are pulled down to 0 dB.
func (l *Limiter) SetCeilingDB(db float64) error {
	return l.comp.SetThreshold(min(db, 0))
}

func (l *Limiter) SetReleaseMs(ms float64) error {
	return l.comp.SetRelease(ms)
}

// GainReductionDB reports the current attenuation as a positive number.
func (l *Limiter) GainReductionDB() float64 {
	return -20 * math.Log10(l.gain)
}

func (l *Limiter) Process(left, right float32) (float32, float32) {
	peak := float64(max(left, -left, right, -right))
	// A unit input through the sidechain yields the gain itself.
	l.gain = l.comp.ProcessSampleSidechain(1, peak)
	g := float32(l.gain)
	return left * g, right * g
}

func (l *Limiter) Reset() {
	l.comp.Reset()
	l.gain = 1
}
