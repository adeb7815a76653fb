package effects

import (
	"math"

	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design"
)

// FilterType selects the biquad response.
type FilterType int

const (
	FilterLowPass FilterType = iota
	FilterHighPass
	FilterBandPass
)

func (t FilterType) String() string {
	switch t {
	case FilterLowPass:
		return "lowpass"
	case FilterHighPass:
		return "highpass"
	case FilterBandPass:
		return "bandpass"
	default:
		return "unknown"
	}
}

const defaultFilterQ = 1 / math.Sqrt2

// Filter is a stereo RBJ biquad: one section per channel sharing the same
// coefficients.
type Filter struct {
	sampleRate float64
	typ        FilterType
	cutoffHz   float64
	q          float64

	left, right *biquad.Section
}

// NewFilter creates a filter at 2kHz with a Butterworth Q.
func NewFilter(sampleRate int, typ FilterType) *Filter {
	f := &Filter{
		sampleRate: float64(sampleRate),
		typ:        typ,
		cutoffHz:   2000,
		q:          defaultFilterQ,
		left:       biquad.NewSection(biquad.Identity()),
		right:      biquad.NewSection(biquad.Identity()),
	}
	f.design()
	return f
}

func NewLowPass(sampleRate int) *Filter  { return NewFilter(sampleRate, FilterLowPass) }
func NewHighPass(sampleRate int) *Filter { return NewFilter(sampleRate, FilterHighPass) }
func NewBandPass(sampleRate int) *Filter { return NewFilter(sampleRate, FilterBandPass) }

func (f *Filter) Type() FilterType { return f.typ }

// SetCutoffHz moves the corner (or center, for band-pass) frequency.
// Values are kept inside (1Hz, Nyquist).
func (f *Filter) SetCutoffHz(hz float64) {
	nyq := f.sampleRate / 2
	f.cutoffHz = math.Max(1, math.Min(nyq*0.99, hz))
	f.design()
}

func (f *Filter) CutoffHz() float64 { return f.cutoffHz }

// SetResonance sets Q; non-positive values fall back to 1/sqrt(2).
func (f *Filter) SetResonance(q float64) {
	if q <= 0 || math.IsNaN(q) || math.IsInf(q, 0) {
		q = defaultFilterQ
	}
	f.q = q
	f.design()
}

func (f *Filter) Resonance() float64 { return f.q }

func (f *Filter) design() {
	var c biquad.Coefficients
	switch f.typ {
	case FilterHighPass:
		c = design.Highpass(f.cutoffHz, f.q, f.sampleRate)
	case FilterBandPass:
		// The library's band-pass peaks at Q; scale it back to 0dB.
		c = design.Bandpass(f.cutoffHz, f.q, f.sampleRate)
		c.B0 /= f.q
		c.B1 /= f.q
		c.B2 /= f.q
	default:
		c = design.Lowpass(f.cutoffHz, f.q, f.sampleRate)
	}
	f.left.Coefficients = c
	f.right.Coefficients = c
}

func (f *Filter) Process(l, r float32) (float32, float32) {
	return float32(f.left.ProcessSample(float64(l))), float32(f.right.ProcessSample(float64(r)))
}

func (f *Filter) Reset() {
	f.left.Reset()
	f.right.Reset()
}
