package effects

import (
	"math"

	"github.com/cwbudde/algo-dsp/dsp/effects/pitch"
)

const (
	minPitchScale = 0.25
	maxPitchScale = 4

	pitchBlockMs    = 80
	pitchSequenceMs = 40
	pitchOverlapMs  = 8
	pitchSearchMs   = 10
)

// pitchChannel streams one channel through a block pitch shifter. Inputs
// land in a ring of the last n samples; every hop the ring is shifted as one
// block and the Hann-windowed result is overlap-added into the output ring.
type pitchChannel struct {
	shifter *pitch.PitchShifter
	in      []float64
	out     []float64
	block   []float64
}

func newPitchChannel(sampleRate float64, n int) (*pitchChannel, error) {
	ps, err := pitch.NewPitchShifter(sampleRate)
	if err != nil {
		return nil, err
	}
	if err := ps.SetSequence(pitchSequenceMs); err != nil {
		return nil, err
	}
	if err := ps.SetOverlap(pitchOverlapMs); err != nil {
		return nil, err
	}
	if err := ps.SetSearch(pitchSearchMs); err != nil {
		return nil, err
	}
	return &pitchChannel{
		shifter: ps,
		in:      make([]float64, n),
		out:     make([]float64, n),
		block:   make([]float64, n),
	}, nil
}

func (c *pitchChannel) flush(pos int, window []float64) {
	n := len(c.in)
	for j := range c.block {
		c.block[j] = c.in[(pos+j)%n]
	}
	y := c.shifter.Process(c.block)
	for j, v := range y {
		c.out[(pos+j)%n] += v * window[j]
	}
}

func (c *pitchChannel) reset() {
	clear(c.in)
	clear(c.out)
}

// PitchShift changes pitch without changing duration. Output trails the
// input by one block (about 85ms at 48kHz).
type PitchShift struct {
	scale       float64
	window      []float64
	hop         int
	pos         int
	filled      int
	left, right *pitchChannel
}

// NewPitchShift creates a shifter at scale 1 (no change).
func NewPitchShift(sampleRate int) (*PitchShift, error) {
	n := 1
	for n < sampleRate*pitchBlockMs/1000 {
		n <<= 1
	}
	p := &PitchShift{
		scale:  1,
		window: make([]float64, n),
		hop:    n / 2,
	}
	// Periodic Hann: two windows half a block apart sum to one.
	for j := range p.window {
		p.window[j] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(j)/float64(n))
	}
	var err error
	if p.left, err = newPitchChannel(float64(sampleRate), n); err != nil {
		return nil, err
	}
	if p.right, err = newPitchChannel(float64(sampleRate), n); err != nil {
		return nil, err
	}
	return p, nil
}

// SetPitchScale sets the frequency ratio: 2 is an octave up, 0.5 an octave
// down. Values are clamped to [0.25, 4]; NaN means no change.
func (p *PitchShift) SetPitchScale(scale float64) {
	if math.IsNaN(scale) {
		scale = 1
	}
	p.scale = math.Max(minPitchScale, math.Min(maxPitchScale, scale))
	_ = p.left.shifter.SetPitchRatio(p.scale)
	_ = p.right.shifter.SetPitchRatio(p.scale)
}

func (p *PitchShift) PitchScale() float64 { return p.scale }

func (p *PitchShift) Process(l, r float32) (float32, float32) {
	outL := p.left.out[p.pos]
	outR := p.right.out[p.pos]
	p.left.out[p.pos] = 0
	p.right.out[p.pos] = 0
	p.left.in[p.pos] = float64(l)
	p.right.in[p.pos] = float64(r)

	p.pos++
	if p.pos == len(p.window) {
		p.pos = 0
	}
	p.filled++
	if p.filled == p.hop {
		p.filled = 0
		p.left.flush(p.pos, p.window)
		p.right.flush(p.pos, p.window)
	}
	return float32(outL), float32(outR)
}

func (p *PitchShift) Reset() {
	p.left.reset()
	p.right.reset()
	p.pos = 0
	p.filled = 0
}
