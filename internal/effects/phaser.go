package effects

import (
	"math"

	"github.com/cwbudde/algo-dsp/dsp/effects/modulation"
)

const (
	phaserStages   = 6
	phaserMinHz    = 440
	phaserMaxHz    = 1600
	phaserRateHz   = 0.5
	phaserFeedback = 0.7
)

// Phaser adds a swept allpass cascade onto the dry signal. Each channel runs
// its own fully wet modulation.Phaser; depth scales what is added back.
type Phaser struct {
	left, right *modulation.Phaser
	depth       float64
}

// NewPhaser creates a phaser sweeping 440..1600Hz at 0.5Hz with feedback 0.7
// and depth 1.
func NewPhaser(sampleRate int) (*Phaser, error) {
	left, err := newPhaserChannel(sampleRate)
	if err != nil {
		return nil, err
	}
	right, err := newPhaserChannel(sampleRate)
	if err != nil {
		return nil, err
	}
	return &Phaser{left: left, right: right, depth: 1}, nil
}

func newPhaserChannel(sampleRate int) (*modulation.Phaser, error) {
	return modulation.NewPhaser(float64(sampleRate),
		modulation.WithPhaserFrequencyRangeHz(phaserMinHz, phaserMaxHz),
		modulation.WithPhaserRateHz(phaserRateHz),
		modulation.WithPhaserStages(phaserStages),
		modulation.WithPhaserFeedback(phaserFeedback),
		modulation.WithPhaserMix(1),
	)
}

// SetFeedback sets the stage feedback, clamped to [0.1, 0.9].
func (p *Phaser) SetFeedback(v float64) {
	v = math.Max(0.1, math.Min(0.9, v))
	// Inside the library's [-0.99, 0.99] after the clamp.
	_ = p.left.SetFeedback(v)
	_ = p.right.SetFeedback(v)
}

func (p *Phaser) Feedback() float64 { return p.left.Feedback() }

// SetDepth sets how much of the swept signal is added, clamped to [0.1, 4].
func (p *Phaser) SetDepth(v float64) { p.depth = math.Max(0.1, math.Min(4, v)) }
func (p *Phaser) Depth() float64     { return p.depth }

func (p *Phaser) Process(l, r float32) (float32, float32) {
	yl := p.left.Process(float64(l))
	yr := p.right.Process(float64(r))
	return l + float32(yl*p.depth), r + float32(yr*p.depth)
}

func (p *Phaser) Reset() {
	p.left.Reset()
	p.right.Reset()
}
