package effects

// Panner moves the stereo image; at the extremes the opposite channel is
// folded into the remaining one rather than dropped.
type Panner struct {
	pan float32
}

func NewPanner() *Panner {
	return &Panner{}
}

// SetPan sets the position, -1 (full left) to +1 (full right).
func (p *Panner) SetPan(v float32) { p.pan = clamp(v, -1, 1) }
func (p *Panner) Pan() float32     { return p.pan }

func (p *Panner) Process(l, r float32) (float32, float32) {
	lvol := clamp(1-p.pan, 0, 1)
	rvol := clamp(1+p.pan, 0, 1)
	return l*lvol + r*(1-rvol), r*rvol + l*(1-lvol)
}

func (p *Panner) Reset() {}
