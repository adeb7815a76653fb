package effects

// Reverb implements a Schroeder-style reverb with multiple comb filters
// and two allpass filters.
type Reverb struct {
	sampleRate int
	combs      [4]combFilter
	allpass    [2]allpassFilter
	roomSize   float32
	damping    float32
	wet        float32
	dry        float32
}

type combFilter struct {
	buf    []float32
	pos    int
	fb     float32
	damp   float32
	filter float32
}

type allpassFilter struct {
	buf []float32
	pos int
	fb  float32
}

// NewReverb creates a reverb effect.
// roomSize: 0..1 controls delay lengths and decay
// damping: 0..1 high-frequency absorption inside the combs
// wet, dry: output mix levels 0..1
func NewReverb(sampleRate int, roomSize, damping, wet, dry float32) *Reverb {
	r := &Reverb{
		sampleRate: sampleRate,
		wet:        clamp(wet, 0, 1),
		dry:        clamp(dry, 0, 1),
	}
	r.build(clamp(roomSize, 0, 1), clamp(damping, 0, 1))
	return r
}

func (r *Reverb) build(roomSize, damping float32) {
	r.roomSize = roomSize
	r.damping = damping
	base := int(float32(r.sampleRate) * (0.2 + roomSize*0.8) * 0.05)
	if base < 10 {
		base = 10
	}
	fb := 0.7 + roomSize*0.28
	// Comb filter delay lengths (prime-ish ratios to avoid resonances)
	combLens := [4]int{base, base * 1117 / 1000, base * 1271 / 1000, base * 1437 / 1000}
	for i := range r.combs {
		r.combs[i] = combFilter{
			buf:  make([]float32, combLens[i]),
			fb:   fb,
			damp: damping,
		}
	}
	apLens := [2]int{base * 347 / 1000, base * 213 / 1000}
	for i := range r.allpass {
		r.allpass[i] = allpassFilter{
			buf: make([]float32, max(apLens[i], 1)),
			fb:  0.5,
		}
	}
}

// SetRoomSize rebuilds the comb and allpass lines; the tail is cleared.
func (r *Reverb) SetRoomSize(v float32) { r.build(clamp(v, 0, 1), r.damping) }
func (r *Reverb) RoomSize() float32     { return r.roomSize }

func (r *Reverb) SetDamping(v float32) {
	r.damping = clamp(v, 0, 1)
	for i := range r.combs {
		r.combs[i].damp = r.damping
	}
}
func (r *Reverb) Damping() float32 { return r.damping }

func (r *Reverb) SetWet(v float32) { r.wet = clamp(v, 0, 1) }
func (r *Reverb) Wet() float32     { return r.wet }
func (r *Reverb) SetDry(v float32) { r.dry = clamp(v, 0, 1) }
func (r *Reverb) Dry() float32     { return r.dry }

func (r *Reverb) Process(l, r2 float32) (float32, float32) {
	mono := (l + r2) * 0.5
	var out float32
	for i := range r.combs {
		out += r.combs[i].process(mono)
	}
	out *= 0.25
	for i := range r.allpass {
		out = r.allpass[i].process(out)
	}
	return l*r.dry + out*r.wet, r2*r.dry + out*r.wet
}

func (r *Reverb) Reset() {
	for i := range r.combs {
		clear(r.combs[i].buf)
		r.combs[i].pos = 0
		r.combs[i].filter = 0
	}
	for i := range r.allpass {
		clear(r.allpass[i].buf)
		r.allpass[i].pos = 0
	}
}

func (c *combFilter) process(in float32) float32 {
	out := c.buf[c.pos]
	c.filter = out*(1-c.damp) + c.filter*c.damp
	c.buf[c.pos] = in + c.filter*c.fb
	c.pos++
	if c.pos >= len(c.buf) {
		c.pos = 0
	}
	return out
}

func (a *allpassFilter) process(in float32) float32 {
	bufOut := a.buf[a.pos]
	out := -in + bufOut
	a.buf[a.pos] = in + bufOut*a.fb
	a.pos++
	if a.pos >= len(a.buf) {
		a.pos = 0
	}
	return out
}
