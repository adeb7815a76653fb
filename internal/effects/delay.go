package effects

import "math"

// MaxDelayMs bounds every delay time; the line buffers are sized for it.
const MaxDelayMs = 6000

// DelayTap is one delayed copy of the input.
type DelayTap struct {
	Active  bool
	DelayMs float64
	LevelDB float64
	Pan     float64 // -1 = left, +1 = right
}

// Delay implements a two-tap stereo delay with an independent feedback line.
type Delay struct {
	sampleRate int
	bufL, bufR []float32
	fbL, fbR   []float32
	pos        int

	dry  float32
	taps [2]DelayTap

	feedbackActive  bool
	feedbackDelayMs float64
	feedbackLevelDB float64
	feedbackLowpass float64
	lpAlpha         float32
	lpL, lpR        float32
}

// NewDelay creates a delay with both taps and the feedback line active.
// Defaults: dry 1, tap1 250ms at -6dB panned slightly right, tap2 500ms at
// -12dB panned left, feedback 340ms at -6dB lowpassed at 16kHz.
func NewDelay(sampleRate int) *Delay {
	size := int(float64(sampleRate)*MaxDelayMs/1000.0) + 1
	d := &Delay{
		sampleRate: sampleRate,
		bufL:       make([]float32, size),
		bufR:       make([]float32, size),
		fbL:        make([]float32, size),
		fbR:        make([]float32, size),
		dry:        1,
		taps: [2]DelayTap{
			{Active: true, DelayMs: 250, LevelDB: -6, Pan: 0.2},
			{Active: true, DelayMs: 500, LevelDB: -12, Pan: -0.4},
		},
		feedbackActive:  true,
		feedbackDelayMs: 340,
		feedbackLevelDB: -6,
	}
	d.SetFeedbackLowpassHz(16000)
	return d
}

// SetDry sets the level of the undelayed signal, 0..1.
func (d *Delay) SetDry(v float64) { d.dry = clamp(float32(v), 0, 1) }

// Dry returns the undelayed signal level.
func (d *Delay) Dry() float64 { return float64(d.dry) }

// SetTap replaces tap 0 or 1. Delay times are clamped to MaxDelayMs.
func (d *Delay) SetTap(i int, tap DelayTap) {
	if i < 0 || i >= len(d.taps) {
		return
	}
	tap.DelayMs = clampMs(tap.DelayMs)
	tap.Pan = math.Max(-1, math.Min(1, tap.Pan))
	d.taps[i] = tap
}

// Tap returns tap 0 or 1.
func (d *Delay) Tap(i int) DelayTap {
	if i < 0 || i >= len(d.taps) {
		return DelayTap{}
	}
	return d.taps[i]
}

func (d *Delay) SetFeedbackActive(active bool) { d.feedbackActive = active }
func (d *Delay) FeedbackActive() bool          { return d.feedbackActive }

func (d *Delay) SetFeedbackDelayMs(ms float64) { d.feedbackDelayMs = clampMs(ms) }
func (d *Delay) SetFeedbackLevelDB(db float64) { d.feedbackLevelDB = math.Min(db, 0) }

// SetFeedbackLowpassHz sets the one-pole lowpass applied inside the feedback loop.
func (d *Delay) SetFeedbackLowpassHz(hz float64) {
	d.feedbackLowpass = hz
	if hz <= 0 || hz >= float64(d.sampleRate)/2 {
		d.lpAlpha = 1
		return
	}
	rc := 1.0 / (2.0 * math.Pi * hz)
	dt := 1.0 / float64(d.sampleRate)
	d.lpAlpha = float32(dt / (rc + dt))
}

func (d *Delay) Process(l, r float32) (float32, float32) {
	size := len(d.bufL)
	d.bufL[d.pos] = l
	d.bufR[d.pos] = r

	outL, outR := l*d.dry, r*d.dry
	for _, tap := range d.taps {
		if !tap.Active {
			continue
		}
		idx := d.readIndex(tap.DelayMs, size)
		g := dbToLinear(tap.LevelDB)
		panL, panR := panGains(tap.Pan)
		outL += d.bufL[idx] * g * panL
		outR += d.bufR[idx] * g * panR
	}

	if d.feedbackActive {
		idx := d.readIndex(d.feedbackDelayMs, size)
		g := dbToLinear(d.feedbackLevelDB)
		d.lpL += d.lpAlpha * (d.fbL[idx] - d.lpL)
		d.lpR += d.lpAlpha * (d.fbR[idx] - d.lpR)
		outL += d.lpL
		outR += d.lpR
		d.fbL[d.pos] = (l + d.lpL) * g
		d.fbR[d.pos] = (r + d.lpR) * g
	} else {
		d.fbL[d.pos] = 0
		d.fbR[d.pos] = 0
	}

	d.pos++
	if d.pos >= size {
		d.pos = 0
	}
	return outL, outR
}

func (d *Delay) readIndex(ms float64, size int) int {
	samples := int(ms * float64(d.sampleRate) / 1000.0)
	if samples >= size {
		samples = size - 1
	}
	idx := d.pos - samples
	if idx < 0 {
		idx += size
	}
	return idx
}

func (d *Delay) Reset() {
	for i := range d.bufL {
		d.bufL[i] = 0
		d.bufR[i] = 0
		d.fbL[i] = 0
		d.fbR[i] = 0
	}
	d.pos = 0
	d.lpL, d.lpR = 0, 0
}

// panGains maps pan in [-1, 1] to left/right gains with unity at center.
func panGains(pan float64) (float32, float32) {
	l := float32(math.Min(1, 1-pan))
	r := float32(math.Min(1, 1+pan))
	return l, r
}

func clampMs(ms float64) float64 {
	return math.Max(0, math.Min(MaxDelayMs, ms))
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
