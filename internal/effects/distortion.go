package effects

import "math"

// DistortionMode selects the waveshaping curve.
type DistortionMode int

const (
	DistortionClip DistortionMode = iota
	DistortionAtan
	DistortionLofi
	DistortionOverdrive
	DistortionWaveshape
)

func (m DistortionMode) String() string {
	switch m {
	case DistortionClip:
		return "clip"
	case DistortionAtan:
		return "atan"
	case DistortionLofi:
		return "lofi"
	case DistortionOverdrive:
		return "overdrive"
	case DistortionWaveshape:
		return "waveshape"
	default:
		return "unknown"
	}
}

// Distortion implements waveshaping distortion with pre/post gain and a
// lowpass that keeps high frequencies below keepHF out of the shaper.
type Distortion struct {
	sampleRate int
	mode       DistortionMode
	drive      float32
	preGain    float32
	postGain   float32
	keepHFHz   float32
	lpfAlpha   float32
	lpfL       float32
	lpfR       float32
}

// NewDistortion creates a clip distortion with drive 0, unity gains and
// keepHF at 16kHz.
func NewDistortion(sampleRate int) *Distortion {
	d := &Distortion{
		sampleRate: sampleRate,
		mode:       DistortionClip,
		preGain:    1,
		postGain:   1,
	}
	d.SetKeepHFHz(16000)
	return d
}

func (d *Distortion) SetMode(m DistortionMode) { d.mode = m }
func (d *Distortion) Mode() DistortionMode     { return d.mode }

// SetDrive sets the distortion amount, 0..1.
func (d *Distortion) SetDrive(v float32) { d.drive = clamp(v, 0, 1) }
func (d *Distortion) Drive() float32     { return d.drive }

// SetPreGain sets the input gain in dB.
func (d *Distortion) SetPreGain(db float64)  { d.preGain = dbToLinear(db) }
func (d *Distortion) SetPostGain(db float64) { d.postGain = dbToLinear(db) }

// SetKeepHFHz sets the lowpass cutoff; 0 or above Nyquist disables it.
func (d *Distortion) SetKeepHFHz(hz float32) {
	d.keepHFHz = hz
	d.lpfAlpha = 0
	if hz > 0 && hz < float32(d.sampleRate)/2 {
		rc := 1.0 / (2.0 * math.Pi * float64(hz))
		dt := 1.0 / float64(d.sampleRate)
		d.lpfAlpha = float32(dt / (rc + dt))
	}
}

func (d *Distortion) KeepHFHz() float32 { return d.keepHFHz }

func (d *Distortion) Process(l, r float32) (float32, float32) {
	l *= d.preGain
	r *= d.preGain
	if d.lpfAlpha > 0 {
		d.lpfL += d.lpfAlpha * (l - d.lpfL)
		d.lpfR += d.lpfAlpha * (r - d.lpfR)
		l = d.lpfL
		r = d.lpfR
	}
	l = d.shape(l)
	r = d.shape(r)
	return l * d.postGain, r * d.postGain
}

func (d *Distortion) shape(x float32) float32 {
	drive := float64(d.drive)
	a := float64(x)
	switch d.mode {
	case DistortionClip:
		a *= math.Pow(10, drive*drive*3)
		a = math.Max(-1, math.Min(1, a))
	case DistortionAtan:
		k := 0.5 + drive*50
		a = math.Atan(a*k) / math.Atan(k)
	case DistortionLofi:
		// 16 bits at drive 0 down to 2 bits at drive 1.
		levels := math.Pow(2, 2+(1-drive)*14)
		a = math.Floor(a*levels+0.5) / levels
	case DistortionOverdrive:
		k := 1 + drive*20
		a = math.Tanh(a*k) / math.Tanh(k)
	case DistortionWaveshape:
		k := 2 * drive / (1.00001 - drive)
		a = (1 + k) * a / (1 + k*math.Abs(a))
	}
	return float32(a)
}

func (d *Distortion) Reset() {
	d.lpfL = 0
	d.lpfR = 0
}
