package effects

// Amplify applies a fixed gain expressed in decibels.
type Amplify struct {
	volumeDB float64
	gain     float32
}

func NewAmplify() *Amplify {
	return &Amplify{gain: 1}
}

// SetVolumeDB sets the gain, clamped to [-80, 24] dB.
func (a *Amplify) SetVolumeDB(db float64) {
	if db < -80 {
		db = -80
	}
	if db > 24 {
		db = 24
	}
	a.volumeDB = db
	a.gain = dbToLinear(db)
}

func (a *Amplify) VolumeDB() float64 { return a.volumeDB }

func (a *Amplify) Process(l, r float32) (float32, float32) {
	return l * a.gain, r * a.gain
}

func (a *Amplify) Reset() {}
