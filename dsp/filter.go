package dsp

const (
	// MinCutoffHz is the lowest cutoff the SVF accepts.
	MinCutoffHz = 10
	// MinDamping and MaxDamping bound the SVF damping k = 1/Q. Below
	// MinDamping the resonance rings for seconds; above MaxDamping the
	// response is overdamped and the band-pass output vanishes.
	MinDamping = 0.05
	MaxDamping = 2

	DefaultDCCutoffHz = 20
)

type (
	// OnePoleLP is a one-pole low-pass: y += a*(x-y).
	OnePoleLP struct {
		a float32
		y float32
	}

	// OnePoleHP is a one-pole high-pass in direct difference form:
	// y[n] = x[n] - x[n-1] + b*y[n-1]. This is the only high-pass form
	// offered; it has a true zero at DC.
	OnePoleHP struct {
		b      float32
		x1, y1 float32
	}

	// DCBlock removes the DC offset of a signal with a OnePoleHP at a low
	// cutoff.
	DCBlock struct {
		OnePoleHP
	}

	// SVF is a trapezoidally integrated state-variable filter producing
	// low-, band-, high-pass and notch outputs from a single update. The
	// cutoff and damping are clamped to ranges where the recurrence is
	// unconditionally stable.
	SVF struct {
		g, k       float32
		a1, a2, a3 float32
		ic1, ic2   float32
	}

	SVFOutputs struct {
		Lowpass  float32
		Bandpass float32
		Highpass float32
		Notch    float32
	}
)

func NewOnePoleLP(cutoff, sampleRate float32) OnePoleLP {
	var f OnePoleLP
	f.SetCutoff(cutoff, sampleRate)
	return f
}

func (f *OnePoleLP) SetCutoff(cutoff, sampleRate float32) {
	f.a = 1 - OnePoleCoeffHz(cutoff, sampleRate)
}

func (f *OnePoleLP) Process(x float32) float32 {
	f.y = KillDenormals(f.y + f.a*(x-f.y))
	return f.y
}

func (f *OnePoleLP) ProcessBuffer(buf []float32) {
	y, a := f.y, f.a
	for i, x := range buf {
		y += a * (x - y)
		buf[i] = y
	}
	f.y = KillDenormals(y)
}

func (f *OnePoleLP) Value() float32 { return f.y }
func (f *OnePoleLP) Reset()         { f.y = 0 }

func NewOnePoleHP(cutoff, sampleRate float32) OnePoleHP {
	var f OnePoleHP
	f.SetCutoff(cutoff, sampleRate)
	return f
}

func (f *OnePoleHP) SetCutoff(cutoff, sampleRate float32) {
	f.b = OnePoleCoeffHz(cutoff, sampleRate)
}

func (f *OnePoleHP) Process(x float32) float32 {
	y := KillDenormals(x - f.x1 + f.b*f.y1)
	f.x1, f.y1 = KillDenormals(x), y
	return y
}

func (f *OnePoleHP) ProcessBuffer(buf []float32) {
	x1, y1, b := f.x1, f.y1, f.b
	for i, x := range buf {
		y1 = x - x1 + b*y1
		x1 = x
		buf[i] = y1
	}
	f.x1, f.y1 = KillDenormals(x1), KillDenormals(y1)
}

func (f *OnePoleHP) Reset() { f.x1, f.y1 = 0, 0 }

func NewDCBlock(sampleRate float32) DCBlock {
	return DCBlock{NewOnePoleHP(DefaultDCCutoffHz, sampleRate)}
}

func (d *DCBlock) SetSampleRate(sampleRate float32) {
	d.SetCutoff(DefaultDCCutoffHz, sampleRate)
}

func NewSVF(cutoff, damping, sampleRate float32) SVF {
	var f SVF
	f.Set(cutoff, damping, sampleRate)
	return f
}

// Set recomputes the coefficients. The cutoff is clamped to
// [MinCutoffHz, MaxCutoffRatio*sr] and the damping to
// [MinDamping, MaxDamping]; the integrator states are kept.
func (f *SVF) Set(cutoff, damping, sampleRate float32) {
	cutoff = Clamp(cutoff, MinCutoffHz, MaxCutoffRatio*sampleRate)
	if damping != damping {
		damping = MaxDamping
	}
	f.k = Clamp(damping, MinDamping, MaxDamping)
	f.g = TptG(cutoff, sampleRate)
	f.a1 = 1 / (1 + f.g*(f.g+f.k))
	f.a2 = f.g * f.a1
	f.a3 = f.g * f.a2
}

// QToDamping converts a resonance Q to the SVF damping 1/Q.
func QToDamping(q float32) float32 {
	if !(q > 0) {
		return MaxDamping
	}
	return 1 / q
}

func (f *SVF) Process(x float32) SVFOutputs {
	v3 := x - f.ic2
	v1 := f.a1*f.ic1 + f.a2*v3
	v2 := f.ic2 + f.a2*f.ic1 + f.a3*v3
	f.ic1 = KillDenormals(2*v1 - f.ic1)
	f.ic2 = KillDenormals(2*v2 - f.ic2)
	return SVFOutputs{
		Lowpass:  v2,
		Bandpass: v1,
		Highpass: x - f.k*v1 - v2,
		Notch:    x - f.k*v1,
	}
}

func (f *SVF) ProcessLowpass(buf []float32) {
	for i, x := range buf {
		buf[i] = f.Process(x).Lowpass
	}
}

func (f *SVF) ProcessBandpass(buf []float32) {
	for i, x := range buf {
		buf[i] = f.Process(x).Bandpass
	}
}

func (f *SVF) Reset() { f.ic1, f.ic2 = 0, 0 }
