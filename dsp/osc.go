package dsp

import (
	"fmt"
	"math"

	"github.com/chewxy/math32"
)

// Wave selects the waveform of an Osc.
type Wave int

const (
	Sine Wave = iota
	Triangle
	Saw
	Noise
)

var waveNames = [...]string{"sine", "triangle", "saw", "noise"}

func (w Wave) String() string {
	if w < 0 || int(w) >= len(waveNames) {
		return fmt.Sprintf("wave(%d)", int(w))
	}
	return waveNames[w]
}

func (w Wave) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

func (w *Wave) UnmarshalText(text []byte) error {
	for i, n := range waveNames {
		if n == string(text) {
			*w = Wave(i)
			return nil
		}
	}
	return fmt.Errorf("unknown wave %q", text)
}

type (
	// Osc is a free-running oscillator with its phase kept in [0,1).
	Osc struct {
		Wave  Wave
		phase float32
		rand  Rand
	}

	// Rand is the multiplicative congruential noise generator of the
	// synth VM; it returns values in [-1,1].
	Rand struct {
		seed uint32
	}

	// LFO is a slow sine modulator advanced once per block.
	LFO struct {
		rate  float32 // Hz
		phase float32
		inc   float32 // phase per sample
	}

	// DriftMod picks a new random target in [-depth, depth] every period
	// seconds and glides towards it through a one-pole low-pass. It is
	// used for slow pitch drift.
	DriftMod struct {
		depth, period, slewHz float32
		sampleRate            float32
		periodFrames          int
		countdown             int
		target, value         float32
		coeff                 float32
		rand                  Rand
	}
)

func NewRand(seed uint32) Rand {
	return Rand{seed: seed | 1}
}

func (r *Rand) Next() float32 {
	r.seed *= 16007
	return float32(int32(r.seed)) / -2147483648.0
}

func NewOsc(wave Wave, phase float32, seed uint32) Osc {
	return Osc{Wave: wave, phase: WrapPhase01(phase), rand: NewRand(seed)}
}

func (o *Osc) Phase() float32 { return o.phase }

// PhasePtr exposes the phase for the block kernels, which advance it in
// place.
func (o *Osc) PhasePtr() *float32 { return &o.phase }

// Process fills buf with len(buf) samples, advancing the phase by inc
// (cycles per sample) each sample.
func (o *Osc) Process(buf []float32, inc float32) {
	p := o.phase
	switch o.Wave {
	case Sine:
		for i := range buf {
			buf[i] = SinPhase01(p)
			p = WrapPhase01(p + inc)
		}
	case Triangle:
		for i := range buf {
			buf[i] = 4*math32.Abs(p-0.5) - 1
			p = WrapPhase01(p + inc)
		}
	case Saw:
		for i := range buf {
			buf[i] = 2*p - 1 - polyBLEP(p, inc)
			p = WrapPhase01(p + inc)
		}
	case Noise:
		for i := range buf {
			buf[i] = o.rand.Next()
		}
	}
	o.phase = p
}

// polyBLEP smooths the discontinuity of a saw around its wrap point.
func polyBLEP(p, inc float32) float32 {
	if inc <= 0 {
		return 0
	}
	if p < inc {
		t := p / inc
		return t + t - t*t - 1
	}
	if p > 1-inc {
		t := (p - 1) / inc
		return t*t + t + t + 1
	}
	return 0
}

func NewLFO(rate, phase, sampleRate float32) LFO {
	l := LFO{rate: rate, phase: WrapPhase01(phase)}
	l.SetSampleRate(sampleRate)
	return l
}

func (l *LFO) SetSampleRate(sampleRate float32) {
	if sampleRate > 0 {
		l.inc = l.rate / sampleRate
	}
}

// Value is the LFO output in [-1,1] at the current phase.
func (l *LFO) Value() float32 { return SinPhase01(l.phase) }

// Advance moves the LFO n samples forward and returns its new value.
func (l *LFO) Advance(n int) float32 {
	l.phase = WrapPhase01(l.phase + l.inc*float32(n))
	return l.Value()
}

func NewDriftMod(depth, period, slewHz, sampleRate float32, seed uint32) DriftMod {
	d := DriftMod{depth: depth, period: period, slewHz: slewHz, rand: NewRand(seed)}
	d.SetSampleRate(sampleRate)
	d.countdown = 0
	return d
}

func (d *DriftMod) SetSampleRate(sampleRate float32) {
	d.sampleRate = sampleRate
	d.periodFrames = max(int(d.period*sampleRate), 1)
	d.countdown = min(d.countdown, d.periodFrames)
	d.coeff = OnePoleCoeffHz(d.slewHz, sampleRate)
}

// Advance moves the modulator n samples forward and returns its value.
// The glide over the block is computed in closed form, so the result does
// not depend on how the frames are split into blocks unless a new target
// is picked inside one.
func (d *DriftMod) Advance(n int) float32 {
	d.countdown -= n
	if d.countdown <= 0 {
		d.target = d.rand.Next() * d.depth
		d.countdown += d.periodFrames
		if d.countdown <= 0 {
			d.countdown = d.periodFrames
		}
	}
	c := float32(math.Pow(float64(d.coeff), float64(n)))
	d.value = KillDenormals(d.target + (d.value-d.target)*c)
	return d.value
}

func (d *DriftMod) Value() float32 { return d.value }

// PanGains returns constant-power gains for pan in [-1,1], where -1 is
// hard left. The squared gains always sum to one.
func PanGains(pan float32) (left, right float32) {
	angle := (Clamp(pan, -1, 1) + 1) * (math.Pi / 4)
	return FastCos(angle), FastSin(angle)
}
