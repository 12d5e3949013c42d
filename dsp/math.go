// Package dsp contains the allocation-free signal primitives the scenes are
// built from: fast math, envelopes, filters, oscillators, modulators, meters
// and a small reverb. Everything works on float32 samples, and nothing in
// this package allocates after construction.
package dsp

import (
	"math"

	"github.com/chewxy/math32"
)

const (
	// DenormalThreshold is the magnitude below which KillDenormals flushes
	// values to zero.
	DenormalThreshold = 1e-20

	// MinDb is the floor of LinToDb; DbToLin(MinDb) is the smallest level
	// considered audible.
	MinDb = -120

	// MaxCutoffRatio is the highest cutoff, relative to the sample rate,
	// any coefficient derivation in this package accepts.
	MaxCutoffRatio = 0.49

	// SinMaxError is the documented maximum absolute error of FastSin,
	// FastCos and SinPhase01 on any finite input.
	SinMaxError = 1e-5

	TwoPi  = 2 * math.Pi
	HalfPi = math.Pi / 2
)

// Odd Taylor coefficients of sin(x) used on the folded range
// [-pi/2, pi/2]. The vector kernels evaluate the same polynomial with the
// same coefficients and the same Horner order.
const (
	SinC3 = -1.0 / 6
	SinC5 = 1.0 / 120
	SinC7 = -1.0 / 5040
	SinC9 = 1.0 / 362880
)

// FastSin approximates sin(x) for any finite x. The argument is reduced to
// whole turns in float64, so large arguments keep their precision.
func FastSin(x float32) float32 {
	p := float64(x) * (1 / TwoPi)
	return SinPhase01(float32(p - math.Floor(p)))
}

// FastCos approximates cos(x) for any finite x.
func FastCos(x float32) float32 {
	p := float64(x)*(1/TwoPi) + 0.25
	return SinPhase01(float32(p - math.Floor(p)))
}

// SinPhase01 returns sin(2*pi*p) for a phase p in [0,1).
func SinPhase01(p float32) float32 {
	return SinPoly(FoldPhase(p))
}

// FoldPhase maps a phase in [0,1) to the angle in [-pi/2, pi/2] that has the
// same sine.
func FoldPhase(p float32) float32 {
	x := TwoPi * p
	if p >= 0.5 {
		x -= TwoPi
	}
	if x > HalfPi {
		x = math.Pi - x
	} else if x < -HalfPi {
		x = -math.Pi - x
	}
	return x
}

// SinPoly evaluates the sine polynomial on an already folded angle.
func SinPoly(x float32) float32 {
	x2 := x * x
	return x * (1 + x2*(SinC3+x2*(SinC5+x2*(SinC7+x2*SinC9))))
}

// DbToLin converts decibels to a linear amplitude.
func DbToLin(db float32) float32 {
	return math32.Pow(10, db/20)
}

// LinToDb converts a linear amplitude to decibels. Zero, negative and NaN
// amplitudes, as well as anything quieter than MinDb, return MinDb.
func LinToDb(lin float32) float32 {
	if !(lin > 0) {
		return MinDb
	}
	db := 20 * math32.Log10(lin)
	if db < MinDb {
		return MinDb
	}
	return db
}

// KillDenormals flushes tiny magnitudes to zero. NaN and infinities are
// flushed too, so a single bad sample cannot stick in a feedback state.
func KillDenormals(x float32) float32 {
	a := math32.Abs(x)
	if a < DenormalThreshold || a > math.MaxFloat32 || math32.IsNaN(x) {
		return 0
	}
	return x
}

// OnePoleCoeffMs returns the feedback coefficient a of the one-pole smoother
// y += (x-y)*(1-a) whose step response gets within 1/e of its target after
// tms milliseconds. Non-positive times give 0, i.e. an instant jump.
func OnePoleCoeffMs(tms, sampleRate float32) float32 {
	if !(tms > 0) || !(sampleRate > 0) {
		return 0
	}
	return math32.Exp(-1 / (tms * 0.001 * sampleRate))
}

// OnePoleRateMs returns 1-OnePoleCoeffMs(tms, sr), computed without the
// cancellation that subtracting a coefficient close to 1 would cause.
func OnePoleRateMs(tms, sampleRate float32) float32 {
	return float32(onePoleRate(tms, sampleRate))
}

func onePoleRate(tms, sampleRate float32) float64 {
	if !(tms > 0) || !(sampleRate > 0) {
		return 1
	}
	return -math.Expm1(-1 / (float64(tms) * 0.001 * float64(sampleRate)))
}

// approach moves v towards target by rate. A step that rounds away lands on
// the target, so a slow curve always arrives.
func approach(v, target, rate float64) float64 {
	next := v + (target-v)*rate
	if next == v {
		return target
	}
	return next
}

// OnePoleCoeffHz returns exp(-2*pi*fc/sr), the feedback coefficient of a
// one-pole filter with cutoff fc. fc is clamped to [0, 0.499*sr].
func OnePoleCoeffHz(fc, sampleRate float32) float32 {
	if !(sampleRate > 0) {
		return 0
	}
	fc = Clamp(fc, 0, 0.499*sampleRate)
	return math32.Exp(-TwoPi * fc / sampleRate)
}

// TptG returns the topology-preserving transform gain tan(pi*fc/sr). fc is
// clamped to [0, MaxCutoffRatio*sr], which keeps g finite.
func TptG(fc, sampleRate float32) float32 {
	if !(sampleRate > 0) {
		return 0
	}
	fc = Clamp(fc, 0, MaxCutoffRatio*sampleRate)
	return math32.Tan(math.Pi * fc / sampleRate)
}

// SoftClip is a rational tanh approximation. The output is always in
// [-1, 1] and NaN maps to 0.
func SoftClip(x float32) float32 {
	switch {
	case math32.IsNaN(x):
		return 0
	case x >= 3:
		return 1
	case x <= -3:
		return -1
	}
	x2 := x * x
	return Clamp(x*(27+x2)/(27+9*x2), -1, 1)
}

// Saturate drives x into the soft clipper.
func Saturate(x, drive float32) float32 {
	return SoftClip(x * drive)
}

func Clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func Lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// WrapPhase01 wraps p into [0,1). The subtraction of an integer is exact, so
// repeated wrapping never accumulates error.
func WrapPhase01(p float32) float32 {
	p -= math32.Floor(p)
	if p >= 1 { // p was a tiny negative number
		return 0
	}
	return p
}

// CentsToRatio converts a pitch offset in cents to a frequency ratio.
func CentsToRatio(cents float32) float32 {
	return math32.Pow(2, cents/1200)
}

func IsFinite(x float32) bool {
	return !math32.IsNaN(x) && !math32.IsInf(x, 0)
}
