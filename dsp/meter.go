package dsp

import "github.com/chewxy/math32"

// RMS is an exponentially windowed root-mean-square level meter. The mean
// square follows the squared input with a one-pole smoother whose time
// constant is the window length.
type RMS struct {
	windowMs float32
	rate     float32
	meanSq   float32
}

func NewRMS(windowMs, sampleRate float32) RMS {
	r := RMS{windowMs: windowMs}
	r.SetSampleRate(sampleRate)
	return r
}

func (r *RMS) SetSampleRate(sampleRate float32) {
	r.rate = OnePoleRateMs(r.windowMs, sampleRate)
}

func (r *RMS) Next(x float32) float32 {
	r.Add(x)
	return r.Value()
}

// Add feeds one sample without computing the level.
func (r *RMS) Add(x float32) {
	r.meanSq = KillDenormals(r.meanSq + (x*x-r.meanSq)*r.rate)
}

// Process feeds a whole block and returns the level at its end.
func (r *RMS) Process(buf []float32) float32 {
	m := r.meanSq
	for _, x := range buf {
		m = KillDenormals(m + (x*x-m)*r.rate)
	}
	r.meanSq = m
	return r.Value()
}

func (r *RMS) Value() float32 {
	return math32.Sqrt(r.meanSq)
}

func (r *RMS) Reset() {
	r.meanSq = 0
}
