package dsp

// Delay line lengths in samples at 48 kHz; they are scaled to the actual
// sample rate.
var (
	reverbPreLengths  = [...]int{641, 997}
	reverbPreGains    = [...]float32{0.72, 0.70}
	reverbCombLengths = [...]int{7789, 8513, 9449, 10867}
	reverbPostLengths = [...]int{579, 773}
	reverbPostGains   = [...]float32{0.65, 0.61}
)

const reverbReferenceRate = 48000

type (
	// Reverb is a small mono Schroeder reverb: two all-passes diffuse the
	// input, four damped combs build the tail and two more all-passes
	// smear it. Room scales the comb feedback, damp lowers the cutoff of
	// the low-pass inside the comb loops and mix sets the wet amount.
	Reverb struct {
		room, damp, mix float32
		pre             [len(reverbPreLengths)]allpass
		combs           [len(reverbCombLengths)]comb
		post            [len(reverbPostLengths)]allpass
	}

	allpass struct {
		buf []float32
		idx int
		g   float32
	}

	comb struct {
		buf      []float32
		idx      int
		feedback float32
		lp       OnePoleLP
	}
)

func NewReverb(room, damp, mix, sampleRate float32) *Reverb {
	r := &Reverb{}
	r.SetParams(room, damp, mix, sampleRate)
	r.SetSampleRate(sampleRate)
	return r
}

// SetSampleRate resizes the delay lines. A line whose length changes is
// cleared; a line that keeps its length keeps its tail.
func (r *Reverb) SetSampleRate(sampleRate float32) {
	scale := sampleRate / reverbReferenceRate
	for i := range r.pre {
		r.pre[i].resize(scaledLength(reverbPreLengths[i], scale))
		r.pre[i].g = reverbPreGains[i]
	}
	for i := range r.combs {
		r.combs[i].resize(scaledLength(reverbCombLengths[i], scale))
	}
	for i := range r.post {
		r.post[i].resize(scaledLength(reverbPostLengths[i], scale))
		r.post[i].g = reverbPostGains[i]
	}
	r.SetParams(r.room, r.damp, r.mix, sampleRate)
}

func (r *Reverb) SetParams(room, damp, mix, sampleRate float32) {
	r.room, r.damp, r.mix = Clamp(room, 0, 1), Clamp(damp, 0, 1), Clamp(mix, 0, 1)
	feedback := 0.55 + 0.4*r.room
	cutoff := 2000 + 12000*(1-r.damp)
	for i := range r.combs {
		r.combs[i].feedback = feedback
		r.combs[i].lp.SetCutoff(cutoff, sampleRate)
	}
}

// Wet returns the reverberated sample only.
func (r *Reverb) Wet(x float32) float32 {
	for i := range r.pre {
		x = r.pre[i].process(x)
	}
	var sum float32
	for i := range r.combs {
		sum += r.combs[i].process(x)
	}
	y := sum / float32(len(reverbCombLengths))
	for i := range r.post {
		y = r.post[i].process(y)
	}
	return y
}

// ProcessStereo feeds the mid of left and right to the reverb and blends
// the wet signal back into both channels.
func (r *Reverb) ProcessStereo(left, right []float32) {
	if r.mix == 0 {
		return
	}
	dry := 1 - r.mix
	for i := range left {
		wet := r.Wet(0.5*(left[i]+right[i])) * r.mix
		left[i] = left[i]*dry + wet
		right[i] = right[i]*dry + wet
	}
}

func (r *Reverb) Reset() {
	for i := range r.pre {
		clear(r.pre[i].buf)
	}
	for i := range r.combs {
		clear(r.combs[i].buf)
		r.combs[i].lp.Reset()
	}
	for i := range r.post {
		clear(r.post[i].buf)
	}
}

func scaledLength(n int, scale float32) int {
	return max(int(float32(n)*scale+0.5), 1)
}

func (a *allpass) resize(n int) {
	if len(a.buf) == n {
		return
	}
	a.buf = resizeLine(a.buf, n)
	a.idx = 0
}

func (a *allpass) process(x float32) float32 {
	d := a.buf[a.idx]
	y := d - a.g*x
	a.buf[a.idx] = KillDenormals(x + a.g*y)
	if a.idx++; a.idx == len(a.buf) {
		a.idx = 0
	}
	return y
}

func (c *comb) resize(n int) {
	if len(c.buf) == n {
		return
	}
	c.buf = resizeLine(c.buf, n)
	c.idx = 0
	c.lp.Reset()
}

func (c *comb) process(x float32) float32 {
	d := c.buf[c.idx]
	c.buf[c.idx] = KillDenormals(x + c.lp.Process(d)*c.feedback)
	if c.idx++; c.idx == len(c.buf) {
		c.idx = 0
	}
	return d
}

func resizeLine(buf []float32, n int) []float32 {
	if cap(buf) >= n {
		buf = buf[:n]
		clear(buf)
		return buf
	}
	return make([]float32, n)
}
