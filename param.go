package ambientor

import (
	"math"
	"sync/atomic"

	"github.com/vsariola/ambientor/dsp"
)

// SmoothedParameter decouples a control-thread target from the value the
// audio thread uses. The target is a single atomic word, so a reader never
// sees a torn value. The audio thread moves the current value towards the
// target once per block with a one-pole curve and ramps linearly inside
// the block.
type SmoothedParameter struct {
	target     atomic.Uint32 // float32 bits
	current    float32
	timeMs     float32
	sampleRate float32
	coeff      float64 // per-sample decay towards the target
}

// snapEpsilon is the relative distance below which the current value
// lands exactly on the target.
const snapEpsilon = 1e-6

func NewSmoothedParameter(initial, timeMs, sampleRate float32) *SmoothedParameter {
	p := &SmoothedParameter{timeMs: timeMs}
	p.SetSampleRate(sampleRate)
	p.Snap(initial)
	return p
}

// SetTarget records a new target. Safe to call concurrently with Advance.
func (p *SmoothedParameter) SetTarget(v float32) {
	p.target.Store(math.Float32bits(v))
}

func (p *SmoothedParameter) Target() float32 {
	return math.Float32frombits(p.target.Load())
}

// Current is the value the audio thread reached at the end of the last
// block. Only the audio thread may call it while rendering.
func (p *SmoothedParameter) Current() float32 { return p.current }

// SetSampleRate re-derives the per-sample coefficient; the current value
// is kept.
func (p *SmoothedParameter) SetSampleRate(sampleRate float32) {
	p.sampleRate = sampleRate
	p.coeff = float64(dsp.OnePoleCoeffMs(p.timeMs, sampleRate))
}

// Snap jumps both the target and the current value to v.
func (p *SmoothedParameter) Snap(v float32) {
	p.SetTarget(v)
	p.current = v
}

// SnapToTarget jumps the current value to the target.
func (p *SmoothedParameter) SnapToTarget() {
	p.current = p.Target()
}

// Advance moves the parameter frames samples forward and returns the values
// at the start and at the end of the block.
func (p *SmoothedParameter) Advance(frames int) (from, to float32) {
	from = p.current
	target := p.Target()
	if frames <= 0 || from == target {
		return from, from
	}
	decay := float32(math.Pow(p.coeff, float64(frames)))
	to = target + (from-target)*decay
	if d := to - target; d*d <= snapEpsilon*snapEpsilon*max(1, target*target) {
		to = target
	}
	p.current = to
	return from, to
}
