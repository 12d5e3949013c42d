package graph

import (
	"github.com/vsariola/ambientor/accel"
	"github.com/vsariola/ambientor/dsp"
)

// voice is one oscillator -> filter -> drive -> envelope chain. All of its
// state lives here and is mutated only by the render thread.
type voice struct {
	spec  VoiceSpec
	osc   dsp.Osc
	lp    dsp.OnePoleLP
	svf   dsp.SVF
	env   dsp.Envelope
	drift dsp.DriftMod

	damping             float32
	panLeft, panRight   float32
	periodFrames, count int // retrigger period and the frames left until the next gate
	holdFrames, gate    int // gate length and the frames left until the release

	buf []float32
}

func newVoice(spec VoiceSpec, scene *SceneSpec, index int, sampleRate float32, seed uint32) voice {
	v := voice{spec: spec, buf: make([]float32, MaxBlock)}
	if v.spec.CutScale == 0 {
		v.spec.CutScale = 1
	}
	v.osc = dsp.NewOsc(spec.Wave, spec.Phase, seed)
	switch spec.Envelope {
	case ADSRLinear:
		v.env = dsp.NewADSRLinear(spec.Times, sampleRate)
	case AR:
		v.env = dsp.NewARExp(spec.Times.Attack, spec.Times.Release, sampleRate)
	default:
		v.env = dsp.NewADSRExp(spec.Times, sampleRate)
	}
	period := scene.DriftPeriod
	if period <= 0 {
		period = defaultDriftPeriod
	}
	slew := scene.DriftSlew
	if slew <= 0 {
		slew = defaultDriftSlew
	}
	// voices pick their drift targets out of phase with each other
	v.drift = dsp.NewDriftMod(spec.Drift, period*(1+0.13*float32(index)), slew, sampleRate, seed*7919)
	v.damping = dsp.QToDamping(spec.Resonance)
	if spec.Resonance == 0 {
		v.damping = dsp.QToDamping(0.707)
	}
	v.panLeft, v.panRight = dsp.PanGains(spec.Pan)
	v.setSampleRate(sampleRate)
	v.env.Trigger()
	v.gate = v.holdFrames
	v.count = v.periodFrames
	return v
}

func (v *voice) setSampleRate(sampleRate float32) {
	v.env.SetSampleRate(sampleRate)
	v.drift.SetSampleRate(sampleRate)
	v.periodFrames = int(v.spec.Retrigger * sampleRate)
	v.holdFrames = int(v.spec.Hold * sampleRate)
	v.count = min(v.count, v.periodFrames)
	v.gate = min(v.gate, v.holdFrames)
}

// render adds len(left) frames of this voice to the stereo bus.
func (v *voice) render(k *accel.Kernel, left, right []float32, sampleRate, baseFreq, lfo float32, p *Params) {
	n := len(left)
	buf := v.buf[:n]

	cents := p.Detune*v.spec.Spread*lfo + v.drift.Advance(n)
	freq := baseFreq * v.spec.Ratio * dsp.CentsToRatio(cents)
	inc := dsp.Clamp(freq/sampleRate, 0, 0.49)
	if v.spec.Wave == dsp.Sine {
		k.BlockSine(buf, v.osc.PhasePtr(), inc)
	} else {
		v.osc.Process(buf, inc)
	}

	cutoff := (p.CutBase + p.CutSpan*v.spec.LFODepth*lfo) * v.spec.CutScale
	cutoff = max(cutoff, MinCutoffHz)
	switch v.spec.Filter {
	case SVFLowpass:
		v.svf.Set(cutoff, v.damping, sampleRate)
		v.svf.ProcessLowpass(buf)
	case SVFBandpass:
		v.svf.Set(cutoff, v.damping, sampleRate)
		v.svf.ProcessBandpass(buf)
	default:
		v.lp.SetCutoff(cutoff, sampleRate)
		v.lp.ProcessBuffer(buf)
	}

	gain := v.spec.Gain
	for i, x := range buf {
		if v.periodFrames > 0 {
			if v.count--; v.count <= 0 {
				v.count = v.periodFrames
				v.gate = v.holdFrames
				v.env.Trigger()
			}
			if v.gate > 0 {
				if v.gate--; v.gate == 0 {
					v.env.Release()
				}
			}
		}
		buf[i] = dsp.Saturate(x, p.Drive) * v.env.Next() * gain
	}

	k.MixInPlace(left, buf, v.panLeft)
	k.MixInPlace(right, buf, v.panRight)
}

func (v *voice) reset() {
	v.lp.Reset()
	v.svf.Reset()
	v.env.Reset()
	v.env.Trigger()
	v.gate = v.holdFrames
	v.count = v.periodFrames
}
