// Package graph turns a SceneSpec into a renderable voice graph. A Scene
// owns all of its voice, filter, envelope and reverb state; the state is
// allocated when the scene is built and Render never allocates.
package graph

import (
	"fmt"
	"hash/fnv"

	"github.com/vsariola/ambientor/accel"
	"github.com/vsariola/ambientor/dsp"
)

// MaxBlock is the block size the scene renders in. Longer requests are
// split into blocks of at most MaxBlock frames.
const MaxBlock = 256

// Scene is a built, fixed voice graph for one SceneSpec.
type Scene struct {
	spec       SceneSpec
	sampleRate float32
	voices     []voice
	lfo        dsp.LFO
	reverb     *dsp.Reverb
	dcLeft     dsp.DCBlock
	dcRight    dsp.DCBlock
	kernel     *accel.Kernel
}

// New builds the scene described by spec. A nil kernel uses the strategy
// selected for this process. The kernel must not be shared with a scene
// rendering on another thread.
func New(spec SceneSpec, sampleRate float32, kernel *accel.Kernel) (*Scene, error) {
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("cannot build scene %q: %w", spec.Name, err)
	}
	if !(sampleRate > 0) || !dsp.IsFinite(sampleRate) {
		return nil, fmt.Errorf("cannot build scene %q: invalid sample rate %v", spec.Name, sampleRate)
	}
	if kernel == nil {
		kernel = accel.NewSelected(MaxBlock)
	}
	spec.Voices = append([]VoiceSpec(nil), spec.Voices...)
	s := &Scene{
		spec:       spec,
		sampleRate: sampleRate,
		voices:     make([]voice, len(spec.Voices)),
		lfo:        dsp.NewLFO(spec.LFORate, 0.75, sampleRate), // start at the bottom of the sweep
		reverb:     dsp.NewReverb(spec.Reverb.Room, spec.Reverb.Damp, spec.Reverb.Mix, sampleRate),
		dcLeft:     dsp.NewDCBlock(sampleRate),
		dcRight:    dsp.NewDCBlock(sampleRate),
		kernel:     kernel,
	}
	seed := sceneSeed(spec.Name)
	for i := range spec.Voices {
		s.voices[i] = newVoice(spec.Voices[i], &s.spec, i, sampleRate, seed+uint32(i)*2654435761)
	}
	return s, nil
}

func sceneSeed(name string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(name))
	return h.Sum32()
}

func (s *Scene) Name() string          { return s.spec.Name }
func (s *Scene) Defaults() Params      { return s.spec.Defaults }
func (s *Scene) SampleRate() float32   { return s.sampleRate }
func (s *Scene) Kernel() *accel.Kernel { return s.kernel }

// SetSampleRate re-derives every time-based coefficient for a new sample
// rate. Oscillator phases, envelope values and filter states are kept, so
// the dry signal continues without a jump; reverb lines whose length
// changes start from silence.
func (s *Scene) SetSampleRate(sampleRate float32) {
	s.sampleRate = sampleRate
	s.lfo.SetSampleRate(sampleRate)
	s.reverb.SetSampleRate(sampleRate)
	s.dcLeft.SetSampleRate(sampleRate)
	s.dcRight.SetSampleRate(sampleRate)
	for i := range s.voices {
		s.voices[i].setSampleRate(sampleRate)
	}
}

// Reset clears all signal state and restarts the envelopes, as if the
// scene had just been built.
func (s *Scene) Reset() {
	s.reverb.Reset()
	s.dcLeft.Reset()
	s.dcRight.Reset()
	for i := range s.voices {
		s.voices[i].reset()
	}
}

// Render renders len(left) frames into left and right, overwriting their
// contents. The output gain ramps linearly from from.OutGain to
// to.OutGain over the call; the other parameters are stepped once per
// block. left and right must have the same length.
func (s *Scene) Render(left, right []float32, from, to Params) {
	n := min(len(left), len(right))
	for off := 0; off < n; off += MaxBlock {
		end := min(off+MaxBlock, n)
		a := lerpParams(&from, &to, float32(off)/float32(n))
		b := lerpParams(&from, &to, float32(end)/float32(n))
		s.renderBlock(left[off:end], right[off:end], &a, &b)
	}
}

func (s *Scene) renderBlock(left, right []float32, from, to *Params) {
	n := len(left)
	clear(left)
	clear(right)
	lfo := s.lfo.Advance(n)
	for i := range s.voices {
		s.voices[i].render(s.kernel, left, right, s.sampleRate, s.spec.BaseFreq, lfo, to)
	}
	s.reverb.ProcessStereo(left, right)
	s.dcLeft.ProcessBuffer(left)
	s.dcRight.ProcessBuffer(right)
	g := from.OutGain
	step := (to.OutGain - from.OutGain) / float32(n)
	for i := range left {
		g += step
		left[i] = dsp.SoftClip(left[i]) * g
		right[i] = dsp.SoftClip(right[i]) * g
	}
}

func lerpParams(a, b *Params, t float32) Params {
	return Params{
		CutBase: dsp.Lerp(a.CutBase, b.CutBase, t),
		CutSpan: dsp.Lerp(a.CutSpan, b.CutSpan, t),
		Drive:   dsp.Lerp(a.Drive, b.Drive, t),
		OutGain: dsp.Lerp(a.OutGain, b.OutGain, t),
		Detune:  dsp.Lerp(a.Detune, b.Detune, t),
	}
}
