package graph

import (
	"testing"

	"github.com/vsariola/ambientor/accel"
	"github.com/vsariola/ambientor/dsp"
)

func TestPercussiveVoiceReleasesAndRetriggers(t *testing.T) {
	spec := SceneSpec{
		Name:     "pulse",
		BaseFreq: 55,
		LFORate:  0.05,
		Defaults: Params{CutBase: 400, CutSpan: 250, Drive: 1.4, OutGain: 0.4, Detune: 2},
		Voices: []VoiceSpec{
			{Wave: dsp.Saw, Ratio: 2, Gain: 0.3, Envelope: AR, Times: dsp.ADSRTimes{Attack: 0.8, Release: 3.2}, Retrigger: 6},
			{Wave: dsp.Sine, Ratio: 1, Gain: 0.3, Envelope: ADSRExp, Times: dsp.ADSRTimes{Attack: 3, Decay: 1, Sustain: 1, Release: 3}},
		},
	}
	const sr = 48000
	s, err := New(spec, sr, accel.New(accel.Scalar(), MaxBlock))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	left := make([]float32, MaxBlock)
	right := make([]float32, MaxBlock)
	seen := map[dsp.Stage]bool{}
	retriggered := false
	prev := s.voices[0].env.Stage()
	for i := 0; i < 25*sr/MaxBlock; i++ {
		s.Render(left, right, spec.Defaults, spec.Defaults)
		stage := s.voices[0].env.Stage()
		seen[stage] = true
		if prev != dsp.StageAttack && stage == dsp.StageAttack {
			retriggered = true
		}
		prev = stage
	}
	if !seen[dsp.StageRelease] {
		t.Fatalf("percussive voice never released; stages seen %v", seen)
	}
	if !retriggered {
		t.Fatalf("percussive voice was not retriggered after its release")
	}
	if st := s.voices[1].env.Stage(); st != dsp.StageSustain {
		t.Fatalf("held voice in stage %v after 25 s, expected sustain", st)
	}
}
