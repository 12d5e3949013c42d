package graph

import (
	"errors"
	"fmt"
	"math"

	"github.com/vsariola/ambientor/dsp"
)

type (
	// FilterKind selects the filter of a voice.
	FilterKind int

	// EnvelopeKind selects the envelope of a voice.
	EnvelopeKind int

	// Params are the scene-level controls. The engine smooths them and
	// hands one value per block to the scene.
	Params struct {
		CutBase float32 `yaml:"cutbase"` // Hz
		CutSpan float32 `yaml:"cutspan"` // Hz, depth of the cutoff LFO
		Drive   float32 `yaml:"drive"`
		OutGain float32 `yaml:"outgain"`
		Detune  float32 `yaml:"detune"` // cents, depth of the LFO detune
	}

	// VoiceSpec describes one voice of a scene.
	VoiceSpec struct {
		Wave      dsp.Wave      `yaml:"wave"`
		Ratio     float32       `yaml:"ratio"`               // frequency relative to the scene base frequency
		Spread    float32       `yaml:"spread,omitempty"`    // how much of the LFO detune depth reaches this voice
		Pan       float32       `yaml:"pan,omitempty"`
		Gain      float32       `yaml:"gain"`
		Phase     float32       `yaml:"phase,omitempty"`
		Filter    FilterKind    `yaml:"filter"`
		CutScale  float32       `yaml:"cutscale,omitempty"`  // multiplies the scene cutoff; 0 means 1
		Resonance float32       `yaml:"resonance,omitempty"`
		LFODepth  float32       `yaml:"lfodepth,omitempty"`  // how much of CutSpan reaches this voice
		Envelope  EnvelopeKind  `yaml:"envelope"`
		Times     dsp.ADSRTimes `yaml:"times"`
		Retrigger float32       `yaml:"retrigger,omitempty"` // seconds between gates; 0 holds the gate forever
		Hold      float32       `yaml:"hold,omitempty"`      // seconds the gate stays on after a retrigger; 0 never releases
		Drift     float32       `yaml:"drift,omitempty"`     // cents
	}

	ReverbSpec struct {
		Room float32 `yaml:"room"`
		Damp float32 `yaml:"damp"`
		Mix  float32 `yaml:"mix"`
	}

	// SceneSpec is the full construction recipe of a scene. Scenes differ
	// only by their SceneSpec; the voice topology is always oscillator ->
	// filter -> drive -> envelope -> gain -> pan.
	SceneSpec struct {
		Name        string      `yaml:"-"`
		Description string      `yaml:"description,omitempty"`
		BaseFreq    float32     `yaml:"basefreq"`
		LFORate     float32     `yaml:"lforate"`
		DriftPeriod float32     `yaml:"driftperiod,omitempty"`
		DriftSlew   float32     `yaml:"driftslew,omitempty"`
		Reverb      ReverbSpec  `yaml:"reverb"`
		Defaults    Params      `yaml:"defaults"`
		Voices      []VoiceSpec `yaml:"voices"`
	}
)

const (
	OnePoleLowpass FilterKind = iota
	SVFLowpass
	SVFBandpass
)

const (
	ADSRExp EnvelopeKind = iota
	ADSRLinear
	AR
)

const (
	// MaxVoices is the most voices a scene can have.
	MaxVoices = 8
	// MinCutoffHz is the floor of the modulated voice cutoff.
	MinCutoffHz = 80

	defaultDriftPeriod = 7.5 // seconds
	defaultDriftSlew   = 0.25
)

var (
	filterNames   = [...]string{"onepole", "svf-lowpass", "svf-bandpass"}
	envelopeNames = [...]string{"adsr", "adsr-linear", "ar"}

	ErrNoVoices      = errors.New("scene has no voices")
	ErrTooManyVoices = fmt.Errorf("scene has more than %d voices", MaxVoices)
	ErrInvalidSpec   = errors.New("invalid scene")
)

func (f FilterKind) String() string {
	if f < 0 || int(f) >= len(filterNames) {
		return fmt.Sprintf("filter(%d)", int(f))
	}
	return filterNames[f]
}

func (f FilterKind) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

func (f *FilterKind) UnmarshalText(text []byte) error {
	for i, n := range filterNames {
		if n == string(text) {
			*f = FilterKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown filter %q", text)
}

func (e EnvelopeKind) String() string {
	if e < 0 || int(e) >= len(envelopeNames) {
		return fmt.Sprintf("envelope(%d)", int(e))
	}
	return envelopeNames[e]
}

func (e EnvelopeKind) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

func (e *EnvelopeKind) UnmarshalText(text []byte) error {
	for i, n := range envelopeNames {
		if n == string(text) {
			*e = EnvelopeKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown envelope %q", text)
}

// Validate checks that the spec can be built.
func (s *SceneSpec) Validate() error {
	if len(s.Voices) == 0 {
		return ErrNoVoices
	}
	if len(s.Voices) > MaxVoices {
		return ErrTooManyVoices
	}
	if !(s.BaseFreq > 0) || !dsp.IsFinite(s.BaseFreq) {
		return fmt.Errorf("%w: base frequency %v", ErrInvalidSpec, s.BaseFreq)
	}
	if s.LFORate < 0 || !dsp.IsFinite(s.LFORate) {
		return fmt.Errorf("%w: lfo rate %v", ErrInvalidSpec, s.LFORate)
	}
	for i, v := range s.Voices {
		if !(v.Ratio > 0) || !dsp.IsFinite(v.Ratio) {
			return fmt.Errorf("%w: voice %d ratio %v", ErrInvalidSpec, i, v.Ratio)
		}
		if v.Gain < 0 || !dsp.IsFinite(v.Gain) {
			return fmt.Errorf("%w: voice %d gain %v", ErrInvalidSpec, i, v.Gain)
		}
		if v.Wave < dsp.Sine || v.Wave > dsp.Noise {
			return fmt.Errorf("%w: voice %d wave %v", ErrInvalidSpec, i, v.Wave)
		}
		if v.Filter < OnePoleLowpass || v.Filter > SVFBandpass {
			return fmt.Errorf("%w: voice %d filter %v", ErrInvalidSpec, i, v.Filter)
		}
		if v.Envelope < ADSRExp || v.Envelope > AR {
			return fmt.Errorf("%w: voice %d envelope %v", ErrInvalidSpec, i, v.Envelope)
		}
		if v.Envelope == AR && !(v.Retrigger > 0) {
			return fmt.Errorf("%w: voice %d has a percussive envelope but no retrigger period", ErrInvalidSpec, i)
		}
		for _, f := range [...]field{
			{"pan", v.Pan, -1, 1},
			{"spread", v.Spread, -math.MaxFloat32, math.MaxFloat32},
			{"phase", v.Phase, -math.MaxFloat32, math.MaxFloat32},
			{"cutscale", v.CutScale, 0, math.MaxFloat32},
			{"resonance", v.Resonance, 0, math.MaxFloat32},
			{"lfodepth", v.LFODepth, -math.MaxFloat32, math.MaxFloat32},
			{"attack", v.Times.Attack, 0, math.MaxFloat32},
			{"decay", v.Times.Decay, 0, math.MaxFloat32},
			{"sustain", v.Times.Sustain, 0, 1},
			{"release", v.Times.Release, 0, math.MaxFloat32},
			{"retrigger", v.Retrigger, 0, math.MaxFloat32},
			{"hold", v.Hold, 0, math.MaxFloat32},
			{"drift", v.Drift, 0, math.MaxFloat32},
		} {
			if err := f.check(); err != nil {
				return fmt.Errorf("voice %d: %w", i, err)
			}
		}
	}
	for _, f := range [...]field{
		{"driftperiod", s.DriftPeriod, 0, math.MaxFloat32},
		{"driftslew", s.DriftSlew, 0, math.MaxFloat32},
		{"reverb room", s.Reverb.Room, 0, 1},
		{"reverb damp", s.Reverb.Damp, 0, 1},
		{"reverb mix", s.Reverb.Mix, 0, 1},
		{"cutbase", s.Defaults.CutBase, -math.MaxFloat32, math.MaxFloat32},
		{"cutspan", s.Defaults.CutSpan, -math.MaxFloat32, math.MaxFloat32},
		{"drive", s.Defaults.Drive, -math.MaxFloat32, math.MaxFloat32},
		{"outgain", s.Defaults.OutGain, -math.MaxFloat32, math.MaxFloat32},
		{"detune", s.Defaults.Detune, -math.MaxFloat32, math.MaxFloat32},
	} {
		if err := f.check(); err != nil {
			return err
		}
	}
	return nil
}

// field is a named number that must be finite and within [min, max].
type field struct {
	name     string
	v        float32
	min, max float32
}

func (f field) check() error {
	if !dsp.IsFinite(f.v) || f.v < f.min || f.v > f.max {
		return fmt.Errorf("%w: %v %v", ErrInvalidSpec, f.name, f.v)
	}
	return nil
}
