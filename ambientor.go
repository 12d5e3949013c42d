// Package ambientor is a real-time ambient audio engine. An Engine renders
// an endless stereo texture from one of a fixed set of scenes; the control
// thread changes scenes and parameters while the audio thread renders
// blocks without blocking or allocating.
//
// Threading: Render, RenderStereo and the block loop behind them run on
// the audio thread. The parameter setters, SetScene, Level and Peak can be
// called from one control thread at the same time. New, Reset and Close
// must not overlap with Render.
package ambientor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vsariola/ambientor/dsp"
)

// ParamID identifies a control parameter.
type ParamID int

const (
	MasterGain ParamID = iota
	CutBase
	CutSpan
	Drive
	OutGain
	Detune

	NumParams
)

// ParamInfo documents one control parameter.
type ParamInfo struct {
	Name        string  // name used in the C API, the CLI and MIDI mappings
	Min, Max    float32 // values are clamped into [Min, Max]
	Unit        string
	SmoothingMs float32 // time constant of the smoothing towards a new value
	SceneLevel  bool    // reset to the scene default when the scene changes
}

// Params documents all parameters, indexed by ParamID.
var Params = [NumParams]ParamInfo{
	MasterGain: {Name: "master_gain", Min: 0, Max: 4, SmoothingMs: 30},
	CutBase:    {Name: "cut_base", Min: 50, Max: 12000, Unit: "Hz", SmoothingMs: 60, SceneLevel: true},
	CutSpan:    {Name: "cut_span", Min: 0, Max: 6000, Unit: "Hz", SmoothingMs: 60, SceneLevel: true},
	Drive:      {Name: "drive", Min: 0.1, Max: 5, SmoothingMs: 30, SceneLevel: true},
	OutGain:    {Name: "out_gain", Min: 0, Max: 1, SmoothingMs: 30, SceneLevel: true},
	Detune:     {Name: "detune", Min: 0, Max: 25, Unit: "cents", SmoothingMs: 120, SceneLevel: true},
}

const (
	// DefaultScene is the scene a new engine starts with.
	DefaultScene = "slow-drone"
	// DefaultMasterGain is the master gain of a new engine.
	DefaultMasterGain = 1.0
	// MaxSampleRate is the highest sample rate New and Reset accept.
	MaxSampleRate = 768000
)

var (
	ErrInvalidSampleRate = errors.New("invalid sample rate")
	ErrUnknownScene      = errors.New("unknown scene")
	ErrInvalidParam      = errors.New("invalid parameter value")
	ErrClosed            = errors.New("engine is closed")
)

func (id ParamID) String() string {
	if id < 0 || id >= NumParams {
		return fmt.Sprintf("param(%d)", int(id))
	}
	return Params[id].Name
}

func (id ParamID) MarshalText() ([]byte, error) {
	if id < 0 || id >= NumParams {
		return nil, fmt.Errorf("%w: no parameter %d", ErrInvalidParam, int(id))
	}
	return []byte(Params[id].Name), nil
}

func (id *ParamID) UnmarshalText(text []byte) error {
	p, ok := ParamByName(string(text))
	if !ok {
		return fmt.Errorf("unknown parameter %q", text)
	}
	*id = p
	return nil
}

// ParamByName finds a parameter by its name. Dashes and underscores are
// interchangeable and case is ignored.
func ParamByName(name string) (ParamID, bool) {
	name = strings.ReplaceAll(strings.ToLower(name), "-", "_")
	for i, p := range Params {
		if p.Name == name {
			return ParamID(i), true
		}
	}
	return 0, false
}

// Clamp limits v into the range of the parameter.
func (id ParamID) Clamp(v float32) float32 {
	return dsp.Clamp(v, Params[id].Min, Params[id].Max)
}

func validSampleRate(sr float32) error {
	if !(sr > 0) || sr > MaxSampleRate || !dsp.IsFinite(sr) {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRate, sr)
	}
	return nil
}
