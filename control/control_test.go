package control_test

import (
	"errors"
	"io"
	"log"
	"testing"

	"github.com/vsariola/ambientor"
	"github.com/vsariola/ambientor/control"
	"gitlab.com/gomidi/midi/v2"
)

type recorder struct {
	params map[ambientor.ParamID]float32
	scenes []string
}

func (r *recorder) SetParam(id ambientor.ParamID, v float32) error {
	if r.params == nil {
		r.params = map[ambientor.ParamID]float32{}
	}
	r.params[id] = v
	return nil
}

func (r *recorder) SetScene(name string) error {
	if name == "broken" {
		return errors.New("broken scene")
	}
	r.scenes = append(r.scenes, name)
	return nil
}

var quiet = log.New(io.Discard, "", 0)

func TestControlChange(t *testing.T) {
	var r recorder
	c := control.New(&r, control.DefaultMapping, nil, quiet)
	c.HandleMessage(midi.ControlChange(0, 7, 127), 0)
	c.HandleMessage(midi.ControlChange(3, 11, 0), 0)
	c.HandleMessage(midi.ControlChange(0, 1, 64), 0) // unmapped
	if got, want := r.params[ambientor.MasterGain], ambientor.Params[ambientor.MasterGain].Max; got != want {
		t.Errorf("master gain %v, expected %v", got, want)
	}
	if got, ok := r.params[ambientor.OutGain]; !ok || got != 0 {
		t.Errorf("out gain %v (set %v), expected 0", got, ok)
	}
	if len(r.params) != 2 {
		t.Errorf("expected two parameters to be set, got %v", r.params)
	}
}

func TestScale(t *testing.T) {
	lin := control.Binding{Param: ambientor.Drive}
	logb := control.Binding{Param: ambientor.CutBase, Log: true}
	info := ambientor.Params[ambientor.CutBase]
	tests := []struct {
		b     control.Binding
		value uint8
		want  float32
	}{
		{lin, 0, ambientor.Params[ambientor.Drive].Min},
		{lin, 127, ambientor.Params[ambientor.Drive].Max},
		{logb, 0, info.Min},
		{logb, 127, info.Max},
	}
	for _, tt := range tests {
		got := control.Scale(tt.b, tt.value)
		if d := got - tt.want; d > tt.want*1e-4 || d < -tt.want*1e-4 {
			t.Errorf("Scale(%v, %d) = %v, expected %v", tt.b.Param, tt.value, got, tt.want)
		}
	}
	// the middle of a log sweep is the geometric mean of the ends
	mid := control.Scale(logb, 64)
	if mid >= (info.Min+info.Max)/2 || mid <= info.Min {
		t.Errorf("log scaled midpoint %v is not below the linear midpoint", mid)
	}
	prev := float32(-1)
	for v := 0; v < 128; v++ {
		x := control.Scale(logb, uint8(v))
		if x <= prev {
			t.Fatalf("Scale is not increasing at %d: %v <= %v", v, x, prev)
		}
		prev = x
	}
}

func TestChannelFilter(t *testing.T) {
	var r recorder
	m := control.DefaultMapping
	m.Channel = 2
	c := control.New(&r, m, []string{"a"}, quiet)
	c.HandleMessage(midi.ControlChange(0, 7, 100), 0)
	c.HandleMessage(midi.ProgramChange(0, 0), 0)
	if len(r.params) != 0 || len(r.scenes) != 0 {
		t.Fatalf("messages on channel 1 were applied: %v %v", r.params, r.scenes)
	}
	c.HandleMessage(midi.ControlChange(1, 7, 100), 0)
	if _, ok := r.params[ambientor.MasterGain]; !ok {
		t.Fatalf("message on channel 2 was ignored")
	}
}

func TestProgramChange(t *testing.T) {
	var r recorder
	c := control.New(&r, control.DefaultMapping, []string{"slow-drone", "broken", "glass-pad"}, quiet)
	c.HandleMessage(midi.ProgramChange(0, 2), 0)
	c.HandleMessage(midi.ProgramChange(0, 1), 0)
	c.HandleMessage(midi.ProgramChange(0, 100), 0)
	c.HandleMessage(midi.ProgramChange(0, 0), 0)
	if len(r.scenes) != 2 || r.scenes[0] != "glass-pad" || r.scenes[1] != "slow-drone" {
		t.Fatalf("unexpected scene changes %v", r.scenes)
	}
	m := control.DefaultMapping
	m.Programs = false
	r.scenes = nil
	control.New(&r, m, []string{"slow-drone"}, quiet).HandleMessage(midi.ProgramChange(0, 0), 0)
	if len(r.scenes) != 0 {
		t.Fatalf("program change switched scenes although programs are off")
	}
}

func TestParseMapping(t *testing.T) {
	m, err := control.ParseMapping([]byte(`
channel: 10
programs: true
controls:
  21: {param: cut-base, log: true}
  22: {param: master_gain}
`))
	if err != nil {
		t.Fatalf("ParseMapping failed: %v", err)
	}
	if m.Channel != 10 || !m.Programs || len(m.Controls) != 2 {
		t.Fatalf("unexpected mapping %+v", m)
	}
	if b := m.Controls[21]; b.Param != ambientor.CutBase || !b.Log {
		t.Fatalf("controller 21 bound to %+v", b)
	}
	for _, bad := range []string{
		"controls: {21: {param: volume}}",
		"channel: 17",
		"controls: {300: {param: drive}}",
		"controls: {21: {param: drive, curve: log}}",
	} {
		if _, err := control.ParseMapping([]byte(bad)); err == nil {
			t.Errorf("expected an error for %q", bad)
		}
	}
}

func TestDrivesEngine(t *testing.T) {
	e, err := ambientor.New(48000, ambientor.WithLogger(quiet))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer e.Close()
	c := control.New(e, control.DefaultMapping, ambientor.BuiltinScenes().Names(), quiet)
	c.HandleMessage(midi.ControlChange(0, 94, 127), 0)
	if got := e.Param(ambientor.Detune); got != ambientor.Params[ambientor.Detune].Max {
		t.Fatalf("detune %v after CC 94 = 127", got)
	}
	c.HandleMessage(midi.ProgramChange(0, 1), 0)
	if got, want := e.SceneName(), ambientor.BuiltinScenes().Names()[1]; got != want {
		t.Fatalf("scene %q, expected %q", got, want)
	}
}
