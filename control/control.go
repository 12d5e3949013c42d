// Package control drives an engine from MIDI. Control changes set
// parameters and program changes switch scenes. Everything here runs on
// the control thread.
package control

import (
	"bytes"
	"fmt"
	"log"

	"github.com/chewxy/math32"
	"github.com/vsariola/ambientor"
	"gitlab.com/gomidi/midi/v2"
	"gopkg.in/yaml.v3"
)

type (
	// Target is what a Controller drives; *ambientor.Engine implements it.
	Target interface {
		SetParam(id ambientor.ParamID, value float32) error
		SetScene(name string) error
	}

	// Binding maps one controller number to a parameter. With Log set, the
	// controller value sweeps the range of the parameter exponentially,
	// which suits frequencies.
	Binding struct {
		Param ambientor.ParamID `yaml:"param"`
		Log   bool              `yaml:"log,omitempty"`
	}

	// Mapping is the MIDI setup of a Controller. Channel is 1-based; 0
	// listens on all channels.
	Mapping struct {
		Channel  int               `yaml:"channel,omitempty"`
		Controls map[uint8]Binding `yaml:"controls"`
		Programs bool              `yaml:"programs,omitempty"` // program changes select scenes
	}

	Controller struct {
		target  Target
		mapping Mapping
		scenes  []string
		logger  *log.Logger
	}
)

// DefaultMapping follows the General MIDI meaning of the controllers where
// one exists: volume (7) is the master gain, expression (11) the output
// gain, brightness (74) the cutoff, timbre (71) the cutoff span and detune
// depth (94) the detune.
var DefaultMapping = Mapping{
	Controls: map[uint8]Binding{
		7:  {Param: ambientor.MasterGain},
		11: {Param: ambientor.OutGain},
		71: {Param: ambientor.CutSpan},
		74: {Param: ambientor.CutBase, Log: true},
		75: {Param: ambientor.Drive},
		94: {Param: ambientor.Detune},
	},
	Programs: true,
}

// ParseMapping reads a Mapping from YAML.
func ParseMapping(data []byte) (Mapping, error) {
	var m Mapping
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return Mapping{}, fmt.Errorf("could not parse MIDI mapping: %w", err)
	}
	if m.Channel < 0 || m.Channel > 16 {
		return Mapping{}, fmt.Errorf("MIDI channel %d is not in 1..16", m.Channel)
	}
	for cc := range m.Controls {
		if cc > 127 {
			return Mapping{}, fmt.Errorf("controller %d is not in 0..127", cc)
		}
	}
	return m, nil
}

// New returns a controller driving target. Program change n selects
// scenes[n].
func New(target Target, mapping Mapping, scenes []string, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.Default()
	}
	return &Controller{target: target, mapping: mapping, scenes: scenes, logger: logger}
}

// HandleMessage applies one MIDI message. Its signature matches the
// receiver of midi.ListenTo.
func (c *Controller) HandleMessage(msg midi.Message, timestampms int32) {
	var channel, controller, value, program uint8
	switch {
	case msg.GetControlChange(&channel, &controller, &value):
		if !c.listens(channel) {
			return
		}
		b, ok := c.mapping.Controls[controller]
		if !ok {
			return
		}
		if err := c.target.SetParam(b.Param, Scale(b, value)); err != nil {
			c.logger.Printf("control: CC %d: %v", controller, err)
		}
	case msg.GetProgramChange(&channel, &program):
		if !c.mapping.Programs || !c.listens(channel) {
			return
		}
		if int(program) >= len(c.scenes) {
			c.logger.Printf("control: no scene for program %d", program)
			return
		}
		if err := c.target.SetScene(c.scenes[program]); err != nil {
			c.logger.Printf("control: program %d: %v", program, err)
		}
	}
}

func (c *Controller) listens(channel uint8) bool {
	return c.mapping.Channel == 0 || int(channel)+1 == c.mapping.Channel
}

// Scale maps a 7-bit controller value into the range of the bound
// parameter.
func Scale(b Binding, value uint8) float32 {
	info := ambientor.Params[b.Param]
	t := float32(min(value, 127)) / 127
	if b.Log && info.Min > 0 {
		return b.Param.Clamp(info.Min * math32.Pow(info.Max/info.Min, t))
	}
	return b.Param.Clamp(info.Min + (info.Max-info.Min)*t)
}
