//go:build plugin

package main

import (
	"log"
	"os"

	"github.com/vsariola/ambientor"
	"github.com/vsariola/ambientor/control"
	"gitlab.com/gomidi/midi/v2"
	"gopkg.in/yaml.v3"
	"pipelined.dev/audio/vst2"
)

type (
	// pluginState is what the host stores with a project.
	pluginState struct {
		Scene  string                        `yaml:"scene"`
		Params map[ambientor.ParamID]float32 `yaml:"params"`
	}

	// Messages from the host's audio thread are applied on a goroutine, as
	// scene changes allocate.
	midiQueue chan midi.Message
)

var pluginID = [4]byte{'a', 'm', 'b', 't'}

const defaultSampleRate = 44100

func (q midiQueue) push(data [3]byte) {
	select {
	case q <- midi.Message(data[:]):
	default: // if the queue is full, drop the message
	}
}

func marshalState(e *ambientor.Engine) []byte {
	s := pluginState{Scene: e.SceneName(), Params: map[ambientor.ParamID]float32{}}
	for id := ambientor.ParamID(0); id < ambientor.NumParams; id++ {
		s.Params[id] = e.Param(id)
	}
	data, _ := yaml.Marshal(&s)
	return data
}

func unmarshalState(e *ambientor.Engine, data []byte, logger *log.Logger) {
	var s pluginState
	if err := yaml.Unmarshal(data, &s); err != nil {
		logger.Printf("could not restore plugin state: %v", err)
		return
	}
	if s.Scene != "" {
		e.SetScene(s.Scene)
	}
	for id, v := range s.Params {
		e.SetParam(id, v)
	}
}

func init() {
	var (
		version = int32(100)
	)
	vst2.PluginAllocator = func(h vst2.Host) (vst2.Plugin, vst2.Dispatcher) {
		logger := log.New(os.Stderr, "ambientor-vsti: ", log.LstdFlags)
		engine, err := ambientor.New(defaultSampleRate, ambientor.WithLogger(logger))
		if err != nil {
			logger.Fatalf("could not create engine: %v", err)
		}
		controller := control.New(engine, control.DefaultMapping, engine.Catalog().Names(), logger)
		queue := make(midiQueue, 256)
		go func() {
			for msg := range queue {
				controller.HandleMessage(msg, 0)
			}
		}()
		return vst2.Plugin{
				UniqueID:       pluginID,
				Version:        version,
				InputChannels:  0,
				OutputChannels: 2,
				Name:           "Ambientor",
				Vendor:         "vsariola/ambientor",
				Category:       vst2.PluginCategorySynth,
				Flags:          vst2.PluginIsSynth,
				ProcessFloatFunc: func(in, out vst2.FloatBuffer) {
					left := out.Channel(0)
					right := out.Channel(1)
					n := engine.RenderStereo(left, right)
					clear(left[n:])
					clear(right[n:])
				},
			}, vst2.Dispatcher{
				CanDoFunc: func(pcds vst2.PluginCanDoString) vst2.CanDoResponse {
					switch pcds {
					case vst2.PluginCanReceiveEvents, vst2.PluginCanReceiveMIDIEvent:
						return vst2.YesCanDo
					}
					return vst2.NoCanDo
				},
				SetSampleRateFunc: func(sampleRate float32) {
					if err := engine.Reset(sampleRate); err != nil {
						logger.Print(err)
					}
				},
				ProcessEventsFunc: func(ev *vst2.EventsPtr) {
					for i := 0; i < ev.NumEvents(); i++ {
						switch v := ev.Event(i).(type) {
						case *vst2.MIDIEvent:
							queue.push(v.Data)
						}
					}
				},
				CloseFunc: func() {
					close(queue)
					engine.Close()
				},
				GetChunkFunc: func(isPreset bool) []byte {
					return marshalState(engine)
				},
				SetChunkFunc: func(data []byte, isPreset bool) {
					unmarshalState(engine, data, logger)
				},
			}
	}
}

func main() {}
