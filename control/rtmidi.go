//go:build cgo

package control

import (
	"errors"
	"fmt"
	"strings"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// Listen opens the first MIDI input whose name starts with prefix and feeds
// its messages to c. An empty prefix takes the first input. The returned
// function closes the input and the driver.
func Listen(prefix string, c *Controller) (stop func(), err error) {
	driver, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("cannot open MIDI driver: %w", err)
	}
	in, err := findIn(driver, prefix)
	if err != nil {
		driver.Close()
		return nil, err
	}
	if err := in.Open(); err != nil {
		driver.Close()
		return nil, fmt.Errorf("opening MIDI input %v failed: %w", in, err)
	}
	stopListening, err := midi.ListenTo(in, c.HandleMessage)
	if err != nil {
		in.Close()
		driver.Close()
		return nil, fmt.Errorf("cannot listen to MIDI input %v: %w", in, err)
	}
	return func() {
		stopListening()
		in.Close()
		driver.Close()
	}, nil
}

// Inputs lists the names of the MIDI inputs.
func Inputs() ([]string, error) {
	driver, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("cannot open MIDI driver: %w", err)
	}
	defer driver.Close()
	ins, err := driver.Ins()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(ins))
	for i, in := range ins {
		names[i] = in.String()
	}
	return names, nil
}

func findIn(driver *rtmididrv.Driver, prefix string) (drivers.In, error) {
	ins, err := driver.Ins()
	if err != nil {
		return nil, fmt.Errorf("cannot list MIDI inputs: %w", err)
	}
	for _, in := range ins {
		if strings.HasPrefix(in.String(), prefix) {
			return in, nil
		}
	}
	if prefix == "" {
		return nil, errors.New("no MIDI inputs")
	}
	return nil, fmt.Errorf("no MIDI input starting with %q", prefix)
}
