//go:build !cgo

package control

import "errors"

// without cgo there is no MIDI driver
var errNoDriver = errors.New("MIDI input needs a build with cgo")

func Listen(prefix string, c *Controller) (stop func(), err error) {
	return nil, errNoDriver
}

func Inputs() ([]string, error) {
	return nil, errNoDriver
}
