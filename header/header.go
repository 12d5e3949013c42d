// Package header generates the C header of libambientor from the parameter
// and scene tables, so the header cannot drift from the Go side.
package header

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/vsariola/ambientor"
)

//go:embed ambientor.h.tmpl
var headerTemplate string

type (
	Param struct {
		ambientor.ParamInfo
		ID int
	}

	Data struct {
		Version       string
		DefaultScene  string
		MaxSampleRate int
		Scenes        []string
		Params        []Param
	}
)

// NewData collects the header data from the built-in tables.
func NewData(version string) Data {
	d := Data{
		Version:       version,
		DefaultScene:  ambientor.DefaultScene,
		MaxSampleRate: ambientor.MaxSampleRate,
		Scenes:        ambientor.BuiltinScenes().Names(),
	}
	for id, info := range ambientor.Params {
		d.Params = append(d.Params, Param{ParamInfo: info, ID: id})
	}
	return d
}

// Generate renders the header.
func Generate(data Data) ([]byte, error) {
	tmpl, err := template.New("ambientor.h").Funcs(sprig.TxtFuncMap()).Parse(headerTemplate)
	if err != nil {
		return nil, fmt.Errorf("could not parse header template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("could not execute header template: %w", err)
	}
	return buf.Bytes(), nil
}
