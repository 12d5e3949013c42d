package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/vsariola/ambientor"
	"github.com/vsariola/ambientor/control"
	"github.com/vsariola/ambientor/dsp"
	"github.com/vsariola/ambientor/oto"
	"github.com/vsariola/ambientor/version"
)

func main() {
	sampleRate := flag.Int("r", 48000, "Sample rate of the output device.")
	sceneName := flag.String("scene", ambientor.DefaultScene, "Scene to start with.")
	gain := flag.Float64("g", ambientor.DefaultMasterGain, "Master gain.")
	duration := flag.Duration("d", 0, "Stop after this long, for example 10m. By default, play until interrupted.")
	list := flag.Bool("l", false, "List the scenes and exit.")
	userDir := flag.String("u", "", "Load additional scenes from the .yml files in this directory.")
	midiPrefix := flag.String("midi", "", "Listen to the first MIDI input whose name starts with this prefix; \"*\" takes the first input.")
	mappingFile := flag.String("mapping", "", "Read the MIDI controller mapping from this .yml file.")
	bufferMs := flag.Int("b", 0, "Output buffer length in milliseconds. By default, the driver decides.")
	quiet := flag.Bool("q", false, "Do not print the level meter.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.String())
		os.Exit(0)
	}
	logger := log.New(os.Stderr, "", log.Ltime)
	catalog := ambientor.BuiltinScenes()
	if *userDir != "" {
		catalog = catalog.Clone()
		n, err := catalog.LoadFS(os.DirFS(*userDir), ".")
		if err != nil {
			fmt.Fprintf(os.Stderr, "some scenes in %v could not be loaded: %v\n", *userDir, err)
		}
		if n == 0 {
			fmt.Fprintf(os.Stderr, "no scenes found in %v\n", *userDir)
		}
	}
	if *list {
		for _, name := range catalog.Names() {
			spec, _ := catalog.Lookup(name)
			fmt.Printf("%-16s %-16s %s\n", name, ambientor.DisplayName(name), spec.Description)
		}
		os.Exit(0)
	}
	engine, err := ambientor.New(float32(*sampleRate),
		ambientor.WithCatalog(catalog),
		ambientor.WithScene(*sceneName),
		ambientor.WithMasterGain(float32(*gain)),
		ambientor.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not create engine: %v\n", err)
		os.Exit(1)
	}
	if *midiPrefix != "" {
		stop, err := listenMIDI(*midiPrefix, *mappingFile, engine, catalog, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "MIDI control disabled: %v\n", err)
		} else {
			defer stop()
		}
	}
	audioContext, err := oto.NewContext(*sampleRate, time.Duration(*bufferMs)*time.Millisecond)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not open the audio device: %v\n", err)
		os.Exit(1)
	}
	player, err := audioContext.Play(engine)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not start playback: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "playing %v; type a scene name or \"<parameter> <value>\" and press enter\n", ambientor.DisplayName(engine.SceneName()))
	go readCommands(os.Stdin, engine, logger)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	var timeout <-chan time.Time
	if *duration > 0 {
		timeout = time.After(*duration)
	}
	meter := time.NewTicker(time.Second)
	defer meter.Stop()
loop:
	for {
		select {
		case <-interrupt:
			break loop
		case <-timeout:
			break loop
		case <-meter.C:
			if !*quiet {
				fmt.Fprintf(os.Stderr, "\r%-16s level %6.1f dB  peak %6.1f dB ",
					engine.SceneName(), dsp.LinToDb(engine.Level()), dsp.LinToDb(engine.Peak()))
			}
		}
	}
	fmt.Fprintln(os.Stderr)
	player.Close()
	audioContext.Close()
	engine.Close()
}

func listenMIDI(prefix, mappingFile string, engine *ambientor.Engine, catalog *ambientor.Catalog, logger *log.Logger) (func(), error) {
	mapping := control.DefaultMapping
	if mappingFile != "" {
		data, err := os.ReadFile(mappingFile)
		if err != nil {
			return nil, fmt.Errorf("could not read file %v: %w", mappingFile, err)
		}
		if mapping, err = control.ParseMapping(data); err != nil {
			return nil, err
		}
	}
	if prefix == "*" {
		prefix = ""
	}
	return control.Listen(prefix, control.New(engine, mapping, catalog.Names(), logger))
}

// readCommands reads scene names and "<parameter> <value>" lines.
func readCommands(f *os.File, engine *ambientor.Engine, logger *log.Logger) {
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		switch len(fields) {
		case 1:
			engine.SetScene(fields[0]) // the engine logs unknown scenes
		case 2:
			id, ok := ambientor.ParamByName(fields[0])
			if !ok {
				logger.Printf("unknown parameter %q", fields[0])
				continue
			}
			v, err := strconv.ParseFloat(fields[1], 32)
			if err != nil {
				logger.Printf("invalid value %q: %v", fields[1], err)
				continue
			}
			engine.SetParam(id, float32(v))
		}
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Plays an endless ambient scene.\nUsage: %s [flags]\n", os.Args[0])
	flag.PrintDefaults()
}
