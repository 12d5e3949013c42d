package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vsariola/ambientor/header"
	"github.com/vsariola/ambientor/version"
)

func main() {
	outPath := flag.String("o", "", "Write the header to this file instead of standard output. Parent directories are created if needed.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.String())
		os.Exit(0)
	}
	contents, err := header.Generate(header.NewData(version.String()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not generate header: %v\n", err)
		os.Exit(1)
	}
	if *outPath == "" {
		os.Stdout.Write(contents)
		return
	}
	if err := os.MkdirAll(filepath.Dir(*outPath), os.ModePerm); err != nil {
		fmt.Fprintf(os.Stderr, "could not create output directory: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*outPath, contents, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "could not write file %v: %v\n", *outPath, err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Writes the C header of libambientor.\nUsage: %s [flags]\n", os.Args[0])
	flag.PrintDefaults()
}
