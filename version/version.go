// Package version reports the version of the binaries.
package version

import (
	"runtime/debug"
	"sync"
)

// Version can be set at build time:
//
//	go build -ldflags "-X github.com/vsariola/ambientor/version.Version=$(git describe --dirty)"
var Version string

// Hash is the short VCS revision the binary was built from, with a -dirty
// suffix for modified trees, or "" if the build has no VCS information.
var Hash = sync.OnceValue(func() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	var revision, modified string
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			modified = setting.Value
		}
	}
	if len(revision) > 7 {
		revision = revision[:7]
	}
	if revision != "" && modified == "true" {
		revision += "-dirty"
	}
	return revision
})

// String returns Version if it was set, the VCS revision otherwise.
func String() string {
	if Version != "" {
		return Version
	}
	if h := Hash(); h != "" {
		return h
	}
	return "devel"
}
