// Package version reports the build identity of the revstats binary.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Version is the release version, set with -ldflags at build time.
var Version = "dev"

// Commit is the VCS revision the binary was built from.
var Commit = "<unknown>"

func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	if Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && Commit == "<unknown>" {
			Commit = s.Value
		}
	}
}

// String returns the one-line version banner.
func String() string {
	return fmt.Sprintf("revstats %s (commit %s, %s %s/%s)", Version, Commit, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
