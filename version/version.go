package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Version is set at build time via -ldflags
var Version = "dev"

// Get returns the current version
func Get() string {
	if Version == "" {
		return "dev"
	}
	return Version
}

// Info returns the version line printed by the version command, with the VCS
// revision when the binary carries build info.
func Info() string {
	rev := ""
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" && len(s.Value) >= 7 {
				rev = " (" + s.Value[:7] + ")"
			}
		}
	}
	return fmt.Sprintf("seamless %s%s %s/%s", Get(), rev, runtime.GOOS, runtime.GOARCH)
}
