// Package version holds build metadata injected with -ldflags.
package version

import (
	"runtime/debug"
)

const unknown = "unknown"

// Build metadata. Overridden at link time:
//
//	-ldflags "-X github.com/Sumatoshi-tech/tryflow/pkg/version.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = unknown
	Date    = unknown
)

// vcsRevisionKey and vcsTimeKey are the build settings stamped by the go tool.
const (
	vcsRevisionKey = "vcs.revision"
	vcsTimeKey     = "vcs.time"
	shortHashLen   = 12
)

// InitBinaryVersion fills unset metadata from the embedded build info, so
// binaries built with plain `go install` still report something useful.
func InitBinaryVersion() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	applyBuildInfo(info)
}

func applyBuildInfo(info *debug.BuildInfo) {
	if Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	for _, setting := range info.Settings {
		switch setting.Key {
		case vcsRevisionKey:
			if Commit == unknown && setting.Value != "" {
				Commit = setting.Value
				if len(Commit) > shortHashLen {
					Commit = Commit[:shortHashLen]
				}
			}
		case vcsTimeKey:
			if Date == unknown && setting.Value != "" {
				Date = setting.Value
			}
		}
	}
}
