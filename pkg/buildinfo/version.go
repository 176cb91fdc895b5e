// Package buildinfo reports which dlgtool build is running and which dialog
// format it reads and writes.
//
// Release builds stamp the version through ldflags:
//
//	go build -ldflags "-X github.com/LordOfMyatar/Radoub-sub018/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/LordOfMyatar/Radoub-sub018/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/LordOfMyatar/Radoub-sub018/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Binaries built with go install carry no ldflags; for those the module
// version and VCS revision recorded by the toolchain are used instead.
package buildinfo

import (
	"fmt"
	"runtime/debug"

	"github.com/LordOfMyatar/Radoub-sub018/pkg/dlg"
	"github.com/LordOfMyatar/Radoub-sub018/pkg/gff"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info is the resolved build description.
type Info struct {
	Version string
	Commit  string
	Date    string
	Format  string // file type and version of the dialog files handled
}

// Get resolves the build description, filling unstamped values from the
// toolchain's embedded build info when present.
func Get() Info {
	return resolve(debug.ReadBuildInfo())
}

func resolve(bi *debug.BuildInfo, ok bool) Info {
	info := Info{Version: Version, Commit: Commit, Date: Date, Format: dlg.FileType + gff.Version}
	if !ok || bi == nil {
		return info
	}
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && info.Commit == "none":
			info.Commit = s.Value
		case s.Key == "vcs.time" && info.Date == "unknown":
			info.Date = s.Value
		}
	}
	return info
}

// String returns the build description, one item per line.
func String() string {
	i := Get()
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s\nformat: %s", i.Version, i.Commit, i.Date, i.Format)
}

// Template returns the cobra version template.
func Template() string {
	i := Get()
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\nformat: %s\n", i.Version, i.Commit, i.Date, i.Format)
}
