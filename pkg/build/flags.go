// SPDX-License-Identifier: MIT
//
// Package build exposes the metadata stamped into the binary at link time:
//
//	go build -ldflags "-X vocoder/pkg/build.buildName=vocoder \
//	  -X vocoder/pkg/build.buildVersion=0.3.0 \
//	  -X vocoder/pkg/build.buildCommit=$(git rev-parse --short HEAD) \
//	  -X vocoder/pkg/build.buildTime=$(date -u +%FT%TZ)"
//
// Development builds carry no flags at all and fall back to placeholder
// values. A build that sets only some of the flags is a broken release
// build and is rejected by Initialize.
package build

import "fmt"

const description = "Real-time phase vocoder pitch shifter"

type ldFlags struct {
	Name        string
	Description string
	Time        string
	Commit      string
	Version     string
}

// Populated by -ldflags.
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
	buildFlags   = &ldFlags{
		Name:        "vocoder",
		Description: description,
		Time:        "unknown",
		Commit:      "unknown",
		Version:     "dev",
	}
)

// Initialize copies the ldflags variables into the build info. Either all or
// none of the flags must be set.
func Initialize() error {
	set := 0
	for _, v := range []string{buildName, buildTime, buildCommit, buildVersion} {
		if v != "" {
			set++
		}
	}
	if set == 0 {
		return nil
	}

	if buildName == "" {
		return fmt.Errorf("BuildName is required")
	}
	if buildTime == "" {
		return fmt.Errorf("BuildTime is required")
	}
	if buildCommit == "" {
		return fmt.Errorf("BuildCommit is required")
	}
	if buildVersion == "" {
		return fmt.Errorf("BuildVersion is required")
	}

	buildFlags.Name = buildName
	buildFlags.Time = buildTime
	buildFlags.Commit = buildCommit
	buildFlags.Version = buildVersion

	return nil
}

// GetBuildFlags returns the current build information.
func GetBuildFlags() *ldFlags {
	return buildFlags
}

// String renders a one-line version banner.
func (f *ldFlags) String() string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", f.Name, f.Version, f.Commit, f.Time)
}
