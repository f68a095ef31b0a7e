// SPDX-License-Identifier: MIT
package build

import (
	"os"
	"strings"
	"testing"
)

var (
	origName    string
	origTime    string
	origCommit  string
	origVersion string
	origFlags   ldFlags
)

func TestMain(m *testing.M) {
	origName = buildName
	origTime = buildTime
	origCommit = buildCommit
	origVersion = buildVersion
	origFlags = *buildFlags

	exitCode := m.Run()

	os.Exit(exitCode)
}

func restore() {
	buildName = origName
	buildTime = origTime
	buildCommit = origCommit
	buildVersion = origVersion
	*buildFlags = origFlags
}

func TestInitializeDevelopmentBuild(t *testing.T) {
	defer restore()
	buildName, buildTime, buildCommit, buildVersion = "", "", "", ""

	if err := Initialize(); err != nil {
		t.Fatalf("Initialize() with no flags error = %v", err)
	}
	flags := GetBuildFlags()
	if flags.Name != "vocoder" || flags.Version != "dev" {
		t.Errorf("unexpected development defaults: %+v", flags)
	}
}

func TestInitializePartialFlags(t *testing.T) {
	tests := []struct {
		name       string
		flags      [4]string
		wantErrMsg string
	}{
		{"Missing BuildName", [4]string{"", "2026-10-18", "abcdef1", "v1.0.0"}, "BuildName is required"},
		{"Missing BuildTime", [4]string{"vocoder", "", "abcdef1", "v1.0.0"}, "BuildTime is required"},
		{"Missing BuildCommit", [4]string{"vocoder", "2026-10-18", "", "v1.0.0"}, "BuildCommit is required"},
		{"Missing BuildVersion", [4]string{"vocoder", "2026-10-18", "abcdef1", ""}, "BuildVersion is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer restore()
			buildName, buildTime, buildCommit, buildVersion = tt.flags[0], tt.flags[1], tt.flags[2], tt.flags[3]

			err := Initialize()
			if err == nil || err.Error() != tt.wantErrMsg {
				t.Errorf("Initialize() error = %v, want %q", err, tt.wantErrMsg)
			}
		})
	}
}

func TestInitializeReleaseBuild(t *testing.T) {
	defer restore()
	buildName, buildTime, buildCommit, buildVersion = "pvoc", "2026-10-18T10:00:00Z", "abcdef1", "v1.2.3"

	if err := Initialize(); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	flags := GetBuildFlags()
	if flags.Name != "pvoc" || flags.Version != "v1.2.3" || flags.Commit != "abcdef1" {
		t.Errorf("flags not copied: %+v", flags)
	}
	if flags.Description == "" {
		t.Error("description should survive Initialize")
	}
	if !strings.Contains(flags.String(), "pvoc v1.2.3") {
		t.Errorf("String() = %q", flags.String())
	}
}
