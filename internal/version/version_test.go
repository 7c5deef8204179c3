package version

import (
	"encoding/json"
	"runtime"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetInfo(t *testing.T) {
	info := GetInfo()

	assert.NotEmpty(t, info.Version)
	assert.LessOrEqual(t, len(info.GitCommit), 7)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
	assert.Empty(t, info.Inkscape)
}

func TestFromBuildInfo(t *testing.T) {
	base := Info{Version: "dev", GitCommit: "none", BuildDate: "unknown"}

	bi := &debug.BuildInfo{
		Main: debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		},
	}

	got := fromBuildInfo(base, bi)
	assert.Equal(t, "v0.3.1", got.Version)
	assert.Equal(t, "0123456789abcdef", got.GitCommit)
	assert.Equal(t, "2026-01-02T03:04:05Z", got.BuildDate)
}

func TestFromBuildInfo_LdflagsWin(t *testing.T) {
	base := Info{Version: "v1.0.0", GitCommit: "feedbee", BuildDate: "2026-10-01"}

	bi := &debug.BuildInfo{
		Main:     debug.Module{Version: "(devel)"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "deadbeef"}},
	}

	assert.Equal(t, base, fromBuildInfo(base, bi))
}

func TestFromBuildInfo_DevelVersionIgnored(t *testing.T) {
	got := fromBuildInfo(Info{Version: "dev"}, &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})
	assert.Equal(t, "dev", got.Version)
}

func TestInfoString(t *testing.T) {
	info := Info{Version: "v1.2.0", GitCommit: "abc1234", BuildDate: "today", GoVersion: "go1.25", Platform: "linux/amd64"}

	assert.Equal(t, "inkscape-figures v1.2.0 (commit: abc1234, built: today, go1.25 linux/amd64)", info.String())

	info.Inkscape = "1.3.2"
	assert.Contains(t, info.String(), "\ninkscape 1.3.2")
}

func TestInfoJSON(t *testing.T) {
	info := GetInfo()
	info.Inkscape = "0.92.4"

	jsonStr, err := info.JSON()
	require.NoError(t, err)

	var parsed Info
	require.NoError(t, json.Unmarshal([]byte(jsonStr), &parsed))

	assert.Equal(t, info, parsed)
}

func TestInfoJSON_OmitsUnknownInkscape(t *testing.T) {
	jsonStr, err := Info{Version: "dev"}.JSON()
	require.NoError(t, err)
	assert.NotContains(t, jsonStr, "inkscape")
}

func TestShortCommit(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"long SHA truncated", "abc1234def5678", "abc1234"},
		{"exact 7 unchanged", "abc1234", "abc1234"},
		{"short unchanged", "abc", "abc"},
		{"empty unchanged", "", ""},
		{"none unchanged", "none", "none"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shortCommit(tt.input))
		})
	}
}
