package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/inkscape-figures/internal/version"
)

func TestVersionCommand_Human(t *testing.T) {
	stdout, _, err := executeCommand("version")
	require.NoError(t, err)

	assert.Contains(t, stdout, "inkscape-figures")
	assert.NotContains(t, stdout, "\ninkscape ")
}

func TestVersionCommand_JSON(t *testing.T) {
	stdout, _, err := executeCommand("version", "--json")
	require.NoError(t, err)

	var info version.Info
	require.NoError(t, json.Unmarshal([]byte(stdout), &info))

	assert.NotEmpty(t, info.Version)
	assert.NotEmpty(t, info.GoVersion)
	assert.NotEmpty(t, info.Platform)
	assert.Empty(t, info.Inkscape)
}

func TestVersionCommand_Inkscape(t *testing.T) {
	te := newTestEnv(t)

	stdout, _, err := te.execute("version", "--inkscape", "--json")
	require.NoError(t, err)

	var info version.Info
	require.NoError(t, json.Unmarshal([]byte(stdout), &info))
	assert.Equal(t, "1.3.2", info.Inkscape)

	probes := te.runner.callsOf("output")
	require.Len(t, probes, 1)
	assert.Equal(t, "inkscape", probes[0].name)
	assert.Equal(t, []string{"--version"}, probes[0].args)
}

func TestVersionCommand_InkscapeMissing(t *testing.T) {
	te := newTestEnv(t)
	te.runner.version = ""

	_, _, err := te.execute("version", "--inkscape")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--version")
}

func TestVersionCommand_NoArgs(t *testing.T) {
	_, _, err := executeCommand("version", "extra")
	require.Error(t, err)
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		stdout, _, err := executeCommand("completion", shell)
		require.NoError(t, err, shell)
		assert.Contains(t, stdout, "inkscape-figures", shell)
	}

	_, _, err := executeCommand("completion", "tcsh")
	require.Error(t, err)
}

func TestCompletionCommand_HelpNamesCompletedArguments(t *testing.T) {
	cmd := newCompletionCommand()
	assert.Contains(t, cmd.Long, `"roots remove"`)
	assert.Contains(t, cmd.Long, `"create" and "edit"`)
}
