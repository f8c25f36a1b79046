package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "semmeta", cmd.Use)
	assert.Contains(t, cmd.Long, "<Category>_<Tag>")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"derive", "validate", "tags", "test", "journal"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	require.NotNil(t, cmd.PersistentFlags().Lookup("config"))
	require.NotNil(t, cmd.PersistentFlags().Lookup("taxonomy"))
}

func TestDeriveCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	deriveCmd, _, err := cmd.Find([]string{"derive"})
	require.NoError(t, err)

	for _, name := range []string{"changes", "metrics", "source", "journal"} {
		assert.NotNil(t, deriveCmd.Flags().Lookup(name), name)
	}
}

func TestRoot_InvalidFormat(t *testing.T) {
	_, _, err := executeRoot("tags", "--format", "xml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

func TestRoot_ConfigFileSetsFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "semmeta.yaml")
	require.NoError(t, os.WriteFile(path, []byte("format: json\n"), 0o644))

	stdout, _, err := executeRoot("tags", "--config", path, "--category", "Property")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestRoot_FlagOverridesConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "semmeta.yaml")
	require.NoError(t, os.WriteFile(path, []byte("format: json\n"), 0o644))

	stdout, _, err := executeRoot("tags", "--config", path, "--format", "text", "--category", "Property")
	require.NoError(t, err)
	assert.Contains(t, stdout, "UID")
	assert.Contains(t, stdout, "Property_Light")
}

func TestRoot_ConfigTaxonomy(t *testing.T) {
	taxonomy, err := filepath.Abs(filepath.Join("testdata", "taxonomy"))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "semmeta.yaml")
	require.NoError(t, os.WriteFile(path, []byte("taxonomy: "+taxonomy+"\n"), 0o644))

	stdout, _, err := executeRoot("tags", "--config", path, "--category", "Equipment")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Equipment_HotTub")
}

func TestRoot_EnvSetsFormat(t *testing.T) {
	t.Setenv("SEMMETA_FORMAT", "json")

	stdout, _, err := executeRoot("tags", "--category", "Point")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestRoot_MissingConfigFile(t *testing.T) {
	_, _, err := executeRoot("tags", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestRoot_VerboseLogsToStderr(t *testing.T) {
	stdout, stderr, err := executeRoot("derive", "--verbose", filepath.Join("testdata", "house.yaml"))
	require.NoError(t, err)
	assert.Contains(t, stderr, "engine starting")
	assert.NotContains(t, stdout, "engine starting")
}

func TestRoot_DefaultLevelHidesInfo(t *testing.T) {
	_, stderr, err := executeRoot("derive", filepath.Join("testdata", "house.yaml"))
	require.NoError(t, err)
	assert.Empty(t, stderr)
}
