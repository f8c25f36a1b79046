package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSuite_Testdata(t *testing.T) {
	suite, err := RunSuite("testdata/scenarios")
	require.NoError(t, err)

	assert.Equal(t, 11, suite.Total)
	assert.Equal(t, suite.Total, suite.Passed)
	assert.Zero(t, suite.Failed)
	assert.Empty(t, suite.Failures)
}

func TestRunSuite_ReportsFailures(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a_broken.yaml"), []byte("name: [\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b_wrong.yaml"), []byte(`
name: wrong
description: "expects a record that is never derived"
steps:
  - add: {name: Plain, tags: [Favourite]}
assertions:
  - type: record
    item: Plain
    value: Equipment_Door
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	suite, err := RunSuite(dir)
	require.NoError(t, err)

	assert.Equal(t, 2, suite.Total)
	assert.Equal(t, 2, suite.Failed)
	require.Len(t, suite.Failures, 2)
	assert.Equal(t, "a_broken.yaml", suite.Failures[0].Name)
	assert.Contains(t, suite.Failures[0].Errors[0], "failed to parse YAML")
	assert.Equal(t, "wrong", suite.Failures[1].Name)
}

func TestFindScenarios_MissingDir(t *testing.T) {
	_, err := FindScenarios(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
