package itemgraph

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile(t *testing.T) {
	m, err := LoadFile(filepath.Join("testdata", "house.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 5, m.Len())

	room, ok := m.Get("LivingRoom")
	require.True(t, ok)
	assert.True(t, room.IsGroup())
	assert.Equal(t, []string{"House"}, room.GroupNames)
	assert.Equal(t, []string{"Door1", "Lamp"}, room.Members)

	sw, ok := m.Get("LampSwitch")
	require.True(t, ok)
	assert.Equal(t, []string{"Switch", "Light"}, sw.Tags)
	assert.Equal(t, []string{"Lamp"}, sw.GroupNames)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "failed to read item graph file")
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"unknown field", "items:\n  - name: a\n    tag: [Door]\n", "failed to parse YAML"},
		{"missing name", "items:\n  - tags: [Door]\n", "name is required"},
		{"duplicate", "items:\n  - name: a\n  - name: a\n", "duplicate item name"},
		{"members on item", "items:\n  - name: a\n    members: [b]\n", "members are only allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.src))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestDecodeEmpty(t *testing.T) {
	items, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestLoadFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("items: [\n"), 0o644))

	_, err := LoadFile(path)
	assert.ErrorContains(t, err, "bad.yaml")
}
