package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestItemIsGroup(t *testing.T) {
	assert.True(t, Item{Name: "g", Type: ItemTypeGroup}.IsGroup())
	assert.False(t, Item{Name: "s", Type: "Switch"}.IsGroup())
	assert.False(t, Item{Name: "x"}.IsGroup())
}

func TestItemClone(t *testing.T) {
	orig := Item{Name: "g", Type: ItemTypeGroup, Tags: []string{"Room"}, GroupNames: []string{"p"}, Members: []string{"a"}}
	c := orig.Clone()
	c.Tags[0] = "Kitchen"
	c.GroupNames[0] = "q"
	c.Members[0] = "b"

	assert.Equal(t, "Room", orig.Tags[0])
	assert.Equal(t, "p", orig.GroupNames[0])
	assert.Equal(t, "a", orig.Members[0])
}

func TestIsCategory(t *testing.T) {
	for _, c := range Categories {
		assert.True(t, IsCategory(string(c)), c)
	}
	assert.False(t, IsCategory("Door"))
	assert.False(t, IsCategory("location"))
}

func TestMetadataKey(t *testing.T) {
	k := NewMetadataKey("Door1")
	assert.Equal(t, "semantics", k.Namespace)
	assert.Equal(t, "semantics:Door1", k.String())

	assert.Equal(t, k, ParseMetadataKey("semantics:Door1"))
	assert.Equal(t, k, ParseMetadataKey("Door1"))
	assert.Equal(t, MetadataKey{Namespace: "other", ItemName: "x"}, ParseMetadataKey("other:x"))
}

func TestMetadataEqual(t *testing.T) {
	base := Metadata{
		UID:           NewMetadataKey("Door1"),
		Value:         "Equipment_Door",
		Configuration: map[string]string{ConfigHasLocation: "LivingRoom"},
	}

	tests := []struct {
		name  string
		other Metadata
		equal bool
	}{
		{"identical", base.Clone(), true},
		{"different value", Metadata{UID: base.UID, Value: "Equipment_Window", Configuration: base.Configuration}, false},
		{"different uid", Metadata{UID: NewMetadataKey("Door2"), Value: base.Value, Configuration: base.Configuration}, false},
		{"missing config", Metadata{UID: base.UID, Value: base.Value}, false},
		{"other location", Metadata{UID: base.UID, Value: base.Value, Configuration: map[string]string{ConfigHasLocation: "Kitchen"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.equal, base.Equal(tt.other))
			assert.Equal(t, tt.equal, tt.other.Equal(base))
		})
	}
}

func TestMetadataEqualNilVsEmpty(t *testing.T) {
	a := Metadata{UID: NewMetadataKey("x"), Value: "Point_Switch"}
	b := Metadata{UID: NewMetadataKey("x"), Value: "Point_Switch", Configuration: map[string]string{}}
	assert.True(t, a.Equal(b))
}

func TestMetadataClone(t *testing.T) {
	orig := Metadata{UID: NewMetadataKey("x"), Value: "v", Configuration: map[string]string{"k": "1"}}
	c := orig.Clone()
	c.Configuration["k"] = "2"
	assert.Equal(t, "1", orig.Configuration["k"])

	empty := Metadata{UID: NewMetadataKey("y")}.Clone()
	assert.NotNil(t, empty.Configuration)
}

func TestChangeRecord(t *testing.T) {
	old := Metadata{UID: NewMetadataKey("x"), Value: "Point_Switch"}
	upd := Metadata{UID: NewMetadataKey("x"), Value: "Point_Control"}

	assert.Equal(t, upd, Change{Kind: ChangeAdded, New: &upd}.Record())
	assert.Equal(t, upd, Change{Kind: ChangeUpdated, Old: &old, New: &upd}.Record())
	assert.Equal(t, old, Change{Kind: ChangeRemoved, Old: &old}.Record())
	assert.Equal(t, Metadata{}, Change{}.Record())
}
