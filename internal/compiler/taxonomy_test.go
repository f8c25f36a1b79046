package compiler

import (
	"testing"

	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/semmeta/internal/ir"
)

func TestCompileTaxonomyBasic(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		tags: {
			Indoor: {parent: "Location", label: "Indoor"}
			Room: {parent: "Indoor"}
			LivingRoom: {
				parent:      "Room"
				label:       "Living Room"
				description: "Main living area"
				synonyms: ["Lounge", "Sitting Room"]
			}
			Door: {parent: "Equipment"}
		}
	`)
	require.NoError(t, v.Err())

	specs, err := CompileTaxonomy(v)
	require.NoError(t, err)
	require.Len(t, specs, 4)

	assert.Equal(t, []string{"Indoor", "Room", "LivingRoom", "Door"}, ids(specs), "declaration order")
	assert.Equal(t, ir.TagSpec{
		ID:          "LivingRoom",
		Parent:      "Room",
		Label:       "Living Room",
		Description: "Main living area",
		Synonyms:    []string{"Lounge", "Sitting Room"},
	}, specs[2])
	assert.Equal(t, "Indoor", specs[0].Label)
	assert.Empty(t, specs[1].Label)
}

func TestCompileTaxonomyMissingTags(t *testing.T) {
	v := cuecontext.New().CompileString(`other: 1`)
	_, err := CompileTaxonomy(v)

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "tags", ce.Field)
}

func TestCompileTaxonomyMissingParent(t *testing.T) {
	v := cuecontext.New().CompileString(`tags: Door: {label: "Door"}`)
	_, err := CompileTaxonomy(v)

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "tags.Door.parent", ce.Field)
	assert.Contains(t, err.Error(), "parent is required")
}

func TestCompileTaxonomyWrongTypes(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"parent not string", `tags: Door: {parent: 1}`},
		{"label not string", `tags: Door: {parent: "Equipment", label: true}`},
		{"synonyms not list", `tags: Door: {parent: "Equipment", synonyms: "x"}`},
		{"synonym not string", `tags: Door: {parent: "Equipment", synonyms: [1]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompileTaxonomySource("test.cue", []byte(tt.src))
			assert.Error(t, err)
		})
	}
}

func TestCompileTaxonomySourceSyntaxError(t *testing.T) {
	_, err := CompileTaxonomySource("broken.cue", []byte(`tags: { Door: {parent: "Equipment" `))
	require.Error(t, err)

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "cue", ce.Field)
	assert.Contains(t, err.Error(), "broken.cue")
}

func TestCompileTaxonomySource(t *testing.T) {
	specs, err := CompileTaxonomySource("ok.cue", []byte(`
tags: Lightbulb: {parent: "Equipment", synonyms: ["Bulb"]}
tags: Switch: {parent: "Point"}
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"Lightbulb", "Switch"}, ids(specs))
	assert.Equal(t, []string{"Bulb"}, specs[0].Synonyms)
}

func ids(specs []ir.TagSpec) []string {
	out := make([]string, len(specs))
	for i, s := range specs {
		out[i] = s.ID
	}
	return out
}
