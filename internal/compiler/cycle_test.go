package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/semmeta/internal/ir"
)

// TestAnalyzeParentCycles_Tree tests that a proper tree has no cycles.
func TestAnalyzeParentCycles_Tree(t *testing.T) {
	specs := []ir.TagSpec{
		{ID: "Indoor", Parent: "Location"},
		{ID: "Room", Parent: "Indoor"},
		{ID: "Kitchen", Parent: "Room"},
		{ID: "Bedroom", Parent: "Room"},
	}
	assert.Empty(t, AnalyzeParentCycles(specs))
}

// TestAnalyzeParentCycles_Empty tests that empty input produces no cycles.
func TestAnalyzeParentCycles_Empty(t *testing.T) {
	assert.Empty(t, AnalyzeParentCycles(nil))
}

// TestAnalyzeParentCycles_SelfParent tests a tag that is its own parent.
func TestAnalyzeParentCycles_SelfParent(t *testing.T) {
	cycles := AnalyzeParentCycles([]ir.TagSpec{{ID: "Loop", Parent: "Loop"}})
	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"Loop", "Loop"}, cycles[0])
}

// TestAnalyzeParentCycles_ThreeNode tests a length-3 parent cycle.
func TestAnalyzeParentCycles_ThreeNode(t *testing.T) {
	specs := []ir.TagSpec{
		{ID: "Door", Parent: "Equipment"},
		{ID: "A", Parent: "C"},
		{ID: "B", Parent: "A"},
		{ID: "C", Parent: "B"},
	}
	cycles := AnalyzeParentCycles(specs)
	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"A", "C", "B", "A"}, cycles[0])
}

// TestAnalyzeParentCycles_TailIntoCycle tests that a chain feeding a cycle
// reports only the cycle members.
func TestAnalyzeParentCycles_TailIntoCycle(t *testing.T) {
	specs := []ir.TagSpec{
		{ID: "Leaf", Parent: "X"},
		{ID: "X", Parent: "Y"},
		{ID: "Y", Parent: "X"},
	}
	cycles := AnalyzeParentCycles(specs)
	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"X", "Y", "X"}, cycles[0])
}

// TestAnalyzeParentCycles_UnknownParent tests that dangling parents are not
// cycles.
func TestAnalyzeParentCycles_UnknownParent(t *testing.T) {
	assert.Empty(t, AnalyzeParentCycles([]ir.TagSpec{{ID: "Door", Parent: "Missing"}}))
}
