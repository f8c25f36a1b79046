package engine

import (
	"fmt"
	"slices"
	"strings"
)

// CycleMessage is the diagnostic logged for a recursive group membership.
func CycleMessage(member, group string) string {
	return fmt.Sprintf("Recursive group membership found: %s is a member of %s, but it is also one of its ancestors.", member, group)
}

// ancestorPath is the ordered list of groups above the item being
// processed, outermost first. It is copied on extension so sibling branches
// never see each other's entries.
type ancestorPath []string

// with returns a new path extended by name.
func (p ancestorPath) with(name string) ancestorPath {
	out := make(ancestorPath, len(p), len(p)+1)
	copy(out, p)
	return append(out, name)
}

// contains reports whether name is already on the path.
func (p ancestorPath) contains(name string) bool {
	return slices.Contains(p, name)
}

func (p ancestorPath) String() string {
	return strings.Join(p, " > ")
}

// reportCycle logs a back-edge and queues it for the cycle hook.
// Caller must hold e.mu.
func (e *Engine) reportCycle(member, group string, path ancestorPath) {
	err := NewCycleError(member, group, slices.Clone(path))
	e.logger.Error(err.Message,
		"code", string(err.Code),
		"member", member,
		"group", group,
		"path", path.String(),
	)
	e.queueCycle(err)
}
