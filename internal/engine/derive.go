package engine

import (
	"strings"

	"github.com/roach88/semmeta/internal/ir"
)

// derive computes the record for item, or reports that it has none.
//
// Value is <Category>_<Tag> for the first tag the registry classifies.
// Configuration:
//   - hasLocation: nearest Location group above a non-Location item
//   - isPartOf: first direct Location group of a Location item, or first
//     direct Equipment group of an Equipment item
//   - isPointOf: first direct Equipment group of a Point item
//   - relatesTo: Property_<Tag> for the first Property tag of a Point item
func (e *Engine) derive(v *view, item ir.Item) (ir.Metadata, bool) {
	category, tag, ok := e.primaryTag(item)
	if !ok {
		return ir.Metadata{}, false
	}

	cfg := make(map[string]string)
	switch category {
	case ir.CategoryLocation:
		if g, ok := e.directGroup(v, item, ir.CategoryLocation); ok {
			cfg[ir.ConfigIsPartOf] = g
		}
	default:
		if loc, ok := e.nearestLocation(v, item); ok {
			cfg[ir.ConfigHasLocation] = loc
		}
	}

	switch category {
	case ir.CategoryEquipment:
		if g, ok := e.directGroup(v, item, ir.CategoryEquipment); ok {
			cfg[ir.ConfigIsPartOf] = g
		}
	case ir.CategoryPoint:
		if g, ok := e.directGroup(v, item, ir.CategoryEquipment); ok {
			cfg[ir.ConfigIsPointOf] = g
		}
		if prop, ok := e.firstTagOf(item, ir.CategoryProperty); ok {
			cfg[ir.ConfigRelatesTo] = recordValue(ir.CategoryProperty, prop)
		}
	}

	return ir.Metadata{
		UID:           ir.NewMetadataKey(item.Name),
		Value:         recordValue(category, tag),
		Configuration: cfg,
	}, true
}

// primaryTag returns the first tag in declared order that the registry
// classifies.
func (e *Engine) primaryTag(item ir.Item) (ir.Category, string, bool) {
	if e.registry == nil {
		return "", "", false
	}
	for _, tag := range item.Tags {
		if c, ok := e.registry.Classify(tag); ok {
			return c, tag, true
		}
	}
	return "", "", false
}

// firstTagOf returns the first tag of item classified into category.
func (e *Engine) firstTagOf(item ir.Item, category ir.Category) (string, bool) {
	if e.registry == nil {
		return "", false
	}
	for _, tag := range item.Tags {
		if c, ok := e.registry.Classify(tag); ok && c == category {
			return tag, true
		}
	}
	return "", false
}

// groupCategory returns the primary category of a group, if any.
func (e *Engine) groupCategory(v *view, name string) (ir.Item, ir.Category, bool) {
	g, ok := v.get(name)
	if !ok || !g.IsGroup() {
		return ir.Item{}, "", false
	}
	c, _, ok := e.primaryTag(g)
	return g, c, ok
}

// directGroup returns the first group item declares that is classified as
// category.
func (e *Engine) directGroup(v *view, item ir.Item, category ir.Category) (string, bool) {
	for _, name := range item.GroupNames {
		if name == item.Name {
			continue
		}
		if _, c, ok := e.groupCategory(v, name); ok && c == category {
			return name, true
		}
	}
	return "", false
}

// nearestLocation searches ancestors breadth-first over GroupNames. The
// nearest Location group wins; ties at equal depth go to declaration order.
// A visited set bounds the search on cyclic membership; this search logs
// nothing.
func (e *Engine) nearestLocation(v *view, item ir.Item) (string, bool) {
	visited := map[string]bool{item.Name: true}
	frontier := item.GroupNames

	for len(frontier) > 0 {
		var next []string
		for _, name := range frontier {
			if visited[name] {
				continue
			}
			visited[name] = true

			g, c, ok := e.groupCategory(v, name)
			if ok && c == ir.CategoryLocation {
				return name, true
			}
			if g.Name != "" {
				next = append(next, g.GroupNames...)
			}
		}
		frontier = next
	}
	return "", false
}

// recordValue formats <Category>_<Tag>. A tag given as a full UID
// contributes only its last segment.
func recordValue(category ir.Category, tag string) string {
	if i := strings.LastIndex(tag, "_"); i >= 0 {
		tag = tag[i+1:]
	}
	return string(category) + "_" + tag
}
