package ir

import (
	"maps"
	"slices"
	"strings"
)

// ItemTypeGroup is the item type that marks an item as a group.
const ItemTypeGroup = "Group"

// Item is a snapshot of a named entity in the item graph.
//
// Tags keep their declared order; the first classified tag is the item's
// primary semantic tag. GroupNames lists the groups the item declares
// membership in (upward edges). Members lists member names and is only
// meaningful for groups (downward edges). Both sides are resolved by name
// through the item graph at computation time.
type Item struct {
	Name       string   `json:"name" yaml:"name"`
	Type       string   `json:"type,omitempty" yaml:"type,omitempty"`
	Tags       []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	GroupNames []string `json:"groups,omitempty" yaml:"groups,omitempty"`
	Members    []string `json:"members,omitempty" yaml:"members,omitempty"`
}

// IsGroup reports whether the item is a group.
func (i Item) IsGroup() bool {
	return i.Type == ItemTypeGroup
}

// Clone returns a deep copy of the item so snapshots never share slices.
func (i Item) Clone() Item {
	return Item{
		Name:       i.Name,
		Type:       i.Type,
		Tags:       slices.Clone(i.Tags),
		GroupNames: slices.Clone(i.GroupNames),
		Members:    slices.Clone(i.Members),
	}
}

// Category is the taxonomy root a semantic tag belongs to.
type Category string

const (
	CategoryLocation  Category = "Location"
	CategoryEquipment Category = "Equipment"
	CategoryPoint     Category = "Point"
	CategoryProperty  Category = "Property"
)

// Categories lists the taxonomy roots in canonical order.
var Categories = []Category{CategoryLocation, CategoryEquipment, CategoryPoint, CategoryProperty}

// IsCategory reports whether name is one of the taxonomy roots.
func IsCategory(name string) bool {
	return slices.Contains(Categories, Category(name))
}

// TagSpec is a compiled tag definition from a taxonomy source.
type TagSpec struct {
	ID          string   `json:"id"`
	Parent      string   `json:"parent"`
	Label       string   `json:"label,omitempty"`
	Description string   `json:"description,omitempty"`
	Synonyms    []string `json:"synonyms,omitempty"`
}

// MetadataNamespace is the namespace of every derived record.
const MetadataNamespace = "semantics"

// Configuration keys written by the engine.
const (
	ConfigHasLocation = "hasLocation"
	ConfigIsPartOf    = "isPartOf"
	ConfigIsPointOf   = "isPointOf"
	ConfigRelatesTo   = "relatesTo"
)

// MetadataKey identifies a derived record: namespace plus owning item name.
type MetadataKey struct {
	Namespace string `json:"namespace"`
	ItemName  string `json:"item_name"`
}

// NewMetadataKey returns the key for itemName in the semantics namespace.
func NewMetadataKey(itemName string) MetadataKey {
	return MetadataKey{Namespace: MetadataNamespace, ItemName: itemName}
}

// String formats the key as "namespace:item".
func (k MetadataKey) String() string {
	return k.Namespace + ":" + k.ItemName
}

// ParseMetadataKey parses "namespace:item". A bare item name gets the
// semantics namespace.
func ParseMetadataKey(s string) MetadataKey {
	if ns, name, ok := strings.Cut(s, ":"); ok {
		return MetadataKey{Namespace: ns, ItemName: name}
	}
	return NewMetadataKey(s)
}

// Metadata is a derived semantic record for one item.
type Metadata struct {
	UID           MetadataKey       `json:"uid"`
	Value         string            `json:"value"`
	Configuration map[string]string `json:"configuration"`
}

// Equal reports structural equality: UID, value and the full configuration.
// A nil configuration equals an empty one.
func (m Metadata) Equal(other Metadata) bool {
	return m.UID == other.UID &&
		m.Value == other.Value &&
		maps.Equal(m.Configuration, other.Configuration)
}

// Clone returns a copy with its own configuration map.
func (m Metadata) Clone() Metadata {
	c := m
	c.Configuration = maps.Clone(m.Configuration)
	if c.Configuration == nil {
		c.Configuration = map[string]string{}
	}
	return c
}

// ChangeKind is the kind of notification emitted for a record.
type ChangeKind string

const (
	ChangeAdded   ChangeKind = "added"
	ChangeUpdated ChangeKind = "updated"
	ChangeRemoved ChangeKind = "removed"
)

// Change is one emitted notification, as journaled and traced.
// Old is nil for added, New is nil for removed. Run names the journal
// session that wrote the change and is empty in traces.
type Change struct {
	Seq      int64      `json:"seq"`
	ID       string     `json:"id,omitempty"`
	Run      string     `json:"run,omitempty"`
	Source   string     `json:"source"`
	Kind     ChangeKind `json:"kind"`
	ItemName string     `json:"item_name"`
	Old      *Metadata  `json:"old,omitempty"`
	New      *Metadata  `json:"new,omitempty"`
}

// Record returns the record the change leaves in place, or the removed
// record for removals.
func (c Change) Record() Metadata {
	if c.New != nil {
		return *c.New
	}
	if c.Old != nil {
		return *c.Old
	}
	return Metadata{}
}
