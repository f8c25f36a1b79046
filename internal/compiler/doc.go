// Package compiler turns CUE tag taxonomies into validated ir.TagSpec lists.
//
// A taxonomy source declares tags under a top-level "tags" struct:
//
//	tags: {
//		Indoor: {parent: "Location", label: "Indoor"}
//		Room:   {parent: "Indoor"}
//		LivingRoom: {parent: "Room", synonyms: ["Lounge"]}
//	}
//
// Tags are returned in declaration order. The four category roots
// (Location, Equipment, Point, Property) are implicit and may not be
// redefined.
package compiler
