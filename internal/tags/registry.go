package tags

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/roach88/semmeta/internal/compiler"
	"github.com/roach88/semmeta/internal/ir"
)

//go:embed default.cue
var defaultTaxonomy []byte

// UIDSeparator joins path segments in a tag UID.
const UIDSeparator = "_"

// Tag is a registered semantic tag.
type Tag struct {
	ir.TagSpec
	UID      string      `json:"uid"`
	Category ir.Category `json:"category"`
}

// Registry classifies semantic tags.
//
// Thread-safety: Registry is safe for concurrent use. Add takes the write
// lock; lookups take the read lock.
type Registry struct {
	mu    sync.RWMutex
	byID  map[string]*Tag
	byUID map[string]*Tag
	order []string
}

// New builds a registry from tag specs. The specs are validated as a whole;
// any validation error rejects the taxonomy.
func New(specs []ir.TagSpec) (*Registry, error) {
	if errs := compiler.ValidateTaxonomy(specs); len(errs) > 0 {
		joined := make([]error, len(errs))
		for i, e := range errs {
			joined[i] = e
		}
		return nil, fmt.Errorf("invalid taxonomy: %w", errors.Join(joined...))
	}

	r := &Registry{
		byID:  make(map[string]*Tag, len(specs)),
		byUID: make(map[string]*Tag, len(specs)),
	}

	parents := make(map[string]string, len(specs))
	for _, spec := range specs {
		parents[spec.ID] = spec.Parent
	}
	for _, spec := range specs {
		uid := buildUID(spec.ID, parents)
		r.insert(spec, uid)
	}
	return r, nil
}

// DefaultSpecs compiles the embedded default taxonomy.
func DefaultSpecs() ([]ir.TagSpec, error) {
	specs, err := compiler.CompileTaxonomySource("default.cue", defaultTaxonomy)
	if err != nil {
		return nil, fmt.Errorf("compile default taxonomy: %w", err)
	}
	return specs, nil
}

// Default returns a registry holding the embedded default taxonomy.
func Default() (*Registry, error) {
	specs, err := DefaultSpecs()
	if err != nil {
		return nil, err
	}
	return New(specs)
}

// MustDefault is like Default but panics on error.
// The embedded taxonomy is covered by tests, so this only fails on a
// broken build.
func MustDefault() *Registry {
	r, err := Default()
	if err != nil {
		panic(err)
	}
	return r
}

// buildUID walks parents up to a category root. Specs are validated, so the
// walk terminates.
func buildUID(id string, parents map[string]string) string {
	segments := []string{id}
	for cur := id; ; {
		parent := parents[cur]
		segments = append(segments, parent)
		if ir.IsCategory(parent) {
			break
		}
		cur = parent
	}
	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}
	return strings.Join(segments, UIDSeparator)
}

func (r *Registry) insert(spec ir.TagSpec, uid string) {
	category, _, _ := strings.Cut(uid, UIDSeparator)
	tag := &Tag{TagSpec: spec, UID: uid, Category: ir.Category(category)}
	r.byID[spec.ID] = tag
	r.byUID[uid] = tag
	r.order = append(r.order, spec.ID)
}

// Classify returns the category of a tag given its id or full UID. The
// category roots themselves are not tags and never classify.
func (r *Registry) Classify(tag string) (ir.Category, bool) {
	t, ok := r.Get(tag)
	if !ok {
		return "", false
	}
	return t.Category, true
}

// Get looks up a tag by id or full UID.
func (r *Registry) Get(tag string) (Tag, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if t, ok := r.byID[tag]; ok {
		return *t, true
	}
	if t, ok := r.byUID[tag]; ok {
		return *t, true
	}
	return Tag{}, false
}

// Exists reports whether the tag id or UID is registered.
func (r *Registry) Exists(tag string) bool {
	_, ok := r.Get(tag)
	return ok
}

// All returns every tag in declaration order, managed tags last.
func (r *Registry) All() []Tag {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Tag, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.byID[id])
	}
	return out
}

// Len returns the number of registered tags.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Add registers a managed tag. The parent must be a category or an existing
// tag, and the id must be new.
func (r *Registry) Add(spec ir.TagSpec) (Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.byID[spec.ID]; dup {
		return Tag{}, compiler.ValidationError{
			Field:   "tags." + spec.ID,
			Message: fmt.Sprintf("duplicate tag id %q", spec.ID),
			Code:    compiler.ErrTagDuplicate,
		}
	}

	// Validate the spec alone; a known parent is checked against the
	// registry below.
	candidate := spec
	if _, known := r.byID[spec.Parent]; known {
		candidate.Parent = string(ir.CategoryLocation)
	}
	if errs := compiler.ValidateTaxonomy([]ir.TagSpec{candidate}); len(errs) > 0 {
		return Tag{}, errs[0]
	}

	var uid string
	if ir.IsCategory(spec.Parent) {
		uid = spec.Parent + UIDSeparator + spec.ID
	} else {
		uid = r.byID[spec.Parent].UID + UIDSeparator + spec.ID
	}
	r.insert(spec, uid)
	return *r.byID[spec.ID], nil
}
