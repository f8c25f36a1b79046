package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/semmeta/internal/ir"
)

// CompileTaxonomy parses a CUE value into tag specs.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The value is the taxonomy root, i.e. the struct holding "tags":
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`tags: Door: {parent: "Equipment"}`)
//	specs, err := CompileTaxonomy(v)
func CompileTaxonomy(v cue.Value) ([]ir.TagSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	tagsVal := v.LookupPath(cue.ParsePath("tags"))
	if !tagsVal.Exists() {
		return nil, &CompileError{
			Field:   "tags",
			Message: "tags is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := tagsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var specs []ir.TagSpec
	for iter.Next() {
		spec, err := parseTag(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}

	return specs, nil
}

// CompileTaxonomySource compiles CUE source text and parses its taxonomy.
// The name is used as the filename in error positions.
func CompileTaxonomySource(name string, src []byte) ([]ir.TagSpec, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(name))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return CompileTaxonomy(v)
}

// parseTag extracts a single tag definition.
func parseTag(id string, v cue.Value) (ir.TagSpec, error) {
	spec := ir.TagSpec{ID: id}
	field := fmt.Sprintf("tags.%s", id)

	parentVal := v.LookupPath(cue.ParsePath("parent"))
	if !parentVal.Exists() {
		return spec, &CompileError{
			Field:   field + ".parent",
			Message: "parent is required",
			Pos:     v.Pos(),
		}
	}
	parent, err := parentVal.String()
	if err != nil {
		return spec, formatCUEError(err)
	}
	spec.Parent = parent

	if spec.Label, err = optionalString(v, "label"); err != nil {
		return spec, err
	}
	if spec.Description, err = optionalString(v, "description"); err != nil {
		return spec, err
	}

	synVal := v.LookupPath(cue.ParsePath("synonyms"))
	if synVal.Exists() {
		list, err := synVal.List()
		if err != nil {
			return spec, formatCUEError(err)
		}
		for list.Next() {
			s, err := list.Value().String()
			if err != nil {
				return spec, &CompileError{
					Field:   field + ".synonyms",
					Message: "synonyms must be strings",
					Pos:     list.Value().Pos(),
				}
			}
			spec.Synonyms = append(spec.Synonyms, s)
		}
	}

	return spec, nil
}

func optionalString(v cue.Value, name string) (string, error) {
	f := v.LookupPath(cue.ParsePath(name))
	if !f.Exists() {
		return "", nil
	}
	s, err := f.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
