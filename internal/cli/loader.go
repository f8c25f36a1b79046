package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"cuelang.org/go/cue/token"

	"github.com/roach88/semmeta/internal/compiler"
	"github.com/roach88/semmeta/internal/ir"
	"github.com/roach88/semmeta/internal/tags"
)

// LoadMode controls how errors are handled during taxonomy loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult contains the tags loaded from a taxonomy directory.
type LoadResult struct {
	// Specs holds the default taxonomy followed by the directory's tags in
	// file then declaration order.
	Specs     []ir.TagSpec
	DirSpecs  int // number of tags contributed by the directory
	FileCount int // number of CUE files found
}

// LoadError represents an error that occurred during taxonomy loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // File read failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE compile failed
	ErrCodeGraphFailed = "E007" // Item graph unreadable or invalid
	ErrCodeJournal     = "E008" // Journal open/read/write failed
)

// LoadTaxonomy compiles every .cue file under dir and appends the tags to
// the embedded default taxonomy, so a directory extends the defaults.
// Each file must declare a top-level "tags" struct.
func LoadTaxonomy(dir string, mode LoadMode) (*LoadResult, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("taxonomy directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing taxonomy directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	defaults, err := tags.DefaultSpecs()
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: err.Error()}}
	}

	result := &LoadResult{
		Specs:     defaults,
		FileCount: len(cueFiles),
	}

	var errs []error
	for _, path := range cueFiles {
		src, err := os.ReadFile(path)
		if err != nil {
			errs = append(errs, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("reading %s: %v", path, err)})
			if mode == LoadModeFailFast {
				return result, errs
			}
			continue
		}

		specs, err := compiler.CompileTaxonomySource(path, src)
		if err != nil {
			errs = append(errs, convertCompileError(err, path))
			if mode == LoadModeFailFast {
				return result, errs
			}
			continue
		}

		result.Specs = append(result.Specs, specs...)
		result.DirSpecs += len(specs)
	}

	return result, errs
}

// FindCUEFiles walks the directory and returns all .cue file paths, sorted.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error, path string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    ErrCodeBuildFailed,
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: fmt.Sprintf("%s: %v", path, err),
	}
}

// loadRegistry builds the tag registry for a command: the embedded default,
// extended by the taxonomy directory when one is configured.
func loadRegistry(opts *RootOptions) (*tags.Registry, error) {
	if opts.Taxonomy == "" {
		registry, err := tags.Default()
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to load default taxonomy", err)
		}
		return registry, nil
	}

	result, errs := LoadTaxonomy(opts.Taxonomy, LoadModeFailFast)
	if len(errs) > 0 {
		return nil, WrapExitError(ExitCommandError, "failed to load taxonomy", errs[0])
	}

	registry, err := tags.New(result.Specs)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid taxonomy", err)
	}
	opts.logger().Debug("taxonomy loaded",
		"dir", opts.Taxonomy,
		"files", result.FileCount,
		"tags", registry.Len())
	return registry, nil
}
