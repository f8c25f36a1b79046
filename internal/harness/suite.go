package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// SuiteResult summarizes running every scenario in a directory.
type SuiteResult struct {
	Total    int               `json:"total"`
	Passed   int               `json:"passed"`
	Failed   int               `json:"failed"`
	Results  []ScenarioResult  `json:"results"`
	Failures []ScenarioFailure `json:"failures,omitempty"`
}

// ScenarioResult is the outcome of one scenario in a suite.
type ScenarioResult struct {
	Name   string  `json:"name"`
	Path   string  `json:"path"`
	Pass   bool    `json:"pass"`
	Result *Result `json:"-"`
}

// ScenarioFailure represents a failed scenario.
type ScenarioFailure struct {
	Name   string   `json:"name"`
	Path   string   `json:"path"`
	Errors []string `json:"errors"`
}

// FindScenarios returns the .yaml and .yml files under dir, sorted.
func FindScenarios(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("scenario directory: %w", err)
	}
	if !info.IsDir() {
		return []string{dir}, nil
	}

	var paths []string
	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch filepath.Ext(path) {
		case ".yaml", ".yml":
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}

	sort.Strings(paths)
	return paths, nil
}

// RunSuite loads and runs every scenario found under dir. A scenario that
// fails to load or run counts as failed; RunSuite itself only fails when
// dir cannot be read.
func RunSuite(dir string) (*SuiteResult, error) {
	paths, err := FindScenarios(dir)
	if err != nil {
		return nil, err
	}

	suite := &SuiteResult{Results: []ScenarioResult{}}
	for _, path := range paths {
		suite.Total++

		name := filepath.Base(path)
		scenario, err := LoadScenario(path)
		if err != nil {
			suite.fail(name, path, []string{err.Error()})
			continue
		}
		name = scenario.Name

		result, err := Run(scenario)
		if err != nil {
			suite.fail(name, path, []string{err.Error()})
			continue
		}

		suite.Results = append(suite.Results, ScenarioResult{Name: name, Path: path, Pass: result.Pass, Result: result})
		if result.Pass {
			suite.Passed++
		} else {
			suite.Failed++
			suite.Failures = append(suite.Failures, ScenarioFailure{Name: name, Path: path, Errors: result.Errors})
		}
	}

	return suite, nil
}

func (s *SuiteResult) fail(name, path string, errs []string) {
	s.Failed++
	s.Results = append(s.Results, ScenarioResult{Name: name, Path: path})
	s.Failures = append(s.Failures, ScenarioFailure{Name: name, Path: path, Errors: errs})
}
