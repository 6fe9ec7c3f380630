// Package fixtures loads literal before/after paste fixtures from YAML and
// runs them against a paste.Processor.
package fixtures

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/pasteclean/pkg/paste"
)

// ErrNoCases is returned when a fixture file holds no cases.
var ErrNoCases = errors.New("fixture file has no cases")

// Case is one literal fixture. Mode defaults to rich.
type Case struct {
	Name  string `yaml:"name" validate:"required"`
	Mode  string `yaml:"mode,omitempty" validate:"omitempty,oneof=rich text"`
	Input string `yaml:"input"`
	Want  string `yaml:"want"`
}

// File is the on-disk layout of a fixture file.
type File struct {
	Cases []Case `yaml:"cases" validate:"dive"`
}

// Outcome is the result of running one case.
type Outcome struct {
	Case   Case
	Got    string
	Passed bool
}

var validate = validator.New()

// Load reads and validates a fixture file.
func Load(path string) ([]Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixtures: %w", err)
	}
	cases, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cases, nil
}

// Parse decodes and validates fixture YAML.
func Parse(data []byte) ([]Case, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding fixtures: %w", err)
	}
	if len(f.Cases) == 0 {
		return nil, ErrNoCases
	}
	if err := validate.Struct(f); err != nil {
		return nil, fmt.Errorf("invalid fixtures: %w", err)
	}
	return f.Cases, nil
}

// Run sanitizes every case with p and compares against the expected output.
func Run(p *paste.Processor, cases []Case) []Outcome {
	outcomes := make([]Outcome, 0, len(cases))
	for _, c := range cases {
		mode := paste.ModeRich
		if c.Mode != "" {
			mode = paste.Mode(c.Mode)
		}
		got := p.Process(c.Input, mode).Content
		outcomes = append(outcomes, Outcome{Case: c, Got: got, Passed: got == c.Want})
	}
	return outcomes
}

// Failed returns the outcomes that did not match.
func Failed(outcomes []Outcome) []Outcome {
	var failed []Outcome
	for _, o := range outcomes {
		if !o.Passed {
			failed = append(failed, o)
		}
	}
	return failed
}
