// Package generate turns a manifest of named comprehensions into a Go
// source file with one function per entry.
package generate

import (
	"fmt"
	"go/token"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/comprehend/internal/config"
	"github.com/funvibe/comprehend/internal/sink"
)

// DefaultOutput is written next to the manifest when Output is empty.
const DefaultOutput = "comprehensions_gen.go"

// Manifest is a comprehensions.yaml file.
//
//	package: stats
//	comprehensions:
//	  - name: Pairs
//	    kind: vec
//	    params: xs, ys []int
//	    elem: int
//	    source: x * y for x in xs for y in ys if x != y
type Manifest struct {
	Package string `yaml:"package"`
	// Output is relative to the manifest's directory.
	Output  string  `yaml:"output,omitempty"`
	Entries []Entry `yaml:"comprehensions"`

	path string
}

// Entry is one generated function.
type Entry struct {
	Name string `yaml:"name"`
	// Doc becomes the function's doc comment.
	Doc string `yaml:"doc,omitempty"`
	// Kind is a container name or "lazy".
	Kind string `yaml:"kind"`
	// Params is the Go parameter list, without parentheses.
	Params string `yaml:"params,omitempty"`
	Elem   string `yaml:"elem,omitempty"`
	Key    string `yaml:"key,omitempty"`
	Value  string `yaml:"value,omitempty"`
	Dup    string `yaml:"dup,omitempty"`
	Source string `yaml:"source"`
}

// LoadManifest reads and validates a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	m, err := ParseManifest(data, path)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ParseManifest parses manifest data; path is used for error messages
// and to resolve Output.
func ParseManifest(data []byte, path string) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	m.path = path
	if m.Output == "" {
		m.Output = DefaultOutput
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// OutputPath is where the generated file goes.
func (m *Manifest) OutputPath() string {
	if filepath.IsAbs(m.Output) {
		return m.Output
	}
	return filepath.Join(filepath.Dir(m.path), m.Output)
}

func (m *Manifest) validate() error {
	if !token.IsIdentifier(m.Package) {
		return fmt.Errorf("%s: package %q is not a valid Go identifier", m.path, m.Package)
	}
	if !strings.HasSuffix(m.Output, ".go") {
		return fmt.Errorf("%s: output %q must be a .go file", m.path, m.Output)
	}

	seen := make(map[string]bool)
	for i, e := range m.Entries {
		if !token.IsIdentifier(e.Name) {
			return fmt.Errorf("%s: comprehensions[%d]: name %q is not a valid Go identifier", m.path, i, e.Name)
		}
		if seen[e.Name] {
			return fmt.Errorf("%s: comprehensions[%d]: duplicate name %q", m.path, i, e.Name)
		}
		seen[e.Name] = true

		if strings.TrimSpace(e.Source) == "" {
			return fmt.Errorf("%s: %s: source is required", m.path, e.Name)
		}
		if _, err := e.Target(); err != nil {
			return fmt.Errorf("%s: %s: %w", m.path, e.Name, err)
		}
		if _, err := config.ParseDupPolicy(e.Dup); err != nil {
			return fmt.Errorf("%s: %s: %w", m.path, e.Name, err)
		}
	}
	return nil
}

// Target resolves the entry's kind; an empty kind is a slice.
func (e Entry) Target() (sink.Target, error) {
	if e.Kind == "" {
		return sink.EagerTarget(sink.Vec), nil
	}
	return sink.ParseTarget(e.Kind)
}

// Options merges the entry's settings over the project defaults.
func (e Entry) Options(defaults config.Options) config.Options {
	opts := defaults
	if e.Elem != "" {
		opts.Elem = e.Elem
	}
	if e.Key != "" {
		opts.Key = e.Key
	}
	if e.Value != "" {
		opts.Value = e.Value
	}
	if e.Dup != "" {
		// Validated by LoadManifest.
		opts.Dup, _ = config.ParseDupPolicy(e.Dup)
	}
	return opts
}
