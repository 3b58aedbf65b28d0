// SPDX-License-Identifier: MIT

package process

import (
	_ "embed"
	"fmt"
	"os"
	"path"

	"gopkg.in/yaml.v3"
)

//go:embed default_processes.yaml
var defaultTableYAML []byte

// Tag names a physics process category, e.g. "DIS NC" or "DY".
type Tag string

// Rule maps a set of dataset-name patterns to one process.
// Patterns use path.Match syntax and are matched case-sensitively.
type Rule struct {
	Process  Tag      `yaml:"process"`
	Patterns []string `yaml:"patterns"`
}

// Table is an ordered rule list; the first matching rule wins.
type Table struct {
	Rules []Rule `yaml:"rules"`
}

// Validate checks that the table is usable for classification.
func (t Table) Validate() error {
	if len(t.Rules) == 0 {
		return fmt.Errorf("no rules: %w", ErrInvalidTable)
	}
	for i, r := range t.Rules {
		if r.Process == "" {
			return fmt.Errorf("rule %d: empty process: %w", i, ErrInvalidTable)
		}
		if len(r.Patterns) == 0 {
			return fmt.Errorf("rule %d (%s): no patterns: %w", i, r.Process, ErrInvalidTable)
		}
		for _, p := range r.Patterns {
			if _, err := path.Match(p, ""); err != nil {
				return fmt.Errorf("rule %d (%s): pattern %q: %w", i, r.Process, p, ErrInvalidTable)
			}
		}
	}

	return nil
}

// clone deep-copies the rule list.
func (t Table) clone() Table {
	out := Table{Rules: make([]Rule, len(t.Rules))}
	for i, r := range t.Rules {
		out.Rules[i] = Rule{Process: r.Process, Patterns: append([]string(nil), r.Patterns...)}
	}

	return out
}

// ParseTable decodes a YAML table and validates it.
func ParseTable(data []byte) (Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Table{}, fmt.Errorf("failed to unmarshal process table: %w", err)
	}
	if err := t.Validate(); err != nil {
		return Table{}, err
	}

	return t, nil
}

// LoadTable reads and parses a YAML table from disk.
func LoadTable(filename string) (Table, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Table{}, fmt.Errorf("failed to read process table: %w", err)
	}

	return ParseTable(data)
}

// DefaultTable returns the built-in table shipped with the package.
func DefaultTable() Table {
	t, err := ParseTable(defaultTableYAML)
	if err != nil {
		panic(fmt.Sprintf("process: embedded default table: %v", err))
	}

	return t
}
