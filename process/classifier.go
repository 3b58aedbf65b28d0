// SPDX-License-Identifier: MIT

// Package process classifies datasets into physics process categories.
//
// A Classifier is built once from an injected Table and never mutated; the
// same name always yields the same Tag. Unmatched names fail with
// ErrUnknownDataset.
package process

import (
	"fmt"
	"path"

	"github.com/katalvlaran/thcov/labeled"
)

// Classifier performs pure, deterministic dataset → process lookups.
type Classifier struct {
	table Table
}

// NewClassifier validates and copies table.
func NewClassifier(table Table) (*Classifier, error) {
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("NewClassifier: %w", err)
	}

	return &Classifier{table: table.clone()}, nil
}

// Classify returns the process of the first rule with a pattern matching name.
func (c *Classifier) Classify(name string) (Tag, error) {
	for _, r := range c.table.Rules {
		for _, p := range r.Patterns {
			if ok, _ := path.Match(p, name); ok { // patterns validated at construction
				return r.Process, nil
			}
		}
	}

	return "", fmt.Errorf("Classify(%q): %w", name, ErrUnknownDataset)
}

// Processes lists the distinct process tags of the table in rule order.
func (c *Classifier) Processes() []Tag {
	var out []Tag
	seen := make(map[Tag]struct{})
	for _, r := range c.table.Rules {
		if _, ok := seen[r.Process]; ok {
			continue
		}
		seen[r.Process] = struct{}{}
		out = append(out, r.Process)
	}

	return out
}

// Group lists the datasets of one process in index order.
type Group struct {
	Process  Tag
	Datasets []string
}

// GroupIndex classifies every dataset of ix and groups them by process.
// Groups appear in order of first appearance of their process in the index.
// Any unclassifiable dataset aborts with ErrUnknownDataset.
func GroupIndex(c *Classifier, ix *labeled.Index) ([]Group, error) {
	var groups []Group
	pos := make(map[Tag]int)
	for _, ds := range ix.Datasets() {
		tag, err := c.Classify(ds)
		if err != nil {
			return nil, fmt.Errorf("GroupIndex: %w", err)
		}
		i, ok := pos[tag]
		if !ok {
			i = len(groups)
			pos[tag] = i
			groups = append(groups, Group{Process: tag})
		}
		groups[i].Datasets = append(groups[i].Datasets, ds)
	}

	return groups, nil
}
