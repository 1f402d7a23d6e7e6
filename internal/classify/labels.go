// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// Label pairs a report label with the natural-language prompt whose
// embedding scores images for that label.
type Label struct {
	Name   string `json:"name" yaml:"name"`
	Prompt string `json:"prompt" yaml:"prompt"`
}

// LabelSet is the closed set of candidate labels for a run. Every
// classification result carries exactly one of its names.
type LabelSet struct {
	Labels []Label `json:"labels" yaml:"labels"`
}

// DefaultLabels returns the built-in medical / non-medical label set.
func DefaultLabels() LabelSet {
	return LabelSet{Labels: []Label{
		{
			Name:   "medical",
			Prompt: "a medical image, such as an x-ray, CT scan, MRI, ultrasound, or clinical photograph",
		},
		{
			Name:   "non-medical",
			Prompt: "an ordinary photograph or illustration with no medical content",
		},
	}}
}

// LoadLabels reads a label set from a YAML file and validates it.
func LoadLabels(path string) (LabelSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return LabelSet{}, fmt.Errorf("reading labels file: %w", err)
	}
	var set LabelSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return LabelSet{}, fmt.Errorf("parsing labels file %s: %w", path, err)
	}
	if err := set.Validate(); err != nil {
		return LabelSet{}, fmt.Errorf("labels file %s: %w", path, err)
	}
	return set, nil
}

// Validate checks that the set is usable: at least two labels, every name
// and prompt non-empty, names unique.
func (s LabelSet) Validate() error {
	if len(s.Labels) < 2 {
		return fmt.Errorf("need at least 2 labels, have %d", len(s.Labels))
	}
	seen := make(map[string]bool, len(s.Labels))
	for i, l := range s.Labels {
		if l.Name == "" {
			return fmt.Errorf("label %d has an empty name", i)
		}
		if l.Prompt == "" {
			return fmt.Errorf("label %q has an empty prompt", l.Name)
		}
		if seen[l.Name] {
			return fmt.Errorf("duplicate label name %q", l.Name)
		}
		seen[l.Name] = true
	}
	return nil
}
