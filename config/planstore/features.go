package planstore

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AppendFeatures adds each non-blank feature not already listed to
// features.feature of the plan at path. Every other key of the document is
// kept as written. It returns how many features were added.
func AppendFeatures(path string, features []string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read spec for feature append: %w", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return 0, fmt.Errorf("failed to parse spec yaml: %w", err)
	}
	if doc.Kind == 0 {
		doc = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return 0, errors.New("spec root must be mapping")
	}

	featuresNode, err := childOfKind(root, "features", yaml.MappingNode, "!!map")
	if err != nil {
		return 0, fmt.Errorf("features must be mapping: %w", err)
	}
	seq, err := childOfKind(featuresNode, "feature", yaml.SequenceNode, "!!seq")
	if err != nil {
		return 0, fmt.Errorf("features.feature must be sequence: %w", err)
	}
	seq.Style = 0

	seen := make(map[string]bool, len(seq.Content))
	for _, n := range seq.Content {
		seen[n.Value] = true
	}
	added := 0
	for _, f := range features {
		v := trimmed(f)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v})
		added++
	}
	if added == 0 {
		return 0, nil
	}

	out, err := yaml.Marshal(&doc)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize updated spec: %w", err)
	}
	if err := WriteFileAtomic(path, out); err != nil {
		return 0, err
	}
	return added, nil
}

// childOfKind returns the value node of key in mapping m, inserting an empty
// node of the wanted kind when the key is absent or null.
func childOfKind(m *yaml.Node, key string, kind yaml.Kind, tag string) (*yaml.Node, error) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value != key {
			continue
		}
		v := m.Content[i+1]
		if v.Kind == yaml.ScalarNode && v.Tag == "!!null" {
			*v = yaml.Node{Kind: kind, Tag: tag}
		}
		if v.Kind != kind {
			return nil, fmt.Errorf("key %q has the wrong type", key)
		}
		return v, nil
	}
	v := &yaml.Node{Kind: kind, Tag: tag}
	m.Content = append(m.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, v)
	return v, nil
}
