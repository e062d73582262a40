// Package planstore persists the two YAML documents of a project: the plan
// (spec.yaml) and the checklist derived from it (todos.yaml).
//
// Loads never fail the caller. A missing or unreadable document yields an
// empty one plus a status line for the console. Saves serialize the whole
// document in memory and replace the file in one rename so a partial YAML
// document is never left on disk.
package planstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// TaskItem is one named unit of work. Name is the join key between the plan
// and the checklist.
type TaskItem struct {
	Name      string   `yaml:"name"`
	Type      string   `yaml:"type"`
	Domain    []string `yaml:"domain"`
	DependsOn []string `yaml:"depends_on"`
	Scope     []string `yaml:"scope"`
	State     []string `yaml:"state"`
	Rule      []string `yaml:"rule"`
	Step      []string `yaml:"step"`
}

// Features declares the domain vocabulary and the feature list of a plan.
type Features struct {
	Domain  []string `yaml:"domain"`
	Feature []string `yaml:"feature"`
}

// UnmarshalYAML accepts domain as either a scalar or a list. A blank scalar
// decodes to an empty list.
func (f *Features) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Domain  yaml.Node `yaml:"domain"`
		Feature []string  `yaml:"feature"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	f.Feature = raw.Feature
	domain, err := scalarOrList(raw.Domain, "features.domain")
	if err != nil {
		return err
	}
	f.Domain = domain
	return nil
}

// UnmarshalYAML accepts domain as a scalar too; workers often write a
// single domain without the list brackets.
func (t *TaskItem) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Name      string    `yaml:"name"`
		Type      string    `yaml:"type"`
		Domain    yaml.Node `yaml:"domain"`
		DependsOn []string  `yaml:"depends_on"`
		Scope     []string  `yaml:"scope"`
		State     []string  `yaml:"state"`
		Rule      []string  `yaml:"rule"`
		Step      []string  `yaml:"step"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	domain, err := scalarOrList(raw.Domain, "domain")
	if err != nil {
		return err
	}
	*t = TaskItem{
		Name:      raw.Name,
		Type:      raw.Type,
		Domain:    domain,
		DependsOn: raw.DependsOn,
		Scope:     raw.Scope,
		State:     raw.State,
		Rule:      raw.Rule,
		Step:      raw.Step,
	}
	return nil
}

func scalarOrList(n yaml.Node, field string) ([]string, error) {
	switch n.Kind {
	case 0:
		return nil, nil
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return nil, nil
		}
		if v := trimmed(n.Value); v != "" {
			return []string{v}, nil
		}
		return nil, nil
	case yaml.SequenceNode:
		var out []string
		if err := n.Decode(&out); err != nil {
			return nil, fmt.Errorf("%s: %w", field, err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s: expected string or list, line %d", field, n.Line)
	}
}

// PlanDocument is the editable plan.
type PlanDocument struct {
	Name      string     `yaml:"name"`
	Framework string     `yaml:"framework"`
	Rule      []string   `yaml:"rule"`
	Features  Features   `yaml:"features"`
	Tasks     []TaskItem `yaml:"tasks"`
}

// ChecklistDocument is the flat execution list derived from a plan.
type ChecklistDocument struct {
	Tasks []TaskItem `yaml:"tasks"`
}

// UnmarshalYAML accepts the legacy "todos" key. "tasks" wins unless empty.
func (c *ChecklistDocument) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Tasks []TaskItem `yaml:"tasks"`
		Todos []TaskItem `yaml:"todos"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	c.Tasks = raw.Tasks
	if len(c.Tasks) == 0 {
		c.Tasks = raw.Todos
	}
	return nil
}

// Append concatenates a generated batch. Existing entries are never diffed.
func (c *ChecklistDocument) Append(items []TaskItem) {
	c.Tasks = append(c.Tasks, items...)
}

// DecodePlan parses a plan document from YAML text.
func DecodePlan(raw string) (PlanDocument, error) {
	var doc PlanDocument
	if err := yaml.Unmarshal([]byte(raw), &doc); err != nil {
		return PlanDocument{}, fmt.Errorf("failed to parse plan yaml: %w", err)
	}
	return doc, nil
}

// DecodeChecklist parses a checklist document from YAML text.
func DecodeChecklist(raw string) (ChecklistDocument, error) {
	var doc ChecklistDocument
	if err := yaml.Unmarshal([]byte(raw), &doc); err != nil {
		return ChecklistDocument{}, fmt.Errorf("failed to parse checklist yaml: %w", err)
	}
	return doc, nil
}

// LoadStatus is the status line of a load. Failed is set when the document
// could not be read or decoded and an empty one was returned instead.
type LoadStatus struct {
	Message string
	Failed  bool
}

func failed(msg string) LoadStatus {
	return LoadStatus{Message: msg, Failed: true}
}

// LoadPlan reads the plan at path.
func LoadPlan(path string) (PlanDocument, LoadStatus) {
	raw, err := readDocument(path)
	if err != nil {
		return PlanDocument{}, failed(err.Error())
	}
	doc, err := DecodePlan(raw)
	if err != nil {
		return PlanDocument{}, failed(fmt.Sprintf("yaml parse failed: %v", err))
	}
	return doc, LoadStatus{Message: fmt.Sprintf("loaded %d tasks from %s", len(doc.Tasks), filepath.Base(path))}
}

// LoadChecklist reads the checklist at path.
func LoadChecklist(path string) (ChecklistDocument, LoadStatus) {
	raw, err := readDocument(path)
	if err != nil {
		return ChecklistDocument{}, failed(err.Error())
	}
	doc, err := DecodeChecklist(raw)
	if err != nil {
		return ChecklistDocument{}, failed(fmt.Sprintf("yaml parse failed: %v", err))
	}
	return doc, LoadStatus{Message: fmt.Sprintf("loaded %d checklist items from %s", len(doc.Tasks), filepath.Base(path))}
}

func readDocument(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%s not found, starting empty", filepath.Base(path))
		}
		return "", fmt.Errorf("yaml read failed: %v", err)
	}
	return string(data), nil
}

// SavePlan writes the whole plan to path.
func SavePlan(path string, doc PlanDocument) error {
	return saveYAML(path, doc)
}

// SaveChecklist writes the whole checklist to path under the "tasks" key.
func SaveChecklist(path string, doc ChecklistDocument) error {
	return saveYAML(path, doc)
}

func saveYAML(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("serialize failed: %w", err)
	}
	return WriteFileAtomic(path, data)
}

// WriteFileAtomic writes data to a temp file next to path and renames it into
// place.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("save failed: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("save failed: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("save failed: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("save failed: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save failed: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("save failed: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("save failed: %w", err)
	}
	return nil
}
