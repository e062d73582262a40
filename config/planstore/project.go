package planstore

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

//go:embed templates/*.yaml
var templates embed.FS

const (
	projectsDirName  = ".project"
	legacyDirName    = "project"
	SpecFileName     = "spec.yaml"
	TodosFileName    = "todos.yaml"
	DraftFileName    = "plan.draft.yaml"
	defaultTodosYAML = "tasks: []\n"
)

// checklistCandidates are the checklist file names accepted in a project
// directory, in preference order.
var checklistCandidates = []string{TodosFileName, "tasks.yaml", "tasks.ymal"}

// Project locates the documents of one named project under a repository root.
type Project struct {
	Root string
	Name string
}

// NewProject normalizes root: a root that is itself a .project directory is
// replaced by its parent.
func NewProject(root, name string) Project {
	root = filepath.Clean(root)
	if filepath.Base(root) == projectsDirName {
		root = filepath.Dir(root)
	}
	return Project{Root: root, Name: name}
}

// Dir is <root>/.project/<name>.
func (p Project) Dir() string {
	return filepath.Join(p.Root, projectsDirName, p.Name)
}

func (p Project) SpecPath() string {
	return filepath.Join(p.Dir(), SpecFileName)
}

// ChecklistPath returns the first existing checklist candidate, or the
// todos.yaml path when none exists yet.
func (p Project) ChecklistPath() string {
	for _, name := range checklistCandidates {
		path := filepath.Join(p.Dir(), name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return filepath.Join(p.Dir(), TodosFileName)
}

// DraftPath is where a planner writes a revised plan for the file watcher.
func (p Project) DraftPath() string {
	return filepath.Join(p.Dir(), DraftFileName)
}

func (p Project) legacyDir() string {
	return filepath.Join(p.Root, legacyDirName, p.Name)
}

// Template returns an embedded document template by file name.
func Template(name string) string {
	data, err := templates.ReadFile("templates/" + name)
	if err != nil || strings.TrimSpace(string(data)) == "" {
		if name == TodosFileName {
			return defaultTodosYAML
		}
		return ""
	}
	return string(data)
}

// EnsureLayout creates the project directory and makes sure both documents
// exist. Documents from the legacy <root>/project/<name> directory are copied
// over first; otherwise the templates are written. An empty checklist file is
// reset to the template.
func (p Project) EnsureLayout() error {
	dir := p.Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create .project dir %s: %w", dir, err)
	}

	todos := filepath.Join(dir, TodosFileName)
	raw, err := os.ReadFile(todos)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if !p.hasChecklist() {
			if err := p.seed(todos, checklistCandidates, TodosFileName); err != nil {
				return err
			}
		}
	case err != nil:
		return fmt.Errorf("failed to read %s: %w", todos, err)
	case strings.TrimSpace(string(raw)) == "":
		if err := WriteFileAtomic(todos, []byte(Template(TodosFileName))); err != nil {
			return fmt.Errorf("failed to normalize empty checklist %s: %w", todos, err)
		}
	}

	spec := p.SpecPath()
	if _, err := os.Stat(spec); errors.Is(err, os.ErrNotExist) {
		if err := p.seed(spec, []string{SpecFileName}, SpecFileName); err != nil {
			return err
		}
	}
	return nil
}

func (p Project) hasChecklist() bool {
	for _, name := range checklistCandidates[1:] {
		if _, err := os.Stat(filepath.Join(p.Dir(), name)); err == nil {
			return true
		}
	}
	return false
}

// seed copies the first legacy file among names into target, or writes the
// template when there is none.
func (p Project) seed(target string, names []string, template string) error {
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(p.legacyDir(), name))
		if err != nil {
			continue
		}
		if err := WriteFileAtomic(target, data); err != nil {
			return fmt.Errorf("failed to migrate %s: %w", name, err)
		}
		return nil
	}
	if err := WriteFileAtomic(target, []byte(Template(template))); err != nil {
		return fmt.Errorf("failed to initialize %s: %w", filepath.Base(target), err)
	}
	return nil
}
