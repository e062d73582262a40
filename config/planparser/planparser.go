// Package planparser turns operator free text and worker output into plan
// structures.
package planparser

import (
	"strings"

	"github.com/kastheco/orchestra/config/planstore"
)

// TaskType is the type given to every item parsed from free text.
const TaskType = "action"

const (
	namePrefix = "#"
	stepPrefix = ">"
	rulePrefix = "-"
)

// ParseTasks parses the request-input grammar:
//
//	# name     opens a new item
//	> text     appends a step to the current item
//	- text     appends a rule to the current item
//
// Lines are trimmed first. Blank lines and lines with any other prefix are
// ignored, as are steps and rules before the first item. Items with an empty
// name are dropped. Parsing never fails; input without a '#' line yields no
// items.
func ParseTasks(raw string) []planstore.TaskItem {
	var (
		tasks   []planstore.TaskItem
		current *planstore.TaskItem
	)
	flush := func() {
		if current != nil && strings.TrimSpace(current.Name) != "" {
			tasks = append(tasks, *current)
		}
		current = nil
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if rest, ok := strings.CutPrefix(line, namePrefix); ok {
			flush()
			if name := strings.TrimSpace(rest); name != "" {
				current = &planstore.TaskItem{Name: name, Type: TaskType}
			}
			continue
		}
		if current == nil {
			continue
		}
		if rest, ok := strings.CutPrefix(line, stepPrefix); ok {
			if step := strings.TrimSpace(rest); step != "" {
				current.Step = append(current.Step, step)
			}
			continue
		}
		if rest, ok := strings.CutPrefix(line, rulePrefix); ok {
			if rule := strings.TrimSpace(rest); rule != "" {
				current.Rule = append(current.Rule, rule)
			}
		}
	}
	flush()
	return tasks
}
