package planstore

import (
	"slices"
	"strings"
)

// ItemDelimiter separates list values while a list field is edited as one
// line of text.
const ItemDelimiter = ";"

// FormFields are the editable TaskItem fields, in cursor order.
var FormFields = [...]string{"name", "type", "scope", "rule", "step"}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}

// SplitItems splits an edited list field on ';', trimming values and
// dropping empty ones.
func SplitItems(input string) []string {
	var out []string
	for _, part := range strings.Split(input, ItemDelimiter) {
		if v := trimmed(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// JoinItems renders a list field for editing.
func JoinItems(values []string) string {
	return strings.Join(values, ItemDelimiter+" ")
}

// FieldValue returns the edit buffer seed for form field i.
func (t TaskItem) FieldValue(i int) string {
	switch i {
	case 0:
		return t.Name
	case 1:
		return t.Type
	case 2:
		return JoinItems(t.Scope)
	case 3:
		return JoinItems(t.Rule)
	case 4:
		return JoinItems(t.Step)
	}
	return ""
}

// SetField commits an edit buffer to form field i.
func (t *TaskItem) SetField(i int, buffer string) {
	switch i {
	case 0:
		t.Name = trimmed(buffer)
	case 1:
		t.Type = trimmed(buffer)
	case 2:
		t.Scope = SplitItems(buffer)
	case 3:
		t.Rule = SplitItems(buffer)
	case 4:
		t.Step = SplitItems(buffer)
	}
}

// MatchTask finds the entry of tasks that corresponds to name. A unique name
// match wins; a missing or duplicated name falls back to the positional
// index when it is in range.
func MatchTask(tasks []TaskItem, name string, index int) (int, bool) {
	found := -1
	for i, t := range tasks {
		if t.Name != name {
			continue
		}
		if found >= 0 {
			found = -1
			break
		}
		found = i
	}
	if found >= 0 && name != "" {
		return found, true
	}
	if index >= 0 && index < len(tasks) {
		return index, true
	}
	return -1, false
}

// FillEmpty copies every field of src that is empty in t.
func (t *TaskItem) FillEmpty(src TaskItem) {
	if t.Name == "" {
		t.Name = src.Name
	}
	if t.Type == "" {
		t.Type = src.Type
	}
	fill := func(dst *[]string, from []string) {
		if len(*dst) == 0 && len(from) > 0 {
			*dst = append([]string(nil), from...)
		}
	}
	fill(&t.Domain, src.Domain)
	fill(&t.DependsOn, src.DependsOn)
	fill(&t.Scope, src.Scope)
	fill(&t.State, src.State)
	fill(&t.Rule, src.Rule)
	fill(&t.Step, src.Step)
}

// Clone returns a copy of t that shares no slices with it.
func (t TaskItem) Clone() TaskItem {
	t.Domain = slices.Clone(t.Domain)
	t.DependsOn = slices.Clone(t.DependsOn)
	t.Scope = slices.Clone(t.Scope)
	t.State = slices.Clone(t.State)
	t.Rule = slices.Clone(t.Rule)
	t.Step = slices.Clone(t.Step)
	return t
}

// Clone returns a deep copy of p, safe to hand to another goroutine.
func (p PlanDocument) Clone() PlanDocument {
	p.Rule = slices.Clone(p.Rule)
	p.Features.Domain = slices.Clone(p.Features.Domain)
	p.Features.Feature = slices.Clone(p.Features.Feature)
	p.Tasks = cloneTasks(p.Tasks)
	return p
}

func cloneTasks(tasks []TaskItem) []TaskItem {
	if tasks == nil {
		return nil
	}
	out := make([]TaskItem, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}

// Rebase merges incoming, derived from base, into current, which may have
// been edited since base was taken. A field that differs between current and
// base keeps its current value; every other field takes the incoming one.
// Tasks appended to current after base was taken follow the merged list.
func Rebase(base, current, incoming []TaskItem) []TaskItem {
	used := make([]bool, len(base))
	out := make([]TaskItem, 0, len(incoming)+max(len(current)-len(base), 0))
	for k, in := range incoming {
		i := rebaseIndex(base, used, in.Name, k)
		if i < 0 || i >= len(current) {
			out = append(out, in.Clone())
			continue
		}
		used[i] = true
		out = append(out, mergeTask(base[i], current[i], in))
	}
	if len(current) > len(base) {
		out = append(out, cloneTasks(current[len(base):])...)
	}
	return out
}

// rebaseIndex finds the unused base entry for an incoming task: the first
// name match, else the same position.
func rebaseIndex(base []TaskItem, used []bool, name string, k int) int {
	if name != "" {
		for i, t := range base {
			if !used[i] && t.Name == name {
				return i
			}
		}
	}
	if k < len(base) && !used[k] {
		return k
	}
	return -1
}

func mergeTask(base, current, incoming TaskItem) TaskItem {
	out := incoming.Clone()
	if current.Name != base.Name {
		out.Name = current.Name
	}
	if current.Type != base.Type {
		out.Type = current.Type
	}
	keep := func(dst *[]string, cur, was []string) {
		if !slices.Equal(cur, was) {
			*dst = slices.Clone(cur)
		}
	}
	keep(&out.Domain, current.Domain, base.Domain)
	keep(&out.DependsOn, current.DependsOn, base.DependsOn)
	keep(&out.Scope, current.Scope, base.Scope)
	keep(&out.State, current.State, base.State)
	keep(&out.Rule, current.Rule, base.Rule)
	keep(&out.Step, current.Step, base.Step)
	return out
}

// AllowedDomains returns the declared domain vocabulary of the plan.
func (p PlanDocument) AllowedDomains() []string {
	var out []string
	for _, d := range p.Features.Domain {
		if v := trimmed(d); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// DomainText renders the vocabulary for a prompt.
func (p PlanDocument) DomainText() string {
	domains := p.AllowedDomains()
	if len(domains) == 0 {
		return "(none)"
	}
	return strings.Join(domains, ", ")
}
