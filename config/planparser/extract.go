package planparser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kastheco/orchestra/config/planstore"
	"gopkg.in/yaml.v3"
)

const (
	yamlFence = "```yaml"
	bareFence = "```"
)

// ErrNoTasks is returned when worker output parses but carries no tasks.
var ErrNoTasks = errors.New("worker returned no tasks")

// ExtractYAML picks the YAML candidate out of worker output: the body of the
// first ```yaml fence, else the first bare ``` fence, else the trimmed text.
// An unclosed fence is ignored.
func ExtractYAML(raw string) string {
	if body, ok := fenced(raw, yamlFence); ok {
		return body
	}
	if body, ok := fenced(raw, bareFence); ok {
		return body
	}
	return strings.TrimSpace(raw)
}

func fenced(raw, open string) (string, bool) {
	_, rest, ok := strings.Cut(raw, open)
	if !ok {
		return "", false
	}
	body, _, ok := strings.Cut(rest, bareFence)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(body), true
}

// ParseGeneratedTasks decodes a checklist batch from worker output. The
// "tasks" key is preferred over the legacy "todos" key.
func ParseGeneratedTasks(raw string) ([]planstore.TaskItem, error) {
	doc, err := planstore.DecodeChecklist(ExtractYAML(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse generated todos yaml: %w", err)
	}
	return doc.Tasks, nil
}

// ParsePlan decodes a whole plan document from worker output.
func ParsePlan(raw string) (planstore.PlanDocument, error) {
	doc, err := planstore.DecodePlan(ExtractYAML(raw))
	if err != nil {
		return planstore.PlanDocument{}, fmt.Errorf("failed to parse generated spec yaml: %w", err)
	}
	return doc, nil
}

// Review is the post-run review a worker returns after a batch finishes.
type Review struct {
	Review  string   `yaml:"review"`
	Feature []string `yaml:"feature"`
}

// ParseReview decodes a post-run review from worker output.
func ParseReview(raw string) (Review, error) {
	var r Review
	if err := yaml.Unmarshal([]byte(ExtractYAML(raw)), &r); err != nil {
		return Review{}, fmt.Errorf("failed to parse post-review yaml: %w", err)
	}
	r.Review = strings.TrimSpace(r.Review)
	return r, nil
}
