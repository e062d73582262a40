package session

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"github.com/kastheco/orchestra/config/planstore"
	"github.com/kastheco/orchestra/log"
)

//go:embed prompts/*.txt
var prompts embed.FS

// PostpixPathEnv overrides the embedded result-format prompt with a file.
const PostpixPathEnv = "ORCHESTRA_POSTPIX_PROMPT_PATH"

// TodoBody is the placeholder in the todos prompt replaced by the item.
const TodoBody = "{{body}}"

func embedded(name string) string {
	data, err := prompts.ReadFile("prompts/" + name)
	if err != nil {
		log.ErrorLog.Printf("missing embedded prompt %s: %v", name, err)
		return ""
	}
	return string(data)
}

// PostpixPrompt returns the result-format instructions appended to every
// batch prompt.
func PostpixPrompt() string {
	if path := os.Getenv(PostpixPathEnv); path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			return string(data)
		}
		log.WarningLog.Printf("failed to read %s=%s, using the embedded prompt: %v", PostpixPathEnv, path, err)
	}
	return embedded("postpix.txt")
}

// BuildPrompt frames a batch request for one worker.
func BuildPrompt(protocol, callbackURL, message string) string {
	return fmt.Sprintf("Server protocol is %s. Callback URL is %s. Do not perform network calls yourself; "+
		"only return the requested formatted output. Task: %s", protocol, callbackURL, message)
}

// WithPostpix appends the todos prompt, filled with body, and the result
// format instructions to base.
func WithPostpix(base, body string) string {
	todos := strings.ReplaceAll(embedded("todos.txt"), TodoBody, body)
	return base + "\n\n" + todos + "\n\n" + PostpixPrompt()
}

// TaskMessage renders a checklist item as the YAML list entry a worker is
// asked to implement.
func TaskMessage(t planstore.TaskItem) string {
	list := func(values []string) string {
		lines := make([]string, len(values))
		for i, v := range values {
			lines[i] = "    - " + v
		}
		return strings.Join(lines, "\n")
	}
	return fmt.Sprintf("  - name: %s\n    type: %s\n    scope:\n%s\n    rule:\n%s\n    step:\n%s",
		t.Name, t.Type, list(t.Scope), list(t.Rule), list(t.Step))
}

const yamlOnly = `Output rules:
- output pure YAML only, no prose
- item keys are name, type, domain, depends_on, scope, state, rule, step
- type is "action" or "calc"
- every domain value must come from allowed_domains`

// MakeTodosPrompt asks for checklist items to append to the todos file.
func MakeTodosPrompt(specYAML, domainText, template string) string {
	return fmt.Sprintf(`Write the tasks to append to todos.yaml, based on spec.yaml.
%s
- the only top-level key is tasks
- do not rewrite the existing todos, output only the tasks to append

allowed_domains: [%s]

todos template:
%s

spec.yaml:
%s`, yamlOnly, domainText, template, specYAML)
}

// PostReviewPrompt asks for a review of the finished batch and for new
// features to record in the spec.
func PostReviewPrompt(specYAML, domainText string) string {
	return fmt.Sprintf(`Every parallel task has finished. Inspect the whole source tree and assess what could be refactored.
Then list the features to add to features.feature of spec.yaml.
Rules:
- write every feature as <domain>.<feature>, for example message.send_note
- prefer domains from features.domain of spec.yaml
- remove duplicate features
Output format:
- pure YAML only
- review: string
- feature: string[]

allowed_domains: [%s]

spec.yaml:
%s`, domainText, specYAML)
}

// SpecAnswers are the questionnaire answers of make-spec.
type SpecAnswers struct {
	Name          string
	Description   string
	Framework     string
	Libraries     string
	WantedFeature string
}

// MakeSpecPrompt asks for a complete spec.yaml built from the answers.
func MakeSpecPrompt(a SpecAnswers, template string) string {
	return fmt.Sprintf(`Write spec.yaml for a new project from the answers below.
%s
- follow the layout of the template exactly
- fill at least 3 tasks
- declare the domains under features.domain and use them in every task

name: %s
description: %s
framework: %s
libraries: %s
wanted_feature: %s

spec template:
%s`, yamlOnly, a.Name, a.Description, a.Framework, a.Libraries, a.WantedFeature, template)
}

// CheckLastPrompt asks for a refactoring pass over the latest change.
func CheckLastPrompt() string {
	return embedded("check_last.txt") + `
Additional rules:
- only modify the working tree of the refactor change
- summarize the key changes briefly when done`
}

// EnrichPrompt asks the worker to complete every task of the plan.
func EnrichPrompt(planYAML, domainText string) string {
	return fmt.Sprintf(`Complete the plan below. For every task:
- choose domain from allowed_domains
- fill depends_on with the names of tasks it needs
- fill state with the states the task touches
- keep name, scope, rule and step as written
Return the whole plan with the same top-level keys.
%s

allowed_domains: [%s]

plan:
%s`, yamlOnly, domainText, planYAML)
}

// ChecklistItemPrompt asks for the checklist items of a single plan task.
func ChecklistItemPrompt(taskYAML, planYAML, domainText string) string {
	return fmt.Sprintf(`Break the task below into checklist items that can each be implemented on their own.
%s
- the only top-level key is tasks
- keep the task's domain and scope

allowed_domains: [%s]

task:
%s

plan:
%s`, yamlOnly, domainText, taskYAML, planYAML)
}

// FillPrompt asks the worker to complete operator drafts.
func FillPrompt(draftsYAML, planYAML, domainText string) string {
	return fmt.Sprintf(`The operator drafted the tasks below. Fill in type, domain, scope and state for each one.
Keep every name, rule and step exactly as written and keep the order.
%s
- the only top-level key is tasks

allowed_domains: [%s]

drafts:
%s

current plan:
%s`, yamlOnly, domainText, draftsYAML, planYAML)
}

// Turn is one message of a plan conversation.
type Turn struct {
	Role string
	Text string
}

// ChatPrompt continues a plan conversation.
func ChatPrompt(planYAML string, history []Turn, message, draftPath string) string {
	var sb strings.Builder
	sb.WriteString("You are helping an operator refine the plan below. Answer in short markdown.\n")
	sb.WriteString("If the operator asks for changes, write the complete revised plan as YAML to ")
	sb.WriteString(draftPath)
	sb.WriteString(" and say so. Never edit the plan file itself.\n\nplan:\n")
	sb.WriteString(planYAML)
	if len(history) > 0 {
		sb.WriteString("\n\nconversation so far:\n")
		for _, t := range history {
			fmt.Fprintf(&sb, "%s: %s\n", t.Role, t.Text)
		}
	}
	sb.WriteString("\noperator: ")
	sb.WriteString(message)
	return sb.String()
}

// PlannerPrompt is the opening instruction of an interactive planner.
func PlannerPrompt(specPath, draftPath string) string {
	return fmt.Sprintf("Read the plan in %s and discuss it with me. When we agree on changes, "+
		"write the complete revised plan as YAML to %s. Do not edit %s directly.",
		specPath, draftPath, specPath)
}
