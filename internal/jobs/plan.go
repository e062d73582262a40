package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kastheco/orchestra/config/planparser"
	"github.com/kastheco/orchestra/config/planstore"
	"github.com/kastheco/orchestra/session"
	"gopkg.in/yaml.v3"
)

// Deps are what the plan jobs need from the outside.
type Deps struct {
	Worker session.Worker
	// TempDir holds fan-out files; empty means os.TempDir().
	TempDir string
	// Parallel caps concurrent fan-out workers; zero means unbounded.
	Parallel int
}

func toYAML(v any) (string, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("serialize failed: %w", err)
	}
	return string(data), nil
}

// mergeBack fills the empty fields of each original task from the worker's
// version of it. Tasks are matched by name, falling back to position.
func mergeBack(originals, fromWorker []planstore.TaskItem) []planstore.TaskItem {
	out := make([]planstore.TaskItem, len(originals))
	for i, orig := range originals {
		out[i] = orig
		if idx, ok := planstore.MatchTask(fromWorker, orig.Name, i); ok {
			out[i].FillEmpty(fromWorker[idx])
		}
	}
	return out
}

// EnrichAndGenerate completes the plan with one worker call, then asks one
// worker per task for its checklist items and joins them in plan order.
func EnrichAndGenerate(d Deps, plan planstore.PlanDocument) Func {
	return func(ctx context.Context, report Report) (Outcome, error) {
		if len(plan.Tasks) == 0 {
			return Outcome{}, errors.New("plan has no tasks")
		}
		domains := plan.DomainText()
		planYAML, err := toYAML(plan)
		if err != nil {
			return Outcome{}, err
		}

		report(fmt.Sprintf("enriching %d tasks", len(plan.Tasks)))
		raw, err := session.Ask(ctx, d.Worker, "enrich", session.EnrichPrompt(planYAML, domains))
		if err != nil {
			return Outcome{}, err
		}
		enriched, err := planparser.ParsePlan(raw)
		if err != nil {
			return Outcome{}, err
		}
		next := plan
		next.Tasks = mergeBack(plan.Tasks, enriched.Tasks)
		report("plan enriched")

		nextYAML, err := toYAML(next)
		if err != nil {
			return Outcome{}, err
		}
		report(fmt.Sprintf("generating checklist with %d workers", len(next.Tasks)))
		fan := FanOut[[]planstore.TaskItem]{
			Label: "checklist",
			Dir:   d.TempDir,
			Limit: d.Parallel,
			Work: func(ctx context.Context, index int, outPath string) error {
				taskYAML, err := toYAML(next.Tasks[index])
				if err != nil {
					return err
				}
				res, err := d.Worker.Exec(ctx, session.Call{
					WorkerID: index,
					Prompt:   session.ChecklistItemPrompt(taskYAML, nextYAML, domains),
					OutPath:  outPath,
				})
				if err != nil {
					return err
				}
				if res.ExitCode != 0 {
					return fmt.Errorf("exited with code %d", res.ExitCode)
				}
				report(fmt.Sprintf("worker %d finished: %s", index, next.Tasks[index].Name))
				return nil
			},
			Decode: func(_ int, data []byte) ([]planstore.TaskItem, error) {
				return planparser.ParseGeneratedTasks(string(data))
			},
		}
		batches, err := fan.Run(ctx, len(next.Tasks))
		if err != nil {
			return Outcome{}, err
		}

		var checklist []planstore.TaskItem
		for _, b := range batches {
			checklist = append(checklist, b...)
		}
		if len(checklist) == 0 {
			return Outcome{}, planparser.ErrNoTasks
		}
		report(fmt.Sprintf("generated %d checklist items", len(checklist)))
		return Outcome{Plan: &next, Checklist: checklist}, nil
	}
}

// FillTasks asks the worker to complete operator drafts. A draft the worker
// dropped is kept as typed.
func FillTasks(d Deps, plan planstore.PlanDocument, drafts []planstore.TaskItem) Func {
	return func(ctx context.Context, report Report) (Outcome, error) {
		if len(drafts) == 0 {
			return Outcome{}, errors.New("no drafts to fill")
		}
		draftsYAML, err := toYAML(planstore.ChecklistDocument{Tasks: drafts})
		if err != nil {
			return Outcome{}, err
		}
		planYAML, err := toYAML(plan)
		if err != nil {
			return Outcome{}, err
		}

		report(fmt.Sprintf("filling %d drafts", len(drafts)))
		raw, err := session.Ask(ctx, d.Worker, "fill", session.FillPrompt(draftsYAML, planYAML, plan.DomainText()))
		if err != nil {
			return Outcome{}, err
		}
		filled, err := planparser.ParseGeneratedTasks(raw)
		if err != nil {
			return Outcome{}, err
		}
		report(fmt.Sprintf("worker returned %d tasks", len(filled)))
		return Outcome{Tasks: mergeBack(drafts, filled)}, nil
	}
}

// ConversationTurn sends one operator message about the plan. The worker is
// told to write a revised plan to draftPath when asked for changes.
func ConversationTurn(d Deps, plan planstore.PlanDocument, history []session.Turn, message, draftPath string) Func {
	return func(ctx context.Context, report Report) (Outcome, error) {
		planYAML, err := toYAML(plan)
		if err != nil {
			return Outcome{}, err
		}
		report("waiting for reply")
		raw, err := session.Ask(ctx, d.Worker, "chat", session.ChatPrompt(planYAML, history, message, draftPath))
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Reply: strings.TrimSpace(raw)}, nil
	}
}

// WatchDraft waits for the draft file to be rewritten and decodes it as the
// new plan. A draft without tasks is rejected.
func WatchDraft(w Watch) Func {
	return func(ctx context.Context, report Report) (Outcome, error) {
		data, err := w.Wait(ctx, report)
		if err != nil {
			return Outcome{}, err
		}
		report("draft changed, parsing")
		plan, err := planparser.ParsePlan(string(data))
		if err != nil {
			return Outcome{}, err
		}
		if len(plan.Tasks) == 0 {
			return Outcome{}, errors.New("draft plan has no tasks")
		}
		return Outcome{Plan: &plan}, nil
	}
}
