package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/kastheco/orchestra/config/planparser"
	"github.com/kastheco/orchestra/config/planstore"
	"github.com/kastheco/orchestra/log"
	"github.com/kastheco/orchestra/session"
	"github.com/kastheco/orchestra/ui/overlay"
	"github.com/spf13/cobra"
)

// executeMakeSpec asks the worker for a spec built from the answers and
// saves it as the project's plan.
func executeMakeSpec(ctx context.Context, w session.Worker, project planstore.Project, a session.SpecAnswers) (planstore.PlanDocument, error) {
	prompt := session.MakeSpecPrompt(a, planstore.Template(planstore.SpecFileName))
	raw, err := session.Ask(ctx, w, "make_spec", prompt)
	if err != nil {
		return planstore.PlanDocument{}, err
	}
	plan, err := planparser.ParsePlan(raw)
	if err != nil {
		return planstore.PlanDocument{}, err
	}
	if plan.Name == "" {
		plan.Name = a.Name
	}
	if err := planstore.SavePlan(project.SpecPath(), plan); err != nil {
		return planstore.PlanDocument{}, err
	}
	return plan, nil
}

// executeFillSpec replaces the plan's tasks with the items parsed from the
// free-text file at inputPath.
func executeFillSpec(project planstore.Project, inputPath string) (int, error) {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", inputPath, err)
	}
	tasks := planparser.ParseTasks(string(data))
	if len(tasks) == 0 {
		return 0, fmt.Errorf("no tasks parsed from %s, start each task with a '#' line", inputPath)
	}
	plan, status := planstore.LoadPlan(project.SpecPath())
	if status.Failed {
		log.WarningLog.Printf("fill-spec: %s", status.Message)
	}
	plan.Tasks = tasks
	if err := planstore.SavePlan(project.SpecPath(), plan); err != nil {
		return 0, err
	}
	return len(tasks), nil
}

// executeMakeTodos asks the worker for a checklist batch derived from the
// spec and appends it to the checklist.
func executeMakeTodos(ctx context.Context, w session.Worker, project planstore.Project) (int, error) {
	raw, err := os.ReadFile(project.SpecPath())
	if err != nil {
		return 0, fmt.Errorf("failed to read spec: %w", err)
	}
	plan, err := planstore.DecodePlan(string(raw))
	if err != nil {
		return 0, fmt.Errorf("failed to parse spec: %w", err)
	}

	prompt := session.MakeTodosPrompt(string(raw), plan.DomainText(), planstore.Template(planstore.TodosFileName))
	out, err := session.Ask(ctx, w, "make_todos", prompt)
	if err != nil {
		return 0, err
	}
	batch, err := planparser.ParseGeneratedTasks(out)
	if err != nil {
		return 0, err
	}
	if len(batch) == 0 {
		return 0, planparser.ErrNoTasks
	}

	checklist, status := planstore.LoadChecklist(project.ChecklistPath())
	if status.Failed {
		log.WarningLog.Printf("make-todos: %s", status.Message)
	}
	checklist.Append(batch)
	if err := planstore.SaveChecklist(project.ChecklistPath(), checklist); err != nil {
		return 0, err
	}
	return len(batch), nil
}

func notBlank(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("required")
	}
	return nil
}

// askSpecAnswers runs the make-spec questionnaire.
func askSpecAnswers() (session.SpecAnswers, error) {
	var a session.SpecAnswers
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Project name").Value(&a.Name).Validate(notBlank),
			huh.NewText().Title("Description").Description("what the project does").Value(&a.Description).Validate(notBlank),
		),
		huh.NewGroup(
			huh.NewInput().Title("Framework").Placeholder("e.g. bubbletea, gin").Value(&a.Framework),
			huh.NewInput().Title("Libraries").Placeholder("comma separated").Value(&a.Libraries),
			huh.NewText().Title("Wanted features").Value(&a.WantedFeature).Validate(notBlank),
		),
	).WithTheme(overlay.ThemeRosePine())
	if err := form.Run(); err != nil {
		return session.SpecAnswers{}, err
	}
	return a, nil
}

// workerFlags registers the worker selection flags shared by the worker
// commands.
func workerFlags(c *cobra.Command, opts *WorkerOptions) {
	c.Flags().StringVar(&opts.CodexBin, "codex-bin", "", "worker binary (overrides ai.model)")
	c.Flags().BoolVar(&opts.DryRun, "dry-run", false, "answer with a canned reply instead of running the worker")
}

func NewMakeSpecCmd(projectFlag *string) *cobra.Command {
	var wopts WorkerOptions
	c := &cobra.Command{
		Use:   "make-spec",
		Short: "answer a questionnaire and let the worker write spec.yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Initialize(false)
			defer log.Close()

			env, err := ResolveEnv(*projectFlag)
			if err != nil {
				return err
			}
			answers, err := askSpecAnswers()
			if err != nil {
				return err
			}
			wopts.Dir = env.Root
			plan, err := executeMakeSpec(cmd.Context(), NewWorker(env.Config, wopts, MakeExecutor()), env.Project, answers)
			if err != nil {
				return err
			}
			fmt.Printf("wrote %s (%d tasks)\n", env.Project.SpecPath(), len(plan.Tasks))
			return nil
		},
	}
	workerFlags(c, &wopts)
	return c
}

func NewFillSpecCmd(projectFlag *string) *cobra.Command {
	var inputPath string
	c := &cobra.Command{
		Use:   "fill-spec",
		Short: "replace the plan tasks with the tasks written in a text file",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Initialize(false)
			defer log.Close()

			env, err := ResolveEnv(*projectFlag)
			if err != nil {
				return err
			}
			n, err := executeFillSpec(env.Project, inputPath)
			if err != nil {
				return err
			}
			fmt.Printf("wrote %d tasks to %s\n", n, env.Project.SpecPath())
			return nil
		},
	}
	c.Flags().StringVar(&inputPath, "input-path", "input.txt", "free-text task file")
	return c
}

func NewMakeTodosCmd(projectFlag *string) *cobra.Command {
	var wopts WorkerOptions
	c := &cobra.Command{
		Use:   "make-todos",
		Short: "let the worker append checklist items derived from spec.yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Initialize(false)
			defer log.Close()

			env, err := ResolveEnv(*projectFlag)
			if err != nil {
				return err
			}
			wopts.Dir = env.Root
			n, err := executeMakeTodos(cmd.Context(), NewWorker(env.Config, wopts, MakeExecutor()), env.Project)
			if err != nil {
				return err
			}
			fmt.Printf("appended %d items to %s\n", n, env.Project.ChecklistPath())
			return nil
		},
	}
	workerFlags(c, &wopts)
	return c
}
