package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/kastheco/orchestra/log"
	"github.com/kastheco/orchestra/session"
	"github.com/kastheco/orchestra/session/git"
	"github.com/spf13/cobra"
)

// CheckLastMessage is the description of the change a check-last review
// works in.
const CheckLastMessage = "refactor: check_last"

// executeCheckLast opens a new jj change in dir and asks the worker to
// review and refactor the previous one. It returns the worker's summary.
func executeCheckLast(ctx context.Context, w session.Worker, e Executor, dir string) (string, error) {
	if err := git.NewChange(e, dir, CheckLastMessage); err != nil {
		return "", err
	}
	reply, err := session.Ask(ctx, w, "check_last", session.CheckLastPrompt())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

func NewCheckLastCmd(projectFlag *string) *cobra.Command {
	var wopts WorkerOptions
	c := &cobra.Command{
		Use:   "check-last",
		Short: "start a refactor change and let the worker review the last one",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Initialize(false)
			defer log.Close()

			env, err := ResolveEnv(*projectFlag)
			if err != nil {
				return err
			}
			executor := MakeExecutor()
			wopts.Dir = env.Root
			summary, err := executeCheckLast(cmd.Context(), NewWorker(env.Config, wopts, executor), executor, env.Root)
			if err != nil {
				return err
			}
			fmt.Println(summary)
			return nil
		},
	}
	workerFlags(c, &wopts)
	return c
}
