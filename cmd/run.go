package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/kastheco/orchestra/internal/batch"
	"github.com/kastheco/orchestra/internal/server"
	"github.com/kastheco/orchestra/log"
	"github.com/kastheco/orchestra/session"
	"github.com/spf13/cobra"
)

// RunParallelOptions are the arguments of run-parallel.
type RunParallelOptions struct {
	ServerURL string
	N         int
	Msgs      []string
	SendOnly  bool
}

// executeRunParallel runs opts.N workers and prints one line per finished
// worker to out.
func executeRunParallel(ctx context.Context, out io.Writer, opts RunParallelOptions, w session.Worker, poster batch.Poster) error {
	if opts.N < 1 {
		return batch.ErrNoWorkers
	}
	if len(opts.Msgs) == 0 {
		return batch.ErrNoMessages
	}

	events := make(chan batch.RowEvent)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range events {
			if ev.Kind == batch.RowDone {
				fmt.Fprintf(out, "worker %d: %s\n", ev.Index, ev.Result)
			}
		}
	}()

	r := &batch.Runner{
		Worker:    w,
		Poster:    poster,
		ServerURL: opts.ServerURL,
		SendOnly:  opts.SendOnly,
		Events:    events,
	}
	err := r.Run(ctx, opts.N, opts.Msgs)
	close(events)
	<-done
	return err
}

func NewRunParallelCmd(projectFlag *string) *cobra.Command {
	var (
		opts     RunParallelOptions
		codexBin string
		dryRun   bool
	)
	runCmd := &cobra.Command{
		Use:     "run-parallel",
		Aliases: []string{"run-paralles"},
		Short:   "run N workers and post every result to the callback server",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Initialize(false)
			defer log.Close()

			env, err := ResolveEnv(*projectFlag)
			if err != nil {
				return err
			}
			if opts.ServerURL == "" {
				opts.ServerURL = env.Config.Server.BaseURL()
			}
			w := NewWorker(env.Config, WorkerOptions{CodexBin: codexBin, DryRun: dryRun, Dir: env.Root}, MakeExecutor())
			return executeRunParallel(cmd.Context(), os.Stdout, opts, w, server.NewClient())
		},
	}
	runCmd.Flags().StringVar(&opts.ServerURL, "server-url", "", "callback server base url (default from config)")
	runCmd.Flags().IntVar(&opts.N, "n", 1, "number of workers")
	runCmd.Flags().StringArrayVar(&opts.Msgs, "msg", nil, "request text; worker i gets msg[i % len]")
	runCmd.Flags().BoolVar(&opts.SendOnly, "send-only", false, "post without waiting for a formatted result")
	runCmd.Flags().StringVar(&codexBin, "codex-bin", "", "worker binary (overrides ai.model)")
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "answer with a canned reply instead of running the worker")
	return runCmd
}
