package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/huh"
	"github.com/kastheco/orchestra/app"
	cmd2 "github.com/kastheco/orchestra/cmd"
	"github.com/kastheco/orchestra/config"
	"github.com/kastheco/orchestra/config/auditlog"
	"github.com/kastheco/orchestra/internal/batch"
	sentrypkg "github.com/kastheco/orchestra/internal/sentry"
	"github.com/kastheco/orchestra/internal/server"
	"github.com/kastheco/orchestra/log"
	"github.com/kastheco/orchestra/session/git"
	"github.com/kastheco/orchestra/ui"
	"github.com/kastheco/orchestra/ui/overlay"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	version     = "0.1.0"
	projectFlag string

	errNoRepo = errors.New("orc must be run from within a git repository")
)

// consoleOptions are the flags shared by the root command and console.
type consoleOptions struct {
	host     string
	port     int
	codexBin string
	dryRun   bool
	sendOnly bool
	addMsgs  []string
}

func consoleFlags(c *cobra.Command, opts *consoleOptions, sendOnly bool) {
	c.Flags().StringVar(&opts.host, "host", "", "callback server host (default from config)")
	c.Flags().IntVar(&opts.port, "port", 0, "callback server port (default from config)")
	c.Flags().StringVar(&opts.codexBin, "codex-bin", "", "worker binary (overrides ai.model)")
	c.Flags().BoolVar(&opts.dryRun, "dry-run", false, "batch workers answer with a canned reply")
	c.Flags().BoolVar(&opts.sendOnly, "send-only", sendOnly, "post results without waiting for a formatted answer")
	c.Flags().StringArrayVar(&opts.addMsgs, "add-msg", nil, "extra request appended to every run")
}

// ensureRepo offers to create a repository in cwd when there is none.
func ensureRepo(cwd string) error {
	if _, ok := git.FindRoot(cwd); ok {
		return nil
	}
	create := false
	confirm := huh.NewConfirm().
		Title(fmt.Sprintf("%s is not a git repository. Initialize one?", cwd)).
		Affirmative("Yes").
		Negative("No").
		Value(&create)
	if err := huh.NewForm(huh.NewGroup(confirm)).WithTheme(overlay.ThemeRosePine()).Run(); err != nil {
		return err
	}
	if !create {
		return errNoRepo
	}
	return git.Init(cwd)
}

func runConsole(cmd *cobra.Command, opts consoleOptions) error {
	cwd, err := filepath.Abs(".")
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}
	if err := ensureRepo(cwd); err != nil {
		return err
	}

	env, err := cmd2.ResolveEnv(projectFlag)
	if err != nil {
		return err
	}
	cfg := env.Config

	if err := sentrypkg.Init(version, sentrypkg.Options{
		DSN:         cfg.Telemetry.SentryDSN,
		Environment: cfg.Telemetry.Environment,
		Enabled:     cfg.Telemetry.Enabled,
	}); err != nil {
		// Non-fatal: the console runs without crash reporting.
		_ = err
	}
	defer sentrypkg.Flush()
	defer sentrypkg.RecoverPanic()

	log.Initialize(false, sentrypkg.IsEnabled())
	defer log.Close()

	ai := cfg.ResolveAI(opts.codexBin)
	sentrypkg.SetContext(env.Project.Name, ai.Model, ai.Auto)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	audit, err := auditlog.Open(cfg.Audit.Enabled, cfg.AuditPath())
	if err != nil {
		log.WarningLog.Printf("audit log disabled: %v", err)
		audit = auditlog.NopLogger()
	}
	defer audit.Close()

	style, err := config.LoadStyle(env.Root)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		log.WarningLog.Printf("failed to load style, using defaults: %v", err)
	}

	host, port := cfg.Server.Host, cfg.Server.Port
	if cmd.Flags().Changed("host") {
		host = opts.host
	}
	if cmd.Flags().Changed("port") {
		port = opts.port
	}
	srv := server.New(host, port, server.WithAudit(env.Project.Name, audit))
	if err := srv.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := srv.Shutdown(context.Background()); err != nil {
			log.ErrorLog.Printf("failed to stop callback server: %v", err)
		}
	}()

	executor := cmd2.MakeExecutor()
	worker := cmd2.NewWorker(cfg, cmd2.WorkerOptions{CodexBin: opts.codexBin, Dir: env.Root}, executor)
	batchWorker := cmd2.NewWorker(cfg, cmd2.WorkerOptions{CodexBin: opts.codexBin, DryRun: opts.dryRun, Dir: env.Root}, executor)

	rows := make(chan batch.RowEvent)
	trigger := batch.NewTrigger()
	load := batch.ChecklistLoader(env.Project.ChecklistPath())
	sess := &batch.Session{
		Runner: &batch.Runner{
			Worker:    batchWorker,
			Poster:    server.NewClient(),
			ServerURL: srv.BaseURL(),
			SendOnly:  opts.sendOnly,
			Events:    rows,
			Audit:     audit,
			Project:   env.Project.Name,
		},
		Trigger:  trigger,
		Load:     load,
		Extra:    opts.addMsgs,
		SpecPath: env.Project.SpecPath(),
		Reviewer: worker,
	}
	requests := func() ([]string, error) {
		msgs, err := load()
		if err != nil {
			return nil, err
		}
		return append(msgs, opts.addMsgs...), nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		return sess.Serve(gctx)
	})
	g.Go(func() error {
		defer cancel()
		return app.Run(gctx, app.Options{
			Config:   cfg,
			Project:  env.Project,
			Theme:    ui.NewTheme(style),
			Worker:   worker,
			CmdExec:  executor,
			Audit:    audit,
			Trigger:  trigger,
			Rows:     rows,
			Requests: requests,
		})
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	results := srv.Results()
	fmt.Printf("received_results=%d\n", len(results))
	for _, r := range results {
		fmt.Println(r.SummaryLine())
	}
	return nil
}

var (
	rootOpts    consoleOptions
	consoleOpts consoleOptions

	rootCmd = &cobra.Command{
		Use:           "orc",
		Short:         "orc - plan a project, fan it out to codex workers and collect the results",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole(cmd, rootOpts)
		},
	}

	consoleCmd = &cobra.Command{
		Use:     "console",
		Aliases: []string{"show-ui", "run-test"},
		Short:   "Start the callback server, the batch runner and the console",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole(cmd, consoleOpts)
		},
	}

	debugCmd = &cobra.Command{
		Use:   "debug",
		Short: "Print debug information like config paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Initialize(false)
			defer log.Close()

			cwd, err := filepath.Abs(".")
			if err != nil {
				return fmt.Errorf("failed to get current directory: %w", err)
			}
			cfg := config.LoadConfig(git.ResolveRoot(cwd))

			configDir, err := config.GetConfigDir()
			if err != nil {
				return fmt.Errorf("failed to get config directory: %w", err)
			}
			configJson, _ := json.MarshalIndent(cfg, "", "  ")

			fmt.Printf("Config: %s\n%s\n", filepath.Join(configDir, config.ConfigFileName), configJson)
			fmt.Printf("Logs: %s\n", log.Path())

			return nil
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of orc",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("orc version %s\n", version)
			fmt.Printf("https://github.com/kastheco/orchestra/releases/tag/v%s\n", version)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&projectFlag, "project", "", "project under .project/ (default from config)")

	// Bare orc only fires the requests; console waits for formatted answers.
	consoleFlags(rootCmd, &rootOpts, true)
	consoleFlags(consoleCmd, &consoleOpts, false)

	rootCmd.AddCommand(consoleCmd)
	rootCmd.AddCommand(cmd2.NewServeCmd(&projectFlag))
	rootCmd.AddCommand(cmd2.NewRunParallelCmd(&projectFlag))
	rootCmd.AddCommand(cmd2.NewMakeSpecCmd(&projectFlag))
	rootCmd.AddCommand(cmd2.NewFillSpecCmd(&projectFlag))
	rootCmd.AddCommand(cmd2.NewMakeTodosCmd(&projectFlag))
	rootCmd.AddCommand(cmd2.NewCheckLastCmd(&projectFlag))
	rootCmd.AddCommand(debugCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
