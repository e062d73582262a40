package cmd

import (
	"context"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"

	"github.com/kastheco/orchestra/config/auditlog"
	"github.com/kastheco/orchestra/internal/server"
	"github.com/kastheco/orchestra/log"
	"github.com/spf13/cobra"
)

// executeServe runs the callback server until ctx is done. Results are
// logged to logger.
func executeServe(ctx context.Context, host string, port int, logger server.Logger, audit auditlog.Logger, project string) error {
	srv := server.New(host, port, server.WithLogger(logger), server.WithAudit(project, audit))
	return srv.Serve(ctx)
}

func NewServeCmd(projectFlag *string) *cobra.Command {
	var (
		host string
		port int
	)
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "run the callback server only and log every result",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Initialize(false)
			defer log.Close()

			env, err := ResolveEnv(*projectFlag)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("host") {
				host = env.Config.Server.Host
			}
			if !cmd.Flags().Changed("port") {
				port = env.Config.Server.Port
			}

			audit, err := auditlog.Open(env.Config.Audit.Enabled, env.Config.AuditPath())
			if err != nil {
				log.WarningLog.Printf("audit log disabled: %v", err)
				audit = auditlog.NopLogger()
			}
			defer audit.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := stdlog.New(os.Stdout, "", stdlog.LstdFlags)
			return executeServe(ctx, host, port, out, audit, env.Project.Name)
		},
	}
	serveCmd.Flags().StringVar(&host, "host", "127.0.0.1", "address to bind")
	serveCmd.Flags().IntVar(&port, "port", 7878, "port to bind")
	return serveCmd
}
