// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/hostprobe/hostprobe/internal/config"
	"github.com/hostprobe/hostprobe/internal/issue"
	"github.com/hostprobe/hostprobe/internal/reportserver"
	"github.com/hostprobe/hostprobe/pkg/platform"

	"github.com/spf13/cobra"
)

func newServeCommand(app *App) *cobra.Command {
	var (
		host    string
		port    int
		hostKey string
	)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the platform report over SSH",
		Long: `Serve the platform report over SSH until interrupted.

Every session receives the report and is closed. The session command
selects the format:

  ssh -p 2222 127.0.0.1 json

No client authentication is performed; bind to a trusted address.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.currentConfig()

			srvCfg := reportserver.DefaultConfig()
			srvCfg.Host = cfg.Server.Host
			srvCfg.Port = cfg.Server.Port
			if cmd.Flags().Changed("host") {
				srvCfg.Host = host
			}
			if cmd.Flags().Changed("port") {
				srvCfg.Port = port
			}
			srvCfg.HostKeyPath = hostKey

			srv := reportserver.New(
				srvCfg,
				reportRenderer(app.detector(), cfg.UI.Format),
				reportserver.WithLogger(app.logger.WithPrefix("report-server")),
			)
			return runReportServer(cmd.Context(), cmd, srv)
		},
	}

	serveCmd.Flags().StringVar(&host, "host", config.DefaultServerHost, "address to bind")
	serveCmd.Flags().IntVarP(&port, "port", "p", config.DefaultServerPort, "port to listen on (0 picks a free port)")
	serveCmd.Flags().StringVar(&hostKey, "host-key", "", "host key file, created on first use (default: ephemeral key)")

	return serveCmd
}

// reportRenderer renders fresh reports from d. An empty session format uses def.
func reportRenderer(d *platform.Detector, def config.OutputFormat) reportserver.Renderer {
	return func(format string) ([]byte, error) {
		f := def
		if format != "" {
			f = config.OutputFormat(format)
		}
		if err := f.Validate(); err != nil {
			return nil, err
		}
		return renderReport(d.Report(), f, false)
	}
}

// runReportServer starts srv and blocks until ctx is done or the server fails.
func runReportServer(ctx context.Context, cmd *cobra.Command, srv *reportserver.Server) error {
	if err := srv.Start(ctx); err != nil {
		return issue.NewErrorContext().
			WithOperation("start report server").
			WithSuggestion("Pick another port with --port").
			WithIssue(issue.ReportServerStartFailedId).
			Wrap(err).
			BuildError()
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s Serving the platform report on %s\n",
		SuccessStyle.Render("✓"), CmdStyle.Render(srv.Address()))

	select {
	case <-ctx.Done():
		return srv.Stop()
	case err := <-srv.Err():
		_ = srv.Stop() // Best-effort cleanup after a runtime failure
		return err
	}
}
