package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/nao1215/seoaudit/internal/config"
	"github.com/nao1215/seoaudit/internal/database"
	"github.com/nao1215/seoaudit/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve stored audits over a read-only JSON API",
		Long: `Serve starts an HTTP server that exposes the audit history database.

Endpoints:
  GET /api/health
  GET /api/sites
  GET /api/audits?site=&since=YYYY-MM-DD
  GET /api/audits/latest?site=
  GET /api/audits/:id
  GET /api/compare?site=&with=&since=

The server listens on localhost by default. Requests are rate limited
per client address.

Examples:
  # Serve on the default address
  seoaudit serve

  # Serve on every interface
  seoaudit serve --addr :8085`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("addr", "a", server.DefaultAddr, "Listen address")
	cmd.Flags().Float64("rate", 10, "Requests per second allowed per client")
	cmd.Flags().Int("burst", 20, "Request burst allowed per client")

	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return err
	}
	perSecond, err := cmd.Flags().GetFloat64("rate")
	if err != nil {
		return err
	}
	burst, err := cmd.Flags().GetInt("burst")
	if err != nil {
		return err
	}

	logger := loggerFromFlags(cmd)

	db, err := database.Open(config.XDGDataDir(), database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !boolFlag(cmd, "verbose") {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := server.New(db,
		server.WithLogger(logger),
		server.WithRateLimit(perSecond, burst),
		server.WithVersion(getVersion()),
	)
	fmt.Fprintf(cmd.ErrOrStderr(), "Serving %s on http://%s\n", db.Path(), addr)
	return srv.ListenAndServe(ctx, addr)
}
