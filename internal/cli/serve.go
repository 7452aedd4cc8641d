package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/DaniXM02/tunneltap/internal/resolve"
	"github.com/DaniXM02/tunneltap/internal/server"
)

func init() {
	serveCmd.RunE = runServe
}

// runServe starts the HTTP server that republishes the discovered URL.
func runServe(cmd *cobra.Command, args []string) error {
	logger := createLogger(cfg.LogLevel)

	resolver := resolve.New(cfg.Endpoints(), cfg.ProbeTimeout)
	resolver.SetLogger(logger)

	app := server.New(server.Options{
		Resolver: resolver,
		Version:  Version,
	})

	logger.Info("starting server",
		slog.String("addr", cfg.ListenAddr),
		slog.Int("candidates", len(cfg.Endpoints())))

	return app.Listen(cfg.ListenAddr)
}
