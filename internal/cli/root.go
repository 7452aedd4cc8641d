package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/DaniXM02/tunneltap/internal/config"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"

	// Global flags
	verbose bool

	// Global config
	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "tunneltap",
	Short: "Tunneltap - discover the public URL of a local tunnel agent",
	Long: `tunneltap probes the well-known local diagnostic ports of an
ngrok-compatible tunnel agent and prints the public URL of the first active
tunnel. With no subcommand it behaves like "tunneltap resolve".`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load configuration
		var err error
		cfg, err = config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if verbose {
			cfg.LogLevel = "debug"
		}

		return nil
	},
	// A bare invocation is the common automation entrypoint.
	RunE: runResolve,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	// Version template
	rootCmd.SetVersionTemplate(fmt.Sprintf("tunneltap version %s\ncommit: %s\nbuilt: %s\n", Version, GitCommit, BuildDate))

	// Add subcommands
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(serveCmd)
}

// resolveCmd prints the discovered tunnel URL or a sentinel string
var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Print the public URL of the first active tunnel",
	Long: `Probe the fixed candidate ports (4040, 4041, 4042) in order and print
the public URL of the first active tunnel on the first agent that answers.
Prints NO_TUNNEL when an agent answers with no tunnels, NO_API when no agent
answers at all. Always exits 0.`,
	Args: cobra.NoArgs,
}

// doctorCmd reports the status of every candidate port
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Probe every candidate agent port and report its status",
	Long:  `Probe all configured candidate ports (without short-circuiting) and report per-port reachability and tunnel counts.`,
	Args:  cobra.NoArgs,
}

// serveCmd republishes the discovered URL over HTTP
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the discovered tunnel URL over HTTP",
	Long: `Run an HTTP server exposing the discovered tunnel URL at /api/ngrok,
the raw tunnel list at /api/tunnels, plus /health and /metrics.`,
	Args: cobra.NoArgs,
}

// createLogger creates a structured logger with the specified level
func createLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	handler := slog.NewTextHandler(os.Stderr, opts)
	return slog.New(handler)
}
