package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/DaniXM02/tunneltap/internal/agent"
	"github.com/DaniXM02/tunneltap/internal/resolve"
)

// doctorCmdFlags holds flags for the doctor command
type doctorCmdFlags struct {
	jsonOutput bool
}

var doctorFlags doctorCmdFlags

func init() {
	doctorCmd.RunE = runDoctor
	doctorCmd.Flags().BoolVar(&doctorFlags.jsonOutput, "json", false, "Output in JSON format")
}

// PortStatus describes the probe outcome for a single candidate endpoint.
type PortStatus struct {
	Endpoint  string `json:"endpoint"`
	Reachable bool   `json:"reachable"`
	Tunnels   int    `json:"tunnels"`
	PublicURL string `json:"public_url,omitempty"`
	Error     string `json:"error,omitempty"`
}

// DiagnosticInfo is the full doctor report.
type DiagnosticInfo struct {
	Endpoints []PortStatus `json:"endpoints"`
	// Result is what a resolve run against the same agents would print.
	Result string `json:"result"`
}

func runDoctor(cmd *cobra.Command, args []string) error {
	logger := createLogger(cfg.LogLevel)

	info := diagnose(cmd.Context(), cfg.Endpoints(), cfg.ProbeTimeout, logger)

	if doctorFlags.jsonOutput {
		return outputDoctorJSON(cmd.OutOrStdout(), info)
	}
	return outputDoctorText(cmd.OutOrStdout(), info)
}

// diagnose probes every endpoint. Unlike a resolve run it does not stop at
// the first answer; operators want the full picture.
func diagnose(ctx context.Context, endpoints []string, timeout time.Duration, logger *slog.Logger) *DiagnosticInfo {
	info := &DiagnosticInfo{}

	for _, endpoint := range endpoints {
		client := agent.NewClient(endpoint, timeout)
		client.SetLogger(logger)

		status := PortStatus{Endpoint: endpoint}
		resp, err := client.Tunnels(ctx)
		if err != nil {
			status.Error = err.Error()
		} else {
			status.Reachable = true
			status.Tunnels = len(resp.Tunnels)
			if len(resp.Tunnels) > 0 {
				status.PublicURL = resp.Tunnels[0].PublicURL
			}
		}
		info.Endpoints = append(info.Endpoints, status)
	}

	info.Result = summarize(info.Endpoints)
	return info
}

// summarize mirrors the resolve short-circuit over already-collected probes.
func summarize(statuses []PortStatus) string {
	for _, status := range statuses {
		if !status.Reachable {
			continue
		}
		if status.Tunnels == 0 {
			return resolve.SentinelNoTunnel
		}
		return status.PublicURL
	}
	return resolve.SentinelNoAPI
}

func outputDoctorText(w io.Writer, info *DiagnosticInfo) error {
	// Header
	fmt.Fprintf(w, "Tunneltap Diagnostics\n")
	fmt.Fprintf(w, "=====================\n\n")

	// Per-port status
	fmt.Fprintf(w, "Candidate Ports:\n")
	for _, status := range info.Endpoints {
		if !status.Reachable {
			fmt.Fprintf(w, "  [✗] %s - %s\n", status.Endpoint, status.Error)
			continue
		}
		switch {
		case status.Tunnels == 0:
			fmt.Fprintf(w, "  [✓] %s - agent up, no tunnels\n", status.Endpoint)
		case status.Tunnels == 1:
			fmt.Fprintf(w, "  [✓] %s - 1 tunnel: %s\n", status.Endpoint, status.PublicURL)
		default:
			fmt.Fprintf(w, "  [✓] %s - %d tunnels, first: %s\n", status.Endpoint, status.Tunnels, status.PublicURL)
		}
	}
	fmt.Fprintln(w)

	// Summary
	fmt.Fprintf(w, "Result:\n")
	fmt.Fprintf(w, "  %s\n", info.Result)

	return nil
}

func outputDoctorJSON(w io.Writer, info *DiagnosticInfo) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(info)
}
