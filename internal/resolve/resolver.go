// Package resolve implements the tunnel URL discovery scan: probe a short
// ordered list of local agent diagnostic endpoints and stop at the first one
// that answers.
package resolve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"time"

	"github.com/DaniXM02/tunneltap/internal/agent"
)

// Sentinel strings printed in place of a URL when discovery comes up empty.
const (
	// SentinelNoTunnel means an agent answered but reported no active tunnels.
	SentinelNoTunnel = "NO_TUNNEL"
	// SentinelNoAPI means no candidate port answered at all.
	SentinelNoAPI = "NO_API"
)

// Fixed discovery constants. The resolve command always uses these; doctor
// and serve read overrides from the config layer instead.
const (
	DefaultHost         = "127.0.0.1"
	DefaultProbeTimeout = 1500 * time.Millisecond
)

// DefaultPorts are the candidate diagnostic ports, probed in this order.
var DefaultPorts = []int{4040, 4041, 4042}

// Outcome classifies how a resolution ended.
type Outcome int

const (
	// OutcomeNoAPI means every candidate port failed to answer.
	OutcomeNoAPI Outcome = iota
	// OutcomeNoTunnel means an agent answered with an empty tunnel list.
	OutcomeNoTunnel
	// OutcomeFound means an agent answered with at least one tunnel.
	OutcomeFound
)

// Result is the outcome of a single resolution run.
type Result struct {
	Outcome Outcome
	// URL is the first tunnel's public URL; set only for OutcomeFound.
	URL string
	// Endpoint is the base URL of the agent that answered; empty for
	// OutcomeNoAPI.
	Endpoint string
}

// String renders the result as the single line the tool prints: the public
// URL, or one of the sentinel strings.
func (r Result) String() string {
	switch r.Outcome {
	case OutcomeFound:
		return r.URL
	case OutcomeNoTunnel:
		return SentinelNoTunnel
	default:
		return SentinelNoAPI
	}
}

// Resolver scans an ordered list of agent endpoints.
type Resolver struct {
	endpoints []string
	timeout   time.Duration
	logger    *slog.Logger
}

// New creates a resolver over the given agent base URLs with a per-probe
// timeout.
func New(endpoints []string, timeout time.Duration) *Resolver {
	return &Resolver{
		endpoints: endpoints,
		timeout:   timeout,
		logger:    slog.Default(),
	}
}

// Default creates a resolver with the fixed candidate ports and timeout.
func Default() *Resolver {
	return New(Endpoints(DefaultHost, DefaultPorts), DefaultProbeTimeout)
}

// SetLogger sets the logger used for debug output
func (r *Resolver) SetLogger(logger *slog.Logger) {
	r.logger = logger
}

// Endpoints builds agent base URLs for the given host and port list,
// preserving port order.
func Endpoints(host string, ports []int) []string {
	endpoints := make([]string, 0, len(ports))
	for _, port := range ports {
		endpoints = append(endpoints, fmt.Sprintf("http://%s:%d", host, port))
	}
	return endpoints
}

// Resolve scans the candidate endpoints in order and returns the outcome. It
// never returns an error: every failure mode collapses into one of the
// sentinel outcomes.
func (r *Resolver) Resolve(ctx context.Context) Result {
	result, _ := r.Scan(ctx)
	return result
}

// Scan is Resolve plus the tunnel list of the agent that answered. The scan
// stops at the first endpoint that answers, even when it reports zero
// tunnels; only failed probes advance to the next candidate. Endpoints after
// the answering one are never contacted.
func (r *Resolver) Scan(ctx context.Context) (Result, []agent.Tunnel) {
	for _, endpoint := range r.endpoints {
		if ctx.Err() != nil {
			r.logger.Debug("scan cancelled", slog.String("error", ctx.Err().Error()))
			return Result{Outcome: OutcomeNoAPI}, nil
		}

		client := agent.NewClient(endpoint, r.timeout)
		client.SetLogger(r.logger)

		resp, err := client.Tunnels(ctx)
		if err != nil {
			if !isProbeFailure(err) {
				// Not one of the known ways a probe fails when no agent is
				// listening. Still bound by the no-error contract, so end the
				// scan with the absent-agent sentinel.
				r.logger.Debug("aborting scan",
					slog.String("agent", endpoint),
					slog.String("error", err.Error()))
				return Result{Outcome: OutcomeNoAPI}, nil
			}
			r.logger.Debug("probe failed",
				slog.String("agent", endpoint),
				slog.String("error", err.Error()))
			continue
		}

		if len(resp.Tunnels) == 0 {
			// An answering agent with nothing tunneled is a definitive
			// result, distinct from no agent at all.
			return Result{Outcome: OutcomeNoTunnel, Endpoint: endpoint}, nil
		}

		return Result{
			Outcome:  OutcomeFound,
			URL:      resp.Tunnels[0].PublicURL,
			Endpoint: endpoint,
		}, resp.Tunnels
	}

	return Result{Outcome: OutcomeNoAPI}, nil
}

// isProbeFailure reports whether err is one of the expected ways a probe
// fails when no healthy agent listens on a port: connection errors, timeouts,
// an unexpected HTTP status, or a body that does not decode as the tunnel
// list.
func isProbeFailure(err error) bool {
	if errors.Is(err, agent.ErrUnexpectedStatus) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		// Covers refused connections, reset sockets and client timeouts.
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return true
	}
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &typeErr)
}
