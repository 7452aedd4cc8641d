// Package server exposes the discovered tunnel URL over HTTP, the way the
// safegrid dashboard republishes it to its frontend.
package server

import (
	"runtime"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/DaniXM02/tunneltap/internal/agent"
	"github.com/DaniXM02/tunneltap/internal/resolve"
)

// Options configures the HTTP server.
type Options struct {
	Resolver *resolve.Resolver
	Version  string
}

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	Time      time.Time `json:"time"`
	Version   string    `json:"version"`
	Uptime    string    `json:"uptime"`
	GoVersion string    `json:"goVersion"`
}

var startTime = time.Now()

// New builds the fiber app. The caller starts it with Listen.
func New(opts Options) *fiber.App {
	initMetrics()

	app := fiber.New(fiber.Config{
		AppName: "tunneltap",
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())

	app.Get("/health", handleHealth(opts.Version))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Get("/api/ngrok", handleNgrok(opts.Resolver))
	app.Get("/api/tunnels", handleTunnels(opts.Resolver))

	return app
}

func handleHealth(version string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		response := HealthResponse{
			Status:    "ok",
			Time:      time.Now(),
			Version:   version,
			Uptime:    time.Since(startTime).String(),
			GoVersion: runtime.Version(),
		}
		return c.JSON(response)
	}
}

// handleNgrok returns the discovered public URL, or an empty string when
// nothing resolves. The URL is computed per request; nothing is cached.
func handleNgrok(resolver *resolve.Resolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		result := resolver.Resolve(c.UserContext())
		recordResolution(result, time.Since(start))

		url := ""
		if result.Outcome == resolve.OutcomeFound {
			url = result.URL
		}
		return c.JSON(fiber.Map{"url": url})
	}
}

// handleTunnels returns the full tunnel list of the first answering agent.
func handleTunnels(resolver *resolve.Resolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		result, tunnels := resolver.Scan(c.UserContext())
		recordResolution(result, time.Since(start))

		if tunnels == nil {
			tunnels = []agent.Tunnel{}
		}
		return c.JSON(fiber.Map{
			"tunnels": tunnels,
			"agent":   result.Endpoint,
		})
	}
}
