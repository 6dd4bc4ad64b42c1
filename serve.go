package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/tilematch/api"
	"github.com/wricardo/tilematch/game/service"
	"github.com/wricardo/tilematch/game/session"
	"github.com/wricardo/tilematch/internal/config"
	"github.com/wricardo/tilematch/transport/mcp"
	"github.com/wricardo/tilematch/transport/websocket"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
)

func (a *app) serveCommand() *cli.Command {
	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"server", "http"},
		Usage:   "run the REST API, WebSocket hub and /mcp endpoint",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Usage: "HTTP server host"},
			&cli.IntFlag{Name: "port", Usage: "HTTP server port"},
			&cli.BoolFlag{Name: "ngrok", Usage: "expose the server through an ngrok tunnel"},
			&cli.StringFlag{Name: "ngrok-auth", Usage: "ngrok auth token (or NGROK_AUTHTOKEN)"},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "custom ngrok domain"},
		},
		Action: a.serve,
	}
}

// applyServeFlags copies explicitly set flags over the loaded config.
func applyServeFlags(cfg *config.Config, cmd *cli.Command) {
	if cmd.IsSet("host") {
		cfg.Server.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Server.Port = cmd.Int("port")
	}
	if cmd.Bool("ngrok") {
		cfg.Ngrok.Enabled = true
	}
	if v := cmd.String("ngrok-auth"); v != "" {
		cfg.Ngrok.AuthToken = v
	}
	if v := cmd.String("ngrok-domain"); v != "" {
		cfg.Ngrok.Domain = v
	}
}

// newHandler builds the API with the /mcp proxy mounted on it.
func newHandler(svc service.PuzzleService, hub *websocket.Hub, baseURL string, logger *log.Logger) http.Handler {
	apiServer := api.NewServer(svc, hub, logger)
	mcpClient := mcp.NewClient(baseURL)
	apiServer.Handle("/mcp", mcpClient.HTTPHandler())
	return apiServer
}

// serve starts the HTTP server and, if enabled, an ngrok tunnel. It returns
// after SIGINT/SIGTERM or when the listener fails.
func (a *app) serve(ctx context.Context, cmd *cli.Command) error {
	applyServeFlags(a.cfg, cmd)
	cfg := a.cfg
	if err := cfg.Validate(); err != nil {
		return err
	}

	svc, sessions, err := a.newService()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := websocket.NewHub(a.logger)
	go hub.Run(ctx)

	addr := cfg.Server.Addr()
	handler := newHandler(svc, hub, "http://"+addr, a.logger)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	errCh := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		a.logger.Info("HTTP server listening", "addr", addr)
		a.logger.Info("endpoints",
			"api", fmt.Sprintf("http://%s/api", addr),
			"ws", fmt.Sprintf("ws://%s/ws?session=<id>", addr),
			"mcp", fmt.Sprintf("http://%s/mcp", addr))

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	if cfg.Ngrok.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := serveNgrok(ctx, cfg.Ngrok, handler, a.logger); err != nil {
				a.logger.Error("ngrok tunnel failed", "err", err)
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		cleanupSessions(ctx, sessions, cfg.Sessions)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutting down")
	case runErr = <-errCh:
		a.logger.Error("HTTP server failed", "err", runErr)
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("HTTP server shutdown", "err", err)
	}

	wg.Wait()
	a.logger.Info("server stopped")
	return runErr
}

// serveNgrok serves handler through an ngrok tunnel until ctx is done.
func serveNgrok(ctx context.Context, cfg config.Ngrok, handler http.Handler, logger *log.Logger) error {
	if cfg.AuthToken == "" {
		logger.Warn("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN or NGROK_AUTH_TOKEN)")
		return nil
	}

	var tunnel ngrokConfig.Tunnel
	if cfg.Domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(cfg.Domain))
		logger.Info("using custom ngrok domain", "domain", cfg.Domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	logger.Info("starting ngrok tunnel")
	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(cfg.AuthToken))
	if err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			logger.Warn("failed to close ngrok tunnel", "err", err)
		}
	}()

	url := tun.URL()
	logger.Info("ngrok tunnel established", "url", url, "api", url+"/api", "mcp", url+"/mcp")

	if err := http.Serve(tun, handler); err != nil && ctx.Err() == nil {
		return err
	}
	logger.Info("ngrok tunnel closed")
	return nil
}

// cleanupSessions periodically removes sessions idle for longer than MaxAge.
func cleanupSessions(ctx context.Context, sessions *session.Manager, cfg config.Sessions) {
	ticker := time.NewTicker(cfg.CleanupInterval.Duration)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sessions.CleanupExpiredSessions(cfg.MaxAge.Duration)
		}
	}
}

func (a *app) mcpCommand() *cli.Command {
	return &cli.Command{
		Name:    "mcp",
		Aliases: []string{"stdio-mcp", "mcp-stdio"},
		Usage:   "run an MCP stdio server backed by the REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "api",
				Usage: "REST API to proxy when it is reachable",
				Value: "http://localhost:8080",
			},
		},
		Action: a.runStdioMCP,
	}
}

// apiReachable reports whether a tilematch API answers at baseURL.
func apiReachable(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/health", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// startInternalAPI serves the API on a random loopback port and returns its base URL.
func (a *app) startInternalAPI(ctx context.Context) (string, *http.Server, error) {
	svc, _, err := a.newService()
	if err != nil {
		return "", nil, err
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, fmt.Errorf("failed to get available port: %w", err)
	}
	baseURL := "http://" + listener.Addr().String()

	hub := websocket.NewHub(a.logger)
	go hub.Run(ctx)

	httpServer := &http.Server{Handler: newHandler(svc, hub, baseURL, a.logger)}
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("internal HTTP server error", "err", err)
		}
	}()
	return baseURL, httpServer, nil
}

// runStdioMCP serves MCP over stdio. It reuses an API already running at
// --api, otherwise it starts an internal one.
func (a *app) runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	baseURL := cmd.String("api")
	a.logger.Info("checking for external API server", "url", baseURL)

	if apiReachable(ctx, baseURL) {
		a.logger.Info("MCP stdio server ready (using external HTTP server)", "url", baseURL)
	} else {
		internalURL, httpServer, err := a.startInternalAPI(ctx)
		if err != nil {
			return err
		}
		defer httpServer.Close()
		baseURL = internalURL
		a.logger.Info("MCP stdio server ready (using internal HTTP server)", "url", baseURL)
	}

	return server.ServeStdio(mcp.NewClient(baseURL).GetMCPServer())
}
