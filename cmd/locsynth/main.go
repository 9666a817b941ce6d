// Command locsynth synthesises verified locators for one element of a page.
//
// Usage:
//
//	locsynth -file page.html -target id=login          # candidates as JSON lines
//	locsynth -url https://example.com -target "link=Sign in" -render
//	locsynth -url https://example.com -target //iframe[1] -frame
//	locsynth -config locsynth.yaml -serve              # HTTP API
//	locsynth -config locsynth.yaml -mcp                # MCP over stdio
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/locsynth/recorder"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to locsynth.yaml config file")
	file := flag.String("file", "", "read the page from an HTML file")
	pageURL := flag.String("url", "", "fetch the page from a URL")
	render := flag.Bool("render", false, "render the URL in headless Chrome")
	target := flag.String("target", "", "locator of the element, e.g. id=login")
	frame := flag.Bool("frame", false, "build frame locators for a frame or iframe target")
	serve := flag.Bool("serve", false, "serve the HTTP API")
	mcpMode := flag.Bool("mcp", false, "serve MCP tools over stdio")
	logLevel := flag.String("log-level", "", "log level: debug, info, warn, error")
	flag.Parse()

	cfg := recorder.DefaultConfig()
	if *configPath != "" {
		loaded, err := recorder.LoadConfigFile(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *render {
		cfg.Browser.Enabled = true
	}

	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rec, err := recorder.New(ctx, cfg, recorder.WithLogger(logger))
	if err != nil {
		logger.Error("locsynth: fatal", "error", err)
		os.Exit(1)
	}
	defer rec.Close()

	switch {
	case *serve:
		err = runServe(ctx, logger, rec, cfg.Listen)
	case *mcpMode:
		err = runMCP(ctx, rec)
	case *target != "":
		err = runOnce(ctx, rec, *file, *pageURL, *target, *frame, *render)
	default:
		fmt.Fprintln(os.Stderr, "usage: locsynth -target <locator> (-file <page.html> | -url <url> [-render]) [-frame] | -serve | -mcp")
		os.Exit(2)
	}
	if err != nil {
		logger.Error("locsynth: fatal", "error", err)
		rec.Close()
		os.Exit(1)
	}
}

func runOnce(ctx context.Context, rec *recorder.Recorder, file, pageURL, target string, frame, render bool) error {
	req := recorder.LocateRequest{URL: pageURL, Target: target, Render: render}
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read page: %w", err)
		}
		req.HTML = string(data)
	}
	if frame {
		req.Scope = recorder.ScopeFrame
	}

	res, err := rec.Locate(ctx, req)
	if err != nil {
		return err
	}
	if len(res.Candidates) == 0 {
		return fmt.Errorf("no verified locator for %s (%s)", target, res.Locator)
	}

	enc := json.NewEncoder(os.Stdout)
	for _, c := range res.Candidates {
		if err := enc.Encode(c); err != nil {
			return err
		}
	}
	return nil
}

func runServe(ctx context.Context, logger *slog.Logger, rec *recorder.Recorder, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           rec.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("locsynth: server starting", "addr", addr, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	logger.Info("locsynth: shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runMCP(ctx context.Context, rec *recorder.Recorder) error {
	srv := mcp.NewServer(&mcp.Implementation{Name: "locsynth", Version: version}, nil)
	rec.RegisterMCP(srv)
	if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
