package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/redlinehq/redline/config"
	"github.com/redlinehq/redline/llm"
	"github.com/redlinehq/redline/suggest"
	"github.com/redlinehq/redline/workspace"
)

// app carries the wiring shared by every subcommand. setup runs in the
// root command's PersistentPreRunE, so RunE bodies can assume a loaded
// config, a resolved documents root, and a workspace manager.
type app struct {
	cfg  *config.Config
	ws   *workspace.Manager
	root string
}

func (a *app) setup(configPath, docsRoot, workspaceDir, logLevel string) error {
	var level slog.Level
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFromFile(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
	} else {
		cfg, err = config.NewLoader(logger).Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}

	rootArg := cfg.Documents.Root
	if docsRoot != "" {
		rootArg = docsRoot
	}
	if rootArg == "" {
		rootArg = "."
	}
	root, err := filepath.Abs(rootArg)
	if err != nil {
		return fmt.Errorf("resolve documents root: %w", err)
	}

	wsDir := workspaceDir
	if wsDir == "" {
		wsDir = cfg.Workspace.Dir
	}
	if !filepath.IsAbs(wsDir) {
		wsDir = filepath.Join(root, wsDir)
	}

	a.cfg = cfg
	a.root = root
	a.ws = workspace.NewManager(wsDir)
	return nil
}

// newSuggester builds the checker from the configured model endpoint.
func (a *app) newSuggester() *suggest.LLMSuggester {
	client := llm.NewClient(llm.Endpoint{
		Provider: a.cfg.Model.Provider,
		Model:    a.cfg.Model.Name,
		BaseURL:  a.cfg.Model.Endpoint,
	}, llm.WithTimeout(a.cfg.Model.GetTimeout()))

	temperature := a.cfg.Model.Temperature
	return suggest.NewLLMSuggester(client, a.cfg.Prompt.System, &temperature)
}

// signalContext returns a context cancelled by SIGINT or SIGTERM.
// Loops that take it stop at the next record boundary.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
