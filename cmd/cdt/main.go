// Package main is the entry point for the Cursor Dashboard TUI application.
// It initializes configuration, services, and runs the Bubble Tea program.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/cursor-dashboard-tui/internal/app"
	"github.com/j-veylop/cursor-dashboard-tui/internal/config"
	"github.com/j-veylop/cursor-dashboard-tui/internal/services"
	"github.com/j-veylop/cursor-dashboard-tui/internal/ui/tabs/dashboard"
	"github.com/j-veylop/cursor-dashboard-tui/internal/ui/tabs/info"
	"github.com/j-veylop/cursor-dashboard-tui/internal/ui/tabs/settings"
	"github.com/j-veylop/cursor-dashboard-tui/internal/version"
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "-v" || os.Args[1] == "--version") {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	if len(os.Args) > 1 && (os.Args[1] == "-h" || os.Args[1] == "--help") {
		printUsage()
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run contains the main application logic, separated for cleaner error handling.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	svcManager, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	defer func() {
		if closeErr := svcManager.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
	}()

	model := app.NewModel(svcManager)

	// Each tab receives the shared application state for consistent data access
	state := model.GetState()
	tabs := []app.Tab{
		dashboard.New(state, svcManager.Usage().History()),
		settings.New(state, model.GetCommands()),
		info.New(state, cfg),
	}
	model.SetTabs(tabs)

	// Kick off the poller and, when a token is already saved, the first fetch
	svcManager.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	go func() {
		<-sigChan
		p.Send(tea.Quit())
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// printUsage prints the command-line usage information.
func printUsage() {
	fmt.Println(`Cursor Dashboard TUI - premium request and spend monitor

Usage:
  cdt [flags]

Flags:
  -h, --help      Show this help message
  -v, --version   Show version information

Keyboard Shortcuts:
  1-3             Switch between tabs (Dashboard, Settings, Info)
  Tab/Shift+Tab   Navigate between tabs
  r               Refresh data
  ?               Toggle help
  q, Ctrl+C       Quit

Environment Variables:
  SETTINGS_PATH           SQLite settings database path
  CURSOR_BASE_URL         API base URL (default: https://cursor.com)
  CURSOR_USER_AGENT       User agent sent with every request
  USAGE_REFRESH_INTERVAL  Polling interval (default: 30m)
  HTTP_TIMEOUT            Per-request timeout (default: 30s)
  LOG_LEVEL               Log level: debug, warn, error (default: info)

Configuration:
  The application looks for .env files in the following locations:
  - Current directory
  - ~/.config/cursor-dashboard-tui/.env
  - ~/.cursor-dashboard/.env`)
}
