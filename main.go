// draftpilot TUI - a terminal client for the draftpilot content agent.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/jeranaias/draftpilot-tui/internal/agent"
	"github.com/jeranaias/draftpilot-tui/internal/config"
	"github.com/jeranaias/draftpilot-tui/internal/refs"
	"github.com/jeranaias/draftpilot-tui/internal/session"
	"github.com/jeranaias/draftpilot-tui/internal/storage"
	"github.com/jeranaias/draftpilot-tui/internal/ui"
)

// Version information (set at build time)
var (
	Version   = "0.2.0"
	GitCommit = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "configuration file (default ~/.draftpilot/config.toml)")
	mode := flag.String("mode", "", "conversation mode (overrides config)")
	conversation := flag.String("conversation", "", "resume an existing conversation id")
	flag.Parse()

	if *showVersion {
		fmt.Printf("draftpilot %s (%s)\n", Version, GitCommit)
		return
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "draftpilot: requires an interactive terminal")
		os.Exit(1)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "draftpilot: %v\n", err)
		os.Exit(1)
	}
	if *mode != "" {
		cfg.Conversation.DefaultMode = *mode
	}

	// Route the standard logger to a file so fire-and-forget failures
	// don't tear up the alternate screen.
	if closeLog, err := redirectLog(); err == nil {
		defer closeLog()
	}

	historyPath, err := cfg.HistoryPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "draftpilot: %v\n", err)
		os.Exit(1)
	}
	store, err := storage.Open(historyPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "draftpilot: open history: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	client := agent.NewClient(cfg.Backend.URL, cfg.Backend.ProjectID)
	if !client.IsConfigured() {
		fmt.Fprintln(os.Stderr, "draftpilot: backend not configured; set backend.url and backend.project_id (or DRAFTPILOT_URL / DRAFTPILOT_PROJECT)")
		os.Exit(1)
	}

	// Hot reload swaps this pointer; the resolver reads through it so
	// reference renames apply to the next send.
	var live atomic.Pointer[config.Config]
	live.Store(cfg)

	sess := session.New(session.Config{
		Backend:        client,
		Store:          store,
		Resolver:       referenceResolver(&live),
		Refresher:      session.RefresherFunc(logRefresh),
		ConversationID: *conversation,
		Mode:           cfg.Conversation.DefaultMode,
		UndoWindow:     cfg.UndoWindow(),
	})

	if path, err := config.ConfigPath(); err == nil && *configPath == "" {
		if watcher, err := config.Watch(path, func(next *config.Config) {
			live.Store(next)
			sess.SetUndoWindow(next.UndoWindow())
			log.Print("config: reloaded; backend url and project apply on restart")
		}); err == nil {
			defer watcher.Close()
		}
	}

	ui.DetectBackground()
	program := tea.NewProgram(ui.NewApp(sess), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "draftpilot: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}

// referenceResolver maps configured @mention names to reference ids,
// reading the live config so hot reloads take effect.
func referenceResolver(live *atomic.Pointer[config.Config]) refs.Resolver {
	return refs.ResolverFunc(func(name string) string {
		return live.Load().References[name]
	})
}

// logRefresh records external-content refresh pokes. The web panels that
// would re-fetch live outside this client.
func logRefresh(field string) {
	if field == "" {
		log.Print("refresh: generation finished")
		return
	}
	log.Printf("refresh: field %s updated", field)
}

func redirectLog() (func(), error) {
	dir, err := config.ConfigDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(filepath.Join(dir, "draftpilot.log"),
		os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, err
	}
	log.SetOutput(f)
	return func() { f.Close() }, nil
}
