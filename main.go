package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"taskdesk/pkg/api"
	"taskdesk/pkg/auth"
	"taskdesk/pkg/cli"
	"taskdesk/pkg/commands"
	"taskdesk/pkg/config"
	"taskdesk/pkg/query"
	"taskdesk/pkg/storage"
	"taskdesk/pkg/tasks"
	"taskdesk/pkg/ui"
	"taskdesk/pkg/utils"
)

func main() {
	// Parse command line flags
	args := cli.ParseArgs()

	// Load configuration
	cfg, styles, err := config.Load(args.ConfigPath, args.Flags)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	utils.InitLogger(args.Verbose, cfg.LogFile)
	defer utils.CloseLogger()
	utils.Log("Using backend %s", cfg.APIURL)

	// Open local storage holding the credential
	store, err := storage.Open(cfg.Storage)
	if err != nil {
		fmt.Printf("Error opening storage: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	client := api.NewClient(cfg.APIURL, store)

	session, err := auth.NewSession(store, auth.NewRepository(client))
	if err != nil {
		fmt.Printf("Error reading stored session: %v\n", err)
		os.Exit(1)
	}

	repo := tasks.NewRepository(client)
	bus := query.NewBus()
	list := query.NewTaskList(repo, bus)
	mutations := query.NewTaskMutations(repo, bus)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Handle one-shot commands
	app := commands.NewApp(session, list, mutations)
	if cli.HandleCommands(ctx, app, args) {
		return
	}

	// Create and run the Bubble Tea program
	model := ui.NewModel(ctx, ui.Deps{Session: session, Tasks: list, Mutations: mutations}, cfg, styles)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
}
