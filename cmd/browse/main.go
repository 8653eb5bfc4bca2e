// Command browse is the terminal collection browser. It reads the same
// configuration as the server and logs to a file, since the screen belongs
// to the browser.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/JonMunkholm/recordviewer/internal/admin"
	"github.com/JonMunkholm/recordviewer/internal/application"
	"github.com/JonMunkholm/recordviewer/internal/bootstrap"
	"github.com/JonMunkholm/recordviewer/internal/config"
	"github.com/JonMunkholm/recordviewer/internal/core"
	"github.com/JonMunkholm/recordviewer/internal/logging"
)

func main() {
	logPath := flag.String("log", "browse.log", "log file path")
	flag.Parse()

	// Logging is not set up yet; report the outcome once it is.
	envErr := godotenv.Overload()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration:", err)
		os.Exit(1)
	}

	logFile, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open log file:", err)
		os.Exit(1)
	}
	defer logFile.Close()
	logging.SetupWriter(logFile, cfg.Logging.Level, cfg.Logging.Format)
	logging.LogEnvFile(envErr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer app.Close()

	model := application.NewModel(app.Service, app.Wikipedia)
	if app.Exports != nil {
		model = model.WithExports(&admin.Exports{Store: app.Exports})
	}
	p := tea.NewProgram(model, tea.WithAltScreen())

	if cfg.Collection.Watch {
		go func() {
			err := app.Watch(ctx, func(res *core.LoadResult, err error) {
				p.Send(application.Loaded(res, err))
			})
			if err != nil {
				slog.Error("file watcher stopped", "error", err)
			}
		}()
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "browse:", err)
		os.Exit(1)
	}
}
