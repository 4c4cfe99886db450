package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"github.com/oarafat/podtail/internal/config"
	"github.com/oarafat/podtail/internal/logging"
	"github.com/oarafat/podtail/internal/ui/app"
	"github.com/oarafat/podtail/version"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version", "--version":
			fmt.Println(version.GetFull())
			return
		case "init":
			path, err := config.WriteDefault()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error writing config: %v (%s)\n", err, path)
				os.Exit(1)
			}
			fmt.Printf("Wrote %s\n", path)
			return
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	logFile := cfg.LogFile
	if logFile == "" {
		if logFile, err = config.DefaultLogPath(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}
	if err := logging.Setup(logging.Options{Level: cfg.LogLevel, File: logFile}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	}
	defer logging.Close()

	zone.NewGlobal()

	p := tea.NewProgram(app.NewModel(cfg),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if _, err := p.Run(); err != nil {
		logging.Close()
		fmt.Fprintf(os.Stderr, "Error running podtail: %v\n", err)
		os.Exit(1)
	}
}
