package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/charly05tr/devconnect/config"
	"github.com/charly05tr/devconnect/ui"
)

func main() {
	apiURL := flag.String("api", "", "DevConnect API base URL (overrides DEVCONNECT_API_URL)")
	wsURL := flag.String("ws", "", "DevConnect WebSocket base URL (overrides DEVCONNECT_WS_URL)")
	logPath := flag.String("log", "", "write logs to this file instead of discarding them")
	flag.Parse()

	cfg := config.Load()
	if *apiURL != "" {
		cfg.APIBaseURL = *apiURL
	}
	if *wsURL != "" {
		cfg.WSBaseURL = *wsURL
	}

	// Log output would corrupt the terminal UI, so it goes to a file or
	// nowhere.
	var logWriter io.Writer = io.Discard
	if *logPath != "" {
		file, err := os.OpenFile(*logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer file.Close()
		logWriter = file
	}
	logger := log.New(logWriter, "devconnect ", log.LstdFlags)

	app := ui.NewApp(cfg, logger)
	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
