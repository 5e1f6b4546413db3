package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/bookclub/internal/config"
	"github.com/five82/bookclub/internal/diag"
	"github.com/five82/bookclub/internal/library"
	"github.com/five82/bookclub/internal/ollama"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "config file path (optional)")
	envFile := flag.String("env", ".env", "env file to check")
	quick := flag.Bool("quick", false, "only send a short prompt to the model server")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, cfgErr := config.LoadFiles(*configPath, *envFile)
	if cfgErr != nil {
		cfg = config.Default()
	}

	server, err := ollama.NewClient(cfg.OllamaURL, cfg.OllamaModel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bookcheck: %v\n", err)
		return 1
	}

	if *quick {
		fmt.Printf("Testing %s at %s...\n", server.Model(), server.Endpoint())
		c := diag.Quick(ctx, server)
		diag.WriteCheck(os.Stdout, c)
		if c.Status == diag.StatusFail {
			return 1
		}
		return 0
	}

	books, err := library.NewClient(cfg.OpenLibraryURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bookcheck: %v\n", err)
		return 1
	}

	report := diag.Run(ctx, diag.Options{
		EnvFile:   *envFile,
		Config:    cfg,
		ConfigErr: cfgErr,
		Server:    server,
		Library:   books,
	})
	report.Write(os.Stdout)
	if !report.OK() {
		return 1
	}
	return 0
}
