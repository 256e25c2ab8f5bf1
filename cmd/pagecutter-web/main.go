package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/kpauljoseph/pagecutter/internal/config"
	"github.com/kpauljoseph/pagecutter/internal/web"
	"github.com/kpauljoseph/pagecutter/pkg/logger"
	"github.com/kpauljoseph/pagecutter/pkg/version"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	addr := flag.String("addr", "", "listen address (overrides config)")
	verbose := flag.Bool("verbose", false, "enable verbose logging")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Print(version.GetDetailedVersionInfo())
		return
	}

	log := logger.New(logger.WithPrefix("[pagecutter-web] "))
	log.SetVerbose(*verbose)

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatal("Error loading config: %v", err)
		}
	}
	if *addr != "" {
		cfg.Web.Addr = *addr
	}

	baseDir, err := os.MkdirTemp("", "pagecutter-web-*")
	if err != nil {
		log.Fatal("Error creating session directory: %v", err)
	}

	server, err := web.NewServer(filepath.Join(baseDir, "sessions"), log)
	if err != nil {
		log.Fatal("Error initializing server: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Shutting down...")
		if err := server.Cleanup(); err != nil {
			log.Warn("Cleanup failed: %v", err)
		}
		os.RemoveAll(baseDir)
		os.Exit(0)
	}()

	log.Info("Pagecutter web UI listening on %s", cfg.Web.Addr)
	log.Debug("Session directory: %s", baseDir)

	if err := http.ListenAndServe(cfg.Web.Addr, server.Handler()); err != nil {
		log.Fatal("Server error: %v", err)
	}
}
