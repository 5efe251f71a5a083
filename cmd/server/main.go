package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/mirrorlake/repligate/internal/backend"
	"github.com/mirrorlake/repligate/internal/config"
	"github.com/mirrorlake/repligate/internal/logger"
	"github.com/mirrorlake/repligate/internal/orchestrator"
	"github.com/mirrorlake/repligate/internal/resolver"
	"github.com/mirrorlake/repligate/internal/server"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the configuration file")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	level := logger.INFO
	if *debug {
		level = logger.DEBUG
	}
	logger.InitLogger(level, "repligate")
	log := logger.GetLogger()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal("Failed to load config from %s: %v", *configPath, err)
	}

	res := resolver.New(cfg.Models.Mappings, cfg.Models.DefaultModel)
	versions := backend.NewVersionTable(cfg.Models.Versions, cfg.Models.DefaultModel)

	clientCfg := backend.ClientConfig{
		APIBase:      cfg.Backend.APIBase,
		APIToken:     cfg.Backend.APIToken,
		PollInterval: time.Duration(cfg.Backend.PollIntervalSeconds) * time.Second,
		MaxPolls:     cfg.Backend.MaxPolls,
	}

	var client backend.Client
	switch cfg.Backend.Mode {
	case config.ModeWait:
		client = backend.NewBlockingClient(clientCfg, versions)
	default:
		client = backend.NewPollClient(clientCfg, versions)
	}
	log.Info("Using %s backend strategy against %s", cfg.Backend.Mode, cfg.Backend.APIBase)

	orch := orchestrator.New(res, client)
	r := server.New(cfg, orch)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info("Listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatal("Server failed: %v", err)
	}
}
