package main

import (
	"flag"
	"log"
	"os"

	"AlgoSensei/internal/di"
	"AlgoSensei/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s session=%s profiles=%s market=%s",
		cfg.Environment, cfg.Session.Backend, cfg.Profiles.Backend, cfg.Market.Source)

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	// Run blocks until SIGINT/SIGTERM
	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
