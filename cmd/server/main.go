package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/medsupply/internal/buildinfo"
	"github.com/dmitrijs2005/medsupply/internal/server"
	"github.com/dmitrijs2005/medsupply/internal/server/config"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if cfg.IssueToken != "" {
		if err := server.IssueToken(os.Stdout, cfg); err != nil {
			log.Fatalf("issue token: %v", err)
		}
		return
	}

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	if err := app.Run(ctx); err != nil {
		log.Printf("%v", err)
	}
}
