package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"automailer/internal/config"
	"automailer/internal/listener"
	"automailer/internal/logging"
	"automailer/internal/storage"
)

func main() {
	provider := flag.String("provider", "", "override DROP_LISTENER_PROVIDER (gmail|imap)")
	label := flag.String("label", "", "override DROP_LISTENER_LABEL")
	interval := flag.Int("interval", 0, "override DROP_LISTENER_INTERVAL_SEC")
	once := flag.Bool("once", false, "run a single cycle and exit, for cron setups")
	flag.Parse()

	cfg, err := config.Load()
	must(err)
	if *provider != "" {
		cfg.DropListenerProvider = *provider
	}
	if *label != "" {
		cfg.DropListenerLabel = *label
	}
	if *interval > 0 {
		cfg.DropListenerIntervalSec = *interval
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	log := logging.New()
	log.Info().
		Str("provider", cfg.DropListenerProvider).
		Str("label", cfg.DropListenerLabel).
		Int("intervalSec", cfg.DropListenerIntervalSec).
		Bool("once", *once).
		Msg("drop listener starting")

	svc := listener.NewService(db, cfg, log)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if *once {
		must(svc.RunOnce(ctx))
		return
	}
	must(svc.Run(ctx))
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
