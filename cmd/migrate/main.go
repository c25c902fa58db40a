package main

import (
	"context"
	"flag"
	"time"

	"hourbank/internal/app"
	"hourbank/internal/config"
	"hourbank/internal/db"
	"hourbank/internal/logging"
)

func main() {
	list := flag.Bool("list", false, "print the embedded migrations and exit")
	timeout := flag.Duration("timeout", time.Minute, "overall migration timeout")
	flag.Parse()

	cfg := config.Load()
	log := logging.Setup(cfg.Log)

	if *list {
		names, err := db.Migrations()
		if err != nil {
			log.WithError(err).Fatal("failed to read migrations")
		}
		for _, name := range names {
			log.Info(name)
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, err := app.NewDatabase(ctx, cfg.Database, nil)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer conn.Close()

	if err := db.Migrate(ctx, conn, log); err != nil {
		log.WithError(err).Fatal("migration failed")
	}
	log.Info("migrations applied")
}
