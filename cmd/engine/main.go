package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/crowdsift/crowdsift/internal/setup"
	"github.com/crowdsift/crowdsift/internal/worker/reconciler"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	app := &cli.Command{
		Name:  "engine",
		Usage: "Start the crowdsift consensus engine",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "migrate",
				Value: true,
				Usage: "Run pending migrations on startup",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return runEngine(ctx, c.Bool("migrate"))
		},
	}

	return app.Run(context.Background(), os.Args)
}

func runEngine(ctx context.Context, autoMigrate bool) error {
	app, err := setup.InitializeApp(ctx, autoMigrate)
	if err != nil {
		return err
	}
	defer app.Cleanup()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	worker := reconciler.New(
		app.DB,
		time.Duration(app.Config.Engine.ReconcilerInterval)*time.Second,
		app.Config.Engine.ReconcilerBatchSize,
		app.Logger,
	)
	go worker.Start(ctx)

	app.Logger.Info("Consensus engine started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	app.Logger.Info("Shutting down", zap.String("signal", sig.String()))
	cancel()

	return nil
}
