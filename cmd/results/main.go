package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"electora/internal/app/bootstrap"
)

// Results process entrypoint.
// Data flow:
// 1) Load config.
// 2) Build app wiring.
// 3) Run periodic tally reports and the outbox relay until interrupted.
func main() {
	log.Println("electora results starting")
	app, err := bootstrap.BuildResults()
	if err != nil {
		log.Fatalf("bootstrap results failed: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("results shutdown close failed: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		log.Fatalf("electora results stopped with error: %v", err)
	}
}
