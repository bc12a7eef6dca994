package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/codenameoperative/what-is-life-sub001/internal/config"
)

func main() {
	env, err := config.FromEnv()
	if err != nil {
		log.Fatalf("load env: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := log.New(os.Stderr, "", 0)
	a, err := newApp(ctx, env, logger)
	if err != nil {
		log.Fatalf("build server: %v", err)
	}
	defer a.Close()

	logger.Printf("listening on http://localhost%s as player %s", env.Addr, a.playerID)
	if err := a.Run(ctx); err != nil {
		log.Fatalf("server: %v", err)
	}
}
