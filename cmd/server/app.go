package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"time"

	"github.com/codenameoperative/what-is-life-sub001/internal/config"
	"github.com/codenameoperative/what-is-life-sub001/internal/game"
	"github.com/codenameoperative/what-is-life-sub001/internal/save"
	"github.com/codenameoperative/what-is-life-sub001/internal/serverapp"
	"github.com/codenameoperative/what-is-life-sub001/internal/telemetry"
	"golang.org/x/sync/errgroup"
)

type app struct {
	env      config.Env
	logger   *log.Logger
	saves    save.Repository
	engine   game.Engine
	server   *serverapp.Server
	playerID string
}

// newApp wires storage, the engine and the HTTP server, then loads the
// remembered player's save.
func newApp(ctx context.Context, env config.Env, logger *log.Logger) (*app, error) {
	cfg, err := config.LoadOrDefault(env.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	cfg = cfg.WithDifficulty(env.Difficulty)

	repo, err := save.Open(ctx, env.Storage, env.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	playerID := env.PlayerID
	if playerID != "" {
		if playerID, err = save.ValidatePlayerID(playerID); err != nil {
			_ = repo.Close()
			return nil, err
		}
		if err := repo.SetCurrentPlayer(ctx, playerID); err != nil {
			_ = repo.Close()
			return nil, err
		}
	} else {
		var created bool
		playerID, created, err = save.EnsurePlayer(ctx, repo)
		if err != nil {
			_ = repo.Close()
			return nil, fmt.Errorf("resolve player: %w", err)
		}
		if created {
			logger.Printf(`{"level":"info","msg":"new_player","player_id":%q}`, playerID)
		}
	}

	now := time.Now()
	engine := game.Engine{
		Store:    game.NewStore(game.NewState(cfg, playerID, now)),
		Config:   cfg,
		Saves:    repo,
		Events:   telemetry.NewMemoryRepository(),
		Clock:    game.RealClock{},
		RNG:      rand.New(rand.NewSource(now.UnixNano())),
		Logger:   logger,
		Autosave: env.Autosave,
	}
	if _, err := engine.Load(ctx, playerID); err != nil {
		_ = repo.Close()
		return nil, err
	}

	srv, err := serverapp.New(serverapp.Options{Engine: engine, Logger: logger, BootNow: now.UTC()})
	if err != nil {
		_ = repo.Close()
		return nil, err
	}

	return &app{
		env:      env,
		logger:   logger,
		saves:    repo,
		engine:   engine,
		server:   srv,
		playerID: playerID,
	}, nil
}

// Run serves HTTP and ticks the game until ctx ends, then saves once more.
func (a *app) Run(ctx context.Context) error {
	httpSrv := &http.Server{
		Addr:              a.env.Addr,
		Handler:           a.server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return game.Scheduler{
			Engine:   a.engine,
			Interval: a.env.TickInterval,
			OnTick:   a.server.Announce,
		}.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if serr := a.engine.Save(saveCtx); serr != nil {
		a.logger.Printf(`{"level":"error","msg":"final_save_failed","err":%q}`, serr.Error())
	}
	return err
}

func (a *app) Close() error {
	return a.saves.Close()
}
