package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"freezetag/config"
	"freezetag/logger"
	"freezetag/network"
	"freezetag/player"
	"freezetag/room"
	"freezetag/session"
	"freezetag/store"
)

func main() {
	cfg := config.Load()
	log := logger.Init(cfg.LogLevel)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scores := openStore(ctx, cfg, log)

	players := player.NewRegistry()
	rooms := room.NewManager(scores, log)
	router := session.NewRouter(players, rooms, log)
	go router.Run(ctx)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: network.NewServer(router, log).Handler(),
	}
	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutCtx)
	}()

	log.Info("listening", zap.String("addr", cfg.Addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("server stopped", zap.Error(err))
	}
}

// openStore connects score persistence when a database is configured.
// The game runs fine without one; scores just stay in memory per match.
func openStore(ctx context.Context, cfg config.Config, log *zap.Logger) store.ScoreStore {
	if cfg.DatabaseURL == "" {
		log.Info("no DATABASE_URL, score persistence disabled")
		return store.Noop{}
	}
	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	pg, err := store.NewPostgres(connCtx, cfg.DatabaseURL)
	if err != nil {
		log.Warn("database unavailable, score persistence disabled", zap.Error(err))
		return store.Noop{}
	}
	if err := pg.Migrate(connCtx); err != nil {
		log.Warn("migration failed, score persistence disabled", zap.Error(err))
		pg.Close()
		return store.Noop{}
	}
	log.Info("score persistence enabled")
	return pg
}
