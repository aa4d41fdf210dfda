package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"KWatch/internal/api"
	"KWatch/internal/logger"
	"KWatch/internal/notifier"
	"KWatch/internal/scheduler"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func serveAction(ctx context.Context, cmd *cli.Command) error {
	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a, err := setup(ctx, cmd.String("config"))
	if err != nil {
		return err
	}
	defer a.Close()
	log := a.log
	log.Info("KWatch starting")

	tn := notifier.NewTelegramNotifier(a.cfg.Telegram.BotToken, a.cfg.Telegram.ChatID, a.cfg.Proxy,
		logger.Component(log, "telegram"))

	sched := scheduler.NewScheduler(ctx, a.collector, a.watchlist, tn, a.recorder, logger.Component(log, "scheduler"))
	if err := sched.Register(a.cfg.Schedule.RefreshCron); err != nil {
		return err
	}
	sched.Start()
	// Background work must end before the recorder and cache are closed.
	defer sched.Stop()
	defer cancel()

	if tn.Enabled() {
		sched.Go(func() { tn.StartPolling(ctx, sched.HandleCommand) })
		log.Info("telegram polling started")
	} else {
		log.Info("telegram not configured, bot disabled")
	}

	srv := &http.Server{
		Addr:              a.cfg.HTTP.Addr,
		Handler:           api.NewRouter(sched, logger.Component(log, "api")),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srvErr := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
	}()

	if cmd.Bool("run-on-start") {
		log.Info("run-on-start enabled, refreshing now")
		sched.Go(sched.RunNow)
	}

	log.Info("KWatch is running, press Ctrl+C to stop")

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, stopping")
	case err := <-srvErr:
		log.Error("http server failed", zap.Error(err))
		return err
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	log.Info("KWatch stopped")
	return nil
}
