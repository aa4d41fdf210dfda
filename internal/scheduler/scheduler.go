package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"KWatch/internal/collector"
	"KWatch/internal/metrics"
	"KWatch/internal/model"
	"KWatch/internal/notifier"
	"KWatch/internal/recorder"
	"KWatch/internal/watchlist"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Refresh triggers recorded with each run.
const (
	TriggerCron    = "CRON"
	TriggerCommand = "COMMAND"
	TriggerAPI     = "API"
	TriggerStart   = "START"
)

// Notifier delivers dashboard messages.
type Notifier interface {
	Enabled() bool
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler runs watchlist refreshes on a cron schedule and on demand.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Watchlist *watchlist.Store
	Notifier  Notifier
	Recorder  recorder.Recorder
	Metrics   *metrics.Metrics
	Ctx       context.Context

	refreshMu sync.Mutex
	tasks     sync.WaitGroup
	log       *zap.Logger
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, wl *watchlist.Store, n Notifier, rec recorder.Recorder, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Watchlist: wl,
		Notifier:  n,
		Recorder:  rec,
		Metrics:   col.Metrics,
		Ctx:       ctx,
		log:       log,
	}
}

// Register adds the periodic refresh task.
func (s *Scheduler) Register(refreshCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for a running task and every
// function started with Go to finish. Cancel Ctx first so long-running
// functions can return.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.tasks.Wait()
	s.log.Info("scheduler stopped")
}

// Go runs fn in the background; Stop waits for it.
func (s *Scheduler) Go(fn func()) {
	s.tasks.Add(1)
	go func() {
		defer s.tasks.Done()
		fn()
	}()
}

// RunNow refreshes immediately and pushes the dashboard (RUN_ON_START).
func (s *Scheduler) RunNow() {
	readings := s.Refresh(s.Ctx, TriggerStart)
	s.trySend(s.dashboard(readings))
}

func (s *Scheduler) refreshTask() {
	s.log.Info("running scheduled refresh")
	readings := s.Refresh(s.Ctx, TriggerCron)
	s.trySend(s.dashboard(readings))
}

// Refresh drops cached series, reads the whole watchlist and records the run.
// Refreshes never overlap.
func (s *Scheduler) Refresh(ctx context.Context, trigger string) []model.Reading {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	run := recorder.NewRun(trigger, time.Now())
	if err := s.Collector.Refresh(ctx); err != nil {
		s.log.Warn("cache clear failed, continuing with cached series", zap.Error(err))
	}

	readings := s.Collector.Collect(ctx, s.Watchlist.Items())
	run.Finish(readings, time.Now())
	s.Metrics.RefreshDur.Observe(run.FinishedAt.Sub(run.StartedAt).Seconds())

	if err := s.Recorder.RecordRun(run); err != nil {
		s.log.Error("record run", zap.Error(err))
	}
	for i := range readings {
		if err := s.Recorder.RecordReading(run.ID, &readings[i]); err != nil {
			s.log.Error("record reading", zap.String("symbol", readings[i].Symbol), zap.Error(err))
		}
	}

	s.log.Info("refresh finished",
		zap.String("run_id", run.ID),
		zap.String("trigger", trigger),
		zap.Int("total", run.Total),
		zap.Int("failed", run.Failed))
	return readings
}

// Readings reads the watchlist without clearing the cache.
func (s *Scheduler) Readings(ctx context.Context) []model.Reading {
	return s.Collector.Collect(ctx, s.Watchlist.Items())
}

func (s *Scheduler) dashboard(readings []model.Reading) string {
	return notifier.FormatDashboard(readings, s.Collector.Fetcher.Name(), time.Now())
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.HelpText
	}
	// "/k@MyBot" in group chats
	name, _, _ := strings.Cut(strings.ToLower(fields[0]), "@")
	args := fields[1:]

	switch name {
	case "/k", "查看k值":
		return s.dashboard(s.Readings(ctx))
	case "/refresh", "更新最新數據":
		return s.dashboard(s.Refresh(ctx, TriggerCommand))
	case "/list", "觀察名單":
		return notifier.FormatWatchlist(s.Watchlist.Items())
	case "/add":
		if len(args) == 0 {
			return "用法: /add 代號 [名稱]"
		}
		item, err := s.Watchlist.Add(args[0], strings.Join(args[1:], " "))
		if err != nil {
			return commandError(err)
		}
		r := s.Collector.Read(ctx, item)
		return "✅ 已加入\n\n" + notifier.FormatReading(&r)
	case "/remove":
		if len(args) == 0 {
			return "用法: /remove 代號"
		}
		if err := s.Watchlist.Remove(args[0]); err != nil {
			return commandError(err)
		}
		s.Collector.Forget(args[0])
		return fmt.Sprintf("🗑 已移除 %s", strings.ToUpper(args[0]))
	case "/history":
		if len(args) == 0 {
			return "用法: /history 代號 [筆數]"
		}
		limit := 10
		if len(args) > 1 {
			if n, err := strconv.Atoi(args[1]); err == nil && n > 0 {
				limit = n
			}
		}
		symbol := strings.ToUpper(args[0])
		hist, err := s.Recorder.History(symbol, limit)
		if err != nil {
			s.log.Error("load history", zap.String("symbol", symbol), zap.Error(err))
			return "❌ 讀取歷史紀錄失敗"
		}
		return notifier.FormatHistory(symbol, hist)
	default:
		return notifier.HelpText
	}
}

func commandError(err error) string {
	switch {
	case errors.Is(err, watchlist.ErrDuplicate):
		return "⚠️ 已在觀察名單中"
	case errors.Is(err, watchlist.ErrNotFound):
		return "⚠️ 不在觀察名單中"
	case errors.Is(err, watchlist.ErrEmpty):
		return "⚠️ 請輸入代號"
	default:
		return fmt.Sprintf("❌ %v", err)
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil || !s.Notifier.Enabled() {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.log.Error("send notification", zap.Error(err))
	}
}
