package service

import (
	"context"
	"time"

	"krankenhaus-matrix/internal/matrix"

	"go.uber.org/zap"
)

// WorkerService runs the matrix scheduler: auto-free at the configured times of day
// and the periodic refresh pulse.
type WorkerService struct {
	matrix      *MatrixService
	interval    time.Duration
	autoRefresh bool
	systemUser  string
	log         *zap.Logger

	lastTick    time.Time
	lastRefresh time.Time
}

func NewWorkerService(matrixService *MatrixService, interval time.Duration, autoRefresh bool, systemUser string, log *zap.Logger) *WorkerService {
	if log == nil {
		log = zap.NewNop()
	}
	return &WorkerService{
		matrix:      matrixService,
		interval:    interval,
		autoRefresh: autoRefresh,
		systemUser:  systemUser,
		log:         log.Named("worker"),
	}
}

// Start begins the background worker; it returns when ctx is cancelled
func (w *WorkerService) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.lastTick = w.matrix.now()
	w.lastRefresh = w.lastTick
	w.log.Info("background worker started", zap.Duration("interval", w.interval), zap.Bool("auto_refresh", w.autoRefresh))

	for {
		select {
		case <-ctx.Done():
			w.log.Info("background worker stopped")
			return
		case <-ticker.C:
			w.tick(w.matrix.now())
		}
	}
}

// tick runs everything that became due since the previous tick
func (w *WorkerService) tick(now time.Time) {
	cfg := w.matrix.System()

	if w.autoFreeDue(cfg, w.lastTick, now) {
		if _, err := w.matrix.AutoFree(w.systemUser); err != nil {
			w.log.Error("auto-free failed", zap.Error(err))
		}
	}

	if w.autoRefresh && now.Sub(w.lastRefresh) >= cfg.RefreshPeriod() {
		w.matrix.PublishRefresh()
		w.lastRefresh = now
	}

	w.lastTick = now
}

// autoFreeDue reports whether a configured time of day lies in (since, now]
func (w *WorkerService) autoFreeDue(cfg matrix.SystemConfig, since, now time.Time) bool {
	if !now.After(since) {
		return false
	}
	for _, entry := range cfg.AutoFreeTimes {
		clock, err := matrix.ParseClock(entry)
		if err != nil {
			w.log.Warn("ignoring auto-free time", zap.String("entry", entry), zap.Error(err))
			continue
		}
		// the window may cross midnight
		for _, at := range []time.Time{clock.On(since), clock.On(now)} {
			if at.After(since) && !at.After(now) {
				return true
			}
		}
	}
	return false
}
