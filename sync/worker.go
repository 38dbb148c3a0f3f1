package sync

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"cloudsync/models"
)

// ConnectionSource lists the connections the worker may sweep
type ConnectionSource interface {
	ListConnections() ([]models.Connection, error)
}

// Worker periodically re-syncs idle connections in the background.
// Per-connection exclusivity comes from the engine's lock table, so a
// sweep can never race a user-triggered pass.
type Worker struct {
	engine *Engine
	conns  ConnectionSource
	logger *slog.Logger

	resyncAge       time.Duration
	baseInterval    time.Duration
	maxInterval     time.Duration
	currentInterval time.Duration
	running         bool
	mu              sync.Mutex
	stopChan        chan struct{}
}

// NewWorker creates a background sync worker
func NewWorker(engine *Engine, conns ConnectionSource, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		engine:          engine,
		conns:           conns,
		logger:          logger,
		resyncAge:       15 * time.Minute, // re-sync connections not synced in this long
		baseInterval:    2 * time.Minute,
		maxInterval:     5 * time.Minute,
		currentInterval: 2 * time.Minute,
		stopChan:        make(chan struct{}),
	}
}

// Start begins the background worker
func (w *Worker) Start() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info("starting background sync worker")

	go w.run()
}

// Stop gracefully stops the background worker
func (w *Worker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}

	w.logger.Info("stopping background sync worker")
	close(w.stopChan)
	w.running = false
}

// run is the main worker loop with adaptive backoff
func (w *Worker) run() {
	ticker := time.NewTicker(w.currentInterval)
	defer ticker.Stop()

	w.syncDueConnections()

	for {
		select {
		case <-ticker.C:
			hadWork := w.syncDueConnections()

			// Adaptive backoff: back off when idle, reset when there was work
			w.mu.Lock()
			if hadWork {
				if w.currentInterval != w.baseInterval {
					w.currentInterval = w.baseInterval
					ticker.Reset(w.currentInterval)
				}
			} else {
				if w.currentInterval < w.maxInterval {
					w.currentInterval = w.maxInterval
					ticker.Reset(w.currentInterval)
				}
			}
			w.mu.Unlock()
		case <-w.stopChan:
			return
		}
	}
}

// syncDueConnections runs a pass for every connection due a re-sync.
// Returns true when any connection was attempted.
func (w *Worker) syncDueConnections() bool {
	connections, err := w.conns.ListConnections()
	if err != nil {
		w.logger.Error("failed to list connections", "error", err)
		return false
	}

	hadWork := false
	now := time.Now()
	for i := range connections {
		conn := connections[i]
		if !w.isDue(&conn, now) {
			continue
		}

		hadWork = true
		_, err := w.engine.SyncConnection(context.Background(), &conn, conn.ProjectID)
		if err != nil {
			if errors.Is(err, ErrSyncInProgress) {
				continue
			}
			w.logger.Warn("background sync failed",
				"connection_id", conn.ID,
				"provider", conn.Provider,
				"error", err,
			)
		}
	}

	return hadWork
}

func (w *Worker) isDue(conn *models.Connection, now time.Time) bool {
	if conn.SyncStatus == models.SyncStatusSyncing {
		return false
	}
	if conn.AccessToken == "" {
		return false
	}
	if conn.LastSyncAt == nil {
		return true
	}
	return now.Sub(*conn.LastSyncAt) >= w.resyncAge
}
