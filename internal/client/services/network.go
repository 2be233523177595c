package services

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/medsupply/internal/logging"
)

type Mode string

const (
	ModeUnknown Mode = "unknown"
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// Pinger is satisfied by client.Store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ConnectivityWatcher polls the store and reports online/offline transitions.
type ConnectivityWatcher struct {
	pinger      Pinger
	interval    time.Duration
	pingTimeout time.Duration
	logger      logging.Logger

	mu       sync.Mutex
	mode     Mode
	onChange func(ctx context.Context, m Mode)
}

func NewConnectivityWatcher(p Pinger, interval time.Duration, l logging.Logger) *ConnectivityWatcher {
	return &ConnectivityWatcher{
		pinger:      p,
		interval:    interval,
		pingTimeout: 3 * time.Second,
		logger:      l.With("module", "connectivity"),
		mode:        ModeUnknown,
	}
}

// OnChange registers fn; it is called from the watcher goroutine.
func (w *ConnectivityWatcher) OnChange(fn func(ctx context.Context, m Mode)) {
	w.mu.Lock()
	w.onChange = fn
	w.mu.Unlock()
}

func (w *ConnectivityWatcher) Mode() Mode {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.mode
}

// Check pings once and updates the mode.
func (w *ConnectivityWatcher) Check(ctx context.Context) Mode {
	pctx, cancel := context.WithTimeout(ctx, w.pingTimeout)
	err := w.pinger.Ping(pctx)
	cancel()

	next := ModeOnline
	if err != nil {
		next = ModeOffline
	}
	w.setMode(ctx, next)
	return next
}

// Run checks immediately and then every interval until ctx is done.
func (w *ConnectivityWatcher) Run(ctx context.Context) {
	w.Check(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.Check(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (w *ConnectivityWatcher) setMode(ctx context.Context, m Mode) {
	w.mu.Lock()
	if w.mode == m {
		w.mu.Unlock()
		return
	}
	w.mode = m
	fn := w.onChange
	w.mu.Unlock()

	w.logger.Info(ctx, "connectivity changed", "mode", m)
	if fn != nil {
		fn(ctx, m)
	}
}
