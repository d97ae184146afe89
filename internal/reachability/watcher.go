package reachability

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"
)

// Watcher periodically re-probes a fixed set of URLs and logs transitions
// between reachable and unreachable. It exists for operators who point the
// service at a handful of dependencies and want state changes in the logs.
type Watcher struct {
	checker     *Checker
	urls        []string
	logger      *slog.Logger
	interval    time.Duration
	concurrency int

	mu   sync.Mutex
	down map[string]bool
}

func NewWatcher(checker *Checker, urls []string, logger *slog.Logger, interval time.Duration) *Watcher {
	return &Watcher{
		checker:     checker,
		urls:        urls,
		logger:      logger,
		interval:    interval,
		concurrency: 10,
		down:        make(map[string]bool),
	}
}

// Start blocks until ctx is cancelled. Run it in its own goroutine.
func (w *Watcher) Start(ctx context.Context) {
	if len(w.urls) == 0 {
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *Watcher) sweep(ctx context.Context) {
	sem := make(chan struct{}, w.concurrency)
	var wg sync.WaitGroup

	for _, target := range w.urls {
		wg.Add(1)

		go func(target string) {
			defer wg.Done()

			// Jitter keeps probes from landing as a synchronized spike.
			time.Sleep(time.Duration(rand.Intn(500)) * time.Millisecond)

			sem <- struct{}{}
			defer func() { <-sem }()

			checkCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
			defer cancel()

			w.probe(checkCtx, target)
		}(target)
	}
	wg.Wait()
}

func (w *Watcher) probe(ctx context.Context, target string) {
	result, err := w.checker.Check(ctx, target)
	if err != nil {
		w.logger.Warn("Probe failed", slog.String("url", target), slog.Any("error", err))
		return
	}

	w.mu.Lock()
	wasDown := w.down[target]
	w.down[target] = !result.Reachable
	w.mu.Unlock()

	switch {
	case !result.Reachable && !wasDown:
		w.logger.Warn("Endpoint became unreachable",
			slog.String("url", target),
			slog.Int("status", result.StatusCode))
	case result.Reachable && wasDown:
		w.logger.Info("Endpoint recovered",
			slog.String("url", target),
			slog.Duration("latency", result.Latency))
	}
}
