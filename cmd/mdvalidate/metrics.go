package main

import (
	"context"
	"runtime"
	"time"

	"go.uber.org/zap"
)

const bytesPerMB = 1024 * 1024

// logRuntimeMetrics writes heap and goroutine statistics to log
func logRuntimeMetrics(log *zap.Logger) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	log.Info("metrics",
		zap.Int("goroutines", runtime.NumGoroutine()),
		zap.Float64("alloc_mb", float64(m.Alloc)/bytesPerMB),
		zap.Float64("sys_mb", float64(m.Sys)/bytesPerMB),
		zap.Uint32("gc_cycles", m.NumGC),
	)
}

// startMetricsLogger logs runtime metrics every interval until ctx is done
func startMetricsLogger(ctx context.Context, interval time.Duration) {
	if ctx == nil {
		ctx = context.Background()
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				logRuntimeMetrics(zap.L())
			}
		}
	}()
}
