package utils

import (
	"sync"
	"time"
)

// Tracks performance metrics across the system
type MetricsCollector struct {
	mu           sync.RWMutex
	requestCount uint64
	errorCount   uint64

	// Maps operation name to list of latencies in nanoseconds
	operationTimes map[string][]int64

	systemStartTime time.Time
}

func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		operationTimes:  make(map[string][]int64),
		systemStartTime: time.Now(),
	}
}

func (mc *MetricsCollector) IncrementRequests() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.requestCount++
}

func (mc *MetricsCollector) IncrementErrors() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.errorCount++
}

func (mc *MetricsCollector) AddOperationLatency(operationName string, duration time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if _, exists := mc.operationTimes[operationName]; !exists {
		mc.operationTimes[operationName] = make([]int64, 0)
	}
	mc.operationTimes[operationName] = append(
		mc.operationTimes[operationName],
		duration.Nanoseconds(),
	)
}

// Snapshot summarizes collected metrics for the health endpoint.
type MetricsSnapshot struct {
	Requests   uint64                   `json:"requests"`
	Errors     uint64                   `json:"errors"`
	Uptime     string                   `json:"uptime"`
	Operations map[string]OperationStat `json:"operations"`
}

type OperationStat struct {
	Count     int   `json:"count"`
	AvgMicros int64 `json:"avgMicros"`
}

func (mc *MetricsCollector) Snapshot() MetricsSnapshot {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	ops := make(map[string]OperationStat, len(mc.operationTimes))
	for name, times := range mc.operationTimes {
		if len(times) == 0 {
			continue
		}
		var total int64
		for _, t := range times {
			total += t
		}
		ops[name] = OperationStat{
			Count:     len(times),
			AvgMicros: total / int64(len(times)) / 1000,
		}
	}

	return MetricsSnapshot{
		Requests:   mc.requestCount,
		Errors:     mc.errorCount,
		Uptime:     time.Since(mc.systemStartTime).Round(time.Second).String(),
		Operations: ops,
	}
}
