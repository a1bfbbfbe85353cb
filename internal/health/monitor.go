// internal/health/monitor.go

// Package health periodically probes every registered backend and keeps
// the stores' health status and model caches fresh.
package health

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/bacoco/la-famille-agentui/internal/state"
	"github.com/bacoco/la-famille-agentui/internal/transport"
	"github.com/bacoco/la-famille-agentui/internal/types"
)

const defaultMaxConcurrentProbes = 4

// Monitor probes backends on a fixed interval. Probes run concurrently,
// bounded by a semaphore so a wall of slow backends cannot pile up
// goroutines.
type Monitor struct {
	backends *state.BackendStore
	client   *transport.Client
	interval time.Duration
	sem      *semaphore.Weighted
}

// New creates a monitor. maxConcurrent <= 0 selects the default bound.
func New(backends *state.BackendStore, client *transport.Client, interval time.Duration, maxConcurrent int) *Monitor {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrentProbes
	}
	return &Monitor{
		backends: backends,
		client:   client,
		interval: interval,
		sem:      semaphore.NewWeighted(int64(maxConcurrent)),
	}
}

// Run probes all backends immediately, then on every tick until ctx is
// cancelled.
func (m *Monitor) Run(ctx context.Context) {
	m.CheckAll(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.CheckAll(ctx)
		}
	}
}

// CheckAll probes every backend once and waits for the results.
func (m *Monitor) CheckAll(ctx context.Context) {
	var wg sync.WaitGroup
	for _, backend := range m.backends.List() {
		if err := m.sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(b *types.APIBackend) {
			defer wg.Done()
			defer m.sem.Release(1)
			m.check(ctx, b)
		}(backend)
	}
	wg.Wait()
}

// Check probes a single backend by ID.
func (m *Monitor) Check(ctx context.Context, id types.BackendID) types.HealthStatus {
	backend := m.backends.Get(id)
	if backend == nil {
		return types.HealthUnknown
	}
	return m.check(ctx, backend)
}

func (m *Monitor) check(ctx context.Context, backend *types.APIBackend) types.HealthStatus {
	status := types.HealthUnhealthy
	if m.client.ProbeHealth(ctx, backend) {
		status = types.HealthHealthy
	}
	m.backends.SetHealthStatus(backend.ID, status)
	slog.Debug("backend probed", "backend_id", backend.ID, "status", status)

	if status == types.HealthHealthy {
		if models := m.client.ListModels(ctx, backend); len(models) > 0 {
			m.backends.SetModels(backend.ID, models)
		}
	}
	return status
}
