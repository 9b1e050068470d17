package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/boddenberg/loanhub/internal/domain"
	"github.com/boddenberg/loanhub/internal/port"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Health statuses.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// HealthService probes the injected dependencies.
type HealthService struct {
	checks  map[string]port.Pinger
	timeout time.Duration
	logger  *zap.Logger
}

// NewHealthService creates a checker for the named dependencies.
func NewHealthService(checks map[string]port.Pinger, timeout time.Duration, logger *zap.Logger) *HealthService {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &HealthService{checks: checks, timeout: timeout, logger: logger}
}

// Check pings every dependency in parallel. The overall status is healthy
// when all succeed, unhealthy when all fail and degraded otherwise.
func (s *HealthService) Check(ctx context.Context) *domain.HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var (
		mu       sync.Mutex
		services = make([]domain.ServiceHealth, 0, len(s.checks))
	)

	// Probes never return an error so one failure does not cancel the others.
	var g errgroup.Group
	for name, dep := range s.checks {
		name, dep := name, dep
		g.Go(func() error {
			start := time.Now()
			err := dep.Ping(ctx)

			h := domain.ServiceHealth{
				Name:        name,
				Status:      StatusHealthy,
				LatencyMs:   time.Since(start).Milliseconds(),
				LastChecked: time.Now().UTC().Format(time.RFC3339),
			}
			if err != nil {
				h.Status = StatusUnhealthy
				h.Error = err.Error()
				s.logger.Warn("health probe failed", zap.String("dependency", name), zap.Error(err))
			}

			mu.Lock()
			services = append(services, h)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(services, func(i, j int) bool { return services[i].Name < services[j].Name })

	failed := 0
	for _, h := range services {
		if h.Status != StatusHealthy {
			failed++
		}
	}

	status := StatusHealthy
	switch {
	case len(services) > 0 && failed == len(services):
		status = StatusUnhealthy
	case failed > 0:
		status = StatusDegraded
	}
	return &domain.HealthStatus{Status: status, Services: services}
}
