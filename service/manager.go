package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/c360/travelstreams/health"
)

// Manager owns the lifecycle of a set of services. Services start in
// registration order and stop in reverse, so dependents come up after
// and go down before the things they depend on.
type Manager struct {
	logger *slog.Logger

	mu       sync.RWMutex
	services map[string]Service
	order    []string
}

// NewManager creates an empty service manager
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		logger:   logger,
		services: make(map[string]Service),
	}
}

// Register adds a service. Registration order is startup order.
func (m *Manager) Register(svc Service) error {
	if svc == nil {
		return fmt.Errorf("Manager.Register: service is nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	name := svc.Name()
	if _, exists := m.services[name]; exists {
		return fmt.Errorf("Manager.Register: service %q already registered", name)
	}

	m.services[name] = svc
	m.order = append(m.order, name)
	return nil
}

// Get returns a registered service by name
func (m *Manager) Get(name string) (Service, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	svc, ok := m.services[name]
	return svc, ok
}

// Count returns the number of registered services
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.services)
}

// StartAll starts every registered service in registration order.
// On failure the already-started services are stopped in reverse.
func (m *Manager) StartAll(ctx context.Context) error {
	m.mu.RLock()
	order := make([]string, len(m.order))
	copy(order, m.order)
	services := make(map[string]Service, len(m.services))
	for name, svc := range m.services {
		services[name] = svc
	}
	m.mu.RUnlock()

	m.logger.Debug("starting services", "count", len(order), "order", order)

	var started []string
	for _, name := range order {
		svc := services[name]
		if err := svc.Start(ctx); err != nil {
			m.logger.Error("service start failed", "service", name, "error", err)
			for i := len(started) - 1; i >= 0; i-- {
				if stopErr := services[started[i]].Stop(5 * time.Second); stopErr != nil {
					m.logger.Error("rollback stop failed", "service", started[i], "error", stopErr)
				}
			}
			return fmt.Errorf("Manager.StartAll: start service %s: %w", name, err)
		}
		started = append(started, name)
		m.logger.Debug("service started", "service", name)
	}

	m.logger.Info("all services started", "count", len(started))
	return nil
}

// StopAll stops every registered service in reverse registration order
// and clears the registry. All services are attempted even when some fail.
func (m *Manager) StopAll(timeout time.Duration) error {
	m.mu.Lock()
	order := make([]string, len(m.order))
	copy(order, m.order)
	services := make(map[string]Service, len(m.services))
	for name, svc := range m.services {
		services[name] = svc
	}
	m.services = make(map[string]Service)
	m.order = nil
	m.mu.Unlock()

	logger := m.logger.With("operation", "services-shutdown")
	logger.Debug("stopping services", "count", len(order), "timeout", timeout)
	began := time.Now()

	var errs []error
	for i := len(order) - 1; i >= 0; i-- {
		name := order[i]
		svcStart := time.Now()
		if err := services[name].Stop(timeout); err != nil {
			logger.Error("service stop failed",
				"service", name,
				"duration_ms", time.Since(svcStart).Milliseconds(),
				"error", err,
			)
			errs = append(errs, fmt.Errorf("stop service %s: %w", name, err))
			continue
		}
		logger.Debug("service stopped",
			"service", name,
			"duration_ms", time.Since(svcStart).Milliseconds(),
		)
	}

	logger.Debug("shutdown sequence completed",
		"duration_ms", time.Since(began).Milliseconds(),
		"error_count", len(errs),
	)

	if len(errs) > 0 {
		return fmt.Errorf("Manager.StopAll: %v", errs)
	}
	return nil
}

// HealthyServices returns the names of services reporting healthy
func (m *Manager) HealthyServices() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var healthy []string
	for _, name := range m.order {
		if m.services[name].IsHealthy() {
			healthy = append(healthy, name)
		}
	}
	return healthy
}

// UnhealthyServices returns the names of services reporting unhealthy
func (m *Manager) UnhealthyServices() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var unhealthy []string
	for _, name := range m.order {
		if !m.services[name].IsHealthy() {
			unhealthy = append(unhealthy, name)
		}
	}
	return unhealthy
}

// Health aggregates the health of all registered services under systemName
func (m *Manager) Health(systemName string) health.Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	statuses := make([]health.Status, 0, len(m.order))
	for _, name := range m.order {
		statuses = append(statuses, m.services[name].Health())
	}
	return health.Aggregate(systemName, statuses)
}
