package registry

import (
	"time"

	"github.com/shaiso/Dirigent/internal/domain"
)

// Пороги классификации живости по возрасту heartbeat.
const (
	// HealthyThreshold — моложе 30 секунд: healthy.
	HealthyThreshold = 30 * time.Second

	// DegradedThreshold — от 30 до 60 секунд: degraded.
	// Старше 60 секунд (или heartbeat не приходил): unhealthy.
	DegradedThreshold = 60 * time.Second
)

// HealthSnapshot классифицирует живость всех nodes.
//
// staleness = now − last_heartbeat:
//
//	< 30s  → healthy
//	30–60s → degraded
//	≥ 60s  → unhealthy (как и node без heartbeat вовсе)
func (r *Registry) HealthSnapshot() map[string]domain.HealthReport {
	return r.healthSnapshotAt(r.now())
}

// healthSnapshotAt — вариант с явным временем, используется в тестах.
func (r *Registry) healthSnapshotAt(now time.Time) map[string]domain.HealthReport {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]domain.HealthReport, len(r.entries))
	for id, node := range r.entries {
		out[id] = domain.HealthReport{
			NodeID:        id,
			Status:        classify(node.LastHeartbeat, now),
			UptimeSeconds: now.Sub(node.RegisteredAt).Seconds(),
			LastHeartbeat: node.LastHeartbeat,
		}
	}
	return out
}

// classify определяет HealthStatus по возрасту heartbeat.
func classify(lastHeartbeat, now time.Time) domain.HealthStatus {
	if lastHeartbeat.IsZero() {
		return domain.HealthStatusUnhealthy
	}

	staleness := now.Sub(lastHeartbeat)
	switch {
	case staleness < HealthyThreshold:
		return domain.HealthStatusHealthy
	case staleness < DegradedThreshold:
		return domain.HealthStatusDegraded
	default:
		return domain.HealthStatusUnhealthy
	}
}
