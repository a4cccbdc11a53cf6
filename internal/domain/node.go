package domain

import "time"

// Node — независимо развёрнутый worker-сервис, зарегистрированный
// в оркестраторе.
//
// Node объявляет один capability type и принимает вызовы по
// InvocationTarget. Владеет записью исключительно NodeRegistry:
// мутации идут только через register/unregister/heartbeat.
type Node struct {
	// ID — уникальный идентификатор node.
	ID string `json:"node_id"`

	// Capability — тип действий, которые умеет выполнять node.
	Capability CapabilityType `json:"capability_type"`

	// InvocationTarget — адрес, по которому ядро вызывает node
	// (HTTP endpoint, принимающий {task_id, action, payload}).
	InvocationTarget string `json:"invocation_target"`

	// Metadata — произвольные сведения о node (версия, список actions и т.д.).
	Metadata map[string]any `json:"metadata,omitempty"`

	// Status — active или inactive.
	Status NodeStatus `json:"status"`

	// RegisteredAt — время первичной регистрации.
	RegisteredAt time.Time `json:"registered_at"`

	// LastHeartbeat — время последнего heartbeat.
	LastHeartbeat time.Time `json:"last_heartbeat"`
}

// IsActive возвращает true, если node участвует в диспетчеризации.
func (n *Node) IsActive() bool {
	return n.Status == NodeStatusActive
}

// HealthReport — результат классификации живости одного node.
type HealthReport struct {
	// NodeID — идентификатор node.
	NodeID string `json:"node_id"`

	// Status — healthy, degraded или unhealthy.
	Status HealthStatus `json:"status"`

	// UptimeSeconds — время с момента регистрации.
	UptimeSeconds float64 `json:"uptime_seconds"`

	// LastHeartbeat — время последнего heartbeat (нулевое, если не было).
	LastHeartbeat time.Time `json:"last_heartbeat,omitempty"`
}
