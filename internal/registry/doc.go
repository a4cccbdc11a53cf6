// Package registry — реестр worker-nodes.
//
// Отвечает за регистрацию, heartbeat, выбор nodes по capability type
// и классификацию живости (healthy/degraded/unhealthy).
package registry
