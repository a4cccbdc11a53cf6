package api

import (
	"encoding/json"
	"net/http"
)

// RegisterNode обрабатывает POST /api/v1/nodes/register.
func (h *Handler) RegisterNode(w http.ResponseWriter, r *http.Request) {
	var req RegisterNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid JSON body")
		return
	}

	if req.NodeID == "" {
		BadRequest(w, "node_id is required")
		return
	}
	if !req.CapabilityType.IsValid() {
		BadRequest(w, "unknown capability_type: "+string(req.CapabilityType))
		return
	}
	if req.InvocationTarget == "" {
		BadRequest(w, "invocation_target is required")
		return
	}

	node := h.registry.Register(req.NodeID, req.CapabilityType, req.InvocationTarget, req.Metadata)
	h.events.NodeRegistered(r.Context(), node)
	Created(w, node)
}

// UnregisterNode обрабатывает DELETE /api/v1/nodes/{id}.
func (h *Handler) UnregisterNode(w http.ResponseWriter, r *http.Request) {
	nodeID := r.PathValue("id")
	if !h.registry.Unregister(nodeID) {
		NotFound(w, "node not found: "+nodeID)
		return
	}
	h.events.NodeUnregistered(r.Context(), nodeID)
	NoContent(w)
}

// ListNodes обрабатывает GET /api/v1/nodes.
func (h *Handler) ListNodes(w http.ResponseWriter, r *http.Request) {
	nodes := h.registry.List()
	List(w, nodes, len(nodes))
}

// GetNode обрабатывает GET /api/v1/nodes/{id}.
func (h *Handler) GetNode(w http.ResponseWriter, r *http.Request) {
	nodeID := r.PathValue("id")
	node, ok := h.registry.Get(nodeID)
	if !ok {
		NotFound(w, "node not found: "+nodeID)
		return
	}
	Success(w, node)
}

// NodeHeartbeat обрабатывает POST /api/v1/nodes/{id}/heartbeat.
func (h *Handler) NodeHeartbeat(w http.ResponseWriter, r *http.Request) {
	nodeID := r.PathValue("id")
	if !h.registry.Heartbeat(nodeID) {
		NotFound(w, "node not found: "+nodeID)
		return
	}
	NoContent(w)
}

// NodesHealth обрабатывает GET /api/v1/nodes/health.
func (h *Handler) NodesHealth(w http.ResponseWriter, r *http.Request) {
	snapshot := h.registry.HealthSnapshot()
	List(w, snapshot, len(snapshot))
}
