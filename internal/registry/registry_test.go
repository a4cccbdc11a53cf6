package registry

import (
	"log/slog"
	"testing"
	"time"

	"github.com/shaiso/Dirigent/internal/domain"
)

func testRegistry() *Registry {
	return New(slog.New(slog.DiscardHandler))
}

func TestRegisterAndGet(t *testing.T) {
	r := testRegistry()

	r.Register("biz-1", domain.CapabilityBusiness, "http://biz-1:9000/invoke", map[string]any{"region": "eu"})

	node, ok := r.Get("biz-1")
	if !ok {
		t.Fatal("node not found after register")
	}
	if node.Status != domain.NodeStatusActive {
		t.Errorf("status = %s, want active", node.Status)
	}
	if node.Capability != domain.CapabilityBusiness {
		t.Errorf("capability = %s", node.Capability)
	}
	if node.RegisteredAt.IsZero() || node.LastHeartbeat.IsZero() {
		t.Error("timestamps not stamped")
	}
	if node.Metadata["region"] != "eu" {
		t.Errorf("metadata = %v", node.Metadata)
	}
}

func TestReRegisterKeepsPositionAndRegisteredAt(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	now := base
	r := NewWithClock(slog.New(slog.DiscardHandler), func() time.Time { return now })

	r.Register("a", domain.CapabilityBusiness, "http://a/invoke", nil)
	r.Register("b", domain.CapabilityBusiness, "http://b/invoke", nil)

	now = base.Add(time.Hour)
	r.Register("a", domain.CapabilityBusiness, "http://a-new/invoke", nil)

	list := r.List()
	if len(list) != 2 {
		t.Fatalf("list len = %d", len(list))
	}
	if list[0].ID != "a" || list[1].ID != "b" {
		t.Errorf("order = %s, %s: re-register must keep position", list[0].ID, list[1].ID)
	}
	if list[0].InvocationTarget != "http://a-new/invoke" {
		t.Errorf("target not updated: %s", list[0].InvocationTarget)
	}
	if !list[0].RegisteredAt.Equal(base) {
		t.Errorf("registered_at = %v, want original %v", list[0].RegisteredAt, base)
	}
	if !list[0].LastHeartbeat.Equal(base.Add(time.Hour)) {
		t.Errorf("last_heartbeat = %v, want refreshed", list[0].LastHeartbeat)
	}
}

func TestUnregister(t *testing.T) {
	r := testRegistry()
	r.Register("a", domain.CapabilityJob, "http://a/invoke", nil)

	if !r.Unregister("a") {
		t.Error("unregister known node failed")
	}
	if r.Unregister("a") {
		t.Error("double unregister succeeded")
	}
	if _, ok := r.Get("a"); ok {
		t.Error("node still visible after unregister")
	}
	if got := r.ByCapability(domain.CapabilityJob); len(got) != 0 {
		t.Errorf("ByCapability after unregister = %v", got)
	}
}

func TestByCapabilityFiltersAndOrders(t *testing.T) {
	r := testRegistry()
	r.Register("biz-2", domain.CapabilityBusiness, "http://biz-2/invoke", nil)
	r.Register("dev-1", domain.CapabilityDeveloper, "http://dev-1/invoke", nil)
	r.Register("biz-1", domain.CapabilityBusiness, "http://biz-1/invoke", nil)

	got := r.ByCapability(domain.CapabilityBusiness)
	if len(got) != 2 || got[0].ID != "biz-2" || got[1].ID != "biz-1" {
		t.Fatalf("ByCapability = %+v", got)
	}

	// Inactive node выпадает из выборки, но остаётся в реестре.
	r.SetStatus("biz-2", domain.NodeStatusInactive)
	got = r.ByCapability(domain.CapabilityBusiness)
	if len(got) != 1 || got[0].ID != "biz-1" {
		t.Errorf("after deactivation = %+v", got)
	}
	if r.Count() != 3 {
		t.Errorf("count = %d", r.Count())
	}
}

func TestHeartbeatReactivates(t *testing.T) {
	r := testRegistry()
	r.Register("a", domain.CapabilityBusiness, "http://a/invoke", nil)
	r.SetStatus("a", domain.NodeStatusInactive)

	if !r.Heartbeat("a") {
		t.Fatal("heartbeat failed")
	}
	node, _ := r.Get("a")
	if node.Status != domain.NodeStatusActive {
		t.Errorf("status = %s, want active after heartbeat", node.Status)
	}

	if r.Heartbeat("ghost") {
		t.Error("heartbeat for unknown node succeeded")
	}
}

func TestSnapshotIsolation(t *testing.T) {
	r := testRegistry()
	node := r.Register("a", domain.CapabilityBusiness, "http://a/invoke", nil)

	// Мутация снимка не должна протекать в реестр.
	node.Status = domain.NodeStatusInactive
	stored, _ := r.Get("a")
	if stored.Status != domain.NodeStatusActive {
		t.Error("snapshot mutation leaked into registry")
	}
}
