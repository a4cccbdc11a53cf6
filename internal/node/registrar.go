package node

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/shaiso/Dirigent/internal/domain"
)

const (
	// defaultHeartbeatInterval держит node в healthy-зоне (< 30s).
	defaultHeartbeatInterval = 10 * time.Second

	// registerRetryBackoff — пауза между попытками регистрации,
	// пока ядро недоступно.
	registerRetryBackoff = 2 * time.Second
)

// RegistrarConfig — конфигурация Registrar.
type RegistrarConfig struct {
	// CoreURL — базовый адрес API ядра.
	CoreURL string

	// NodeID, Capability, AdvertiseURL — идентичность node.
	// AdvertiseURL — адрес, по которому ядро будет вызывать node.
	NodeID       string
	Capability   domain.CapabilityType
	AdvertiseURL string

	// Actions публикуются в metadata регистрации.
	Actions []string

	Logger *slog.Logger

	// HeartbeatInterval — период heartbeat. 0 — значение по умолчанию.
	HeartbeatInterval time.Duration
}

// Registrar регистрирует node в ядре и поддерживает heartbeat.
//
// Регистрация повторяется до успеха: node может стартовать раньше
// ядра. При остановке node дерегистрируется.
type Registrar struct {
	cfg    RegistrarConfig
	client *http.Client
	logger *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRegistrar создаёт Registrar.
func NewRegistrar(cfg RegistrarConfig) *Registrar {
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = defaultHeartbeatInterval
	}
	return &Registrar{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: cfg.Logger,
	}
}

// Start запускает цикл регистрации и heartbeat.
func (r *Registrar) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)
	r.wg.Add(1)
	go r.loop(ctx)
}

// Stop останавливает цикл и дерегистрирует node.
func (r *Registrar) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.deregister(ctx); err != nil {
		r.logger.Warn("deregister node", "error", err)
	} else {
		r.logger.Info("node deregistered", "node_id", r.cfg.NodeID)
	}
}

func (r *Registrar) loop(ctx context.Context) {
	defer r.wg.Done()

	for {
		if err := r.register(ctx); err != nil {
			r.logger.Warn("register node, retrying",
				"node_id", r.cfg.NodeID,
				"error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(registerRetryBackoff):
				continue
			}
		}
		break
	}
	r.logger.Info("node registered",
		"node_id", r.cfg.NodeID,
		"capability", r.cfg.Capability,
		"core_url", r.cfg.CoreURL)

	ticker := time.NewTicker(r.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.heartbeat(ctx); err != nil {
				r.logger.Warn("heartbeat failed", "error", err)
				// Ядро могло перезапуститься и забыть node.
				if err := r.register(ctx); err != nil {
					r.logger.Warn("re-register failed", "error", err)
				}
			}
		}
	}
}

func (r *Registrar) register(ctx context.Context) error {
	body := map[string]any{
		"node_id":           r.cfg.NodeID,
		"capability_type":   r.cfg.Capability,
		"invocation_target": r.cfg.AdvertiseURL,
		"metadata": map[string]any{
			"actions": r.cfg.Actions,
		},
	}
	return r.post(ctx, "/api/v1/nodes/register", body)
}

func (r *Registrar) heartbeat(ctx context.Context) error {
	return r.post(ctx, fmt.Sprintf("/api/v1/nodes/%s/heartbeat", r.cfg.NodeID), nil)
}

func (r *Registrar) deregister(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		r.cfg.CoreURL+"/api/v1/nodes/"+r.cfg.NodeID, nil)
	if err != nil {
		return err
	}
	return r.do(req)
}

func (r *Registrar) post(ctx context.Context, path string, body any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.CoreURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return r.do(req)
}

func (r *Registrar) do(req *http.Request) error {
	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("core returned HTTP %d", resp.StatusCode)
	}
	return nil
}
