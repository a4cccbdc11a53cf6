package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/Dirigent/internal/domain"
)

// Message — конверт публикуемого события.
type Message struct {
	Event      string    `json:"event"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// NodeEvent — полезная нагрузка событий node.*.
type NodeEvent struct {
	NodeID     string `json:"node_id"`
	Capability string `json:"capability_type"`
	Status     string `json:"status"`
}

// TaskEvent — полезная нагрузка task.completed.
type TaskEvent struct {
	TaskID     string `json:"task_id"`
	Status     string `json:"status"`
	DurationMs int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// PathwayEvent — полезная нагрузка pathway.completed.
type PathwayEvent struct {
	PathwayID string `json:"pathway_id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	Steps     int    `json:"steps"`
	Error     string `json:"error,omitempty"`
}

// Publisher публикует события жизненного цикла в брокер.
//
// Публикация — fire-and-forget: ошибка логируется, но вызывающему
// не возвращается, чтобы недоступный брокер не останавливал работу.
// Nil-публикатор безопасен: все методы на nil-получателе — no-op,
// поэтому брокер остаётся необязательной зависимостью.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт Publisher поверх подключения.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{conn: conn, logger: logger}
}

// NodeRegistered публикует регистрацию node.
func (p *Publisher) NodeRegistered(ctx context.Context, node *domain.Node) {
	if p == nil {
		return
	}
	p.publish(ctx, ExchangeNodes, KeyNodeRegistered, NodeEvent{
		NodeID:     node.ID,
		Capability: string(node.Capability),
		Status:     string(node.Status),
	})
}

// NodeUnregistered публикует удаление node.
func (p *Publisher) NodeUnregistered(ctx context.Context, nodeID string) {
	if p == nil {
		return
	}
	p.publish(ctx, ExchangeNodes, KeyNodeUnregistered, NodeEvent{NodeID: nodeID})
}

// TaskCompleted публикует завершение task.
func (p *Publisher) TaskCompleted(ctx context.Context, result *domain.TaskResult) {
	if p == nil {
		return
	}
	p.publish(ctx, ExchangeTasks, KeyTaskCompleted, TaskEvent{
		TaskID:     result.TaskID,
		Status:     string(result.Status),
		DurationMs: result.DurationMs,
		Error:      result.Error,
	})
}

// PathwayCompleted публикует завершение прогона pathway.
func (p *Publisher) PathwayCompleted(ctx context.Context, ec *domain.ExecutionContext) {
	if p == nil {
		return
	}
	p.publish(ctx, ExchangePathways, KeyPathwayCompleted, PathwayEvent{
		PathwayID: ec.PathwayID,
		Name:      ec.Name,
		Status:    string(ec.Status),
		Steps:     len(ec.Steps),
		Error:     ec.Error,
	})
}

func (p *Publisher) publish(ctx context.Context, exchange Exchange, key RoutingKey, payload any) {
	body, err := json.Marshal(Message{
		Event:      string(key),
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	})
	if err != nil {
		p.logger.Error("marshal event", "key", key, "error", err)
		return
	}

	ch, err := p.conn.Channel()
	if err != nil {
		p.logger.Error("broker unavailable, event dropped", "key", key, "error", err)
		return
	}

	err = ch.PublishWithContext(ctx, string(exchange), string(key), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		p.logger.Error("publish event", "exchange", exchange, "key", key, "error", err)
	}
}
