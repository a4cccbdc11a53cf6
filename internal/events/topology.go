package events

import amqp "github.com/rabbitmq/amqp091-go"

// Exchange — имя exchange в брокере.
type Exchange string

// RoutingKey — ключ маршрутизации события.
type RoutingKey string

// Topic-exchanges системы. Подписчики объявляют собственные очереди
// и привязывают их к нужным ключам.
const (
	ExchangeNodes    Exchange = "dirigent.nodes"
	ExchangeTasks    Exchange = "dirigent.tasks"
	ExchangePathways Exchange = "dirigent.pathways"
)

// Ключи маршрутизации публикуемых событий.
const (
	KeyNodeRegistered   RoutingKey = "node.registered"
	KeyNodeUnregistered RoutingKey = "node.unregistered"
	KeyTaskCompleted    RoutingKey = "task.completed"
	KeyPathwayCompleted RoutingKey = "pathway.completed"
)

// SetupTopology объявляет exchanges. Операция идемпотентна,
// вызывается при каждом подключении.
func SetupTopology(ch *amqp.Channel) error {
	for _, ex := range []Exchange{ExchangeNodes, ExchangeTasks, ExchangePathways} {
		if err := ch.ExchangeDeclare(
			string(ex),
			"topic",
			true,  // durable
			false, // auto-delete
			false, // internal
			false, // no-wait
			nil,
		); err != nil {
			return err
		}
	}
	return nil
}
