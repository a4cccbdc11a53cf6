package events

import (
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Connection — подключение к RabbitMQ с ленивым переподключением.
// Канал восстанавливается при следующем обращении после обрыва.
type Connection struct {
	url    string
	logger *slog.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// Dial подключается к брокеру и объявляет топологию.
func Dial(url string, logger *slog.Logger) (*Connection, error) {
	c := &Connection{url: url, logger: logger}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.connect(); err != nil {
		return nil, err
	}
	return c, nil
}

// connect устанавливает соединение. Вызывается под mu.
func (c *Connection) connect() error {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	if err := SetupTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("setup topology: %w", err)
	}

	c.conn = conn
	c.ch = ch
	c.logger.Info("connected to message broker")
	return nil
}

// Channel возвращает живой канал, переподключаясь при необходимости.
func (c *Connection) Channel() (*amqp.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil && !c.conn.IsClosed() && !c.ch.IsClosed() {
		return c.ch, nil
	}

	c.logger.Warn("broker connection lost, reconnecting")
	if err := c.connect(); err != nil {
		return nil, err
	}
	return c.ch, nil
}

// Close закрывает канал и соединение.
func (c *Connection) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ch != nil {
		c.ch.Close()
	}
	if c.conn != nil {
		c.conn.Close()
	}
}
