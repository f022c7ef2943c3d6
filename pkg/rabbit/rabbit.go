package rabbit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Psychoriddler/Emergilink-prototype/pkg/logger"
	wrap "github.com/Psychoriddler/Emergilink-prototype/pkg/logger/wrapper"
)

const (
	actionConnected = "rabbitmq_connected"
	actionClosed    = "rabbitmq_connection_closed"
	actionClosing   = "rabbitmq_connection_closing"
	actionReconnect = "rabbitmq_reconnection_success"
)

var ErrClosed = errors.New("rabbitmq connection is closed")

// Binding attaches a durable queue to a topic exchange.
type Binding struct {
	Queue    string
	Exchange string
	Key      string
}

// Topology is declared on connect and again after every reconnect.
type Topology struct {
	Exchanges []string
	Bindings  []Binding
}

type RabbitMQ struct {
	mu      sync.RWMutex
	conn    *amqp.Connection
	channel *amqp.Channel
	closed  bool

	dsn      string
	topology Topology
	log      logger.Logger
}

// New dials the broker, puts the channel into confirm mode and declares the topology.
func New(ctx context.Context, dsn string, topology Topology, log logger.Logger) (*RabbitMQ, error) {
	r := &RabbitMQ{
		dsn:      dsn,
		topology: topology,
		log:      log,
	}

	if err := r.connect(); err != nil {
		return nil, err
	}

	log.Info(wrap.WithAction(ctx, actionConnected), "connected to rabbitMQ")
	return r, nil
}

func (r *RabbitMQ) connect() error {
	conn, err := amqp.DialConfig(r.dsn, amqp.Config{
		Heartbeat: 10 * time.Second,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open a channel: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		conn.Close()
		return fmt.Errorf("failed to enable publisher confirms: %w", err)
	}

	if err := declare(ch, r.topology); err != nil {
		conn.Close()
		return err
	}

	closeChan := make(chan *amqp.Error, 1)
	conn.NotifyClose(closeChan)

	r.conn = conn
	r.channel = ch
	r.closed = false

	go r.monitorConnection(closeChan)
	return nil
}

func declare(ch *amqp.Channel, t Topology) error {
	for _, ex := range t.Exchanges {
		if err := ch.ExchangeDeclare(ex, "topic", true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare exchange %s: %w", ex, err)
		}
	}
	for _, b := range t.Bindings {
		if _, err := ch.QueueDeclare(b.Queue, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare queue %s: %w", b.Queue, err)
		}
		if err := ch.QueueBind(b.Queue, b.Key, b.Exchange, false, nil); err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", b.Queue, b.Exchange, err)
		}
	}
	return nil
}

func (r *RabbitMQ) monitorConnection(closeChan chan *amqp.Error) {
	closeErr := <-closeChan

	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	ctx := wrap.WithAction(context.Background(), actionClosed)
	if closeErr != nil {
		r.log.Error(ctx, "RabbitMQ connection closed with error", closeErr)
	} else {
		r.log.Debug(ctx, "RabbitMQ connection closed gracefully")
	}
}

// Channel returns the current channel, reconnecting first when the connection dropped.
func (r *RabbitMQ) Channel(ctx context.Context) (*amqp.Channel, error) {
	if err := r.EnsureConnection(ctx); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.channel == nil {
		return nil, ErrClosed
	}
	return r.channel, nil
}

func (r *RabbitMQ) IsConnectionClosed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.conn == nil || r.closed || r.conn.IsClosed() || r.channel.IsClosed()
}

func (r *RabbitMQ) EnsureConnection(ctx context.Context) error {
	if !r.IsConnectionClosed() {
		return nil
	}

	r.log.Warn(ctx, "rabbit connection closed, reconnecting")
	if err := r.Reconnect(ctx); err != nil {
		return fmt.Errorf("failed to reconnect to RabbitMQ: %w", err)
	}
	return nil
}

// Reconnect retries the dial with a linear backoff until ctx is done.
func (r *RabbitMQ) Reconnect(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.dsn == "" {
		return fmt.Errorf("dsn is empty: can't reconnect")
	}
	if !r.closed && r.conn != nil && !r.conn.IsClosed() && r.channel != nil && !r.channel.IsClosed() {
		return nil
	}

	var err error
	for i := range 5 {
		if err = r.connect(); err == nil {
			break
		}

		wait := time.Duration(i+1) * 2 * time.Second
		r.log.Debug(ctx, "reconnect attempt failed", "attempt", i+1, "retry_in", wait.String())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	if err != nil {
		return err
	}

	r.log.Info(wrap.WithAction(ctx, actionReconnect), "RabbitMQ reconnected successfully")
	return nil
}

func (r *RabbitMQ) Close(ctx context.Context) error {
	ctx = wrap.WithAction(ctx, actionClosing)

	r.mu.Lock()
	if r.conn == nil {
		r.mu.Unlock()
		return nil
	}
	ch, conn := r.channel, r.conn
	r.channel, r.conn, r.closed = nil, nil, true
	r.mu.Unlock()

	if ch != nil {
		if err := closeWithCtx(ctx, ch.Close); err != nil && ctx.Err() == nil {
			r.log.Error(ctx, "error closing channel", err)
		}
	}

	if err := closeWithCtx(ctx, conn.Close); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("failed to close connection: %w", err)
	}

	r.log.Info(wrap.WithAction(ctx, actionClosed), "rabbitMQ closed")
	return nil
}

func closeWithCtx(ctx context.Context, fn func() error) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- fn()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
