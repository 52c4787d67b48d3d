package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cognition-berries/pkg/config"
	"cognition-berries/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ImageGCQueueName = "image_gc_queue"
	ImageExchange    = "images"
	ImageOrphanedKey = "image.orphaned"
	consumerPrefetch = 10
	publishTimeout   = 5 * time.Second
)

// ErrMalformedTask marks deliveries that can never be processed.
var ErrMalformedTask = errors.New("malformed image gc task")

// ImageGCTask asks the janitor to delete an image once nothing references it.
type ImageGCTask struct {
	ImageID     string    `json:"imageId"`
	CourseID    string    `json:"courseId,omitempty"`
	Reason      string    `json:"reason"`
	DisplacedAt time.Time `json:"displacedAt"`
}

type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *logger.Logger
}

func NewRabbitMQClient(cfg *config.Config, log *logger.Logger) (*Client, error) {
	conn, err := amqp.Dial(cfg.RabbitMQURL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareTopology(channel); err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}

	log.Info("Connected to RabbitMQ at %s:%s", cfg.RabbitMQHost, cfg.RabbitMQPort)

	return &Client{
		conn:    conn,
		channel: channel,
		logger:  log,
	}, nil
}

func declareTopology(channel *amqp.Channel) error {
	err := channel.ExchangeDeclare(
		ImageExchange, // name
		"direct",      // type
		true,          // durable
		false,         // auto-deleted
		false,         // internal
		false,         // no-wait
		nil,           // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	_, err = channel.QueueDeclare(
		ImageGCQueueName, // name
		true,             // durable
		false,            // delete when unused
		false,            // exclusive
		false,            // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	err = channel.QueueBind(
		ImageGCQueueName, // queue name
		ImageOrphanedKey, // routing key
		ImageExchange,    // exchange
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}
	return nil
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func (c *Client) PublishImageGCTask(ctx context.Context, task ImageGCTask) error {
	if task.DisplacedAt.IsZero() {
		task.DisplacedAt = time.Now().UTC()
	}

	body, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = c.channel.PublishWithContext(pubCtx,
		ImageExchange,    // exchange
		ImageOrphanedKey, // routing key
		false,            // mandatory
		false,            // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    task.DisplacedAt,
		},
	)
	if err != nil {
		c.logger.Error("[RABBITMQ] Failed to publish image gc task for %s: %v", task.ImageID, err)
		return fmt.Errorf("failed to publish message: %w", err)
	}

	c.logger.Info("[RABBITMQ] Queued image %s for collection (%s)", task.ImageID, task.Reason)
	return nil
}

// DecodeImageGCTask parses a delivery body.
func DecodeImageGCTask(body []byte) (ImageGCTask, error) {
	var task ImageGCTask
	if err := json.Unmarshal(body, &task); err != nil {
		return task, fmt.Errorf("%w: %v", ErrMalformedTask, err)
	}
	if task.ImageID == "" {
		return task, fmt.Errorf("%w: missing imageId", ErrMalformedTask)
	}
	return task, nil
}

// ConsumeImageGCTasks delivers tasks to handler until ctx is cancelled or the
// channel closes. Malformed tasks are dropped, handler errors requeue.
func (c *Client) ConsumeImageGCTasks(ctx context.Context, handler func(ctx context.Context, task ImageGCTask) error) error {
	if err := c.channel.Qos(consumerPrefetch, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := c.channel.Consume(
		ImageGCQueueName, // queue
		"janitor",        // consumer
		false,            // auto-ack
		false,            // exclusive
		false,            // no-local
		false,            // no-wait
		nil,              // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("[RABBITMQ] Started consuming from queue: %s", ImageGCQueueName)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					c.logger.Warn("[RABBITMQ] Delivery channel closed for %s", ImageGCQueueName)
					return
				}
				c.handleDelivery(ctx, msg, handler)
			}
		}
	}()

	return nil
}

func (c *Client) handleDelivery(ctx context.Context, msg amqp.Delivery, handler func(ctx context.Context, task ImageGCTask) error) {
	task, err := DecodeImageGCTask(msg.Body)
	if err != nil {
		c.logger.Error("[RABBITMQ] Dropping task: %v, body=%s", err, string(msg.Body))
		msg.Nack(false, false)
		return
	}

	if err := handler(ctx, task); err != nil {
		if errors.Is(err, ErrMalformedTask) {
			c.logger.Error("[RABBITMQ] Dropping task for %s: %v", task.ImageID, err)
			msg.Nack(false, false)
			return
		}
		c.logger.Error("[RABBITMQ] Handler failed for image %s, requeueing: %v", task.ImageID, err)
		msg.Nack(false, true)
		return
	}

	msg.Ack(false)
}

// QueueLength returns the number of ready messages in the GC queue.
func (c *Client) QueueLength() (int, error) {
	queue, err := c.channel.QueueDeclarePassive(ImageGCQueueName, true, false, false, false, nil)
	if err != nil {
		return 0, err
	}
	return queue.Messages, nil
}
