// Package redis provides a Redis-backed transport for the operator bus.
// Tasks are consumed from a Redis list and acknowledgments are pushed to
// another, both JSON-encoded.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/A13xB0/GoOperator/operator"
	"github.com/A13xB0/GoOperator/types"
)

// Config holds configuration for the Redis transport.
type Config struct {
	URL          string        // Connection string, used when Client is nil
	Client       *redis.Client // Optional existing Redis client
	Queue        string        // List tasks are consumed from
	AckQueue     string        // List acknowledgments are pushed to
	BlockTimeout time.Duration // Per-poll blocking timeout for the consume loop
}

// Operator manages the Redis connection and implements operator.Operator.
type Operator struct {
	client       *redis.Client
	config       Config
	ctx          context.Context
	receiverChan chan operator.Delivery
}

// New creates a Redis transport with the provided configuration and
// verifies the connection.
func New(ctx context.Context, config Config) (*Operator, error) {
	// Set default values if not provided
	if config.Queue == "" {
		config.Queue = "gooperator:tasks"
	}
	if config.AckQueue == "" {
		config.AckQueue = "gooperator:acks"
	}
	if config.BlockTimeout == 0 {
		config.BlockTimeout = time.Second
	}

	client := config.Client
	if client == nil {
		if config.URL == "" {
			return nil, fmt.Errorf("redis client or url must be provided")
		}
		redisOpts, err := redis.ParseURL(config.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		client = redis.NewClient(redisOpts)
	}

	// Test connection
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Operator{
		client: client,
		config: config,
		ctx:    ctx,
	}, nil
}

// Receiver implements the operator.Operator interface by storing the
// channel deliveries are pushed into.
func (o *Operator) Receiver(ch chan operator.Delivery) error {
	o.receiverChan = ch
	return nil
}

// Start consumes tasks from the queue until the context is cancelled.
// Messages that cannot be decoded are logged and skipped; the consumer
// never sees them.
func (o *Operator) Start(ctx context.Context) {
	for {
		vals, err := o.client.BLPop(ctx, o.config.BlockTimeout, o.config.Queue).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			log.Printf("redis: error consuming task: %v", err)
			continue
		}
		if len(vals) != 2 {
			continue
		}

		d, err := decodeDelivery([]byte(vals[1]))
		if err != nil {
			log.Printf("redis: error unmarshaling task: %v", err)
			continue
		}

		select {
		case <-ctx.Done():
			return
		case o.receiverChan <- d:
		}
	}
}

// Acknowledge pushes the acknowledgment to the ack queue.
func (o *Operator) Acknowledge(ack operator.Acknowledgment) error {
	payload, err := json.Marshal(encodeAck(ack))
	if err != nil {
		return fmt.Errorf("error marshaling acknowledgment: %w", err)
	}
	return o.client.RPush(o.ctx, o.config.AckQueue, payload).Err()
}

// Close closes the Redis client connection.
func (o *Operator) Close() error {
	return o.client.Close()
}

// wireResult is one service result record as serialized on the wire.
type wireResult struct {
	ID            string        `json:"id"`
	Alias         string        `json:"alias,omitempty"`
	Name          string        `json:"name"`
	Version       string        `json:"version"`
	Configuration types.Payload `json:"configuration,omitempty"`
	ExecutedAt    *time.Time    `json:"executedAt,omitempty"`
	Data          types.Payload `json:"data,omitempty"`
	Error         types.Payload `json:"error,omitempty"`
}

// wireTask is a task as serialized on the wire.
type wireTask struct {
	UUID       string        `json:"uuid,omitempty"`
	Input      types.Payload `json:"input,omitempty"`
	Meta       types.Payload `json:"meta,omitempty"`
	TenantName string        `json:"tenantName,omitempty"`
	Service    wireResult    `json:"service"`
	Results    []wireResult  `json:"results,omitempty"`
}

// wireAck is an acknowledgment as serialized on the wire.
type wireAck struct {
	UUID        string        `json:"uuid"`
	Action      string        `json:"action"`
	Data        types.Payload `json:"data,omitempty"`
	DelayMillis int64         `json:"delayMillis,omitempty"`
	Reason      string        `json:"reason,omitempty"`
}

func decodeDelivery(payload []byte) (operator.Delivery, error) {
	var wt wireTask
	if err := json.Unmarshal(payload, &wt); err != nil {
		return operator.Delivery{}, err
	}
	if wt.UUID == "" {
		wt.UUID = uuid.New().String()
	}

	results := make([]types.ServiceResult, len(wt.Results))
	for i, wr := range wt.Results {
		results[i] = types.ServiceResult{
			ID:            wr.ID,
			Alias:         wr.Alias,
			Name:          wr.Name,
			Version:       wr.Version,
			Configuration: wr.Configuration,
			ExecutedAt:    wr.ExecutedAt,
			Data:          wr.Data,
			Error:         wr.Error,
		}
	}

	return operator.Delivery{
		UUID: wt.UUID,
		Task: types.Task{
			Input:      wt.Input,
			Meta:       wt.Meta,
			TenantName: wt.TenantName,
			Service: types.ServiceIdentity{
				ID:            wt.Service.ID,
				Alias:         wt.Service.Alias,
				Name:          wt.Service.Name,
				Version:       wt.Service.Version,
				Configuration: wt.Service.Configuration,
			},
			Results: results,
		},
	}, nil
}

func encodeAck(ack operator.Acknowledgment) wireAck {
	wa := wireAck{
		UUID:   ack.DeliveryUUID,
		Reason: ack.Reason,
		Data:   ack.Data,
	}
	switch ack.Kind {
	case operator.RETRY:
		wa.Action = "retry"
		wa.DelayMillis = ack.Delay.Milliseconds()
	case operator.FAIL:
		wa.Action = "fail"
	default:
		wa.Action = "ack"
	}
	return wa
}
