// Package kafka connects the audit publisher to a Kafka-compatible broker.
package kafka

import (
	"context"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"supaboard/internal/platform/config"
)

// Client owns the franz-go producer and its admin view.
type Client struct {
	*kgo.Client
	admin *kadm.Client
	topic string
}

// New dials the brokers and makes sure the audit topic exists.
// Returns (nil, nil) when no brokers are configured.
func New(ctx context.Context, cfg config.KafkaConfig) (*Client, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil
	}
	cl, err := kgo.NewClient(clientOpts(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	if err := cl.Ping(ctx); err != nil {
		cl.Close()
		return nil, fmt.Errorf("kafka ping failed: %w", err)
	}

	c := &Client{Client: cl, admin: kadm.NewClient(cl), topic: cfg.AuditTopic}
	if err := c.EnsureTopic(ctx, cfg.Partitions, cfg.ReplicationFactor); err != nil {
		cl.Close()
		return nil, err
	}
	return c, nil
}

// clientOpts bounds every produce: a record that cannot be delivered within
// DeliveryTimeout, or after ProduceRetries attempts, fails instead of
// buffering forever.
func clientOpts(cfg config.KafkaConfig) []kgo.Opt {
	return []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.AuditTopic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.RecordDeliveryTimeout(cfg.DeliveryTimeout),
		kgo.RecordRetries(cfg.ProduceRetries),
	}
}

// EnsureTopic creates the audit topic, treating "already exists" as success.
func (c *Client) EnsureTopic(ctx context.Context, partitions int32, replicationFactor int16) error {
	resps, err := c.admin.CreateTopics(ctx, partitions, replicationFactor, nil, c.topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", c.topic, err)
	}
	for _, resp := range resps {
		if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", resp.Topic, resp.Err)
		}
	}
	return nil
}

// Topic returns the default produce topic.
func (c *Client) Topic() string {
	return c.topic
}
