package gcp

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"

	"github.com/oak-disperser/oakboot/pkg/logger"
)

func (c *LiveGCPClient) pubsubFor(ctx context.Context, projectID string) (*pubsub.Client, error) {
	if c.pubsubClient != nil && c.pubsubProject == projectID {
		return c.pubsubClient, nil
	}
	if c.pubsubClient != nil {
		_ = c.pubsubClient.Close()
	}
	client, err := pubsub.NewClient(ctx, projectID, c.clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("error creating pubsub client: %w", err)
	}
	c.pubsubClient = client
	c.pubsubProject = projectID
	return client, nil
}

// TopicExists probes the topic with a read-only describe; any failure reads
// as "does not exist".
func (c *LiveGCPClient) TopicExists(ctx context.Context, projectID, topicID string) bool {
	client, err := c.pubsubFor(ctx, projectID)
	if err != nil {
		return false
	}
	exists, err := client.Topic(topicID).Exists(ctx)
	if err != nil {
		return false
	}
	return exists
}

func (c *LiveGCPClient) CreateTopic(ctx context.Context, projectID, topicID string) error {
	l := logger.Get()
	l.Infof("Creating topic %s in project %s", topicID, projectID)

	client, err := c.pubsubFor(ctx, projectID)
	if err != nil {
		return err
	}
	if _, err := client.CreateTopic(ctx, topicID); err != nil {
		return fmt.Errorf("create topic %s: %w", topicID, err)
	}
	return nil
}
