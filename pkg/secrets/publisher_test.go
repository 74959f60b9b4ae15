package secrets

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	preflightErr error
	failOn       string
	order        []string
	values       map[string]string
}

func (p *fakePublisher) Preflight() error { return p.preflightErr }

func (p *fakePublisher) SetSecret(_ context.Context, name, value string) error {
	if name == p.failOn {
		return errors.New("upload rejected")
	}
	p.order = append(p.order, name)
	if p.values == nil {
		p.values = map[string]string{}
	}
	p.values[name] = value
	return nil
}

func TestPublishUploadsInNameOrder(t *testing.T) {
	publisher := &fakePublisher{}
	err := Publish(context.Background(), publisher, map[string]string{
		"PUBSUB_TOPIC": "action-dispersal",
		"GCP_PROJECT":  "my-proj",
		"GCP_REGION":   "us-central1",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"GCP_PROJECT", "GCP_REGION", "PUBSUB_TOPIC"}, publisher.order)
	assert.Equal(t, "my-proj", publisher.values["GCP_PROJECT"])
}

func TestPublishStopsOnFirstFailure(t *testing.T) {
	publisher := &fakePublisher{failOn: "GCP_REGION"}
	err := Publish(context.Background(), publisher, map[string]string{
		"PUBSUB_TOPIC": "action-dispersal",
		"GCP_PROJECT":  "my-proj",
		"GCP_REGION":   "us-central1",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GCP_REGION")
	// GCP_PROJECT sorts first and went through; PUBSUB_TOPIC never did.
	assert.Equal(t, []string{"GCP_PROJECT"}, publisher.order)
}

func TestPublishChecksPreflightBeforeAnyUpload(t *testing.T) {
	publisher := &fakePublisher{preflightErr: errors.New("helper missing")}
	err := Publish(context.Background(), publisher, map[string]string{"A": "1"})
	require.Error(t, err)
	assert.Empty(t, publisher.order)
}

func TestGHCLIPublisherPreflightMissingBinary(t *testing.T) {
	publisher := NewGHCLIPublisher("definitely-not-a-real-binary-xyz", "")
	err := publisher.Preflight()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "definitely-not-a-real-binary-xyz")
}

func TestNewGHCLIPublisherDefaultsBin(t *testing.T) {
	publisher := NewGHCLIPublisher("", "")
	assert.Equal(t, DefaultGHBin, publisher.Bin)
}
