package gcp

import (
	"context"
)

// BillingAccount is one entry from the provider's billing account listing.
type BillingAccount struct {
	ID          string
	DisplayName string
	Open        bool
}

// GCPClienter is the provider surface the bootstrap sequencer consumes.
// The *Exists probes are read-only describes that collapse every failure,
// transient or otherwise, to false; the sequencer relies on that to decide
// create-vs-reuse.
type GCPClienter interface {
	ProjectExists(ctx context.Context, projectID string) bool
	CreateProject(ctx context.Context, projectID, displayName string) error

	ListBillingAccounts(ctx context.Context) ([]BillingAccount, error)
	LinkBillingAccount(ctx context.Context, projectID, billingAccountID string) error

	EnableService(ctx context.Context, projectID, serviceName string) error

	TopicExists(ctx context.Context, projectID, topicID string) bool
	CreateTopic(ctx context.Context, projectID, topicID string) error

	ServiceAccountExists(ctx context.Context, projectID, email string) bool
	CreateServiceAccount(ctx context.Context, projectID, accountID, displayName string) error
	GrantProjectRole(ctx context.Context, projectID, memberEmail, role string) error
	CreateServiceAccountKey(ctx context.Context, projectID, email string) ([]byte, error)
}
