package gcp

import (
	"context"
	"fmt"
	"time"

	billing "cloud.google.com/go/billing/apiv1"
	"cloud.google.com/go/pubsub"
	resourcemanager "cloud.google.com/go/resourcemanager/apiv3"
	serviceusage "cloud.google.com/go/serviceusage/apiv1"
	"golang.org/x/oauth2/google"
	cloudresourcemanager "google.golang.org/api/cloudresourcemanager/v1"
	"google.golang.org/api/iam/v1"
	"google.golang.org/api/option"
)

const maxBackOffTime = 2 * time.Minute

// LiveGCPClient talks to the real provider APIs. The pubsub client is built
// lazily because it is scoped to a project that is only known at run time.
type LiveGCPClient struct {
	clientOpts         []option.ClientOption
	projectClient      *resourcemanager.ProjectsClient
	billingClient      *billing.CloudBillingClient
	serviceUsageClient *serviceusage.Client
	iamService         *iam.Service
	rmService          *cloudresourcemanager.Service

	pubsubClient  *pubsub.Client
	pubsubProject string
}

var _ GCPClienter = (*LiveGCPClient)(nil)

var NewGCPClientFunc = NewGCPClient

func NewGCPClient(ctx context.Context) (GCPClienter, func(), error) {
	creds, err := google.FindDefaultCredentials(ctx, cloudresourcemanager.CloudPlatformScope)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find default credentials: %w", err)
	}

	clientOpts := []option.ClientOption{option.WithCredentials(creds)}
	var closers []interface{ Close() error }

	c := &LiveGCPClient{clientOpts: clientOpts}

	projectClient, err := resourcemanager.NewProjectsClient(ctx, clientOpts...)
	if err != nil {
		return nil, func() {}, fmt.Errorf("error creating project client: %w", err)
	}
	closers = append(closers, projectClient)
	c.projectClient = projectClient

	billingClient, err := billing.NewCloudBillingClient(ctx, clientOpts...)
	if err != nil {
		cleanup(closers)
		return nil, func() {}, fmt.Errorf("error creating billing client: %w", err)
	}
	closers = append(closers, billingClient)
	c.billingClient = billingClient

	serviceUsageClient, err := serviceusage.NewClient(ctx, clientOpts...)
	if err != nil {
		cleanup(closers)
		return nil, func() {}, fmt.Errorf("error creating service usage client: %w", err)
	}
	closers = append(closers, serviceUsageClient)
	c.serviceUsageClient = serviceUsageClient

	iamService, err := iam.NewService(ctx, clientOpts...)
	if err != nil {
		cleanup(closers)
		return nil, func() {}, fmt.Errorf("error creating IAM service: %w", err)
	}
	c.iamService = iamService

	rmService, err := cloudresourcemanager.NewService(ctx, clientOpts...)
	if err != nil {
		cleanup(closers)
		return nil, func() {}, fmt.Errorf("error creating resource manager service: %w", err)
	}
	c.rmService = rmService

	return c, func() {
		if c.pubsubClient != nil {
			_ = c.pubsubClient.Close()
		}
		cleanup(closers)
	}, nil
}

func cleanup(closers []interface{ Close() error }) {
	for _, closer := range closers {
		_ = closer.Close()
	}
}
