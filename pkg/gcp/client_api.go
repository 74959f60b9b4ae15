package gcp

import (
	"context"
	"fmt"

	"github.com/cenkalti/backoff/v4"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"cloud.google.com/go/serviceusage/apiv1/serviceusagepb"

	"github.com/oak-disperser/oakboot/pkg/logger"
)

// EnableService activates a named API for the project. Enabling an
// already-enabled service is a provider-side no-op.
func (c *LiveGCPClient) EnableService(ctx context.Context, projectID, serviceName string) error {
	l := logger.Get()
	l.Infof("Enabling service %s for project %s", serviceName, projectID)

	name := fmt.Sprintf("projects/%s/services/%s", projectID, serviceName)

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = maxBackOffTime

	return backoff.Retry(func() error {
		op, err := c.serviceUsageClient.EnableService(ctx, &serviceusagepb.EnableServiceRequest{
			Name: name,
		})
		if err != nil {
			if status.Code(err) == codes.PermissionDenied {
				return backoff.Permanent(err)
			}
			return err
		}
		if _, err := op.Wait(ctx); err != nil {
			return fmt.Errorf("wait for service enablement: %w", err)
		}
		return nil
	}, backoff.WithContext(b, ctx))
}
