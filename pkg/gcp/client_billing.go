package gcp

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/billing/apiv1/billingpb"
	"github.com/cenkalti/backoff/v4"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/oak-disperser/oakboot/pkg/logger"
)

func (c *LiveGCPClient) ListBillingAccounts(ctx context.Context) ([]BillingAccount, error) {
	l := logger.Get()
	l.Debug("Listing billing accounts")

	it := c.billingClient.ListBillingAccounts(ctx, &billingpb.ListBillingAccountsRequest{})

	var accounts []BillingAccount
	for {
		resp, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list billing accounts: %w", err)
		}
		accounts = append(accounts, BillingAccount{
			ID:          strings.TrimPrefix(resp.Name, "billingAccounts/"),
			DisplayName: resp.DisplayName,
			Open:        resp.Open,
		})
	}

	return accounts, nil
}

// LinkBillingAccount attaches the billing account to the project. The
// provider treats re-linking an already-linked account as a no-op.
func (c *LiveGCPClient) LinkBillingAccount(
	ctx context.Context,
	projectID, billingAccountID string,
) error {
	l := logger.Get()
	l.Infof("Linking billing account %s to project %s", billingAccountID, projectID)

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = maxBackOffTime

	return backoff.Retry(func() error {
		req := &billingpb.UpdateProjectBillingInfoRequest{
			Name: fmt.Sprintf("projects/%s", projectID),
			ProjectBillingInfo: &billingpb.ProjectBillingInfo{
				BillingAccountName: billingAccountName(billingAccountID),
				BillingEnabled:     true,
			},
		}

		_, err := c.billingClient.UpdateProjectBillingInfo(ctx, req)
		if err != nil {
			if status.Code(err) == codes.PermissionDenied {
				return backoff.Permanent(fmt.Errorf("failed to update billing info: %w", err))
			}
			l.Warnf("Billing link attempt failed: %v. Retrying...", err)
			return err
		}
		return nil
	}, backoff.WithContext(b, ctx))
}

func billingAccountName(billingAccountID string) string {
	if strings.HasPrefix(billingAccountID, "billingAccounts/") {
		return billingAccountID
	}
	return fmt.Sprintf("billingAccounts/%s", billingAccountID)
}
