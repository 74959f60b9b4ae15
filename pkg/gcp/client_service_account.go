package gcp

import (
	"context"
	"encoding/base64"
	"fmt"

	cloudresourcemanager "google.golang.org/api/cloudresourcemanager/v1"
	"google.golang.org/api/iam/v1"

	"github.com/oak-disperser/oakboot/pkg/logger"
	"github.com/oak-disperser/oakboot/pkg/naming"
)

// ServiceAccountExists probes the service account with a read-only describe;
// any failure reads as "does not exist".
func (c *LiveGCPClient) ServiceAccountExists(ctx context.Context, projectID, email string) bool {
	_, err := c.iamService.Projects.ServiceAccounts.
		Get(fmt.Sprintf("projects/%s/serviceAccounts/%s", projectID, email)).
		Context(ctx).
		Do()
	return err == nil
}

func (c *LiveGCPClient) CreateServiceAccount(
	ctx context.Context,
	projectID, accountID, displayName string,
) error {
	l := logger.Get()
	email := naming.ServiceAccountEmail(accountID, projectID)
	l.Infof("Creating service account: %s", email)

	createReq := &iam.CreateServiceAccountRequest{
		AccountId: accountID,
		ServiceAccount: &iam.ServiceAccount{
			DisplayName: displayName,
		},
	}
	_, err := c.iamService.Projects.ServiceAccounts.
		Create(fmt.Sprintf("projects/%s", projectID), createReq).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("create service account %s: %w", email, err)
	}
	return nil
}

// GrantProjectRole adds the member to the role's binding on the project IAM
// policy. Granting an existing membership is a no-op, so the sequencer
// reapplies every grant on every run.
func (c *LiveGCPClient) GrantProjectRole(
	ctx context.Context,
	projectID, memberEmail, role string,
) error {
	l := logger.Get()
	l.Infof("Granting %s to %s on project %s", role, memberEmail, projectID)

	policy, err := c.rmService.Projects.
		GetIamPolicy(projectID, &cloudresourcemanager.GetIamPolicyRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to get IAM policy: %w", err)
	}

	member := fmt.Sprintf("serviceAccount:%s", memberEmail)
	var binding *cloudresourcemanager.Binding
	for _, b := range policy.Bindings {
		if b.Role == role {
			binding = b
			break
		}
	}
	if binding == nil {
		binding = &cloudresourcemanager.Binding{Role: role}
		policy.Bindings = append(policy.Bindings, binding)
	}
	for _, m := range binding.Members {
		if m == member {
			return nil // already granted
		}
	}
	binding.Members = append(binding.Members, member)

	_, err = c.rmService.Projects.
		SetIamPolicy(projectID, &cloudresourcemanager.SetIamPolicyRequest{Policy: policy}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to set IAM policy: %w", err)
	}
	return nil
}

// CreateServiceAccountKey mints a new key and returns the decoded JSON
// credential. Writing it to disk is the caller's responsibility.
func (c *LiveGCPClient) CreateServiceAccountKey(
	ctx context.Context,
	projectID, email string,
) ([]byte, error) {
	l := logger.Get()
	l.Infof("Creating service account key for %s", email)

	key, err := c.iamService.Projects.ServiceAccounts.Keys.
		Create(
			fmt.Sprintf("projects/%s/serviceAccounts/%s", projectID, email),
			&iam.CreateServiceAccountKeyRequest{},
		).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("create service account key: %w", err)
	}

	decoded, err := base64.StdEncoding.DecodeString(key.PrivateKeyData)
	if err != nil {
		return nil, fmt.Errorf("decode service account key: %w", err)
	}
	return decoded, nil
}
