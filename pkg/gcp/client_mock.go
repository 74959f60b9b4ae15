package gcp

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockGCPClient is a mock implementation of the GCPClienter interface
type MockGCPClient struct {
	mock.Mock
}

var _ GCPClienter = (*MockGCPClient)(nil)

func (m *MockGCPClient) ProjectExists(ctx context.Context, projectID string) bool {
	args := m.Called(ctx, projectID)
	return args.Bool(0)
}

func (m *MockGCPClient) CreateProject(ctx context.Context, projectID, displayName string) error {
	args := m.Called(ctx, projectID, displayName)
	return args.Error(0)
}

func (m *MockGCPClient) ListBillingAccounts(ctx context.Context) ([]BillingAccount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]BillingAccount), args.Error(1)
}

func (m *MockGCPClient) LinkBillingAccount(
	ctx context.Context,
	projectID, billingAccountID string,
) error {
	args := m.Called(ctx, projectID, billingAccountID)
	return args.Error(0)
}

func (m *MockGCPClient) EnableService(ctx context.Context, projectID, serviceName string) error {
	args := m.Called(ctx, projectID, serviceName)
	return args.Error(0)
}

func (m *MockGCPClient) TopicExists(ctx context.Context, projectID, topicID string) bool {
	args := m.Called(ctx, projectID, topicID)
	return args.Bool(0)
}

func (m *MockGCPClient) CreateTopic(ctx context.Context, projectID, topicID string) error {
	args := m.Called(ctx, projectID, topicID)
	return args.Error(0)
}

func (m *MockGCPClient) ServiceAccountExists(ctx context.Context, projectID, email string) bool {
	args := m.Called(ctx, projectID, email)
	return args.Bool(0)
}

func (m *MockGCPClient) CreateServiceAccount(
	ctx context.Context,
	projectID, accountID, displayName string,
) error {
	args := m.Called(ctx, projectID, accountID, displayName)
	return args.Error(0)
}

func (m *MockGCPClient) GrantProjectRole(
	ctx context.Context,
	projectID, memberEmail, role string,
) error {
	args := m.Called(ctx, projectID, memberEmail, role)
	return args.Error(0)
}

func (m *MockGCPClient) CreateServiceAccountKey(
	ctx context.Context,
	projectID, email string,
) ([]byte, error) {
	args := m.Called(ctx, projectID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
