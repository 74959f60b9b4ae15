package bootstrap

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/oak-disperser/oakboot/pkg/gcp"
)

func TestSelectBillingAccountForcedID(t *testing.T) {
	client := new(gcp.MockGCPClient)
	prompter := &ScriptedPrompter{}

	id, err := SelectBillingAccount(context.Background(), client, prompter, "FORCED-123")
	require.NoError(t, err)
	assert.Equal(t, "FORCED-123", id)

	// Forced IDs are returned unresolved: no listing, no prompting.
	client.AssertNotCalled(t, "ListBillingAccounts")
	assert.Empty(t, prompter.Labels)
}

func TestSelectBillingAccountListFailureIsNonFatal(t *testing.T) {
	client := new(gcp.MockGCPClient)
	client.On("ListBillingAccounts", mock.Anything).Return(nil, errors.New("permission denied"))
	prompter := &ScriptedPrompter{}

	id, err := SelectBillingAccount(context.Background(), client, prompter, "")
	require.NoError(t, err)
	assert.Empty(t, id)
	assert.Empty(t, prompter.Labels)
}

func TestSelectBillingAccountNoAccounts(t *testing.T) {
	client := new(gcp.MockGCPClient)
	client.On("ListBillingAccounts", mock.Anything).Return([]gcp.BillingAccount{}, nil)
	prompter := &ScriptedPrompter{}

	id, err := SelectBillingAccount(context.Background(), client, prompter, "")
	require.NoError(t, err)
	assert.Empty(t, id)
	assert.Empty(t, prompter.Labels)
}

func TestSelectBillingAccountSingleOpenAutoSelected(t *testing.T) {
	client := new(gcp.MockGCPClient)
	client.On("ListBillingAccounts", mock.Anything).Return([]gcp.BillingAccount{
		{ID: "AAA", DisplayName: "Closed One", Open: false},
		{ID: "BBB", DisplayName: "Open One", Open: true},
	}, nil)
	prompter := &ScriptedPrompter{}

	id, err := SelectBillingAccount(context.Background(), client, prompter, "")
	require.NoError(t, err)
	assert.Equal(t, "BBB", id)
	assert.Empty(t, prompter.Labels)
}

func TestSelectBillingAccountAllClosedFallsBack(t *testing.T) {
	client := new(gcp.MockGCPClient)
	client.On("ListBillingAccounts", mock.Anything).Return([]gcp.BillingAccount{
		{ID: "ONLY", DisplayName: "Stale Flag", Open: false},
	}, nil)
	prompter := &ScriptedPrompter{}

	id, err := SelectBillingAccount(context.Background(), client, prompter, "")
	require.NoError(t, err)
	assert.Equal(t, "ONLY", id)
}

func TestSelectBillingAccountMultipleCandidates(t *testing.T) {
	accounts := []gcp.BillingAccount{
		{ID: "AAA", DisplayName: "First", Open: true},
		{ID: "BBB", DisplayName: "Second", Open: true},
	}

	t.Run("valid selection", func(t *testing.T) {
		client := new(gcp.MockGCPClient)
		client.On("ListBillingAccounts", mock.Anything).Return(accounts, nil)
		prompter := &ScriptedPrompter{Responses: []string{"2"}}

		id, err := SelectBillingAccount(context.Background(), client, prompter, "")
		require.NoError(t, err)
		assert.Equal(t, "BBB", id)
	})

	t.Run("blank input skips", func(t *testing.T) {
		client := new(gcp.MockGCPClient)
		client.On("ListBillingAccounts", mock.Anything).Return(accounts, nil)
		prompter := &ScriptedPrompter{Responses: []string{""}}

		id, err := SelectBillingAccount(context.Background(), client, prompter, "")
		require.NoError(t, err)
		assert.Empty(t, id)
	})

	t.Run("invalid input re-prompts", func(t *testing.T) {
		client := new(gcp.MockGCPClient)
		client.On("ListBillingAccounts", mock.Anything).Return(accounts, nil)
		prompter := &ScriptedPrompter{Responses: []string{"abc", "99", "0", "1"}}

		id, err := SelectBillingAccount(context.Background(), client, prompter, "")
		require.NoError(t, err)
		assert.Equal(t, "AAA", id)
		assert.Len(t, prompter.Labels, 4)
	})
}
