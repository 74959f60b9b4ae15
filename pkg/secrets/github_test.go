package secrets

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"testing"

	"github.com/google/go-github/v59/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/nacl/box"
)

type fakeActionsService struct {
	keyID     string
	publicKey string
	keyErr    error

	uploaded []*github.EncryptedSecret
}

func (f *fakeActionsService) GetRepoPublicKey(
	_ context.Context,
	_, _ string,
) (*github.PublicKey, *github.Response, error) {
	if f.keyErr != nil {
		return nil, nil, f.keyErr
	}
	return &github.PublicKey{KeyID: &f.keyID, Key: &f.publicKey}, nil, nil
}

func (f *fakeActionsService) CreateOrUpdateRepoSecret(
	_ context.Context,
	_, _ string,
	secret *github.EncryptedSecret,
) (*github.Response, error) {
	f.uploaded = append(f.uploaded, secret)
	return nil, nil
}

func TestNewGitHubPublisherValidatesRepoSlug(t *testing.T) {
	_, err := NewGitHubPublisher("token", "not-a-slug")
	require.Error(t, err)

	_, err = NewGitHubPublisher("token", "owner/name")
	require.NoError(t, err)
}

func TestGitHubPublisherSealsAgainstFetchedKey(t *testing.T) {
	recipientPublic, recipientPrivate, err := box.GenerateKey(rand.Reader)
	require.NoError(t, err)

	actions := &fakeActionsService{
		keyID:     "key-1",
		publicKey: base64.StdEncoding.EncodeToString(recipientPublic[:]),
	}
	publisher := &GitHubPublisher{actions: actions, owner: "oak", repo: "disperser"}

	require.NoError(t, publisher.Preflight())
	require.NoError(t, publisher.SetSecret(context.Background(), "GCP_PROJECT", "my-proj"))

	require.Len(t, actions.uploaded, 1)
	uploaded := actions.uploaded[0]
	assert.Equal(t, "GCP_PROJECT", uploaded.Name)
	assert.Equal(t, "key-1", uploaded.KeyID)

	sealed, err := base64.StdEncoding.DecodeString(uploaded.EncryptedValue)
	require.NoError(t, err)
	opened, ok := box.OpenAnonymous(nil, sealed, recipientPublic, recipientPrivate)
	require.True(t, ok)
	assert.Equal(t, "my-proj", string(opened))
}

func TestGitHubPublisherPreflightFailure(t *testing.T) {
	actions := &fakeActionsService{keyErr: assert.AnError}
	publisher := &GitHubPublisher{actions: actions, owner: "oak", repo: "disperser"}

	err := publisher.Preflight()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oak/disperser")
}

func TestSealSecretRejectsBadKey(t *testing.T) {
	_, err := sealSecret("not base64!!!", "value")
	require.Error(t, err)

	_, err = sealSecret(base64.StdEncoding.EncodeToString([]byte("short")), "value")
	require.Error(t, err)
}
