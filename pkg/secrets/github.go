package secrets

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/google/go-github/v59/github"
	"golang.org/x/crypto/nacl/box"
)

// GitHubPublisher sets GitHub Actions secrets through the REST API with a
// personal access token, for environments without the gh CLI. Secrets are
// sealed against the repository's Actions public key before upload.
type GitHubPublisher struct {
	actions ActionsSecretsService
	owner   string
	repo    string

	publicKey *github.PublicKey
}

// ActionsSecretsService is the slice of the GitHub Actions API this
// publisher uses.
type ActionsSecretsService interface {
	GetRepoPublicKey(ctx context.Context, owner, repo string) (*github.PublicKey, *github.Response, error)
	CreateOrUpdateRepoSecret(ctx context.Context, owner, repo string, secret *github.EncryptedSecret) (*github.Response, error)
}

var _ Publisher = (*GitHubPublisher)(nil)

func NewGitHubPublisher(token, repoSlug string) (*GitHubPublisher, error) {
	owner, repo, ok := strings.Cut(repoSlug, "/")
	if !ok || owner == "" || repo == "" {
		return nil, fmt.Errorf("invalid repository %q, expected owner/name", repoSlug)
	}
	client := github.NewClient(nil).WithAuthToken(token)
	return &GitHubPublisher{actions: client.Actions, owner: owner, repo: repo}, nil
}

// Preflight fetches the repository's Actions public key, which also proves
// the token can reach the repository before any secret is written.
func (p *GitHubPublisher) Preflight() error {
	key, _, err := p.actions.GetRepoPublicKey(context.Background(), p.owner, p.repo)
	if err != nil {
		return fmt.Errorf("fetch actions public key for %s/%s: %w", p.owner, p.repo, err)
	}
	p.publicKey = key
	return nil
}

func (p *GitHubPublisher) SetSecret(ctx context.Context, name, value string) error {
	if p.publicKey == nil {
		if err := p.Preflight(); err != nil {
			return err
		}
	}

	sealed, err := sealSecret(p.publicKey.GetKey(), value)
	if err != nil {
		return err
	}

	secret := &github.EncryptedSecret{
		Name:           name,
		KeyID:          p.publicKey.GetKeyID(),
		EncryptedValue: sealed,
	}
	if _, err := p.actions.CreateOrUpdateRepoSecret(ctx, p.owner, p.repo, secret); err != nil {
		return fmt.Errorf("upload secret %s: %w", name, err)
	}
	return nil
}

func sealSecret(encodedPublicKey, value string) (string, error) {
	decoded, err := base64.StdEncoding.DecodeString(encodedPublicKey)
	if err != nil {
		return "", fmt.Errorf("decode actions public key: %w", err)
	}
	if len(decoded) != 32 {
		return "", fmt.Errorf("actions public key has unexpected length %d", len(decoded))
	}

	var publicKey [32]byte
	copy(publicKey[:], decoded)

	sealed, err := box.SealAnonymous(nil, []byte(value), &publicKey, rand.Reader)
	if err != nil {
		return "", fmt.Errorf("seal secret: %w", err)
	}
	return base64.StdEncoding.EncodeToString(sealed), nil
}
