package secrets

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

const DefaultGHBin = "gh"

// GHCLIPublisher sets GitHub Actions secrets by shelling out to the gh CLI,
// which carries its own authentication. The binary location is explicit
// configuration rather than an ambient lookup.
type GHCLIPublisher struct {
	Bin  string
	Repo string // optional owner/name; blank uses the current repository
}

var _ Publisher = (*GHCLIPublisher)(nil)

func NewGHCLIPublisher(bin, repo string) *GHCLIPublisher {
	if bin == "" {
		bin = DefaultGHBin
	}
	return &GHCLIPublisher{Bin: bin, Repo: repo}
}

func (p *GHCLIPublisher) Preflight() error {
	if _, err := exec.LookPath(p.Bin); err != nil {
		return fmt.Errorf("%s is required to set secrets: %w", p.Bin, err)
	}
	return nil
}

func (p *GHCLIPublisher) SetSecret(ctx context.Context, name, value string) error {
	args := []string{"secret", "set", name}
	if p.Repo != "" {
		args = append(args, "--repo", p.Repo)
	}

	cmd := exec.CommandContext(ctx, p.Bin, args...)
	cmd.Stdin = strings.NewReader(value)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s secret set %s: %s: %w", p.Bin, name,
			strings.TrimSpace(string(output)), err)
	}
	return nil
}
