package cmd

import (
	"context"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/oak-disperser/oakboot/pkg/bootstrap"
	"github.com/oak-disperser/oakboot/pkg/gcp"
	"github.com/oak-disperser/oakboot/pkg/naming"
	"github.com/oak-disperser/oakboot/pkg/secrets"
)

const (
	defaultRegion             = "us-central1"
	defaultTopic              = "action-dispersal"
	defaultServiceAccountID   = "oak-disperser-ci"
	defaultServiceAccountName = "Oak Disperser CI"
)

func upCmd() *cobra.Command {
	var cfg bootstrap.Config
	var ghBin string
	var githubRepo string
	var githubToken string

	cmd := &cobra.Command{
		Use:   "up",
		Short: "Provision the GCP baseline for oak-disperser",
		Long: `Provision the project, billing link, services, Pub/Sub topic, CI
service account, roles, and service account key in one idempotent run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(
				cmd.Context(),
				os.Interrupt,
				syscall.SIGTERM,
			)
			defer stop()

			return runUp(ctx, cfg, ghBin, githubRepo, githubToken)
		},
	}

	cmd.Flags().StringVar(&cfg.ProjectID, "project-id", "",
		"Existing or desired project ID (skips ID generation)")
	cmd.Flags().StringVar(&cfg.BaseName, "base-name", "",
		"Base name for the generated project ID (default: repository name)")
	cmd.Flags().StringVar(&cfg.Region, "region", defaultRegion, "GCP region")
	cmd.Flags().StringVar(&cfg.Topic, "topic", defaultTopic, "Pub/Sub topic name")
	cmd.Flags().StringVar(&cfg.ServiceAccountID, "service-account-id", defaultServiceAccountID,
		"CI service account ID")
	cmd.Flags().StringVar(&cfg.ServiceAccountName, "service-account-name", defaultServiceAccountName,
		"CI service account display name")
	cmd.Flags().StringVar(&cfg.BillingAccount, "billing-account", "",
		"Billing account ID to link (skips interactive selection)")
	cmd.Flags().StringVar(&cfg.KeyOutput, "key-output", "",
		"Path for the exported service account key (default: ./"+bootstrap.DefaultKeyFileName+")")
	cmd.Flags().BoolVar(&cfg.ConfigureGitHub, "configure-github", false,
		"Upload GitHub Actions secrets after provisioning")
	cmd.Flags().BoolVar(&cfg.DryRun, "dry-run", false,
		"Skip key export and secret upload")
	cmd.Flags().StringVar(&ghBin, "gh-bin", secrets.DefaultGHBin,
		"gh CLI binary used to set GitHub secrets")
	cmd.Flags().StringVar(&githubRepo, "github-repo", "",
		"owner/name repository for API-based secret upload (needs --github-token or GITHUB_TOKEN)")
	cmd.Flags().StringVar(&githubToken, "github-token", "",
		"GitHub token for API-based secret upload")

	return cmd
}

func runUp(ctx context.Context, cfg bootstrap.Config, ghBin, githubRepo, githubToken string) error {
	if cfg.BaseName == "" {
		cfg.BaseName = naming.Sanitize(repoBaseName())
	}

	var publisher secrets.Publisher
	if cfg.ConfigureGitHub {
		var err error
		publisher, err = buildPublisher(ghBin, githubRepo, githubToken)
		if err != nil {
			return err
		}
	}

	client, cleanup, err := gcp.NewGCPClientFunc(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	sequencer := bootstrap.NewSequencer(cfg, client, bootstrap.NewStdinPrompter(), publisher)
	_, err = sequencer.Run(ctx)
	return err
}

func buildPublisher(ghBin, githubRepo, githubToken string) (secrets.Publisher, error) {
	if githubRepo != "" {
		if githubToken == "" {
			githubToken = viper.GetString("github.token")
		}
		if githubToken == "" {
			githubToken = os.Getenv("GITHUB_TOKEN")
		}
		return secrets.NewGitHubPublisher(githubToken, githubRepo)
	}
	return secrets.NewGHCLIPublisher(ghBin, ""), nil
}

// repoBaseName derives a sensible base name from the git repository, or the
// working directory when not inside one.
func repoBaseName() string {
	out, err := exec.Command("git", "rev-parse", "--show-toplevel").Output()
	if err == nil {
		if top := strings.TrimSpace(string(out)); top != "" {
			return filepath.Base(top)
		}
	}
	cwd, err := os.Getwd()
	if err != nil {
		return naming.FallbackBase
	}
	return filepath.Base(cwd)
}
