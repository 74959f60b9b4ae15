// Package bootstrap drives the idempotent provisioning sequence that brings
// a GCP project for oak-disperser from nothing to a usable CI environment:
// project, billing link, enabled services, Pub/Sub topic, CI service account
// with roles, an exported key, and optionally GitHub Actions secrets.
// Repeated runs converge: every step probes for existing resources and
// reuses them instead of creating duplicates.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/oak-disperser/oakboot/pkg/gcp"
	"github.com/oak-disperser/oakboot/pkg/logger"
	"github.com/oak-disperser/oakboot/pkg/naming"
	"github.com/oak-disperser/oakboot/pkg/secrets"
)

// RequiredServices are enabled in order; any failure aborts the run.
var RequiredServices = []string{
	"cloudfunctions.googleapis.com",
	"pubsub.googleapis.com",
	"secretmanager.googleapis.com",
}

// ServiceAccountRoles are granted to the CI identity on every run; the
// provider treats re-granting an existing binding as a no-op.
var ServiceAccountRoles = []string{
	"roles/cloudfunctions.developer",
	"roles/iam.serviceAccountUser",
	"roles/pubsub.admin",
	"roles/secretmanager.secretAccessor",
}

const (
	DefaultKeyFileName = "gcp-service-account-key.json"

	// projectPropagationDelay absorbs eventual-consistency lag after
	// project creation. No polling, just a fixed pause.
	projectPropagationDelay = 5 * time.Second
)

// Config carries everything one bootstrap run needs. ProjectID, when set,
// bypasses ID generation entirely.
type Config struct {
	ProjectID          string
	BaseName           string
	Region             string
	Topic              string
	ServiceAccountID   string
	ServiceAccountName string
	BillingAccount     string
	KeyOutput          string
	ConfigureGitHub    bool
	DryRun             bool
}

// Result reports what the run resolved or created.
type Result struct {
	ProjectID           string
	BillingAccountID    string
	ServiceAccountEmail string
	KeyPath             string
}

// Sequencer runs the provisioning steps in a fixed dependency order.
type Sequencer struct {
	cfg       Config
	client    gcp.GCPClienter
	prompter  Prompter
	publisher secrets.Publisher

	// PropagationDelay is the pause after project creation. Tests set it
	// to zero.
	PropagationDelay time.Duration

	// Out receives operator-facing progress lines.
	Out io.Writer
}

func NewSequencer(
	cfg Config,
	client gcp.GCPClienter,
	prompter Prompter,
	publisher secrets.Publisher,
) *Sequencer {
	return &Sequencer{
		cfg:              cfg,
		client:           client,
		prompter:         prompter,
		publisher:        publisher,
		PropagationDelay: projectPropagationDelay,
		Out:              os.Stdout,
	}
}

// Run executes the full sequence. The first failing step aborts the run;
// nothing already provisioned is rolled back, the design relies on
// re-runnability instead.
func (s *Sequencer) Run(ctx context.Context) (*Result, error) {
	l := logger.Get()
	result := &Result{}

	projectID, err := s.resolveProjectID(ctx)
	if err != nil {
		return nil, err
	}
	result.ProjectID = projectID
	fmt.Fprintf(s.Out, "Project ID: %s\n", projectID)

	billingID, err := SelectBillingAccount(ctx, s.client, s.prompter, s.cfg.BillingAccount)
	if err != nil {
		return nil, err
	}
	if billingID != "" {
		if err := s.client.LinkBillingAccount(ctx, projectID, billingID); err != nil {
			return nil, fmt.Errorf("link billing account %s: %w", billingID, err)
		}
		result.BillingAccountID = billingID
	}

	// The generated-ID path has not created the project yet; for the
	// explicit path this re-check is a safety net against a creation that
	// did not stick.
	if !s.client.ProjectExists(ctx, projectID) {
		displayBase := s.cfg.BaseName
		if displayBase == "" {
			displayBase = projectID
		}
		if err := s.createProject(ctx, projectID, naming.FormatDisplayName(displayBase)); err != nil {
			return nil, err
		}
	}

	for _, service := range RequiredServices {
		if err := s.client.EnableService(ctx, projectID, service); err != nil {
			return nil, fmt.Errorf("enable service %s: %w", service, err)
		}
	}

	if err := s.ensureTopic(ctx, projectID); err != nil {
		return nil, err
	}

	email, err := s.ensureServiceAccount(ctx, projectID)
	if err != nil {
		return nil, err
	}
	result.ServiceAccountEmail = email

	for _, role := range ServiceAccountRoles {
		if err := s.client.GrantProjectRole(ctx, projectID, email, role); err != nil {
			return nil, fmt.Errorf("grant role %s: %w", role, err)
		}
	}

	var keyJSON []byte
	if !s.cfg.DryRun {
		keyJSON, result.KeyPath, err = s.exportKey(ctx, projectID, email)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(s.Out, "Service account key written to %s\n", result.KeyPath)
	} else {
		l.Info("Dry run: skipping service account key export")
	}

	if s.cfg.ConfigureGitHub {
		if s.cfg.DryRun {
			l.Info("Dry run: skipping GitHub secret upload")
		} else if err := s.publishSecrets(ctx, result, keyJSON); err != nil {
			return nil, err
		}
	}

	fmt.Fprintln(s.Out, "GCP bootstrap complete.")
	return result, nil
}

func (s *Sequencer) resolveProjectID(ctx context.Context) (string, error) {
	if s.cfg.ProjectID != "" {
		projectID := s.cfg.ProjectID
		if !s.client.ProjectExists(ctx, projectID) {
			if err := s.createProject(ctx, projectID, naming.FormatDisplayName(projectID)); err != nil {
				return "", err
			}
		}
		return projectID, nil
	}
	return naming.GenerateProjectID(ctx, s.cfg.BaseName, s.client.ProjectExists)
}

func (s *Sequencer) createProject(ctx context.Context, projectID, displayName string) error {
	if err := s.client.CreateProject(ctx, projectID, displayName); err != nil {
		return fmt.Errorf("create project %s: %w", projectID, err)
	}
	// allow propagation
	return sleepCtx(ctx, s.PropagationDelay)
}

func (s *Sequencer) ensureTopic(ctx context.Context, projectID string) error {
	l := logger.Get()
	if s.client.TopicExists(ctx, projectID, s.cfg.Topic) {
		l.Infof("Topic %s already exists", s.cfg.Topic)
		return nil
	}
	if err := s.client.CreateTopic(ctx, projectID, s.cfg.Topic); err != nil {
		return fmt.Errorf("create topic %s: %w", s.cfg.Topic, err)
	}
	return nil
}

func (s *Sequencer) ensureServiceAccount(ctx context.Context, projectID string) (string, error) {
	l := logger.Get()
	email := naming.ServiceAccountEmail(s.cfg.ServiceAccountID, projectID)
	if s.client.ServiceAccountExists(ctx, projectID, email) {
		l.Infof("Service account %s already exists", email)
		return email, nil
	}
	err := s.client.CreateServiceAccount(
		ctx,
		projectID,
		s.cfg.ServiceAccountID,
		s.cfg.ServiceAccountName,
	)
	if err != nil {
		return "", fmt.Errorf("create service account %s: %w", s.cfg.ServiceAccountID, err)
	}
	return email, nil
}

// exportKey is the one step that is not idempotent by silent skip: an
// existing file at the target path fails the run before any key is minted.
func (s *Sequencer) exportKey(ctx context.Context, projectID, email string) ([]byte, string, error) {
	keyPath := s.cfg.KeyOutput
	if keyPath == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, "", fmt.Errorf("resolve working directory: %w", err)
		}
		keyPath = filepath.Join(cwd, DefaultKeyFileName)
	}
	keyPath, err := filepath.Abs(keyPath)
	if err != nil {
		return nil, "", fmt.Errorf("resolve key output path: %w", err)
	}

	if _, err := os.Stat(keyPath); err == nil {
		return nil, "", fmt.Errorf("refusing to overwrite existing key: %s", keyPath)
	}
	if err := os.MkdirAll(filepath.Dir(keyPath), 0755); err != nil {
		return nil, "", fmt.Errorf("create key output directory: %w", err)
	}

	keyJSON, err := s.client.CreateServiceAccountKey(ctx, projectID, email)
	if err != nil {
		return nil, "", err
	}

	file, err := os.OpenFile(keyPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return nil, "", fmt.Errorf("write key file: %w", err)
	}
	defer file.Close()
	if _, err := file.Write(keyJSON); err != nil {
		return nil, "", fmt.Errorf("write key file: %w", err)
	}

	return keyJSON, keyPath, nil
}

func (s *Sequencer) publishSecrets(ctx context.Context, result *Result, keyJSON []byte) error {
	if s.publisher == nil {
		return fmt.Errorf("no secret publisher configured")
	}

	values := map[string]string{
		"GCP_PROJECT":  result.ProjectID,
		"GCP_REGION":   s.cfg.Region,
		"PUBSUB_TOPIC": s.cfg.Topic,
	}
	if len(keyJSON) > 0 {
		values["GCP_SA_KEY"] = string(keyJSON)
	}

	optional := []struct {
		name  string
		label string
	}{
		{"INGEST_API_KEY", "Optional INGEST_API_KEY (leave blank to skip): "},
		{"ALLOWED_AUDIENCE", "Optional ALLOWED_AUDIENCE (leave blank to skip): "},
		{"ALLOWED_ISSUERS", "Optional ALLOWED_ISSUERS (comma separated, leave blank to skip): "},
	}
	for _, entry := range optional {
		value, err := s.prompter.Prompt(entry.label)
		if err != nil {
			return fmt.Errorf("read %s: %w", entry.name, err)
		}
		if value != "" {
			values[entry.name] = value
		}
	}

	return secrets.Publish(ctx, s.publisher, values)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
