package gcp

import (
	"context"
	"fmt"

	"cloud.google.com/go/resourcemanager/apiv3/resourcemanagerpb"

	"github.com/oak-disperser/oakboot/pkg/logger"
)

// ProjectExists performs a read-only describe of the project. Any failure,
// including auth or transport errors, reads as "does not exist" — the
// sequencer treats the probe as advisory and re-runs converge regardless.
func (c *LiveGCPClient) ProjectExists(ctx context.Context, projectID string) bool {
	_, err := c.projectClient.GetProject(ctx, &resourcemanagerpb.GetProjectRequest{
		Name: fmt.Sprintf("projects/%s", projectID),
	})
	return err == nil
}

func (c *LiveGCPClient) CreateProject(ctx context.Context, projectID, displayName string) error {
	l := logger.Get()
	l.Infof("Creating project: %s (Display Name: %s)", projectID, displayName)

	req := &resourcemanagerpb.CreateProjectRequest{
		Project: &resourcemanagerpb.Project{
			ProjectId:   projectID,
			DisplayName: displayName,
			Labels:      map[string]string{"deployed-by": "oakboot"},
		},
	}

	op, err := c.projectClient.CreateProject(ctx, req)
	if err != nil {
		return fmt.Errorf("create project: %w", err)
	}

	project, err := op.Wait(ctx)
	if err != nil {
		return fmt.Errorf("wait for project creation: %w", err)
	}

	l.Infof("Created project: %s", project.ProjectId)
	return nil
}
