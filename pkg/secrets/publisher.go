// Package secrets pushes bootstrap outputs (project ID, region, topic,
// credential material) to a CI secret store.
package secrets

import (
	"context"
	"fmt"
	"sort"

	"github.com/oak-disperser/oakboot/pkg/logger"
)

// Publisher is the capability the sequencer needs from a secret store:
// set one named secret to a value. Preflight verifies the store is usable
// before any upload begins, so a missing helper fails the run up front
// rather than after a partial publish.
type Publisher interface {
	Preflight() error
	SetSecret(ctx context.Context, name, value string) error
}

// Publish uploads every entry in values, in name order, stopping on the
// first failure.
func Publish(ctx context.Context, publisher Publisher, values map[string]string) error {
	l := logger.Get()

	if err := publisher.Preflight(); err != nil {
		return err
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		l.Infof("Setting secret %s", name)
		if err := publisher.SetSecret(ctx, name, values[name]); err != nil {
			return fmt.Errorf("set secret %s: %w", name, err)
		}
	}
	return nil
}
