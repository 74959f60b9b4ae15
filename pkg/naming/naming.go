package naming

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

const (
	// FallbackBase is used when sanitizing leaves nothing usable.
	FallbackBase = "oak-disperser"

	// DomainSuffix is appended to generated project IDs so they are
	// recognizable as oak-disperser deployments.
	DomainSuffix = "-oak-disperser"

	// MaxProjectIDLength is the provider's cap on project identifiers.
	MaxProjectIDLength = 30

	minBaseLength       = 6
	paddedBaseLength    = 10
	maxDisplayNameLen   = 30
	maxGenerateAttempts = 100
)

var (
	invalidRunes    = regexp.MustCompile(`[^a-z0-9-]+`)
	repeatedHyphens = regexp.MustCompile(`-+`)
	displayUnsafe   = regexp.MustCompile(`[^a-zA-Z0-9 -]`)
	whitespaceRuns  = regexp.MustCompile(`\s+`)
)

// ExistsFunc reports whether a candidate project ID is already taken.
// Probe failures are treated as "available" by the caller's contract.
type ExistsFunc func(ctx context.Context, projectID string) bool

// Sanitize normalizes arbitrary text into a valid resource-name fragment:
// lowercase, runs of disallowed characters collapsed to single hyphens, no
// leading/trailing hyphens. An input with nothing salvageable yields
// FallbackBase, never an empty string.
func Sanitize(value string) string {
	cleaned := invalidRunes.ReplaceAllString(strings.ToLower(value), "-")
	cleaned = strings.Trim(cleaned, "-")
	cleaned = repeatedHyphens.ReplaceAllString(cleaned, "-")
	if cleaned == "" {
		return FallbackBase
	}
	return cleaned
}

// GenerateProjectID derives a globally-unique project ID from a base name.
// Short bases are padded, the domain suffix is appended unless present, and
// the result is capped at MaxProjectIDLength. Collisions reported by exists
// are resolved with incrementing numeric suffixes; the search is bounded so
// a fully-occupied namespace surfaces an error instead of looping forever.
func GenerateProjectID(ctx context.Context, baseName string, exists ExistsFunc) (string, error) {
	sanitized := Sanitize(baseName)
	if len(sanitized) < minBaseLength {
		sanitized = (sanitized + "oak")
		if len(sanitized) > paddedBaseLength {
			sanitized = sanitized[:paddedBaseLength]
		}
	}
	if !strings.HasSuffix(sanitized, DomainSuffix) {
		sanitized += DomainSuffix
	}

	projectID := sanitized
	if len(projectID) > MaxProjectIDLength {
		projectID = projectID[:MaxProjectIDLength]
	}
	if !exists(ctx, projectID) {
		return projectID, nil
	}

	for suffix := 1; suffix <= maxGenerateAttempts; suffix++ {
		tail := fmt.Sprintf("-%d", suffix)
		head := sanitized
		if len(head) > MaxProjectIDLength-len(tail) {
			head = head[:MaxProjectIDLength-len(tail)]
		}
		candidate := head + tail
		if !exists(ctx, candidate) {
			return candidate, nil
		}
	}

	return "", fmt.Errorf(
		"no available project ID derived from %q after %d attempts",
		baseName, maxGenerateAttempts,
	)
}

// FormatDisplayName turns a project ID (or base name) into a human-readable
// project display name, capped at the provider's 30-character limit.
func FormatDisplayName(value string) string {
	safe := displayUnsafe.ReplaceAllString(value, " ")
	safe = strings.TrimSpace(whitespaceRuns.ReplaceAllString(safe, " "))
	label := "Oak Disperser"
	if safe != "" {
		label = fmt.Sprintf("Oak Disperser - %s", safe)
	}
	if len(label) > maxDisplayNameLen {
		label = label[:maxDisplayNameLen]
	}
	return label
}

// ServiceAccountEmail returns the deterministic email for a service account
// ID within a project.
func ServiceAccountEmail(accountID, projectID string) string {
	return fmt.Sprintf("%s@%s.iam.gserviceaccount.com", accountID, projectID)
}
