package naming

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercases", "MyRepo", "myrepo"},
		{"replaces disallowed runs with one hyphen", "My Repo!!", "my-repo"},
		{"strips leading and trailing hyphens", "--edge--", "edge"},
		{"collapses repeated hyphens", "a--b---c", "a-b-c"},
		{"keeps digits", "repo123", "repo123"},
		{"only disallowed characters falls back", "!!!***", FallbackBase},
		{"empty input falls back", "", FallbackBase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Sanitize(tt.input))
		})
	}
}

func TestSanitizeIsIdempotent(t *testing.T) {
	inputs := []string{"My Repo!!", "already-clean", "--x--", "", "A B C", "!!!"}
	for _, input := range inputs {
		once := Sanitize(input)
		assert.Equal(t, once, Sanitize(once), "sanitize(sanitize(%q))", input)
	}
}

func TestGenerateProjectID(t *testing.T) {
	ctx := context.Background()
	nothingExists := func(context.Context, string) bool { return false }

	t.Run("appends domain suffix", func(t *testing.T) {
		id, err := GenerateProjectID(ctx, "My Repo!!", nothingExists)
		require.NoError(t, err)
		assert.Equal(t, "my-repo-oak-disperser", id)
	})

	t.Run("pads short bases", func(t *testing.T) {
		id, err := GenerateProjectID(ctx, "ab", nothingExists)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(id, "aboak"))
		assert.True(t, strings.HasSuffix(id, DomainSuffix))
	})

	t.Run("caps at the provider limit", func(t *testing.T) {
		id, err := GenerateProjectID(ctx, strings.Repeat("verylong", 10), nothingExists)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(id), MaxProjectIDLength)
	})

	t.Run("collision gets numeric suffix within limit", func(t *testing.T) {
		taken := map[string]bool{"my-repo-oak-disperser": true}
		id, err := GenerateProjectID(ctx, "My Repo!!", func(_ context.Context, candidate string) bool {
			return taken[candidate]
		})
		require.NoError(t, err)
		assert.Equal(t, "my-repo-oak-disperser-1", id)
		assert.LessOrEqual(t, len(id), MaxProjectIDLength)
	})

	t.Run("long base with collision still fits", func(t *testing.T) {
		probes := 0
		id, err := GenerateProjectID(ctx, strings.Repeat("abcdef", 10), func(context.Context, string) bool {
			probes++
			return probes == 1
		})
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(id, "-1"))
		assert.LessOrEqual(t, len(id), MaxProjectIDLength)
	})

	t.Run("exhausted namespace returns an error", func(t *testing.T) {
		everythingExists := func(context.Context, string) bool { return true }
		_, err := GenerateProjectID(ctx, "my-repo", everythingExists)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no available project ID")
	})
}

func TestFormatDisplayName(t *testing.T) {
	assert.Equal(t, "Oak Disperser - my-repo", FormatDisplayName("my-repo"))
	assert.Equal(t, "Oak Disperser", FormatDisplayName("!!!"))
	assert.LessOrEqual(t, len(FormatDisplayName(strings.Repeat("x", 60))), 30)
}

func TestServiceAccountEmail(t *testing.T) {
	assert.Equal(t,
		"oak-disperser-ci@my-proj.iam.gserviceaccount.com",
		ServiceAccountEmail("oak-disperser-ci", "my-proj"),
	)
}
