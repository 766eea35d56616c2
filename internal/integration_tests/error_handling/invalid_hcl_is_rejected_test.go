package integration_tests

import (
	"strings"
	"testing"

	"github.com/specialistvlad/scriptbridge/internal/testutil"
	"github.com/stretchr/testify/require"
)

// Test for: invalid hcl is rejected
func TestErrorHandling_InvalidHCL_IsRejected(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// Define an HCL string with a clear syntax error (a missing closing brace).
	invalidHCL := `
		bundle {
			path = "app.js"
		// Missing closing brace here
	`
	files := map[string]string{"config/main.hcl": invalidHCL}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files)

	// --- Assert ---
	require.Error(t, result.Err, "startup should fail for invalid HCL")
	require.Nil(t, result.App)

	// The failure must come from the parsing stage.
	errMsg := result.Err.Error()
	require.True(t,
		strings.Contains(errMsg, "failed to parse") || strings.Contains(errMsg, "failed to decode"),
		"expected an HCL parsing failure, got: %s", errMsg)
}

func TestErrorHandling_MissingBundle_IsRejected(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{"config/main.hcl": `settle_timeout = "1s"`}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files)

	// --- Assert ---
	require.Error(t, result.Err)
	require.Contains(t, result.Err.Error(), "bundle requires one of path, asset or source_url")
}

func TestErrorHandling_MixedFormats_AreRejected(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"config/main.hcl":   `bundle { path = "a.js" }`,
		"config/extra.toml": "[bundle]\npath = \"b.js\"\n",
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files)

	// --- Assert ---
	require.Error(t, result.Err)
	require.Contains(t, result.Err.Error(), "mixes")
}
