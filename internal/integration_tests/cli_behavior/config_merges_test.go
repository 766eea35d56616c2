package integration_tests

import (
	"testing"

	"github.com/specialistvlad/scriptbridge/internal/testutil"
	"github.com/stretchr/testify/require"
)

// TestCLI_MergesHCL_FromDirectoryPath validates that every HCL file in the
// config directory contributes to one model.
func TestCLI_MergesHCL_FromDirectoryPath(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	bundle := `
		__fbBatchedBridge.registerCallableModule("Greeter", {
			greet: function (who) { __fbBatchedBridge.enqueueNativeCall(0, 0, [who]); },
		});
	`
	hclFileA := `
		bundle {
			path = "{{root}}/bundle/app.js"
		}
	`
	hclFileB := `
		call {
			module = 0
			method = 0
			args   = ["from b"]
		}
	`
	hclFileC := `
		call {
			module = 0
			method = 0
			args   = ["from c"]
		}
	`
	files := map[string]string{
		"bundle/app.js":    bundle,
		"config/a.hcl":     hclFileA,
		"config/b.hcl":     hclFileB,
		"config/sub/c.hcl": hclFileC,
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files)

	// --- Assert ---
	require.NoError(t, result.Err, "app.Run() returned an unexpected error")
	require.Len(t, result.App.Model().Calls, 2, "calls from both files should be merged")
	require.Equal(t, int64(2), result.App.Calls())
	require.Contains(t, result.LogOutput, "from b")
	require.Contains(t, result.LogOutput, "from c")
}
