package integration_tests

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/scriptbridge/internal/testutil"
	"github.com/stretchr/testify/require"
)

// TestCoreExecution_ProfileIsWritten verifies that a profile block wraps the
// bundle load and calls and writes the profile to its output path.
func TestCoreExecution_ProfileIsWritten(t *testing.T) {
	// Not parallel: the engine allows one running profile per process.

	// --- Arrange ---
	bundle := `
		__fbBatchedBridge.registerCallableModule("Work", {
			spin: function () {
				var x = 0;
				for (var i = 0; i < 10000; i++) { x += i; }
				__fbBatchedBridge.enqueueNativeCall(0, 0, [x]);
			},
		});
	`
	config := `
		bundle {
			path = "{{root}}/app.js"
		}
		profile {
			title  = "startup"
			output = "{{root}}/out/startup.pprof"
		}
		call {
			module = 0
			method = 0
		}
	`
	files := map[string]string{
		"app.js":          bundle,
		"config/main.hcl": config,
		"out/.keep":       "",
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files)

	// --- Assert ---
	require.NoError(t, result.Err)
	require.Contains(t, result.LogOutput, "Profile written.")
	info, err := os.Stat(filepath.Join(result.Root, "out", "startup.pprof"))
	require.NoError(t, err, "profile output should exist")
	require.Positive(t, info.Size())
}
