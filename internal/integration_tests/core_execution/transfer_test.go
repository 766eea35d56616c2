package integration_tests

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/specialistvlad/scriptbridge/internal/testutil"
	"github.com/stretchr/testify/require"
)

// TestCoreExecution_FetchesBundleAndUploadsProfile verifies that a bundle is
// downloaded into its cache path before loading and that the written profile
// is uploaded afterwards.
func TestCoreExecution_FetchesBundleAndUploadsProfile(t *testing.T) {
	// Not parallel: the engine allows one running profile per process.

	// --- Arrange ---
	var mu sync.Mutex
	var uploaded []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			io.WriteString(w, `__fbBatchedBridge.enqueueNativeCall(0, 0, ["fetched"]);`)
		case http.MethodPut:
			body, _ := io.ReadAll(r.Body)
			mu.Lock()
			uploaded = body
			mu.Unlock()
		}
	}))
	defer srv.Close()

	config := `
		bundle {
			source_url = "` + srv.URL + `/index.bundle"
			path       = "{{root}}/cache/index.bundle"
			fetch      = true
		}
		profile {
			output     = "{{root}}/startup.pprof"
			upload_url = "` + srv.URL + `/signed/startup.pprof"
		}
	`
	files := map[string]string{"config/main.hcl": config}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files)

	// --- Assert ---
	require.NoError(t, result.Err)
	require.Contains(t, result.LogOutput, "fetched")

	cached, err := os.ReadFile(filepath.Join(result.Root, "cache", "index.bundle"))
	require.NoError(t, err)
	require.True(t, strings.Contains(string(cached), "enqueueNativeCall"))

	written, err := os.ReadFile(filepath.Join(result.Root, "startup.pprof"))
	require.NoError(t, err)
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, written, uploaded)
}
