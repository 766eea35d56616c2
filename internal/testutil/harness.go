package testutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/specialistvlad/scriptbridge/internal/app"
	"github.com/stretchr/testify/require"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput string
	Err       error
	App       *app.App
	Root      string
}

// RootPlaceholder is replaced with the test's temporary root directory in
// every file written by the harness, so configs can name absolute paths.
const RootPlaceholder = "{{root}}"

// RunIntegrationTest provides a standardized harness for running integration tests
// using a default background context.
func RunIntegrationTest(t *testing.T, files map[string]string) *HarnessResult {
	t.Helper()
	return RunIntegrationTestWithContext(context.Background(), t, files)
}

// RunIntegrationTestWithContext writes files under a temporary root, builds
// the app from the config/ subdirectory and runs one full session.
func RunIntegrationTestWithContext(ctx context.Context, t *testing.T, files map[string]string) *HarnessResult {
	t.Helper()

	// 1. Create a temporary root directory for the test.
	tmpDir := t.TempDir()
	configDir := filepath.Join(tmpDir, "config")
	require.NoError(t, os.Mkdir(configDir, 0755))

	// 2. Write all files. The test provides relative paths such as
	//    "config/main.hcl" or "bundle/app.js".
	for name, content := range files {
		filePath := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0755))
		content = strings.ReplaceAll(content, RootPlaceholder, filepath.ToSlash(tmpDir))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0644))
	}

	appConfig := &app.Config{
		ConfigPaths: []string{configDir},
		LogLevel:    "debug",
		LogFormat:   "text",
	}

	logBuffer := &SafeBuffer{}

	var testApp *app.App
	var startErr error
	var panicErr any
	func() {
		defer func() {
			if r := recover(); r != nil {
				if os.Getenv("SB_TEST_LOGS") == "true" {
					t.Logf("--- HARNESS RECOVERED PANIC ---\n%q", fmt.Sprintf("%v", r))
				}
				panicErr = r
			}
		}()
		testApp, startErr = app.NewApp(logBuffer, appConfig, nil)
	}()

	if panicErr != nil {
		return &HarnessResult{
			LogOutput: logBuffer.String(),
			Err:       fmt.Errorf("application startup panicked | %v", panicErr),
			Root:      tmpDir,
		}
	}
	if startErr != nil {
		return &HarnessResult{LogOutput: logBuffer.String(), Err: startErr, Root: tmpDir}
	}

	runErr := testApp.Run(ctx)

	if os.Getenv("SB_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}

	return &HarnessResult{
		LogOutput: logBuffer.String(),
		Err:       runErr,
		App:       testApp,
		Root:      tmpDir,
	}
}
