package app

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/vk/critgridgo/internal/hcl"
	"github.com/vk/critgridgo/internal/registry"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// SetupCaseTest writes the given case files into a temp directory and
// creates an app instance over them for system testing. The returned config
// points CasePath and OutDir inside the temp directory.
func SetupCaseTest(t *testing.T, files map[string]string, modules ...registry.Module) (*App, *Config, *SafeBuffer) {
	t.Helper()

	tmpDir := t.TempDir()
	caseDir := filepath.Join(tmpDir, "case")
	if err := os.MkdirAll(caseDir, 0o755); err != nil {
		t.Fatalf("failed to create case dir: %v", err)
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(caseDir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write case file %s: %v", name, err)
		}
	}

	appConfig, err := NewConfig(Config{
		CasePath:  caseDir,
		OutDir:    filepath.Join(tmpDir, "out"),
		LogLevel:  "debug",
		LogFormat: "text",
		Workers:   2,
	})
	if err != nil {
		t.Fatalf("failed to build app config: %v", err)
	}

	logBuffer := &SafeBuffer{}
	testApp := NewApp(logBuffer, appConfig, hcl.NewLoader(), modules...)

	t.Cleanup(func() {
		if os.Getenv("CRITGRID_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, appConfig, logBuffer
}
