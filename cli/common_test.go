package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/gclaussn/go-bpmn-assert/engine"
	"github.com/gclaussn/go-bpmn-assert/engine/mem"
	"go.uber.org/zap"
)

func mustCreateEngine(t *testing.T, customizers ...func(*mem.Options)) engine.Engine {
	e, err := mem.New(append([]func(*mem.Options){func(o *mem.Options) {
		o.Common.Registry = nil
	}}, customizers...)...)
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	t.Cleanup(e.Shutdown)
	return e
}

// execute executes the root command with the given engine and returns the output.
func execute(e engine.Engine, args ...string) (string, error) {
	rootCmd := newRootCmd(&Cli{e: e, logger: zap.NewNop(), version: "test-version"})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

func mustWriteFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write file %s: %v", path, err)
	}
	return path
}
