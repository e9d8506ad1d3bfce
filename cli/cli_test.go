package cli

import (
	"bytes"
	"testing"

	"github.com/gclaussn/go-bpmn-assert/engine"
	"github.com/gclaussn/go-bpmn-assert/engine/mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHelp(t *testing.T) {
	assert := assert.New(t)

	e := mustCreateEngine(t)

	for _, args := range [][]string{
		{},
		{"verify", "--help"},
		{"version", "--help"},
	} {
		_, err := execute(e, args...)
		assert.NoError(err, "args %v", args)
	}
}

func TestVersion(t *testing.T) {
	assert := assert.New(t)

	out, err := execute(nil, "version")
	assert.NoError(err)
	assert.Equal("test-version\n", out)
}

func TestEnvLookup(t *testing.T) {
	assert := assert.New(t)

	// given
	t.Setenv("GO_BPMN_ASSERT_DATABASE_URL", "postgres://localhost:1/not-existing?connect_timeout=1")

	// when
	_, err := execute(nil, "verify", "--file", "testdata/order.yaml")

	// then
	assert.ErrorContains(err, "failed to create pg engine")
}

func TestExecute(t *testing.T) {
	for _, file := range []string{"testdata/order.yaml", "testdata/failing.yaml"} {
		file := file
		t.Run("shuts down engine: "+file, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			// given
			registry := engine.NewRegistry()

			e, err := mem.New(func(o *mem.Options) {
				o.Common.Registry = registry
			})
			require.NoError(err)
			require.Len(registry.Engines(), 1)

			cli := &Cli{e: e, logger: zap.NewNop(), version: "test-version"}
			cli.rootCmd = newRootCmd(cli)

			var out bytes.Buffer
			cli.rootCmd.SetOut(&out)
			cli.rootCmd.SetErr(&out)
			cli.rootCmd.SetArgs([]string{"verify", "--mem", "-f", file})

			// when
			exitCode := cli.Execute()

			// then
			if file == "testdata/failing.yaml" {
				assert.Equal(1, exitCode)
			} else {
				assert.Equal(0, exitCode)
			}

			assert.Empty(registry.Engines())
			assert.Nil(cli.e)
		})
	}
}
