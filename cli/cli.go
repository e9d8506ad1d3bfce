package cli

import (
	"os"
	"strings"

	"github.com/gclaussn/go-bpmn-assert/engine"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const (
	envLookupAllowed = "envLookupAllowed" // flag level annotation that allows an environment variable lookup
	envPrefix        = "GO_BPMN_ASSERT_"
	program          = "go-bpmn-assert"
)

func New(version string) *Cli {
	cli := Cli{version: version}

	cli.rootCmd = newRootCmd(&cli)

	return &cli
}

type Cli struct {
	version string

	rootCmd *cobra.Command

	e            engine.Engine
	debugEnabled bool
	logger       *zap.Logger
}

func (c *Cli) Execute() int {
	err := c.rootCmd.Execute()
	c.shutdown()

	if err != nil {
		return 1
	}
	return 0
}

func (c *Cli) help(cmd *cobra.Command, args []string) error {
	return cmd.Help()
}

// shutdown releases the engine and flushes the logger, regardless of the command's outcome.
func (c *Cli) shutdown() {
	if c.e != nil {
		c.e.Shutdown()
		c.e = nil
	}
	if c.logger != nil {
		_ = c.logger.Sync()
	}
}

func newRootCmd(cli *Cli) *cobra.Command {
	c := cobra.Command{
		Use:   program,
		Short: "Verifies the state of process and case instances",
		PersistentPreRunE: func(c *cobra.Command, _ []string) error {
			c.SilenceUsage = true

			c.Flags().VisitAll(func(f *pflag.Flag) {
				if f.Changed {
					return
				}
				if _, ok := f.Annotations[envLookupAllowed]; !ok {
					return
				}

				// e.g. database-url -> GO_BPMN_ASSERT_DATABASE_URL
				key := envPrefix + strings.ReplaceAll(strings.ToUpper(f.Name), "-", "_")

				if value, ok := os.LookupEnv(key); ok {
					f.Value.Set(value)
				}
			})

			if cli.logger != nil {
				return nil // skip logger creation when testing
			}

			var (
				logger *zap.Logger
				err    error
			)
			if cli.debugEnabled {
				logger, err = zap.NewDevelopment()
			} else {
				logger, err = zap.NewProduction()
			}
			if err != nil {
				return err
			}

			cli.logger = logger
			return nil
		},
		RunE: cli.help,
	}

	c.PersistentFlags().BoolVar(&cli.debugEnabled, "debug", false, "Log engine commands and queries")
	c.PersistentFlags().SetAnnotation("debug", envLookupAllowed, nil)

	c.AddCommand(newVerifyCmd(cli))
	c.AddCommand(newVersionCmd(cli))

	return &c
}

func newVersionCmd(cli *Cli) *cobra.Command {
	c := cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(c *cobra.Command, _ []string) {
			c.Println(cli.version)
		},
	}

	return &c
}
