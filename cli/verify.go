package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/gclaussn/go-bpmn-assert/engine"
	"github.com/gclaussn/go-bpmn-assert/engine/mem"
	"github.com/gclaussn/go-bpmn-assert/engine/pg"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newVerifyCmd(cli *Cli) *cobra.Command {
	var (
		databaseUrl string
		files       []string
		memEnabled  bool
	)

	c := cobra.Command{
		Use:   "verify",
		Short: "Verify scenario files against an engine",
		Long: `Verify scenario files against an engine.

A scenario file consists of an optional setup, which creates definitions and instances,
and checks. Each check selects a single process definition, process instance, case definition
or case instance and applies the expected steps in order:

  name: order approval
  checks:
    - name: order is waiting for approval
      processInstance:
        businessKey: order-1
      expect:
        - isActive
        - hasVariables: [amount]
        - task: approveOrder
        - hasCandidateGroup: approvers
`,
		RunE: func(c *cobra.Command, _ []string) error {
			scenarios := make([]*scenario, len(files))
			for i, file := range files {
				s, err := loadScenario(file)
				if err != nil {
					return err
				}
				scenarios[i] = s
			}

			if cli.e == nil {
				e, err := createEngine(cli.logger, memEnabled, databaseUrl)
				if err != nil {
					return err
				}
				cli.e = e
			}

			out := c.OutOrStdout()
			summary := newTable("SCENARIO", "CHECK", "RESULT")

			var total, failed int
			for _, s := range scenarios {
				cli.logger.Info("running scenario", zap.String("name", s.Name), zap.String("file", s.file))

				if err := s.Setup.apply(context.Background(), cli.e); err != nil {
					return fmt.Errorf("scenario %s: %v", s.Name, err)
				}

				for i, check := range s.Checks {
					result := runCheck(cli.e, cli.logger, s.Name+"/"+check.label(i), check)

					total++
					if !result.passed {
						failed++

						fmt.Fprintf(out, "--- FAIL: %s\n", result.name)
						fmt.Fprint(out, indent(result.message))
					}

					summary.addRow(s.Name, check.label(i), formatResult(result))
				}
			}

			fmt.Fprintln(out)
			fmt.Fprint(out, summary.format())

			if failed != 0 {
				fmt.Fprintf(out, "\nFAIL: %d of %d checks failed\n", failed, total)
				return fmt.Errorf("%d checks failed", failed)
			}

			fmt.Fprintf(out, "\nPASS: %d checks passed\n", total)
			return nil
		},
	}

	c.Flags().StringVar(&databaseUrl, "database-url", "", "URL of the PostgreSQL database, the engine uses")
	c.Flags().StringArrayVarP(&files, "file", "f", nil, "Scenario file, can be specified multiple times")
	c.Flags().BoolVar(&memEnabled, "mem", false, "Use an empty in-memory engine")

	c.Flags().SetAnnotation("database-url", envLookupAllowed, nil)

	c.MarkFlagRequired("file")
	c.MarkFlagsMutuallyExclusive("database-url", "mem")

	return &c
}

func createEngine(logger *zap.Logger, memEnabled bool, databaseUrl string) (engine.Engine, error) {
	if memEnabled {
		e, err := mem.New(func(o *mem.Options) {
			o.Common.EngineId = program
			o.Common.Logger = logger
			o.Common.Registry = nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create mem engine: %v", err)
		}
		return e, nil
	}

	if databaseUrl == "" {
		return nil, fmt.Errorf("no database URL set.\n\nuse flag --database-url, environment variable %sDATABASE_URL or flag --mem\n ", envPrefix)
	}

	e, err := pg.New(databaseUrl, func(o *pg.Options) {
		o.Common.EngineId = program
		o.Common.Logger = logger
		o.Common.Registry = nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pg engine: %v", err)
	}
	return e, nil
}

func indent(s string) string {
	var sb strings.Builder
	for _, line := range strings.SplitAfter(s, "\n") {
		if line == "" {
			continue
		}
		sb.WriteString("    ")
		sb.WriteString(line)
	}
	return sb.String()
}
