package terminal

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/de-tools/db-custodian/pkg/runtime/terminal/commands"
	"github.com/de-tools/db-custodian/pkg/services/engine"
)

// CLI represents the command-line interface
type CLI struct {
	registry engine.Registry
	output   io.Writer
	rootCmd  *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Registry engine.Registry
	Output   io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	cli := &CLI{
		registry: opts.Registry,
		output:   opts.Output,
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

// ExecuteContext runs the CLI with the given context, which flows into every
// engine query.
func (cli *CLI) ExecuteContext(ctx context.Context) error {
	return cli.rootCmd.ExecuteContext(ctx)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "custodian",
		Short: "Database capacity maintenance tool",
	}
	cmd.SetOut(cli.output)

	cmd.AddCommand(commands.NewCheckCmd(cli.registry, newReporter))
	cmd.AddCommand(commands.NewProfilesCmd())
	cmd.AddCommand(commands.NewEnginesCmd(cli.registry))

	return cmd
}

func newReporter(w io.Writer, format string) (commands.Reporter, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}
	return NewReporter(w, f), nil
}
