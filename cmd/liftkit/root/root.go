package root

import (
	"github.com/spf13/cobra"

	"github.com/kbukum/liftkit/cmd/liftkit/initdata"
	"github.com/kbukum/liftkit/cmd/liftkit/run"
	"github.com/kbukum/liftkit/cmd/liftkit/version"
)

// NewRootCmd creates the root command for liftkit.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "liftkit",
		Short: "Select a crane hook and thrust bearing for a hoisting mechanism",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(run.NewCmd())
	cmd.AddCommand(initdata.NewCmd())
	cmd.AddCommand(version.NewCmd())
	return cmd
}

// Execute runs the root command with provided args.
func Execute(args []string) error {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	return cmd.Execute()
}
