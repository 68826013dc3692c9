package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/de-tools/db-custodian/pkg/services/engine"
)

func NewEnginesCmd(registry engine.Registry) *cobra.Command {
	return &cobra.Command{
		Use:   "engines",
		Short: "List supported database engines",
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds := registry.Kinds()
			sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
			for _, kind := range kinds {
				fmt.Fprintln(cmd.OutOrStdout(), kind)
			}
			return nil
		},
	}
}
