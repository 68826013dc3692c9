package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/de-tools/db-custodian/pkg/services/config"
)

type ProfilesCmd struct {
	profilesPath string
}

func NewProfilesCmd() *cobra.Command {
	pc := &ProfilesCmd{}
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List configured server profiles",
		RunE:  pc.run,
	}

	cmd.Flags().StringVar(&pc.profilesPath, "profiles", "", "Path to the profiles file (default is $HOME/.dbcustodian/profiles)")

	return cmd
}

func (pc *ProfilesCmd) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	path := pc.profilesPath
	if path == "" {
		var err error
		path, err = config.DefaultProfilesPath()
		if err != nil {
			return err
		}
	}

	registry, err := config.NewRegistry(path)
	if err != nil {
		return err
	}

	profiles, err := registry.GetProfiles(ctx)
	if err != nil {
		return err
	}

	if len(profiles) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No profiles found in %s\n", path)
		return nil
	}

	for _, p := range profiles {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\tengine=%s\thost=%s\n", p.Name, p.Engine, p.Host)
	}
	return nil
}
