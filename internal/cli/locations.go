package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newLocationsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locations",
		Short: "Browse story locations",
	}
	cmd.AddCommand(newLocationsListCmd(a))
	return cmd
}

func newLocationsListCmd(a *app) *cobra.Command {
	var locationType string

	cmd := &cobra.Command{
		Use:   "list <story-id>",
		Short: "List a story's locations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keyring, err := a.keyring()
			if err != nil {
				return err
			}
			defer keyring.Close()

			list, err := a.client(keyring).ListLocations(cmd.Context(), args[0], locationType)
			if err != nil {
				return err
			}
			if len(list.Locations) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no locations")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tTYPE\tDESCRIPTION")
			for _, l := range list.Locations {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", l.ID, l.Name, l.Kind, truncate(l.Summary, 60))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&locationType, "type", "", "filter by location type (city, dungeon, forest, ...)")
	return cmd
}
