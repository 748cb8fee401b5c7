package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newCharactersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "characters",
		Short: "Browse story characters",
	}
	cmd.AddCommand(newCharactersListCmd(a))
	return cmd
}

func newCharactersListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list <story-id>",
		Short: "List a story's characters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keyring, err := a.keyring()
			if err != nil {
				return err
			}
			defer keyring.Close()

			list, err := a.client(keyring).ListCharacters(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(list.Characters) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no characters")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tTYPE\tDESCRIPTION")
			for _, c := range list.Characters {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Kind, truncate(c.Summary, 60))
			}
			return w.Flush()
		},
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
