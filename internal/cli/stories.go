package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/emberveil/storyweave/internal/api"
)

func newStoriesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stories",
		Short: "Browse and create stories",
	}
	cmd.AddCommand(newStoriesListCmd(a), newStoriesShowCmd(a), newStoriesCreateCmd(a))
	return cmd
}

func newStoriesListCmd(a *app) *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available stories",
		RunE: func(cmd *cobra.Command, args []string) error {
			keyring, err := a.keyring()
			if err != nil {
				return err
			}
			defer keyring.Close()

			list, err := a.client(keyring).ListStories(cmd.Context(), page)
			if err != nil {
				return err
			}
			if len(list.Stories) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no stories")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tPLAYS\tTAGS")
			for _, s := range list.Stories {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", s.ID, s.Title, s.PlayCount, strings.Join(s.Tags, ","))
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "result page")
	return cmd
}

func newStoriesShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <story-id>",
		Short: "Show one story",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keyring, err := a.keyring()
			if err != nil {
				return err
			}
			defer keyring.Close()

			story, err := a.client(keyring).GetStory(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Title:   %s\n", story.Title)
			fmt.Fprintf(out, "ID:      %s\n", story.ID)
			fmt.Fprintf(out, "Public:  %t\n", story.IsPublic)
			fmt.Fprintf(out, "Plays:   %d\n", story.PlayCount)
			if len(story.Tags) > 0 {
				fmt.Fprintf(out, "Tags:    %s\n", strings.Join(story.Tags, ", "))
			}
			if story.Description != "" {
				fmt.Fprintf(out, "\n%s\n", story.Description)
			}
			return nil
		},
	}
}

func newStoriesCreateCmd(a *app) *cobra.Command {
	var (
		description string
		public      bool
		tags        []string
	)

	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create a story",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keyring, err := a.keyring()
			if err != nil {
				return err
			}
			defer keyring.Close()

			story, err := a.client(keyring).CreateStory(cmd.Context(), api.CreateStoryRequest{
				Title:       args[0],
				Description: description,
				IsPublic:    public,
				Tags:        tags,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created story %s\n", story.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "story description")
	cmd.Flags().BoolVar(&public, "public", false, "make the story public")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "story tag (repeatable)")
	return cmd
}
