package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/emberveil/storyweave/internal/archive"
	"github.com/emberveil/storyweave/internal/play"
)

func newArchiveCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Browse locally archived transcripts",
	}
	cmd.AddCommand(newArchiveListCmd(a), newArchiveShowCmd(a))
	return cmd
}

func newArchiveListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List archived transcripts",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.archiveStore()
			if err != nil {
				return err
			}
			defer store.Close()

			summaries, err := store.List()
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no archived transcripts")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SESSION\tTITLE\tEVENTS\tARCHIVED")
			for _, s := range summaries {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
					s.SessionID, s.Title, s.EventCount,
					s.ArchivedAt.Local().Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}
}

func newArchiveShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <session-id>",
		Short: "Print an archived transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.archiveStore()
			if err != nil {
				return err
			}
			defer store.Close()

			transcript, err := store.Get(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			title := transcript.Title
			if title == "" {
				title = transcript.SessionID
			}
			fmt.Fprintf(out, "%s (archived %s)\n\n",
				title, transcript.ArchivedAt.Local().Format("2006-01-02 15:04"))
			for _, e := range transcript.Events {
				if e.Kind == play.KindAction {
					fmt.Fprintf(out, "> %s\n\n", e.Text)
					continue
				}
				fmt.Fprintf(out, "%s\n\n", e.Text)
			}
			return nil
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export <session-id>",
		Short: "Write an archived transcript as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.archiveStore()
			if err != nil {
				return err
			}
			defer store.Close()

			transcript, err := store.Get(args[0])
			if err != nil {
				return err
			}

			if outPath == "" {
				return archive.WriteYAML(cmd.OutOrStdout(), transcript)
			}

			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("create export file: %w", err)
			}
			if err := archive.WriteYAML(f, transcript); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported to %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "output", "o", "", "write to a file instead of stdout")
	return cmd
}
