package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/emberveil/storyweave/internal/api"
	"github.com/emberveil/storyweave/internal/play"
)

func newSessionsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage play sessions",
	}
	cmd.AddCommand(
		newSessionsListCmd(a),
		newSessionsCreateCmd(a),
		newSessionsPauseCmd(a),
		newSessionsResumeCmd(a),
		newSessionsActCmd(a),
		newSessionsEndCmd(a),
	)
	return cmd
}

func newSessionsListCmd(a *app) *cobra.Command {
	var (
		storyID string
		status  string
		page    int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			keyring, err := a.keyring()
			if err != nil {
				return err
			}
			defer keyring.Close()

			list, err := a.client(keyring).ListSessions(cmd.Context(), api.ListSessionsFilter{
				StoryID: storyID,
				Status:  status,
				Page:    page,
			})
			if err != nil {
				return err
			}
			if len(list.Sessions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no sessions")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tTURNS\tCREATED")
			for _, s := range list.Sessions {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
					s.ID, s.Title, s.Status, s.TurnCount,
					s.CreatedAt.Local().Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&storyID, "story", "", "filter by story id")
	cmd.Flags().StringVar(&status, "status", "", "filter by status (waiting, active, paused, completed, archived)")
	cmd.Flags().IntVar(&page, "page", 1, "result page")
	return cmd
}

func newSessionsCreateCmd(a *app) *cobra.Command {
	var (
		title       string
		description string
		public      bool
	)

	cmd := &cobra.Command{
		Use:   "create <story-id>",
		Short: "Create a session for a story",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keyring, err := a.keyring()
			if err != nil {
				return err
			}
			defer keyring.Close()

			session, err := a.client(keyring).CreateSession(cmd.Context(), api.CreateSessionRequest{
				StoryID:     args[0],
				Title:       title,
				Description: description,
				IsPublic:    public,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created session %s\n", session.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "run `storyweave play %s` to start\n", session.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "session title")
	cmd.Flags().StringVar(&description, "description", "", "session description")
	cmd.Flags().BoolVar(&public, "public", false, "make the session public")
	return cmd
}

// newSessionsActCmd submits one action without entering the TUI. Useful
// for scripted play; the turn runs through the same optimistic store and
// controller as the interactive view.
func newSessionsActCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "act <session-id> <action...>",
		Short: "Submit a single action and print the narration",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID := args[0]
			text := strings.Join(args[1:], " ")

			keyring, err := a.keyring()
			if err != nil {
				return err
			}
			defer keyring.Close()

			client := a.client(keyring)
			controller := play.NewController(sessionID, client, play.NewStore(sessionID))
			if err := controller.Load(cmd.Context()); err != nil {
				return err
			}
			if err := controller.Submit(cmd.Context(), text); err != nil {
				return err
			}

			events := controller.Store().Snapshot()
			last := events[len(events)-1]
			if last.Origin == play.OriginAI {
				fmt.Fprintln(cmd.OutOrStdout(), last.Text)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "the narrator had nothing to add")
			return nil
		},
	}
}

// newSessionsEndCmd ends a session without entering the TUI, archiving the
// transcript locally like the interactive end flow.
func newSessionsEndCmd(a *app) *cobra.Command {
	var noArchive bool

	cmd := &cobra.Command{
		Use:   "end <session-id>",
		Short: "End a session and archive its transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID := args[0]

			keyring, err := a.keyring()
			if err != nil {
				return err
			}
			defer keyring.Close()

			client := a.client(keyring)
			controller := play.NewController(sessionID, client, play.NewStore(sessionID))

			if !noArchive {
				archiveStore, err := a.archiveStore()
				if err != nil {
					return err
				}
				defer archiveStore.Close()
				controller.SetArchiver(archiveStore)
			}

			if err := controller.Load(cmd.Context()); err != nil {
				return err
			}
			if err := controller.End(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "session %s ended\n", sessionID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noArchive, "no-archive", false, "skip the local transcript archive")
	return cmd
}

func newSessionsPauseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "pause <session-id>",
		Short: "Pause an active session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keyring, err := a.keyring()
			if err != nil {
				return err
			}
			defer keyring.Close()

			if err := a.client(keyring).PauseSession(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "session %s paused\n", args[0])
			return nil
		},
	}
}

func newSessionsResumeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "resume <session-id>",
		Short: "Resume a paused session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keyring, err := a.keyring()
			if err != nil {
				return err
			}
			defer keyring.Close()

			if err := a.client(keyring).ResumeSession(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "session %s resumed\n", args[0])
			return nil
		},
	}
}
