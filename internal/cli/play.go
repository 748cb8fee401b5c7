package cli

import (
	"fmt"
	"io"
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/emberveil/storyweave/internal/play"
	"github.com/emberveil/storyweave/internal/playui"
)

func newPlayCmd(a *app) *cobra.Command {
	var noArchive bool

	cmd := &cobra.Command{
		Use:   "play <session-id>",
		Short: "Enter a session's play loop",
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

			// The TUI owns the terminal; route stray log output away from it.
			log.SetOutput(io.Discard)
			defer log.SetOutput(cmd.ErrOrStderr())

			model := playui.New(controller, client, keyring)
			program := tea.NewProgram(model, tea.WithAltScreen())
			if _, err := program.Run(); err != nil {
				return fmt.Errorf("play session: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noArchive, "no-archive", false, "skip the local transcript archive on session end")
	return cmd
}
