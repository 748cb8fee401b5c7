// Package cli wires the storyweave command tree. Each command opens the
// local stores it needs, talks to the backend through the typed client, and
// prints plain columnar output.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/emberveil/storyweave/internal/api"
	"github.com/emberveil/storyweave/internal/archive"
	"github.com/emberveil/storyweave/internal/credential"
)

// app carries the resolved configuration into command constructors.
type app struct {
	cfg Config
}

// keyring opens the credential store under the data dir. The caller closes it.
func (a *app) keyring() (*credential.Store, error) {
	return credential.Open(a.cfg.DataDir)
}

// archiveStore opens the transcript archive under the data dir. The caller
// closes it.
func (a *app) archiveStore() (*archive.Store, error) {
	return archive.Open(a.cfg.DataDir)
}

// client builds the backend client backed by the given credential accessor.
func (a *app) client(credentials credential.Accessor) *api.Client {
	opts := []api.Option{}
	if a.cfg.HTTPTimeout > 0 {
		opts = append(opts, api.WithTimeout(a.cfg.HTTPTimeout))
	}
	return api.NewClient(a.cfg.APIURL, credentials, opts...)
}

// New builds the root command.
func New(cfg Config) *cobra.Command {
	a := &app{cfg: cfg}

	root := &cobra.Command{
		Use:           "storyweave",
		Short:         "Terminal client for AI-narrated interactive fiction",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newStoriesCmd(a),
		newSessionsCmd(a),
		newCharactersCmd(a),
		newLocationsCmd(a),
		newPlayCmd(a),
		newArchiveCmd(a),
		newExportCmd(a),
	)
	return root
}
