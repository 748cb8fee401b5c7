package cli

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/emberveil/storyweave/internal/credential"
)

func newLoginCmd(a *app) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and store the access token locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				var err error
				email, err = promptLine(cmd, "email: ")
				if err != nil {
					return err
				}
			}
			if password == "" {
				var err error
				password, err = promptLine(cmd, "password: ")
				if err != nil {
					return err
				}
			}

			keyring, err := a.keyring()
			if err != nil {
				return err
			}
			defer keyring.Close()

			client := a.client(keyring)
			token, err := client.Login(cmd.Context(), email, password)
			if err != nil {
				return fmt.Errorf("login: %w", err)
			}

			cred := credential.Credential{
				AccessToken: token.AccessToken,
				SavedAt:     time.Now(),
			}
			if err := keyring.Put(cred); err != nil {
				return fmt.Errorf("store credential: %w", err)
			}

			// The username is cosmetic; the token is already stored.
			if user, err := client.Me(cmd.Context()); err == nil {
				cred.Username = user.Username
				if err := keyring.Put(cred); err != nil {
					return fmt.Errorf("store credential: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s\n", user.Username)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged in")
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Invalidate the session and clear the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			keyring, err := a.keyring()
			if err != nil {
				return err
			}
			defer keyring.Close()

			// Best effort: the local credential is cleared even when the
			// backend call fails.
			if err := a.client(keyring).Logout(cmd.Context()); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "backend logout failed: %v\n", err)
			}
			if err := keyring.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the authenticated account",
		RunE: func(cmd *cobra.Command, args []string) error {
			keyring, err := a.keyring()
			if err != nil {
				return err
			}
			defer keyring.Close()

			user, err := a.client(keyring).Me(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", user.Username, user.Email)
			return nil
		},
	}
}

// promptLine reads one line from the command's stdin.
func promptLine(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read input: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", fmt.Errorf("input is required")
	}
	return line, nil
}
