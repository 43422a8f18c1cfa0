package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tableflip.dev/planner/pkg/commands/options"
	"tableflip.dev/planner/pkg/runner/login"
)

func addLogin(topLevel *cobra.Command) {
	var addr string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "sign in through the browser",
		Long: `Start a local callback server, print the sign-in link and wait for the
backend to redirect back with a session. A running planner ui picks the new
session up on its own.`,
		Example: `
planner login
planner login --addr 127.0.0.1:5555
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			if addr == "" {
				addr = e.cfg.LoginAddr()
			}
			l := login.Login{
				Session: e.sess,
				Addr:    addr,
				AuthURL: e.cfg.AuthURL(),
				Out:     cmd.OutOrStdout(),
				Logger:  e.log,
			}
			user, err := l.Do(cmd.Context())
			if err != nil {
				return explain(err)
			}
			_, _ = color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", displayName(user.Email, user.Name))
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "host:port for the local callback server (default from login.addr)")
	topLevel.AddCommand(cmd)
}

func addLogout(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "forget the stored session",
		Example: `
planner logout
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.sess.Clear(); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}

	topLevel.AddCommand(cmd)
}

func addWhoami(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "show the signed in user",
		Example: `
planner whoami
planner whoami --json
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadSignedIn()
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			user, _ := e.sess.User()
			if oo.Structured() {
				return oo.Print(user)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), displayName(user.Email, user.Name))
			return nil
		},
	}

	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func displayName(email, name string) string {
	switch {
	case email != "" && name != "":
		return fmt.Sprintf("%s <%s>", name, email)
	case email != "":
		return email
	case name != "":
		return name
	}
	return "unknown user"
}
