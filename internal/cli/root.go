// Package cli is the taskctl terminal client: session handling, filters and list rendering.
package cli

import (
	"bufio"
	"context"
	"io"

	"github.com/hirmezb/tasktracker/internal/client"

	"github.com/spf13/cobra"
)

// App holds the state shared by all commands of one invocation.
type App struct {
	stdin    io.Reader
	in       *bufio.Reader
	out      io.Writer
	sessions *client.SessionStore
	client   *client.Client
}

// NewRootCommand builds the taskctl command tree.
func NewRootCommand(stdin io.Reader, out, errOut io.Writer) *cobra.Command {
	a := &App{stdin: stdin, in: bufio.NewReader(stdin), out: out}
	var apiURL, sessionPath string

	root := &cobra.Command{
		Use:           "taskctl",
		Short:         "Personal task tracker client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("api") {
				cfg.APIURL = apiURL
			}
			if cmd.Flags().Changed("session") {
				cfg.Session = sessionPath
			}
			path, err := cfg.sessionPath()
			if err != nil {
				return err
			}
			a.sessions = client.NewSessionStore(path)
			a.client = client.New(cfg.APIURL, a.sessions, cfg.Timeout)
			return nil
		},
	}
	root.SetIn(stdin)
	root.SetOut(out)
	root.SetErr(errOut)
	root.PersistentFlags().StringVar(&apiURL, "api", "", "API base URL (env TASKCTL_API_URL)")
	root.PersistentFlags().StringVar(&sessionPath, "session", "", "session file path (env TASKCTL_SESSION)")

	root.AddCommand(
		a.registerCmd(),
		a.loginCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.listCmd(),
		a.showCmd(),
		a.addCmd(),
		a.updateCmd(),
		a.doneCmd(),
		a.deleteCmd(),
	)
	return root
}

// showList refetches with the saved filter and renders the result.
func (a *App) showList(ctx context.Context) error {
	sess, err := a.sessions.Load()
	if err != nil {
		return err
	}
	tasks, err := a.client.ListTasks(ctx, sess.Filter)
	if err != nil {
		return err
	}
	return renderTasks(a.out, tasks, sess.Filter)
}
