package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hirmezb/tasktracker/internal/client"
	"github.com/hirmezb/tasktracker/internal/dto"

	"github.com/spf13/cobra"
)

var errTitleRequired = errors.New("title is required")

func (a *App) listCmd() *cobra.Command {
	var priority, category, completed string
	var reset bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks; filter flags are remembered until changed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := a.sessions.Load()
			if err != nil {
				return err
			}
			f := sess.Filter
			if reset {
				f = client.Filter{}
			}
			if cmd.Flags().Changed("priority") {
				f.Priority = strings.TrimSpace(priority)
			}
			if cmd.Flags().Changed("category") {
				f.Category = strings.TrimSpace(category)
			}
			if cmd.Flags().Changed("completed") {
				f.Completed, err = normalizeCompleted(completed)
				if err != nil {
					return err
				}
			}
			if f != sess.Filter {
				sess.Filter = f
				if err := a.sessions.Save(sess); err != nil {
					return err
				}
			}
			return a.showList(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&priority, "priority", "", "low, medium or high (empty for any)")
	cmd.Flags().StringVar(&category, "category", "", "exact category (empty for any)")
	cmd.Flags().StringVar(&completed, "completed", "", "true, false or empty for any")
	cmd.Flags().BoolVar(&reset, "clear", false, "reset all filters")
	return cmd
}

func (a *App) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.client.GetTask(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return renderTask(a.out, t)
		},
	}
}

func (a *App) addCmd() *cobra.Command {
	var in client.NewTask
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Title = strings.TrimSpace(strings.Join(args, " "))
			if in.Title == "" {
				return errTitleRequired
			}
			if in.DueDate != "" {
				if _, err := dto.ParseDueDate(in.DueDate); err != nil {
					return err
				}
			}
			t, err := a.client.CreateTask(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Created %q (%s)\n", t.Title, t.ID)
			return a.showList(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&in.Description, "description", "", "longer description")
	cmd.Flags().StringVar(&in.Priority, "priority", "", "low, medium or high (default low)")
	cmd.Flags().StringVar(&in.DueDate, "due", "", "due date, YYYY-MM-DD or RFC3339")
	cmd.Flags().StringVar(&in.Category, "category", "", "category")
	return cmd
}

func (a *App) updateCmd() *cobra.Command {
	var title, description, priority, due, category string
	var completed, clearDue bool
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var ch client.TaskChanges
			flags := cmd.Flags()
			if flags.Changed("title") {
				if strings.TrimSpace(title) == "" {
					return errTitleRequired
				}
				ch.Title = &title
			}
			if flags.Changed("description") {
				ch.Description = &description
			}
			if flags.Changed("priority") {
				ch.Priority = &priority
			}
			if flags.Changed("category") {
				ch.Category = &category
			}
			if flags.Changed("completed") {
				ch.Completed = &completed
			}
			if flags.Changed("due") {
				if _, err := dto.ParseDueDate(due); err != nil {
					return err
				}
				ch.DueDate = &due
			}
			ch.ClearDueDate = clearDue
			if ch.Empty() {
				return errors.New("nothing to update, pass at least one flag")
			}
			t, err := a.client.UpdateTask(cmd.Context(), args[0], ch)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Updated %q\n", t.Title)
			return a.showList(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().StringVar(&priority, "priority", "", "low, medium or high")
	cmd.Flags().StringVar(&due, "due", "", "new due date, YYYY-MM-DD or RFC3339")
	cmd.Flags().BoolVar(&clearDue, "clear-due", false, "remove the due date")
	cmd.Flags().StringVar(&category, "category", "", "new category")
	cmd.Flags().BoolVar(&completed, "completed", false, "mark completed (--completed=false to reopen)")
	cmd.MarkFlagsMutuallyExclusive("due", "clear-due")
	return cmd
}

func (a *App) doneCmd() *cobra.Command {
	var undo bool
	cmd := &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a task completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			completed := !undo
			t, err := a.client.UpdateTask(cmd.Context(), args[0], client.TaskChanges{Completed: &completed})
			if err != nil {
				return err
			}
			if t.Completed {
				fmt.Fprintf(a.out, "Completed %q\n", t.Title)
			} else {
				fmt.Fprintf(a.out, "Reopened %q\n", t.Title)
			}
			return a.showList(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&undo, "undo", false, "reopen instead")
	return cmd
}

func (a *App) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := a.client.DeleteTask(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, capitalize(msg))
			return a.showList(cmd.Context())
		},
	}
}

// normalizeCompleted maps user input to the stored filter value.
func normalizeCompleted(s string) (string, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "any" || s == "all" {
		return "", nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return "", fmt.Errorf("--completed: want true, false or empty, got %q", s)
	}
	return strconv.FormatBool(b), nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
