package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/hirmezb/tasktracker/internal/client"
	"github.com/hirmezb/tasktracker/internal/dto"
)

func renderTasks(w io.Writer, tasks []dto.TaskResponse, f client.Filter) error {
	fmt.Fprintln(w, describeFilter(f))
	if len(tasks) == 0 {
		_, err := fmt.Fprintln(w, "No tasks.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDONE\tPRIORITY\tDUE\tCATEGORY\tTITLE")
	for _, t := range tasks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, checkbox(t.Completed), t.Priority, dueString(t), orDash(t.Category), t.Title)
	}
	return tw.Flush()
}

func renderTask(w io.Writer, t dto.TaskResponse) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", t.ID)
	fmt.Fprintf(tw, "Title:\t%s\n", t.Title)
	fmt.Fprintf(tw, "Description:\t%s\n", orDash(t.Description))
	fmt.Fprintf(tw, "Priority:\t%s\n", t.Priority)
	fmt.Fprintf(tw, "Due:\t%s\n", dueString(t))
	fmt.Fprintf(tw, "Category:\t%s\n", orDash(t.Category))
	fmt.Fprintf(tw, "Completed:\t%t\n", t.Completed)
	return tw.Flush()
}

func describeFilter(f client.Filter) string {
	var parts []string
	if f.Priority != "" {
		parts = append(parts, "priority="+f.Priority)
	}
	if f.Category != "" {
		parts = append(parts, "category="+f.Category)
	}
	switch f.Completed {
	case "true":
		parts = append(parts, "completed")
	case "":
	default:
		parts = append(parts, "open")
	}
	if len(parts) == 0 {
		return "Showing all tasks"
	}
	return "Showing tasks: " + strings.Join(parts, ", ")
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

func dueString(t dto.TaskResponse) string {
	if t.DueDate == nil {
		return "-"
	}
	d := t.DueDate.UTC()
	if d.Hour() == 0 && d.Minute() == 0 && d.Second() == 0 {
		return d.Format("2006-01-02")
	}
	return d.Format("2006-01-02 15:04")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
