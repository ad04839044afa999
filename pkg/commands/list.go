package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"taskdesk/pkg/tasks"
)

// HandleListTasks processes the --list command
func HandleListTasks(ctx context.Context, app *App, statusStr, beforeStr string) error {
	status, err := tasks.ParseFilterStatus(statusStr)
	if err != nil {
		return err
	}
	before, err := tasks.ParseDate(beforeStr)
	if err != nil {
		return err
	}

	if _, err := requireUser(ctx, app); err != nil {
		return err
	}

	filter := tasks.Filter{Status: status, DeadlineBefore: before}
	items, err := app.Tasks.Load(ctx, filter)
	if err != nil {
		return err
	}

	if len(items) == 0 {
		fmt.Fprintf(app.Out, "No tasks found (%s)\n", filter)
		return nil
	}

	w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tDEADLINE\tTITLE")
	for _, task := range items {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", task.ID, task.Status, deadlineLabel(task.Deadline), task.Title)
	}
	return w.Flush()
}

func deadlineLabel(d tasks.Date) string {
	if d.IsZero() {
		return "No deadline"
	}
	return d.String()
}
