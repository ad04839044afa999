package commands

import (
	"context"
	"fmt"

	"taskdesk/pkg/tasks"
)

// HandleAddTask processes the --add command
func HandleAddTask(ctx context.Context, app *App, title, desc, statusStr, dateStr string) error {
	fields := tasks.Fields{Title: title, Description: desc}

	if statusStr != "" {
		status, err := tasks.ParseStatus(statusStr)
		if err != nil {
			return err
		}
		fields.Status = status
	}

	deadline, err := tasks.ParseDate(dateStr)
	if err != nil {
		return err
	}
	fields.Deadline = deadline

	if _, err := requireUser(ctx, app); err != nil {
		return err
	}

	created, err := app.Mutations.Create(ctx, fields)
	if err != nil {
		return err
	}

	fmt.Fprintf(app.Out, "Task created successfully: #%d %s\n", created.ID, created.Title)
	return nil
}
