package commands

import (
	"context"
	"fmt"
	"strings"
)

// HandleDeleteTask processes the --delete command
func HandleDeleteTask(ctx context.Context, app *App, id int64, skipConfirm bool) error {
	if _, err := requireUser(ctx, app); err != nil {
		return err
	}

	// Show confirmation unless --yes flag is used
	if !skipConfirm {
		fmt.Fprintf(app.Out, "Are you sure you want to delete task #%d? (y/N): ", id)
		response, err := app.readLine()
		if err != nil {
			response = ""
		}
		response = strings.ToLower(strings.TrimSpace(response))
		if response != "y" && response != "yes" {
			fmt.Fprintln(app.Out, "Operation cancelled.")
			return nil
		}
	}

	if err := app.Mutations.Delete(ctx, id); err != nil {
		return err
	}

	fmt.Fprintf(app.Out, "Task deleted successfully: #%d\n", id)
	return nil
}
