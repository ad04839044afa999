package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"taskdesk/pkg/tasks"
)

// txt export markers, read back by the importer
const (
	noDeadlineHeader = "No deadline:"
	descSeparator    = " :: "
	txtDateLayout    = "02.01.2006"
)

var statusMarks = map[tasks.Status]string{
	tasks.StatusToDo:       " ",
	tasks.StatusInProgress: "-",
	tasks.StatusDone:       "x",
}

// HandleExportCommand processes the --export command
func HandleExportCommand(ctx context.Context, app *App, filename, exportType string) error {
	if exportType != "json" && exportType != "txt" {
		return fmt.Errorf("unknown export type: %s", exportType)
	}

	if _, err := requireUser(ctx, app); err != nil {
		return err
	}

	items, err := app.Tasks.Load(ctx, tasks.Filter{})
	if err != nil {
		return err
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	var content []byte
	switch exportType {
	case "json":
		content, err = json.MarshalIndent(items, "", "  ")
		if err != nil {
			return fmt.Errorf("error marshaling tasks to JSON: %w", err)
		}
	case "txt":
		content = []byte(renderTxt(items))
	}

	if err := os.WriteFile(filename, content, 0644); err != nil {
		return fmt.Errorf("error writing file: %w", err)
	}

	fmt.Fprintf(app.Out, "Successfully exported %d task(s) to %s\n", len(items), filename)
	return nil
}

// renderTxt groups tasks under their deadline; undated tasks come last
func renderTxt(items []tasks.Task) string {
	sorted := make([]tasks.Task, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Deadline, sorted[j].Deadline
		if a.IsZero() || b.IsZero() {
			return !a.IsZero() && b.IsZero()
		}
		return a.Before(b)
	})

	var lines []string
	lastHeader := ""
	for _, task := range sorted {
		header := noDeadlineHeader
		if !task.Deadline.IsZero() {
			header = task.Deadline.Time().Format(txtDateLayout) + ":"
		}
		if header != lastHeader {
			lines = append(lines, "", header)
			lastHeader = header
		}

		text := task.Title
		if task.Description != "" {
			text += descSeparator + task.Description
		}
		lines = append(lines, fmt.Sprintf("- [%s] %s", statusMarks[task.Status], text))
	}
	return strings.TrimSpace(strings.Join(lines, "\n")) + "\n"
}
