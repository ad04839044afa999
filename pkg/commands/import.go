package commands

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"taskdesk/pkg/tasks"
)

// Date headers are DD.MM.YYYY: or YYYY-MM-DD:
var dateHeader = regexp.MustCompile(`^(?:(\d{2})\.(\d{2})\.(\d{4})|(\d{4})-(\d{2})-(\d{2})):?$`)

// HandleImportCommand processes the --import command
func HandleImportCommand(ctx context.Context, app *App, filename string) error {
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("error reading file: %w", err)
	}

	if _, err := requireUser(ctx, app); err != nil {
		return err
	}

	var tasksAdded int
	for _, fields := range parseTxt(string(content)) {
		if _, err := app.Mutations.Create(ctx, fields); err != nil {
			fmt.Fprintf(app.Err, "Error adding task '%s': %v\n", fields.Title, err)
			continue
		}
		tasksAdded++
	}

	fmt.Fprintf(app.Out, "Successfully imported %d task(s) from %s\n", tasksAdded, filename)
	return nil
}

func parseTxt(content string) []tasks.Fields {
	var out []tasks.Fields
	var currentDate tasks.Date

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		// Check if line is a task (starts with -)
		if strings.HasPrefix(line, "- ") {
			taskText := strings.TrimSpace(strings.TrimPrefix(line, "- "))
			if taskText == "" {
				continue
			}

			status := tasks.StatusToDo
			for s, mark := range statusMarks {
				if prefix := "[" + mark + "]"; strings.HasPrefix(taskText, prefix) {
					status = s
					taskText = strings.TrimSpace(strings.TrimPrefix(taskText, prefix))
					break
				}
			}

			title, desc, _ := strings.Cut(taskText, descSeparator)
			out = append(out, tasks.Fields{
				Title:       strings.TrimSpace(title),
				Description: strings.TrimSpace(desc),
				Status:      status,
				Deadline:    currentDate,
			})
			continue
		}

		if line == noDeadlineHeader {
			currentDate = tasks.Date{}
			continue
		}

		if dateMatch := dateHeader.FindStringSubmatch(line); dateMatch != nil {
			var day, month, year int
			if dateMatch[1] != "" {
				day, _ = strconv.Atoi(dateMatch[1])
				month, _ = strconv.Atoi(dateMatch[2])
				year, _ = strconv.Atoi(dateMatch[3])
			} else {
				year, _ = strconv.Atoi(dateMatch[4])
				month, _ = strconv.Atoi(dateMatch[5])
				day, _ = strconv.Atoi(dateMatch[6])
			}
			currentDate = tasks.NewDate(year, time.Month(month), day)
		}
	}

	return out
}
