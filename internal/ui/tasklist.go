package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/routineapp/routine/models"
)

var titleCaser = cases.Title(language.English)

// RenderTaskList writes tasks to w in compact form, pending first.
// For a table with full metadata use RenderTaskListVerbose.
func RenderTaskList(w io.Writer, tasks []models.Task, now time.Time) {
	renderTaskList(w, tasks, now, false)
}

// RenderTaskListVerbose renders tasks as a table with IDs and dates.
func RenderTaskListVerbose(w io.Writer, tasks []models.Task, now time.Time) {
	renderTaskList(w, tasks, now, true)
}

func renderTaskList(w io.Writer, tasks []models.Task, now time.Time, verbose bool) {
	var pending, completed []models.Task
	for _, t := range tasks {
		if t.Completed {
			completed = append(completed, t)
		} else {
			pending = append(pending, t)
		}
	}

	fmt.Fprintf(w, " 📋 Tasks: %d pending • %d done\n", len(pending), len(completed))
	fmt.Fprintln(w, StyleSubtle.Render(strings.Repeat("─", 50)))

	if verbose {
		renderTaskTable(w, append(pending, completed...), now)
		return
	}

	for _, t := range pending {
		fmt.Fprintf(w, " %s %s%s\n", PriorityIcon(t.Priority), StyleTitle.Render(t.Title), taskBadges(t, now))
	}
	for _, t := range completed {
		fmt.Fprintf(w, " %s %s\n", StyleSuccess.Render("✔"), StyleSubtle.Render(t.Title))
	}
}

// taskBadges renders the compact suffix: category, due date, overdue
// marker, pomodoro count.
func taskBadges(t models.Task, now time.Time) string {
	var parts []string
	if t.Category != "" {
		parts = append(parts, t.Category)
	}
	if t.DueDate != nil {
		due := t.DueDate.Format("Jan 02")
		if t.IsOverdue(now) {
			due = StyleError.Render(due + " URGENT")
		}
		parts = append(parts, due)
	}
	if t.PomodoroCount > 0 {
		parts = append(parts, fmt.Sprintf("🍅%d", t.PomodoroCount))
	}
	if len(parts) == 0 {
		return ""
	}
	return StyleSubtle.Render("  (" + strings.Join(parts, " • ") + ")")
}

func renderTaskTable(w io.Writer, tasks []models.Task, now time.Time) {
	table := &Table{
		Headers:  []string{"ID", "Title", "Pri", "Category", "Due", "Rec", "🍅", "Status"},
		MaxWidth: 40,
	}

	for _, t := range tasks {
		due := "-"
		if t.DueDate != nil {
			due = t.DueDate.Format("2006-01-02")
			if t.IsOverdue(now) {
				due += " !"
			}
		}
		rec := "-"
		if t.Recurring != models.RecurNone {
			rec = titleCaser.String(string(t.Recurring))
		}
		status := "pending"
		if t.Completed {
			status = "done"
		}
		table.Rows = append(table.Rows, []string{
			TruncateID(t.ID),
			t.Title,
			titleCaser.String(string(t.Priority)),
			orDash(t.Category),
			due,
			rec,
			fmt.Sprintf("%d", t.PomodoroCount),
			status,
		})
	}

	fmt.Fprint(w, table.Render())
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
