package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/taskdeck/taskdeck/internal/app"
	"github.com/taskdeck/taskdeck/internal/core/task"
	"github.com/taskdeck/taskdeck/pkg/iojson"
)

type LsCmd struct {
	flags *Flags
	app   *app.App

	// flags
	jsonOutput bool
	showDone   bool
	showAll    bool
	search     string
}

// NewLsCmd creates a new ls command
func NewLsCmd(flags *Flags, app *app.App) *LsCmd {
	return &LsCmd{flags: flags, app: app}
}

// Register adds the ls command to the application
func (cmd *LsCmd) Register(root *cli.Command) *cli.Command {
	root.Commands = append(root.Commands, &cli.Command{
		Name:      "ls",
		Usage:     "List tasks",
		UsageText: "taskdeck ls [--done] [--all] [--search query] [--json]",
		Description: `Displays a table of open tasks grouped by due-date bucket.

Use --json for machine-readable output with all task fields.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON",
				Destination: &cmd.jsonOutput,
			},
			&cli.BoolFlag{
				Name:        "done",
				Usage:       "show completed tasks instead of open ones",
				Destination: &cmd.showDone,
			},
			&cli.BoolFlag{
				Name:        "all",
				Usage:       "show open and completed tasks",
				Destination: &cmd.showAll,
			},
			&cli.StringFlag{
				Name:        "search",
				Aliases:     []string{"s"},
				Usage:       "filter by description substring",
				Destination: &cmd.search,
			},
		},
		Action: cmd.run,
	})
	return root
}

func (cmd *LsCmd) run(ctx context.Context, _ *cli.Command) error {
	tasks, err := cmd.load(ctx)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}

	if cmd.jsonOutput {
		return iojson.Write(tasks)
	}

	if len(tasks) == 0 {
		fmt.Println("no tasks")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "BUCKET\tSTATUS\tDUE\tPRI\tDESCRIPTION\tTAGS")

	now := time.Now()
	for _, tk := range tasks {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			task.Categorize(tk, now),
			statusLabel(tk),
			dueLabel(tk),
			priorityLabel(tk),
			tk.Description,
			strings.Join(tk.Tags, ","),
		)
	}
	return w.Flush()
}

func (cmd *LsCmd) load(ctx context.Context) ([]task.Task, error) {
	var completed *bool
	if !cmd.showAll {
		v := cmd.showDone
		completed = &v
	}

	if cmd.search != "" {
		return cmd.app.Tasks.Search(ctx, cmd.search, completed, false)
	}
	return cmd.app.Tasks.List(ctx, task.ListFilter{Completed: completed})
}

func statusLabel(tk task.Task) string {
	if tk.Completed {
		return "done"
	}
	return "open"
}

func dueLabel(tk task.Task) string {
	if tk.DueAt == nil {
		return "-"
	}
	return tk.DueAt.Format("2006-01-02")
}

func priorityLabel(tk task.Task) string {
	if tk.Priority == nil {
		return "-"
	}
	return string(*tk.Priority)
}
