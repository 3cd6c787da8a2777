package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/taskdeck/taskdeck/internal/app"
	"github.com/taskdeck/taskdeck/internal/core/task"
)

type AddCmd struct {
	flags *Flags
	app   *app.App

	// flags
	due      string
	priority string
	tags     []string
}

// NewAddCmd creates a new add command
func NewAddCmd(flags *Flags, app *app.App) *AddCmd {
	return &AddCmd{flags: flags, app: app}
}

// Register adds the add command to the application
func (cmd *AddCmd) Register(root *cli.Command) *cli.Command {
	root.Commands = append(root.Commands, &cli.Command{
		Name:      "add",
		Usage:     "Add a task",
		UsageText: "taskdeck add [--due today|tomorrow|later|YYYY-MM-DD] [--priority high|medium|low] [--tag name]... description",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "due",
				Aliases:     []string{"d"},
				Usage:       "due date: today, tomorrow, later, or YYYY-MM-DD",
				Destination: &cmd.due,
			},
			&cli.StringFlag{
				Name:        "priority",
				Aliases:     []string{"p"},
				Usage:       "priority: high, medium, or low",
				Destination: &cmd.priority,
			},
			&cli.StringSliceFlag{
				Name:        "tag",
				Aliases:     []string{"t"},
				Usage:       "category tag (repeatable)",
				Destination: &cmd.tags,
			},
		},
		Action: cmd.run,
	})
	return root
}

func (cmd *AddCmd) run(ctx context.Context, c *cli.Command) error {
	description := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if description == "" {
		return fmt.Errorf("add: missing task description")
	}

	dueAt, err := parseDue(cmd.due, time.Now())
	if err != nil {
		return err
	}

	priority, err := parsePriority(cmd.priority)
	if err != nil {
		return err
	}

	source := "manual"
	created, err := cmd.app.Tasks.Create(ctx, task.Task{
		Description: description,
		DueAt:       dueAt,
		Priority:    priority,
		Tags:        cmd.tags,
		Source:      &source,
	})
	if err != nil {
		return fmt.Errorf("add task: %w", err)
	}

	if cmd.app.Backend.Enabled() {
		if _, err := cmd.app.Backend.CreateTask(ctx, created); err != nil {
			log.Warn().Err(err).Msg("backend mirror failed")
		}
	}

	fmt.Printf("added %s\n", created.ID)
	return nil
}

// parseDue resolves the due shorthand the same way inline creation does:
// named buckets land at end of day.
func parseDue(value string, now time.Time) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}

	endOfDay := func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 0, 0, t.Location())
	}

	switch strings.ToLower(value) {
	case "today":
		d := endOfDay(now)
		return &d, nil
	case "tomorrow":
		d := endOfDay(now.AddDate(0, 0, 1))
		return &d, nil
	case "later":
		d := endOfDay(now.AddDate(0, 0, 7))
		return &d, nil
	}

	d, err := time.ParseInLocation("2006-01-02", value, now.Location())
	if err != nil {
		return nil, fmt.Errorf("add: invalid due date %q", value)
	}
	d = endOfDay(d)
	return &d, nil
}

func parsePriority(value string) (*task.Priority, error) {
	if value == "" {
		return nil, nil
	}
	switch p := task.Priority(strings.ToLower(value)); p {
	case task.PriorityHigh, task.PriorityMedium, task.PriorityLow:
		return &p, nil
	default:
		return nil, fmt.Errorf("add: invalid priority %q", value)
	}
}
