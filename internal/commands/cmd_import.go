package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/taskdeck/taskdeck/internal/app"
	"github.com/taskdeck/taskdeck/internal/core/task"
	"github.com/taskdeck/taskdeck/pkg/iojson"
)

// importRecord is the JSON shape accepted by the import command.
type importRecord struct {
	Description string   `json:"description"`
	DueAt       *string  `json:"due_at,omitempty"`
	Priority    *string  `json:"priority,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Source      *string  `json:"source,omitempty"`
}

type ImportCmd struct {
	flags *Flags
	app   *app.App

	reader iojson.FileReader[[]importRecord]
}

// NewImportCmd creates a new import command
func NewImportCmd(flags *Flags, app *app.App) *ImportCmd {
	return &ImportCmd{flags: flags, app: app}
}

// Register adds the import command to the application
func (cmd *ImportCmd) Register(root *cli.Command) *cli.Command {
	root.Commands = append(root.Commands, &cli.Command{
		Name:      "import",
		Usage:     "Import tasks from a JSON array",
		UsageText: "taskdeck import [-f tasks.json] (or pipe JSON to stdin)",
		Flags: []cli.Flag{
			cmd.reader.Flag(),
		},
		Action: cmd.run,
	})
	return root
}

func (cmd *ImportCmd) run(ctx context.Context, _ *cli.Command) error {
	records, err := cmd.reader.Read()
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}

	imported := 0
	for i, r := range records {
		tk, err := cmd.toTask(r)
		if err != nil {
			return fmt.Errorf("import: record %d: %w", i, err)
		}
		if _, err := cmd.app.Tasks.Create(ctx, tk); err != nil {
			return fmt.Errorf("import: record %d: %w", i, err)
		}
		imported++
	}

	fmt.Printf("imported %d tasks\n", imported)
	return nil
}

func (cmd *ImportCmd) toTask(r importRecord) (task.Task, error) {
	if r.Description == "" {
		return task.Task{}, fmt.Errorf("missing description")
	}

	tk := task.Task{
		Description: r.Description,
		Tags:        r.Tags,
		Source:      r.Source,
	}

	if r.DueAt != nil {
		due, err := time.Parse(time.RFC3339, *r.DueAt)
		if err != nil {
			return task.Task{}, fmt.Errorf("invalid due_at %q", *r.DueAt)
		}
		tk.DueAt = &due
	}

	if r.Priority != nil {
		p, err := parsePriority(*r.Priority)
		if err != nil {
			return task.Task{}, err
		}
		tk.Priority = p
	}

	return tk, nil
}
