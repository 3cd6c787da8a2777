package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/taskdeck/taskdeck/internal/app"
	"github.com/taskdeck/taskdeck/pkg/iojson"
)

type ViewsCmd struct {
	flags *Flags
	app   *app.App

	// flags
	jsonOutput bool
}

// NewViewsCmd creates a new views command
func NewViewsCmd(flags *Flags, app *app.App) *ViewsCmd {
	return &ViewsCmd{flags: flags, app: app}
}

// Register adds the views command to the application
func (cmd *ViewsCmd) Register(root *cli.Command) *cli.Command {
	root.Commands = append(root.Commands, &cli.Command{
		Name:      "views",
		Usage:     "Manage saved filter views",
		UsageText: "taskdeck views [--json] | taskdeck views rm <id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.list,
		Commands: []*cli.Command{
			{
				Name:      "rm",
				Usage:     "Delete a saved view",
				UsageText: "taskdeck views rm <id>",
				Action:    cmd.remove,
			},
		},
	})
	return root
}

func (cmd *ViewsCmd) list(ctx context.Context, _ *cli.Command) error {
	views, err := cmd.app.Engine.SavedViews(ctx)
	if err != nil {
		return fmt.Errorf("list views: %w", err)
	}

	if cmd.jsonOutput {
		return iojson.Write(views)
	}

	if len(views) == 0 {
		fmt.Println("no saved views")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTAGS\tDYNAMIC")
	for _, v := range views {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			v.ID,
			v.Name,
			strings.Join(v.TagValues, ","),
			strings.Join(v.DynamicTagIDs, ","),
		)
	}
	return w.Flush()
}

func (cmd *ViewsCmd) remove(ctx context.Context, c *cli.Command) error {
	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("views rm: missing view id")
	}
	if err := cmd.app.Engine.DeleteView(ctx, id); err != nil {
		return fmt.Errorf("delete view: %w", err)
	}
	fmt.Printf("deleted view %s\n", id)
	return nil
}
