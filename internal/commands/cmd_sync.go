package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/taskdeck/taskdeck/internal/app"
)

type SyncCmd struct {
	flags *Flags
	app   *app.App
}

// NewSyncCmd creates a new sync command
func NewSyncCmd(flags *Flags, app *app.App) *SyncCmd {
	return &SyncCmd{flags: flags, app: app}
}

// Register adds the sync command to the application
func (cmd *SyncCmd) Register(root *cli.Command) *cli.Command {
	root.Commands = append(root.Commands, &cli.Command{
		Name:  "sync",
		Usage: "Flush pending ordering writes and prune expired local state",
		Description: `Runs the one-time ordering backfill if needed, pushes any pending
sort-order changes to the store and backend, and sweeps expired
key/value entries.`,
		Action: cmd.run,
	})
	return root
}

func (cmd *SyncCmd) run(ctx context.Context, _ *cli.Command) error {
	if err := cmd.app.Engine.Bootstrap(ctx); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	if err := cmd.app.Engine.FlushOrdering(ctx); err != nil {
		return fmt.Errorf("sync ordering: %w", err)
	}

	if err := cmd.app.KV.SweepExpired(ctx); err != nil {
		return fmt.Errorf("sweep expired state: %w", err)
	}

	fmt.Println("synced")
	return nil
}
