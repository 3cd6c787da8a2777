package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/taskdeck/taskdeck/internal/app"
	"github.com/taskdeck/taskdeck/internal/data/stores"
)

type DoctorCmd struct {
	flags *Flags
	app   *app.App

	// flags
	repair bool
}

// NewDoctorCmd creates a new doctor command
func NewDoctorCmd(flags *Flags, app *app.App) *DoctorCmd {
	return &DoctorCmd{flags: flags, app: app}
}

// Register adds the doctor command to the application
func (cmd *DoctorCmd) Register(root *cli.Command) *cli.Command {
	root.Commands = append(root.Commands, &cli.Command{
		Name:  "doctor",
		Usage: "Check local database health",
		Description: `Pings the database and runs an integrity check.

With --repair, a corrupted database file is moved aside to a timestamped
backup and a fresh one is created on the next run.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "repair",
				Usage:       "back up a corrupted database and start fresh",
				Destination: &cmd.repair,
			},
		},
		Action: cmd.run,
	})
	return root
}

func (cmd *DoctorCmd) run(ctx context.Context, _ *cli.Command) error {
	conn := cmd.app.DB.Conn()

	if err := conn.PingContext(ctx); err != nil {
		return cmd.report("ping", err)
	}
	fmt.Println("ok: database reachable")

	var result string
	if err := conn.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&result); err != nil {
		return cmd.report("integrity check", err)
	}
	if result != "ok" {
		return cmd.report("integrity check", fmt.Errorf("integrity check failed: %s", result))
	}
	fmt.Println("ok: integrity check passed")

	counts, err := cmd.app.Tasks.FilterCounts(ctx)
	if err != nil {
		return cmd.report("count tasks", err)
	}
	fmt.Printf("ok: %d open, %d done, %d deleted\n",
		counts.Todo, counts.Done, counts.DeletedByUser+counts.DeletedByAI)
	return nil
}

// report surfaces a failed check, repairing corruption when asked.
func (cmd *DoctorCmd) report(check string, err error) error {
	if stores.IsCorruptionError(err) && cmd.repair {
		if rerr := stores.RecoverFromCorruption(cmd.flags.DataDir); rerr != nil {
			return fmt.Errorf("%s: %w (repair also failed: %v)", check, err, rerr)
		}
		fmt.Println("database backed up and reset; rerun to rebuild")
		return nil
	}
	return fmt.Errorf("%s: %w", check, err)
}
