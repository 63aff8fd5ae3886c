package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/timeac/core/schedule"
	appfs "github.com/trezcool/timeac/fs"
)

type importOptions struct {
	file string
	run  bool
}

func (cli *commandLine) importCommand() *cobra.Command {
	opts := new(importOptions)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import schedules from the bundled dataset or a JSON/YAML file",
		Long: `Import loads and validates a schedule collection, then prints it keyed by schedule id.
Nothing is written unless --run is given; the current day type settings are kept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cli.importSchedules(cmd, *opts)
		},
	}
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "dataset file (.json, .yaml or .yml); defaults to the bundled dataset")
	cmd.Flags().BoolVar(&opts.run, "run", false, "write the schedules to the database")
	return cmd
}

func (cli *commandLine) loadImport(file string) ([]schedule.Schedule, error) {
	if file == "" {
		return schedule.LoadDataset(appfs.FS, schedule.DefaultDatasetPath)
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", file)
	}
	return schedule.ParseDataset(data, filepath.Ext(file))
}

func (cli *commandLine) importSchedules(cmd *cobra.Command, opts importOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	schedules, err := cli.loadImport(opts.file)
	if err != nil {
		return err
	}
	if err = schedule.ValidateCollection(cli.validate, schedules); err != nil {
		return err
	}

	keyed, err := json.MarshalIndent(schedule.KeyByID(schedules), "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding schedules")
	}

	if !opts.run {
		fmt.Fprintln(out, "Dry run: the following schedules would be imported:")
		fmt.Fprintln(out, string(keyed))
		fmt.Fprintf(out, "\nTotal schedules: %d\n", len(schedules))
		fmt.Fprintln(out, "\nRun the command again with --run to write them.")
		return nil
	}

	if err = cli.ensureSchema(ctx); err != nil {
		return err
	}
	settings, err := cli.scheduleRepo.GetSettings(ctx)
	if err != nil {
		if errors.Cause(err) != schedule.ErrNotFound {
			return errors.Wrap(err, "reading settings")
		}
		settings = schedule.DefaultSettings()
	}
	if err = cli.scheduleRepo.Replace(ctx, schedule.Snapshot{Schedules: schedules, Settings: settings}); err != nil {
		return errors.Wrap(err, "importing schedules")
	}
	fmt.Fprintf(out, "Import completed.\nTotal schedules: %d\n", len(schedules))
	return nil
}
