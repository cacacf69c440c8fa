package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"peoplegomodule/internal/app"
	"peoplegomodule/internal/config"
	"peoplegomodule/logging"
	"peoplegomodule/people"
	"peoplegomodule/types"
	"peoplegomodule/utils"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var version = "dev"

type rootOptions struct {
	configPath  string
	local       bool
	snapshot    string
	metricsFile string
	verbose     bool
}

// operation runs one service call and returns what to print
type operation func(ctx context.Context, svc people.Service, args []string) (data interface{}, message string, err error)

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "peoplectl",
		Short:         "Run Person document operations",
		Long:          `Runs the Person CRUD operations against MongoDB, or against an in-process store with --local, and prints each result as JSON.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "config.yaml", "config file; relative paths resolve under $SERVICE_HOME/conf")
	pf.BoolVar(&opts.local, "local", false, "use the in-process document store instead of MongoDB")
	pf.StringVar(&opts.snapshot, "snapshot", "", "with --local, persist documents to this file between runs")
	pf.StringVar(&opts.metricsFile, "metrics-file", "", "write operation metrics to this file in Prometheus text format")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level to stderr")

	root.AddCommand(
		opCmd(opts, "create", "Create and save the sample person", cobra.NoArgs,
			func(ctx context.Context, svc people.Service, _ []string) (interface{}, string, error) {
				p, err := svc.CreateAndSavePerson(ctx)
				return p, "person created", err
			}),
		createManyCmd(opts),
		opCmd(opts, "find-name <name>", "Find everyone with exactly this name", cobra.ExactArgs(1),
			func(ctx context.Context, svc people.Service, args []string) (interface{}, string, error) {
				found, err := svc.FindPeopleByName(ctx, args[0])
				return found, fmt.Sprintf("%d people named %q", len(found), args[0]), err
			}),
		opCmd(opts, "find-food <food>", "Find the first person with this favorite food", cobra.ExactArgs(1),
			func(ctx context.Context, svc people.Service, args []string) (interface{}, string, error) {
				p, err := svc.FindOneByFood(ctx, args[0])
				return p, "", err
			}),
		opCmd(opts, "get <id>", "Find a person by id", cobra.ExactArgs(1),
			func(ctx context.Context, svc people.Service, args []string) (interface{}, string, error) {
				p, err := svc.FindPersonByID(ctx, args[0])
				return p, "", err
			}),
		opCmd(opts, "add-food <id>", fmt.Sprintf("Add %q to a person's favorites and save", people.FoodToAdd), cobra.ExactArgs(1),
			func(ctx context.Context, svc people.Service, args []string) (interface{}, string, error) {
				p, err := svc.FindEditThenSave(ctx, args[0])
				return p, "person saved", err
			}),
		opCmd(opts, "set-age [name]", fmt.Sprintf("Set age %d on the first person with this name (default %q)", people.AgeToSet, people.SampleName), cobra.MaximumNArgs(1),
			func(ctx context.Context, svc people.Service, args []string) (interface{}, string, error) {
				p, err := svc.FindAndUpdate(ctx, argOr(args, people.SampleName))
				return p, "person updated", err
			}),
		opCmd(opts, "remove <id>", "Remove a person by id", cobra.ExactArgs(1),
			func(ctx context.Context, svc people.Service, args []string) (interface{}, string, error) {
				p, err := svc.RemoveByID(ctx, args[0])
				return p, "person removed", err
			}),
		opCmd(opts, "remove-many [name]", fmt.Sprintf("Remove everyone with this name (default %q)", people.NameToRemove), cobra.MaximumNArgs(1),
			func(ctx context.Context, svc people.Service, args []string) (interface{}, string, error) {
				summary, err := svc.RemoveManyPeople(ctx, argOr(args, people.NameToRemove))
				return summary, "", err
			}),
		opCmd(opts, "query [food]", fmt.Sprintf("List up to %d people with this favorite food by name (default %q)", people.ChainLimit, people.FoodToSearch), cobra.MaximumNArgs(1),
			func(ctx context.Context, svc people.Service, args []string) (interface{}, string, error) {
				found, err := svc.QueryChain(ctx, argOr(args, people.FoodToSearch))
				return found, fmt.Sprintf("%d people", len(found)), err
			}),
		opCmd(opts, "demo", "Run every operation once, in order", cobra.NoArgs, runDemo),
		versionCmd(),
	)

	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the peoplectl version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

func createManyCmd(opts *rootOptions) *cobra.Command {
	var file string
	cmd := opCmd(opts, "create-many -f <file.yaml>", "Create every person listed in a YAML file", cobra.NoArgs,
		func(ctx context.Context, svc people.Service, _ []string) (interface{}, string, error) {
			in, err := readPeopleFile(file)
			if err != nil {
				return nil, "", err
			}
			created, err := svc.CreateManyPeople(ctx, in)
			return created, fmt.Sprintf("%d people created", len(created)), err
		})
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML list of people (name, age, favoriteFood or favoriteFoods)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func readPeopleFile(path string) ([]people.Person, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading people file %s", path)
	}
	var in []people.Person
	if err := yaml.Unmarshal(data, &in); err != nil {
		return nil, errors.Wrapf(err, "error parsing people file %s", path)
	}
	return in, nil
}

func argOr(args []string, def string) string {
	if len(args) > 0 {
		return args[0]
	}
	return def
}

func opCmd(opts *rootOptions, use, short string, args cobra.PositionalArgs, op operation) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(cmd, opts, op, args)
		},
	}
}

// runOperation wires the application, runs op and prints a types.Response.
// The operation's error is returned after the response is printed so the
// process exits non-zero.
func runOperation(cmd *cobra.Command, opts *rootOptions, op operation, args []string) error {
	cfg, err := config.LoadConfigWithDefaults(utils.ResolveConfFilePath(opts.configPath))
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg, opts.verbose)
	if err != nil {
		return err
	}

	ctx, traceID := utils.EnsureTraceID(cmd.Context())
	application, err := app.NewApplication(ctx, cfg, logger, app.Options{
		Local:        opts.local,
		SnapshotPath: opts.snapshot,
	})
	if err != nil {
		_ = logger.Close()
		return err
	}
	defer func() {
		if err := application.Shutdown(); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "shutdown:", err)
		}
	}()

	if err := application.Start(); err != nil {
		return err
	}

	name := cmd.Name()
	data, message, opErr := op(ctx, application.Service(), args)

	var resp *types.Response
	if opErr != nil {
		resp = types.NewErrorResponse(name, opErr)
	} else {
		resp = types.NewSuccessResponse(name, data, message)
	}
	resp.TraceID = traceID

	if err := printResponse(cmd.OutOrStdout(), resp); err != nil {
		return err
	}

	if opts.metricsFile != "" {
		if err := writeMetricsFile(application, opts.metricsFile); err != nil {
			return err
		}
	}
	return opErr
}

func newLogger(cfg *config.RawConfig, verbose bool) (logging.Logger, error) {
	loggerConfig := cfg.Logging.ConvertToLoggerConfig()
	if verbose {
		loggerConfig.Console = true
		loggerConfig.Level = logging.DebugLevel
	}
	logger, err := logging.NewLogger(loggerConfig)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create logger")
	}
	return logger, nil
}

func printResponse(w io.Writer, resp *types.Response) error {
	data, err := resp.ToIndentedJSON()
	if err != nil {
		return errors.Wrap(err, "failed to render response")
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// writeMetricsFile replaces path atomically so a textfile collector never
// reads a partial file
func writeMetricsFile(application *app.Application, path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "failed to create metrics file")
	}
	defer os.Remove(tmp.Name())

	if err := application.WriteMetrics(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "failed to write metrics file")
	}
	return errors.Wrap(os.Rename(tmp.Name(), path), "failed to write metrics file")
}
