package main

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kbukum/docket/connector"
	apperrors "github.com/kbukum/docket/errors"
	"github.com/kbukum/docket/model"
)

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:           "docket",
		Short:         "Command-line client for the case management API",
		SilenceUsage:  true,
	}
	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "path to config.yml")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "path to a .env file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override logging.level")

	cmd.AddCommand(
		newReadCommand(opts),
		newFindCommand(opts),
		newLinkedCommand(opts),
		newWriteCommand(opts),
		newDeleteCommand(opts),
		newLinkCommand(opts),
		newActionCommand(opts),
		newAssetCommand(opts),
		newStatusCommand(opts),
		newVersionCommand(),
	)
	return cmd
}

// withAPI loads the configuration and runs fn against a started connector.
func withAPI(cmd *cobra.Command, opts *globalOptions, fn func(ctx context.Context, api connector.API) error) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	a, err := newApp(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	return a.run(cmd.Context(), fn)
}

// resolveKind accepts either an entity kind or its collection path.
func resolveKind(arg string) (string, error) {
	reg := model.Registry()
	if _, ok := reg.Lookup(arg); ok {
		return arg, nil
	}
	if kind, ok := reg.KindForPath(arg); ok {
		return kind, nil
	}
	return "", apperrors.InvalidInput("kind", "unknown kind "+strconv.Quote(arg))
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.InvalidInput("id", "id must be a positive integer, got "+strconv.Quote(arg))
	}
	return id, nil
}

// target parses a "<kind> <id>" argument pair into an entity.
func target(kindArg, idArg string) (string, int64, error) {
	kind, err := resolveKind(kindArg)
	if err != nil {
		return "", 0, err
	}
	id, err := parseID(idArg)
	if err != nil {
		return "", 0, err
	}
	return kind, id, nil
}
