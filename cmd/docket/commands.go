package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kbukum/docket/connector"
	"github.com/kbukum/docket/version"
)

func newReadCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "read <kind> <id>",
		Short: "Fetch one entity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, id, err := target(args[0], args[1])
			if err != nil {
				return err
			}
			return withAPI(cmd, opts, func(ctx context.Context, api connector.API) error {
				e := newEntity(kind, id)
				if err := api.ReadObject(ctx, e); err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), fieldMap(e))
			})
		},
	}
}

func newFindCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "find <kind> [field=value...]",
		Short: "List the entities of a collection matching all filters",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := resolveKind(args[0])
			if err != nil {
				return err
			}
			query, err := parsePairs(args[1:])
			if err != nil {
				return err
			}
			return withAPI(cmd, opts, func(ctx context.Context, api connector.API) error {
				items, err := findAll(ctx, api, kind, query)
				if err != nil {
					return err
				}
				return printEntities(cmd.OutOrStdout(), items)
			})
		},
	}
}

func newLinkedCommand(opts *globalOptions) *cobra.Command {
	var id int64
	cmd := &cobra.Command{
		Use:   "linked <kind> <id> <child-kind>",
		Short: "List the entities linked below an entity",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, parentID, err := target(args[0], args[1])
			if err != nil {
				return err
			}
			child, err := resolveKind(args[2])
			if err != nil {
				return err
			}
			return withAPI(cmd, opts, func(ctx context.Context, api connector.API) error {
				parent := newEntity(kind, parentID)
				if id > 0 {
					e, err := findLinked(ctx, api, parent, child, id)
					if err != nil {
						return err
					}
					return printJSON(cmd.OutOrStdout(), fieldMap(e))
				}
				items, err := linkedAll(ctx, api, parent, child)
				if err != nil {
					return err
				}
				return printEntities(cmd.OutOrStdout(), items)
			})
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "print only the linked entity with this id")
	return cmd
}

func newWriteCommand(opts *globalOptions) *cobra.Command {
	var id int64
	cmd := &cobra.Command{
		Use:   "write <kind> field=value...",
		Short: "Create an entity, or update it when --id is given",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := resolveKind(args[0])
			if err != nil {
				return err
			}
			pairs, err := parsePairs(args[1:])
			if err != nil {
				return err
			}
			e := newEntity(kind, id)
			if err := assignPairs(e, pairs); err != nil {
				return err
			}
			return withAPI(cmd, opts, func(ctx context.Context, api connector.API) error {
				written, err := api.WriteObject(ctx, e)
				if err != nil {
					return err
				}
				if !written {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s has no writable fields; nothing sent\n", kind)
				}
				return printJSON(cmd.OutOrStdout(), fieldMap(e))
			})
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "id of an existing entity to update")
	return cmd
}

func newDeleteCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <kind> <id>",
		Short: "Delete an entity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, id, err := target(args[0], args[1])
			if err != nil {
				return err
			}
			return withAPI(cmd, opts, func(ctx context.Context, api connector.API) error {
				return api.DeleteObject(ctx, newEntity(kind, id))
			})
		},
	}
}

func newLinkCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "link <kind> <id> <child-kind> <child-id>",
		Short: "Link an entity below another",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, id, err := target(args[0], args[1])
			if err != nil {
				return err
			}
			childKind, childID, err := target(args[2], args[3])
			if err != nil {
				return err
			}
			return withAPI(cmd, opts, func(ctx context.Context, api connector.API) error {
				return api.LinkEntity(ctx, newEntity(kind, id), newEntity(childKind, childID))
			})
		},
	}
}

func newActionCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "action <kind> <id> <action>",
		Short: "Perform a named action on an entity",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, id, err := target(args[0], args[1])
			if err != nil {
				return err
			}
			return withAPI(cmd, opts, func(ctx context.Context, api connector.API) error {
				return api.PerformAction(ctx, newEntity(kind, id), args[2])
			})
		},
	}
}

func newAssetCommand(opts *globalOptions) *cobra.Command {
	var (
		text bool
		out  string
	)
	cmd := &cobra.Command{
		Use:   "asset <kind> <id> <name>",
		Short: "Download an asset of an entity",
		Long: "Download an asset of an entity. File assets are base64 decoded;\n" +
			"with --text the asset is printed as served.",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, id, err := target(args[0], args[1])
			if err != nil {
				return err
			}
			return withAPI(cmd, opts, func(ctx context.Context, api connector.API) error {
				e := newEntity(kind, id)
				var (
					data []byte
					err  error
				)
				if text {
					s, err := api.GetTextAssets(ctx, e, args[2])
					if err != nil {
						return err
					}
					data = []byte(s)
				} else {
					data, err = api.GetFileAssets(ctx, e, args[2])
					if err != nil {
						return err
					}
				}
				if out != "" {
					return os.WriteFile(out, data, 0o600)
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&text, "text", false, "fetch a text asset")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the asset to a file")
	return cmd
}

func newStatusCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the configured components and their health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			a, err := newApp(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return a.run(cmd.Context(), func(ctx context.Context, _ connector.API) error {
				w := cmd.OutOrStdout()
				for _, d := range a.components.Describe() {
					fmt.Fprintf(w, "%-14s %-10s %s\n", d.Name, d.Type, d.Details)
				}
				for _, h := range a.components.HealthAll(ctx) {
					fmt.Fprintf(w, "%-14s %s %s\n", h.Name, h.Status, h.Message)
				}
				return nil
			})
		},
	}
}

func newVersionCommand() *cobra.Command {
	var short bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			if short {
				fmt.Fprintln(cmd.OutOrStdout(), version.Get().Short())
				return
			}
			fmt.Fprintln(cmd.OutOrStdout(), version.Get().String())
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "print the version number only")
	return cmd
}
