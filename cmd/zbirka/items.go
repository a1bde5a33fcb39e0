package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/erazemk/zbirka/internal/backend"
	"github.com/erazemk/zbirka/internal/filter"
	"github.com/erazemk/zbirka/internal/lifecycle"
	"github.com/erazemk/zbirka/internal/model"
)

func (c *cli) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List items that are not deleted",
		Args:  args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withBackend(cmd, func(ctx context.Context, b backend.Backend) error {
				items, err := b.ListItems(ctx)
				if err != nil {
					return err
				}
				return printItems(c.out, c.format(), items)
			})
		},
	}
}

func (c *cli) newFilterCmd() *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "filter <key=value>...",
		Short: "List items matching a filter",
		Long: `List items matching every given constraint, including deleted ones
unless deleted=false is given. Keys are field names, or <field>_min and
<field>_max for ranges and <field>_contains for substring matches:

  zbirka filter category=Book age_years_min=50 name_contains=atlas

Values are taken literally. A URL-encoded query string, as used by the web
UI, can be given with --query instead.`,
		Args: args(cobra.ArbitraryArgs),
		RunE: func(cmd *cobra.Command, a []string) error {
			if len(a) == 0 && query == "" {
				return usageError{fmt.Errorf("give at least one key=value or --query")}
			}
			f, err := buildFilter(query, a)
			if err != nil {
				return err
			}
			return c.withBackend(cmd, func(ctx context.Context, b backend.Backend) error {
				items, err := b.FilterItems(ctx, f)
				if err != nil {
					return err
				}
				return printItems(c.out, c.format(), items)
			})
		},
	}
	cmd.Flags().StringVar(&query, "query", "", `URL-encoded filter such as "name_contains=Tom%20%26%20Jerry&deleted=false"`)
	return cmd
}

func (c *cli) newExportCmd() *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "export <path|-> [key=value]...",
		Short: "Export items as CSV",
		Long:  `Write the CSV export to path, or to stdout for "-". Without a filter every item is exported, deleted ones included; add deleted=false to leave them out.`,
		Args:  args(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, a []string) error {
			f, err := buildFilter(query, a[1:])
			if err != nil {
				return err
			}

			return c.withBackend(cmd, func(ctx context.Context, b backend.Backend) error {
				if a[0] == "-" {
					return b.ExportCSV(ctx, f, c.out)
				}

				file, err := os.Create(a[0])
				if err != nil {
					return fmt.Errorf("creating export file: %w", err)
				}
				if err := b.ExportCSV(ctx, f, file); err != nil {
					file.Close()
					os.Remove(a[0])
					return err
				}
				if err := file.Close(); err != nil {
					return fmt.Errorf("writing export file: %w", err)
				}
				fmt.Fprintf(c.errOut, "Exported to %s\n", a[0])
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&query, "query", "", "URL-encoded filter, applied before key=value arguments")
	return cmd
}

func (c *cli) newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one item",
		Args:  args(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, a []string) error {
			return c.withController(cmd, a[0], func(ctx context.Context, ctl *lifecycle.Controller) error {
				return printItem(c.out, c.format(), ctl.Item())
			})
		},
	}
}

func (c *cli) newAddCmd() *cobra.Command {
	values := map[string]*string{}
	cmd := &cobra.Command{
		Use:   "add --name=... --description=... [--field=value]...",
		Short: "Add an item",
		Args:  args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			form := filter.Fields{}
			for name, v := range values {
				form[name] = *v
			}

			u, err := filter.BuildUpdate(form)
			if err != nil {
				return err
			}
			item := &model.Item{}
			if err := u.ApplyTo(item); err != nil {
				return err
			}

			return c.withBackend(cmd, func(ctx context.Context, b backend.Backend) error {
				created, err := b.CreateItem(ctx, item)
				if err != nil {
					return err
				}
				return printItem(c.out, c.format(), created)
			})
		},
	}

	for _, f := range filter.Schema {
		if !f.Editable {
			continue
		}
		values[f.Name] = cmd.Flags().String(flagName(f.Name), "", fieldUsage(f))
	}
	return cmd
}

func (c *cli) newUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update <id> <key=value>...",
		Short: "Change fields of an item",
		Long: `Set the given fields of an item. Fields not named are left alone; a
field cannot be cleared.

  zbirka update 12 estimated_value=250 working=true`,
		Args: args(cobra.MinimumNArgs(2)),
		RunE: func(cmd *cobra.Command, a []string) error {
			pairs, err := parsePairs(a[1:])
			if err != nil {
				return err
			}
			fields, err := updateFields(pairs)
			if err != nil {
				return err
			}

			return c.withController(cmd, a[0], func(ctx context.Context, ctl *lifecycle.Controller) error {
				if _, err := ctl.BeginEdit(); err != nil {
					return err
				}
				if err := ctl.SubmitEdit(ctx, fields); err != nil {
					return err
				}
				return printItem(c.out, c.format(), ctl.Item())
			})
		},
	}
}

func (c *cli) newDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Soft-delete an item after confirmation",
		Args:  args(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, a []string) error {
			return c.withController(cmd, a[0], func(ctx context.Context, ctl *lifecycle.Controller) error {
				deleted, err := ctl.RequestDelete(ctx, func(item model.Item) bool {
					if yes {
						return true
					}
					return confirmPrompt(c.in, c.errOut, fmt.Sprintf("Delete #%d %s?", item.ID, item.Name))
				})
				if err != nil {
					return err
				}
				if !deleted {
					fmt.Fprintln(c.out, "Not deleted.")
					return nil
				}
				fmt.Fprintf(c.out, "Deleted #%d. Undo with: zbirka restore %d\n", ctl.Item().ID, ctl.Item().ID)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func (c *cli) newRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <id>",
		Short: "Restore a deleted item",
		Args:  args(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, a []string) error {
			return c.withController(cmd, a[0], func(ctx context.Context, ctl *lifecycle.Controller) error {
				if err := ctl.Restore(ctx); err != nil {
					return err
				}
				fmt.Fprintf(c.out, "Restored #%d\n", ctl.Item().ID)
				return nil
			})
		},
	}
}

func (c *cli) newPhotoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "photo <id> <file>",
		Short: "Attach a JPEG or PNG photo to an item",
		Args:  args(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, a []string) error {
			id, err := lifecycle.ParseID(a[0])
			if err != nil {
				return err
			}
			file, err := os.Open(a[1])
			if err != nil {
				return usageError{fmt.Errorf("opening photo: %w", err)}
			}
			defer file.Close()

			return c.withBackend(cmd, func(ctx context.Context, b backend.Backend) error {
				if err := b.SetItemImage(ctx, id, file); err != nil {
					return err
				}
				fmt.Fprintf(c.out, "Photo saved for #%d\n", id)
				return nil
			})
		},
	}
}

// withController loads the item named by rawID into a lifecycle controller
// and runs fn in the viewing state.
func (c *cli) withController(cmd *cobra.Command, rawID string, fn func(ctx context.Context, ctl *lifecycle.Controller) error) error {
	// Reject a bad id before opening anything.
	if _, err := lifecycle.ParseID(rawID); err != nil {
		return err
	}
	return c.withBackend(cmd, func(ctx context.Context, b backend.Backend) error {
		ctl := lifecycle.New(b)
		if err := ctl.Load(ctx, rawID); err != nil {
			return err
		}
		return fn(ctx, ctl)
	})
}

// buildFilter combines an optional URL-encoded query with literal key=value
// arguments; the arguments come last, so they win on repeated keys.
func buildFilter(query string, a []string) (filter.Filter, error) {
	var pairs []filter.Pair
	if query != "" {
		qp, err := queryPairs(query)
		if err != nil {
			return nil, err
		}
		pairs = qp
	}

	literal, err := parsePairs(a)
	if err != nil {
		return nil, err
	}
	return filter.Build(append(pairs, literal...))
}

func flagName(field string) string {
	return strings.ReplaceAll(field, "_", "-")
}

func fieldUsage(f filter.Field) string {
	switch f.Name {
	case "category":
		names := make([]string, len(model.Categories))
		for i, cat := range model.Categories {
			names[i] = string(cat)
		}
		return "one of " + strings.Join(names, ", ") + " (default Other)"
	case "action":
		return "Keep or Sell (default Keep)"
	case "working":
		return "true, false or blank for unknown"
	}
	switch f.Kind {
	case filter.KindInteger:
		return "whole number"
	case filter.KindFloat:
		return "number"
	case filter.KindDate:
		return "date, YYYY-MM-DD"
	default:
		return "text"
	}
}
