package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/erazemk/zbirka/internal/filter"
	"github.com/erazemk/zbirka/internal/model"
)

type format string

const (
	formatTable format = "table"
	formatJSON  format = "json"
	formatYAML  format = "yaml"
)

func parseFormat(s string) (format, error) {
	switch f := format(strings.ToLower(s)); f {
	case formatTable, formatJSON, formatYAML:
		return f, nil
	default:
		return "", usageError{fmt.Errorf("unknown output format %q (want table, json or yaml)", s)}
	}
}

func (c *cli) format() format {
	f, _ := parseFormat(c.flagOutput)
	return f
}

// encode writes v as JSON or YAML.
func encode(w io.Writer, f format, v any) error {
	if f == formatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}

// printItems writes a list of items in the chosen format.
func printItems(w io.Writer, f format, items []model.Item) error {
	if f != formatTable {
		if items == nil {
			items = []model.Item{}
		}
		return encode(w, f, items)
	}

	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "No items.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tACTION\tAGE\tVALUE\tWORKING\tDELETED")
	for _, it := range items {
		deleted := ""
		if it.Deleted {
			deleted = "yes"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			it.ID, it.Name, it.Category.Label(), it.Action,
			optInt(it.AgeYears), money(it.EstimatedValue), it.Working.Label(), deleted)
	}
	return tw.Flush()
}

// printItem writes one item: a styled card for tables, else JSON or YAML.
func printItem(w io.Writer, f format, item *model.Item) error {
	if f != formatTable {
		return encode(w, f, item)
	}
	_, err := fmt.Fprintln(w, renderItem(item))
	return err
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "27", Dark: "62"})
	labelStyle   = lipgloss.NewStyle().Width(16).Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "245"})
	deletedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("160"))
	cardStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func renderItem(item *model.Item) string {
	title := titleStyle.Render(fmt.Sprintf("#%d %s", item.ID, item.Name))
	if item.Deleted {
		title += " " + deletedStyle.Render("[deleted]")
	}

	rows := []string{title, item.Description, ""}
	add := func(label, value string) {
		if value == "" {
			return
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), value))
	}
	add("Category", item.Category.Label())
	add("Action", string(item.Action))
	add("Creator", item.Creator)
	add("Provenance", item.Provenance)
	add("Age (years)", optInt(item.AgeYears))
	add("Acquired", item.DateAcquired)
	add("Purchase price", money(item.PurchasePrice))
	add("Estimated value", money(item.EstimatedValue))
	add("Working", item.Working.Label())
	add("Added", item.DateAdded)
	add("Last updated", item.LastUpdated)
	if item.ImageMime != "" {
		add("Photo", item.ImageMime)
	}

	return cardStyle.Render(strings.Join(rows, "\n"))
}

func optInt(n *int64) string {
	if n == nil {
		return ""
	}
	return filter.Integer(*n).String()
}

func money(x *float64) string {
	if x == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *x)
}
