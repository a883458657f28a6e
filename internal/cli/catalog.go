package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fbettag/mdb/internal/catalog"
	"github.com/fbettag/mdb/internal/export"
	"github.com/fbettag/mdb/internal/selection"
)

func newListCommand() *cobra.Command {
	var (
		sortBy string
		desc   bool
		query  string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the catalog as a table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, e, err := load(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			spec := catalog.SortSpec{Column: sortBy, Direction: catalog.Ascending}
			if desc {
				spec.Direction = catalog.Descending
			}
			if err := store.Sort(spec); err != nil {
				return err
			}
			visible := store.Filter(catalog.ParseQuery(query))
			e.log.Debug("listing", "sort", spec, "filter", query, "visible", visible)
			return writeList(cmd.OutOrStdout(), store.Filtered(), limit)
		},
	}
	cmd.Flags().StringVar(&sortBy, "sort", catalog.DefaultSort.Column, fmt.Sprintf("Sort column (%v)", catalog.ColumnIDs()))
	cmd.Flags().BoolVar(&desc, "desc", false, "Sort descending")
	cmd.Flags().StringVar(&query, "filter", "", "Search query; provider:ID and family:NAME words become exact constraints")
	cmd.Flags().IntVar(&limit, "limit", 0, "Print at most this many rows (0 prints all)")
	return cmd
}

func writeList(w io.Writer, view catalog.View, limit int) error {
	n := view.Len()
	if limit > 0 {
		n = min(n, limit)
	}
	headers := make([]string, len(catalog.Columns))
	for i, col := range catalog.Columns {
		headers[i] = col.Label
	}
	rows := make([][]string, n)
	for i := range rows {
		r := view.At(i)
		row := make([]string, len(catalog.Columns))
		for j, col := range catalog.Columns {
			row[j] = export.Cell(col.ID, r)
		}
		rows[i] = row
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().PaddingRight(2)
			if col < len(catalog.Columns) && catalog.Columns[col].Numeric {
				s = s.Align(lipgloss.Right)
			}
			return s
		})
	_, err := fmt.Fprintln(w, t.Render())
	if err != nil {
		return err
	}
	if n < view.Len() {
		_, err = fmt.Fprintf(w, "%d of %d models\n", n, view.Len())
	}
	return err
}

func newShowCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show PROVIDER/MODEL",
		Short: "Print the details of one model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, e, err := load(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			r, ok := store.Lookup(args[0])
			if !ok {
				return fmt.Errorf("unknown model %q", args[0])
			}
			return writeRecord(cmd.OutOrStdout(), r, store.ProviderName(r.ProviderID), format)
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "Output format (text|json|yaml)")
	return cmd
}

func writeRecord(w io.Writer, r *catalog.Record, providerName, format string) error {
	switch format {
	case "text", "":
		_, err := fmt.Fprintln(w, export.DetailText(r, providerName))
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
	}
}

func newCompareCommand() *cobra.Command {
	var markdown bool
	cmd := &cobra.Command{
		Use:   "compare PROVIDER/MODEL PROVIDER/MODEL...",
		Short: fmt.Sprintf("Compare two to %d models side by side", selection.Max),
		Args:  cobra.RangeArgs(2, selection.Max),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, e, err := load(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			records, err := lookupAll(store, args)
			if err != nil {
				return err
			}
			out := export.CompareText(records)
			if markdown {
				out = export.CompareMarkdown(records)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().BoolVar(&markdown, "markdown", false, "Print a Markdown table")
	return cmd
}

// lookupAll resolves keys in order, dropping repeats.
func lookupAll(store *catalog.Store, keys []string) ([]*catalog.Record, error) {
	for _, k := range keys {
		if !store.Has(k) {
			return nil, fmt.Errorf("unknown model %q", k)
		}
	}
	sel := selection.Restore(keys, store.Has)
	if sel.Len() < 2 {
		return nil, errors.New("compare needs two different models")
	}
	records := make([]*catalog.Record, 0, sel.Len())
	for _, k := range sel.Keys() {
		r, _ := store.Lookup(k)
		records = append(records, r)
	}
	return records, nil
}
