package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/nchiapol/lookat/pkg/source"
)

// fieldsCommand creates the fields command.
func (c *CLI) fieldsCommand() *cobra.Command {
	var sheet string
	var noCache bool

	cmd := &cobra.Command{
		Use:   "fields [file]",
		Short: "List the fields of a data file with their ranges",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFields(cmd.Context(), args[0], sheet, noCache)
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "worksheet to read from an XLSX file (default: first)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "do not read or write the table cache")
	return cmd
}

func (c *CLI) runFields(ctx context.Context, file, sheet string, noCache bool) error {
	s, err := c.newSession(noCache)
	if err != nil {
		return err
	}
	defer s.Close()

	src, err := s.Load(ctx, file, sheet)
	if err != nil {
		return err
	}
	fields, err := s.Fields(src)
	if err != nil {
		return err
	}

	fmt.Println(StyleTitle.Render(src.Name()) + " " + StyleDim.Render(plural(src.Len(), "event")))
	fmt.Println(fieldTable(src, fields))
	return nil
}

// fieldTable renders one row per field with its finite range.
func fieldTable(src source.Source, fields []string) string {
	rows := make([][]string, 0, len(fields))
	for i, f := range fields {
		lo, hi := "—", "—"
		if l, h, err := src.Range(f); err == nil {
			lo, hi = formatValue(l), formatValue(h)
		}
		rows = append(rows, []string{strconv.Itoa(i), f, lo, hi})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Field", "Min", "Max").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return styleHeader
			case col == 0:
				return StyleDim
			case col == 1:
				return StyleValue
			}
			return StyleNumber
		}).
		Render()
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
