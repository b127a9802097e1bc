package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/delivery-cli/internal/cart"
	"github.com/sells-group/delivery-cli/internal/menu"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Show the menu with item and size keys for ordering",
	RunE: func(cmd *cobra.Command, args []string) error {
		return renderMenu(cmd.OutOrStdout(), menu.Default())
	},
}

func renderMenu(w io.Writer, m *menu.Menu) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ITEM\tSIZE\tPRICE\tORDER AS")
	for _, it := range m.Items() {
		for _, s := range it.Sizes {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s:%s\n", it.Name, s.Label, cart.FormatPula(s.Price), it.Key, s.Key)
		}
	}
	return tw.Flush()
}

func init() {
	rootCmd.AddCommand(menuCmd)
}
