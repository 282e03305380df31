package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/partsbin/internal/app"
	"github.com/JonMunkholm/partsbin/internal/core"
)

var (
	listSearch string
	listLow    bool
	listJSON   bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List parts sorted by drawer and name",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.New(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		view := a.Service.List(core.ViewQuery{Search: listSearch, LowStock: listLow})

		if listJSON {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(view)
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "DRAWER\tNAME\tQTY\tVALUE\tPACKAGE\tCATEGORY")
		for _, r := range view.Records {
			qty := fmt.Sprint(r.Quantity)
			if core.IsLowStock(r) {
				qty += " !"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", r.Drawer, r.Name, qty, r.Value, r.Package, r.Category)
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %d parts, %d pieces\n",
			view.Totals.Shown, view.Totals.Items, view.Totals.Quantity)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVarP(&listSearch, "search", "q", "", "Filter by text in name, category, drawer, value, package or notes")
	listCmd.Flags().BoolVar(&listLow, "low", false, "Only parts at or below the low-stock threshold")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
}
