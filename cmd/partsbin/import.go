package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/partsbin/internal/app"
	"github.com/JonMunkholm/partsbin/internal/core"
)

var importMerge bool

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a CSV or JSON file, replacing the inventory",
	Long: `Import reads a CSV, TSV or JSON file and replaces the inventory with it.
With --merge, records are upserted by id instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		var size int64
		if info, err := f.Stat(); err == nil {
			size = info.Size()
		}

		ctx := core.ContextWithOrigin(cmd.Context(), core.OriginCLI)
		a, err := app.New(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		mode := core.ImportReplace
		if importMerge {
			mode = core.ImportMerge
		}

		res, err := a.Service.Import(ctx, filepath.Base(path), f, mode)
		if err != nil {
			return userError(err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d parts from %s (%s, %s, %s); inventory now holds %d\n",
			res.Imported, res.FileName, res.Format, humanize.Bytes(uint64(size)), res.Mode, res.Total)
		return nil
	},
}

// userError prefixes err with its user-facing message and code.
func userError(err error) error {
	if !core.IsUserFacing(err) {
		return err
	}
	return fmt.Errorf("%s: %w", core.FormatUserError(err), err)
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().BoolVar(&importMerge, "merge", false, "Upsert by id instead of replacing the inventory")
}
